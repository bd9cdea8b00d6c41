// Package vloop implements a virtual loopback audio device: whatever
// applications play into its output can be captured from its input in
// the same cycle. The Driver is the process-wide context the host
// talks to; object identity, property dispatch and the IO engine live
// in the subpackages.
package vloop

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/hollowaudio/vloop-go/audio"
	"github.com/hollowaudio/vloop-go/metric"
	"github.com/hollowaudio/vloop-go/object"
	"github.com/hollowaudio/vloop-go/property"
)

// Driver owns the whole device: the object graph, the property store
// and dispatcher, the IO engine and the device clock. One Driver is
// one device.
type Driver struct {
	opts       driverOptions
	logger     *slog.Logger
	graph      *object.Graph
	store      *property.Store
	dispatcher *property.Dispatcher
	engine     *audio.Engine
	clock      *audio.Clock
	metrics    *metric.Metrics
	notifier   HostNotifier

	mu          sync.Mutex
	initialized bool
	clients     map[uint32]*clientEntry
	running     int
	pending     map[string]float64
}

func New(opts ...Option) (*Driver, error) {
	o := &driverOptions{}
	withOptions(append([]Option{withDefaults()}, opts...)...)(o)

	if !o.hasInput && !o.hasOutput {
		return nil, fmt.Errorf("device needs at least one direction")
	}
	if !slices.Contains(o.sampleRates, o.sampleRate) {
		return nil, fmt.Errorf("nominal rate %g is not in the supported list %v", o.sampleRate, o.sampleRates)
	}
	if o.modelUID == "" {
		o.modelUID = o.bundleID + ".model"
	}

	graph := object.Build(object.Config{
		HasInput:           o.hasInput,
		HasOutput:          o.hasOutput,
		DataSourceControls: len(o.dataSourceItems) > 0,
	})
	store := property.NewStore(property.StoreConfig{
		DeviceName:         o.deviceName,
		Manufacturer:       o.manufacturer,
		DeviceUID:          o.deviceUID,
		ModelUID:           o.modelUID,
		BundleID:           o.bundleID,
		Channels:           o.channels,
		SampleRate:         o.sampleRate,
		SampleRates:        o.sampleRates,
		RingFrames:         uint32(o.ringFrames),
		LatencyFrames:      o.latencyFrames,
		SafetyOffset:       o.safetyOffset,
		Hidden:             o.hidden,
		CanBeDefault:       o.canBeDefault,
		CanBeDefaultSystem: o.canBeDefaultSystem,
		DataSourceItems:    o.dataSourceItems,
	}, graph)

	d := &Driver{
		opts:     *o,
		logger:   o.logger.With(slog.String("component", "driver"), slog.String("device", o.deviceName)),
		graph:    graph,
		store:    store,
		metrics:  o.metrics,
		notifier: o.notifier,
		clients:  map[uint32]*clientEntry{},
		pending:  map[string]float64{},
	}

	obs := d.meteredObserver(o.observer)
	engine, err := audio.NewEngine(
		audio.Format{SampleRate: o.sampleRate, Channels: o.channels},
		o.ringFrames,
		audio.WithEngineLogger(o.logger),
		audio.WithObserver(obs),
	)
	if err != nil {
		return nil, err
	}
	d.engine = engine
	d.clock = audio.NewClock(o.sampleRate, o.ringFrames, o.now)
	d.dispatcher = property.NewDispatcher(graph, store, property.Hooks{
		PropertiesChanged: d.notifier.PropertiesChanged,
		SampleRateRequest: d.requestSampleRate,
	}, o.logger)

	return d, nil
}

// meteredObserver chains the metrics taps in front of the caller's
// observer.
func (d *Driver) meteredObserver(user audio.Observer) audio.Observer {
	return audio.Observer{
		OnRead:  user.OnRead,
		OnWrite: user.OnWrite,
		OnSilence: func(frames int) {
			d.metrics.SilentCycle()
			if user.OnSilence != nil {
				user.OnSilence(frames)
			}
		},
		OnScrub: user.OnScrub,
	}
}

// Initialize is the host's first call after loading. Idempotent.
func (d *Driver) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized {
		return nil
	}
	d.initialized = true
	d.logger.Info("initialized",
		slog.String("uid", d.opts.deviceUID),
		slog.Float64("sample_rate", d.opts.sampleRate),
		slog.Int("channels", d.opts.channels),
	)
	return nil
}

func (d *Driver) Graph() *object.Graph {
	return d.graph
}

func (d *Driver) Dispatcher() *property.Dispatcher {
	return d.dispatcher
}

// DeviceUID returns the persistent identity of the device.
func (d *Driver) DeviceUID() string {
	return d.opts.deviceUID
}

// requestSampleRate runs as the dispatcher's hook when a client sets
// the nominal rate. The change is staged in the store; here we open
// the two-phase handshake with the host, or perform immediately when
// no host owns the device.
func (d *Driver) requestSampleRate(rate float64) {
	d.mu.Lock()
	changeID := newChangeID()
	d.pending[changeID] = rate
	d.mu.Unlock()

	d.logger.Info("configuration change requested",
		slog.String("change_id", changeID),
		slog.Float64("sample_rate", rate),
	)
	if !d.notifier.RequestConfigurationChange(changeID, rate) {
		_ = d.PerformConfigurationChange(changeID)
	}
}

// PerformConfigurationChange applies a previously requested change:
// the staged rate is committed, the engine rebuilt behind its barrier
// and the clock re-anchored.
func (d *Driver) PerformConfigurationChange(changeID string) error {
	d.mu.Lock()
	_, ok := d.pending[changeID]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("%w: unknown change %q", property.ErrIllegalOperation, changeID)
	}
	delete(d.pending, changeID)

	rate, changed := d.store.CommitRate()
	if changed {
		if err := d.engine.SetFormat(audio.Format{SampleRate: rate, Channels: d.opts.channels}); err != nil {
			d.mu.Unlock()
			return err
		}
		d.clock.SetRate(rate)
	}
	d.mu.Unlock()

	if changed {
		d.metrics.ConfigChange()
		d.dispatcher.NotifyRateChanged()
		d.logger.Info("configuration change performed",
			slog.String("change_id", changeID),
			slog.Float64("sample_rate", rate),
		)
	}
	return nil
}

// AbortConfigurationChange drops a previously requested change without
// touching the stream.
func (d *Driver) AbortConfigurationChange(changeID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.pending[changeID]; !ok {
		return fmt.Errorf("%w: unknown change %q", property.ErrIllegalOperation, changeID)
	}
	delete(d.pending, changeID)
	d.store.AbortRate()
	d.logger.Info("configuration change aborted", slog.String("change_id", changeID))
	return nil
}

// syncControls mirrors the store's output-side volume and mute into
// the engine atomics the IO path reads.
func (d *Driver) syncControls() {
	scope := object.ScopeOutput
	if !d.opts.hasOutput {
		scope = object.ScopeInput
	}
	if id, ok := d.graph.Control(object.ControlVolume, scope); ok {
		if v, ok := d.store.Volume(id); ok {
			d.engine.SetVolume(v)
		}
	}
	if id, ok := d.graph.Control(object.ControlMute, scope); ok {
		if m, ok := d.store.Mute(id); ok {
			d.engine.SetMuted(m)
		}
	}
}
