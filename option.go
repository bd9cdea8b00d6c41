package vloop

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/hollowaudio/vloop-go/audio"
	"github.com/hollowaudio/vloop-go/metric"
)

type driverOptions struct {
	deviceName   string
	manufacturer string
	deviceUID    string
	modelUID     string
	bundleID     string

	channels        int
	sampleRate      float64
	sampleRates     []float64
	ringFrames      int
	latencyFrames   uint32
	safetyOffset    uint32
	hasInput        bool
	hasOutput       bool
	dataSourceItems []string

	hidden             bool
	canBeDefault       bool
	canBeDefaultSystem bool

	logger   *slog.Logger
	metrics  *metric.Metrics
	notifier HostNotifier
	observer audio.Observer
	now      func() uint64
}

type Option func(opts *driverOptions)

func withDefaults() Option {
	return withOptions(
		WithLogger(slog.Default()),
		WithDeviceName("Hollow Loop"),
		WithManufacturer("Hollow Audio"),
		WithBundleID("audio.hollow.loop"),
		WithDeviceUID(uuid.NewString()),
		WithChannels(2),
		WithSampleRate(48000),
		WithSampleRates(44100, 48000, 88200, 96000, 176400, 192000),
		WithRingFrames(16384),
		WithDuplex(),
		WithCanBeDefault(true, true),
		WithNotifier(NopNotifier{}),
	)
}

func withOptions(os ...Option) Option {
	return func(opts *driverOptions) {
		for _, o := range os {
			o(opts)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(opts *driverOptions) {
		opts.logger = logger
	}
}

func WithDeviceName(name string) Option {
	return func(opts *driverOptions) {
		opts.deviceName = name
	}
}

func WithManufacturer(name string) Option {
	return func(opts *driverOptions) {
		opts.manufacturer = name
	}
}

func WithDeviceUID(uid string) Option {
	return func(opts *driverOptions) {
		opts.deviceUID = uid
	}
}

func WithModelUID(uid string) Option {
	return func(opts *driverOptions) {
		opts.modelUID = uid
	}
}

func WithBundleID(id string) Option {
	return func(opts *driverOptions) {
		opts.bundleID = id
	}
}

func WithChannels(n int) Option {
	return func(opts *driverOptions) {
		opts.channels = n
	}
}

// WithSampleRate sets the nominal rate the device starts at. It must
// appear in the supported rate list.
func WithSampleRate(rate float64) Option {
	return func(opts *driverOptions) {
		opts.sampleRate = rate
	}
}

func WithSampleRates(rates ...float64) Option {
	return func(opts *driverOptions) {
		opts.sampleRates = rates
	}
}

// WithRingFrames sets the shared ring length in frames. Must be a
// power of two.
func WithRingFrames(frames int) Option {
	return func(opts *driverOptions) {
		opts.ringFrames = frames
	}
}

func WithLatencyFrames(frames uint32) Option {
	return func(opts *driverOptions) {
		opts.latencyFrames = frames
	}
}

func WithSafetyOffset(frames uint32) Option {
	return func(opts *driverOptions) {
		opts.safetyOffset = frames
	}
}

// WithDuplex exposes both the loopback input and the output side.
func WithDuplex() Option {
	return func(opts *driverOptions) {
		opts.hasInput = true
		opts.hasOutput = true
	}
}

// WithOutputOnly exposes only the output side, for sink-style devices.
func WithOutputOnly() Option {
	return func(opts *driverOptions) {
		opts.hasInput = false
		opts.hasOutput = true
	}
}

// WithInputOnly exposes only the loopback input side.
func WithInputOnly() Option {
	return func(opts *driverOptions) {
		opts.hasInput = true
		opts.hasOutput = false
	}
}

// WithDataSourceItems adds a data source control per direction with
// the given selectable item names.
func WithDataSourceItems(items ...string) Option {
	return func(opts *driverOptions) {
		opts.dataSourceItems = items
	}
}

func WithHidden(hidden bool) Option {
	return func(opts *driverOptions) {
		opts.hidden = hidden
	}
}

func WithCanBeDefault(device, system bool) Option {
	return func(opts *driverOptions) {
		opts.canBeDefault = device
		opts.canBeDefaultSystem = system
	}
}

func WithMetrics(m *metric.Metrics) Option {
	return func(opts *driverOptions) {
		opts.metrics = m
	}
}

func WithNotifier(n HostNotifier) Option {
	return func(opts *driverOptions) {
		opts.notifier = n
	}
}

// WithEngineObserver taps the IO path. Callbacks must not block.
func WithEngineObserver(obs audio.Observer) Option {
	return func(opts *driverOptions) {
		opts.observer = obs
	}
}

// WithHostClock overrides the host tick source, for tests.
func WithHostClock(now func() uint64) Option {
	return func(opts *driverOptions) {
		opts.now = now
	}
}
