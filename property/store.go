package property

import (
	"fmt"
	"math"
	"sync"

	"github.com/hollowaudio/vloop-go/object"
)

// Volume controls cover the conventional -64dB..0dB volume window.
const (
	VolumeMinDB = -64.0
	VolumeMaxDB = 0.0
)

// StoreConfig is the immutable identity of the device, injected at
// driver construction and never changed afterwards.
type StoreConfig struct {
	DeviceName   string
	Manufacturer string
	DeviceUID    string
	ModelUID     string
	BundleID     string

	Channels           int
	SampleRate         float64
	SampleRates        []float64
	RingFrames         uint32
	LatencyFrames      uint32
	SafetyOffset       uint32
	Hidden             bool
	CanBeDefault       bool
	CanBeDefaultSystem bool

	DataSourceItems []string
}

// Store holds the current value of every mutable property, plus the
// fixed identity above. It is written only from the control path; the
// I/O path never touches it (the driver mirrors volume and mute into
// the engine's atomics on change).
type Store struct {
	cfg StoreConfig

	mu            sync.RWMutex
	sampleRate    float64
	requestedRate float64
	running       bool
	volume        map[object.ID]float32
	mute          map[object.ID]bool
	dataSource    map[object.ID]uint32
	streamActive  map[object.ID]bool
}

// NewStore seeds per-control state for every control and stream in the
// graph. Volume starts at full scale, mute off, streams active.
func NewStore(cfg StoreConfig, g *object.Graph) *Store {
	s := &Store{
		cfg:          cfg,
		sampleRate:   cfg.SampleRate,
		volume:       make(map[object.ID]float32),
		mute:         make(map[object.ID]bool),
		dataSource:   make(map[object.ID]uint32),
		streamActive: make(map[object.ID]bool),
	}
	for _, scope := range []object.Scope{object.ScopeInput, object.ScopeOutput} {
		if id, ok := g.Control(object.ControlVolume, scope); ok {
			s.volume[id] = 1.0
		}
		if id, ok := g.Control(object.ControlMute, scope); ok {
			s.mute[id] = false
		}
		if id, ok := g.Control(object.ControlDataSource, scope); ok {
			s.dataSource[id] = 0
		}
	}
	for _, id := range g.Streams(object.ScopeGlobal) {
		s.streamActive[id] = true
	}
	return s
}

func (s *Store) Config() StoreConfig { return s.cfg }

func (s *Store) SampleRate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sampleRate
}

// SupportsRate reports whether rate is one of the advertised nominal
// sample rates.
func (s *Store) SupportsRate(rate float64) bool {
	for _, r := range s.cfg.SampleRates {
		if r == rate {
			return true
		}
	}
	return false
}

// RequestRate records a pending sample-rate change. The new rate takes
// effect only when CommitRate runs, after the host has granted the
// configuration change.
func (s *Store) RequestRate(rate float64) error {
	if !s.SupportsRate(rate) {
		return fmt.Errorf("%w: unsupported sample rate %v", ErrIllegalOperation, rate)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestedRate = rate
	return nil
}

// CommitRate applies the pending rate and returns it. Returns false when
// no change was pending.
func (s *Store) CommitRate() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requestedRate == 0 || s.requestedRate == s.sampleRate {
		s.requestedRate = 0
		return s.sampleRate, false
	}
	s.sampleRate = s.requestedRate
	s.requestedRate = 0
	return s.sampleRate, true
}

// AbortRate drops a pending rate change.
func (s *Store) AbortRate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestedRate = 0
}

func (s *Store) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Store) SetRunning(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = v
}

func (s *Store) Volume(id object.ID) (float32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.volume[id]
	return v, ok
}

func (s *Store) SetVolume(id object.ID, v float32) bool {
	v = min(max(v, 0), 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.volume[id]; !ok {
		return false
	}
	changed := s.volume[id] != v
	s.volume[id] = v
	return changed
}

func (s *Store) Mute(id object.ID) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.mute[id]
	return v, ok
}

func (s *Store) SetMute(id object.ID, v bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mute[id]; !ok {
		return false
	}
	changed := s.mute[id] != v
	s.mute[id] = v
	return changed
}

func (s *Store) DataSource(id object.ID) (uint32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.dataSource[id]
	return v, ok
}

func (s *Store) SetDataSource(id object.ID, item uint32) error {
	if int(item) >= len(s.cfg.DataSourceItems) {
		return fmt.Errorf("%w: data source item %d out of range", ErrIllegalOperation, item)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dataSource[id]; !ok {
		return ErrUnknownObject
	}
	s.dataSource[id] = item
	return nil
}

func (s *Store) StreamActive(id object.ID) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.streamActive[id]
	return v, ok
}

func (s *Store) SetStreamActive(id object.ID, v bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.streamActive[id]; !ok {
		return false
	}
	changed := s.streamActive[id] != v
	s.streamActive[id] = v
	return changed
}

// Volume taper. Scalar position maps linearly onto the decibel window,
// amplitude follows the usual 20*log10 law.

func VolumeToDecibels(volume float32) float32 {
	if volume <= float32(math.Pow(10, VolumeMinDB/20)) {
		return VolumeMinDB
	}
	return 20 * float32(math.Log10(float64(volume)))
}

func VolumeFromDecibels(db float32) float32 {
	if db <= VolumeMinDB {
		return 0
	}
	return float32(math.Pow(10, float64(db)/20))
}

func VolumeToScalar(volume float32) float32 {
	db := VolumeToDecibels(volume)
	return (db - VolumeMinDB) / (VolumeMaxDB - VolumeMinDB)
}

func VolumeFromScalar(scalar float32) float32 {
	db := scalar*(VolumeMaxDB-VolumeMinDB) + VolumeMinDB
	return VolumeFromDecibels(db)
}
