package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync/atomic"
)

var (
	// ErrNotReady reports IO against a stopped or reconfiguring stream.
	ErrNotReady = errors.New("audio: stream not ready")
	// ErrOverload reports a cycle whose deadline had already passed.
	ErrOverload = errors.New("audio: cycle deadline passed")
)

// engineState is the immutable snapshot IO cycles run against. A
// format change publishes a new snapshot; cycles that loaded the old
// one finish against it or bail to silence.
type engineState struct {
	format Format
	ring   *ring
	gen    uint64
	ready  bool
}

// Engine moves interleaved audio between the mix writer and the
// loopback readers through a shared frame ring. The write side never
// blocks; the read side serves silence rather than wait. Start, Stop
// and SetFormat must be serialized by the caller, IO calls need no
// coordination.
type Engine struct {
	ringFrames int
	logger     *slog.Logger
	obs        Observer

	st          atomic.Pointer[engineState]
	inflight    atomic.Int64
	lastWritten atomic.Int64 // absolute frame just past the newest mix write
	dirty       atomic.Bool  // ring holds stale audio, scrub before going silent
	volume      atomic.Uint32
	muted       atomic.Bool
}

type EngineOption func(*Engine)

func WithObserver(obs Observer) EngineOption {
	return func(e *Engine) {
		e.obs = obs
	}
}

func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

func NewEngine(format Format, ringFrames int, opts ...EngineOption) (*Engine, error) {
	if ringFrames <= 0 || ringFrames&(ringFrames-1) != 0 {
		return nil, fmt.Errorf("ring frames must be a power of two, got %d", ringFrames)
	}
	if !format.Valid() {
		return nil, fmt.Errorf("invalid format: %gHz %dch", format.SampleRate, format.Channels)
	}
	e := &Engine{
		ringFrames: ringFrames,
		logger:     slog.Default(),
	}
	e.volume.Store(math.Float32bits(1))
	e.st.Store(&engineState{format: format})
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(slog.String("component", "audio.engine"))
	return e, nil
}

func (e *Engine) Format() Format {
	return e.st.Load().format
}

func (e *Engine) Ready() bool {
	return e.st.Load().ready
}

func (e *Engine) RingFrames() int {
	return e.ringFrames
}

// Start allocates the ring and opens the stream for IO.
func (e *Engine) Start() {
	s := e.st.Load()
	if s.ready {
		return
	}
	e.lastWritten.Store(0)
	e.dirty.Store(false)
	e.st.Store(&engineState{
		format: s.format,
		ring:   newRing(e.ringFrames, s.format.Channels),
		gen:    s.gen + 1,
		ready:  true,
	})
	e.logger.Debug("stream started",
		slog.Float64("sample_rate", s.format.SampleRate),
		slog.Int("channels", s.format.Channels),
	)
}

// Stop closes the stream and drops the ring once in-flight cycles
// drain.
func (e *Engine) Stop() {
	s := e.st.Load()
	if !s.ready {
		return
	}
	e.st.Store(&engineState{format: s.format, gen: s.gen + 1})
	e.drain()
	e.logger.Debug("stream stopped")
}

// SetFormat reconfigures the stream. While the barrier is up IO is
// refused; in-flight cycles drain against their old snapshot, then the
// ring is reallocated empty under the new format.
func (e *Engine) SetFormat(format Format) error {
	if !format.Valid() {
		return fmt.Errorf("invalid format: %gHz %dch", format.SampleRate, format.Channels)
	}
	s := e.st.Load()
	if !s.ready {
		e.st.Store(&engineState{format: format, gen: s.gen + 1})
		return nil
	}
	e.st.Store(&engineState{format: format, gen: s.gen + 1})
	e.drain()
	e.lastWritten.Store(0)
	e.dirty.Store(false)
	e.st.Store(&engineState{
		format: format,
		ring:   newRing(e.ringFrames, format.Channels),
		gen:    s.gen + 2,
		ready:  true,
	})
	e.logger.Info("format changed",
		slog.Float64("sample_rate", format.SampleRate),
		slog.Int("channels", format.Channels),
	)
	return nil
}

func (e *Engine) drain() {
	for e.inflight.Load() != 0 {
		runtime.Gosched()
	}
}

func (e *Engine) enter() (*engineState, bool) {
	e.inflight.Add(1)
	s := e.st.Load()
	if !s.ready {
		e.inflight.Add(-1)
		return nil, false
	}
	return s, true
}

func (e *Engine) leave() {
	e.inflight.Add(-1)
}

// WriteMix copies one cycle of mixed output into the ring at the given
// absolute frame position and publishes the new high-water mark.
func (e *Engine) WriteMix(sampleTime int64, src []float32) error {
	s, ok := e.enter()
	if !ok {
		return ErrNotReady
	}
	defer e.leave()

	if len(src)%s.format.Channels != 0 {
		return fmt.Errorf("partial frame: %d samples over %d channels", len(src), s.format.Channels)
	}
	s.ring.writeAt(sampleTime, src)
	e.dirty.Store(true)

	end := sampleTime + int64(len(src)/s.format.Channels)
	for {
		last := e.lastWritten.Load()
		if end <= last || e.lastWritten.CompareAndSwap(last, end) {
			break
		}
	}
	if e.obs.OnWrite != nil {
		e.obs.OnWrite(len(src) / s.format.Channels)
	}
	return nil
}

// ReadInput fills dst with one cycle of loopback audio starting at the
// given absolute frame position. With no active talker, or while the
// stream reconfigures, the cycle is silence; stale ring contents are
// scrubbed once so they never re-emerge.
func (e *Engine) ReadInput(sampleTime int64, dst []float32) {
	s, ok := e.enter()
	if !ok {
		clear(dst)
		return
	}
	defer e.leave()

	frames := len(dst) / s.format.Channels
	if e.muted.Load() || e.lastWritten.Load()-int64(frames) < sampleTime {
		if e.dirty.CompareAndSwap(true, false) {
			s.ring.zero()
			if e.obs.OnScrub != nil {
				e.obs.OnScrub()
			}
		}
		clear(dst)
		if e.obs.OnSilence != nil {
			e.obs.OnSilence(frames)
		}
		return
	}

	s.ring.readAt(sampleTime, dst)
	if v := math.Float32frombits(e.volume.Load()); v != 1 {
		for i := range dst {
			dst[i] *= v
		}
	}
	if e.obs.OnRead != nil {
		e.obs.OnRead(frames)
	}
}

// SetVolume sets the scalar applied to loopback reads, clamped to
// [0, 1].
func (e *Engine) SetVolume(v float32) {
	e.volume.Store(math.Float32bits(min(max(v, 0), 1)))
}

func (e *Engine) Volume() float32 {
	return math.Float32frombits(e.volume.Load())
}

func (e *Engine) SetMuted(muted bool) {
	e.muted.Store(muted)
}

func (e *Engine) Muted() bool {
	return e.muted.Load()
}
