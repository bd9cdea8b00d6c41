package property

import (
	"fmt"

	"github.com/hollowaudio/vloop-go/object"
)

// Stream direction wire values.
const (
	streamDirectionOutput uint32 = 0
	streamDirectionInput  uint32 = 1
)

// SizeFormat is the wire size of the stream format properties: float64
// sample rate, uint32 channel count, uint32 bits per sample.
const SizeFormat = SizeFloat64 + 2*SizeUint32

// Samples are always 32-bit float LPCM; only the rate is negotiable.
const bitsPerSample uint32 = 32

func (d *Dispatcher) registerStream() {
	d.register(object.ClassStream, SelectorStreamIsActive, handler{
		settable: true,
		setSize:  SizeUint32,
		size:     sizeOf(SizeUint32),
		get: func(c call, w *writer) {
			active, _ := c.store().StreamActive(c.obj.ID)
			w.Bool(active)
		},
		set: func(c call, data []byte) ([]Address, error) {
			if c.store().SetStreamActive(c.obj.ID, getUint32(data) != 0) {
				return []Address{Global(SelectorStreamIsActive)}, nil
			}
			return nil, nil
		},
	})
	d.register(object.ClassStream, SelectorStreamDirection, handler{
		size: sizeOf(SizeUint32),
		get: func(c call, w *writer) {
			if c.obj.Scope == object.ScopeInput {
				w.Uint32(streamDirectionInput)
			} else {
				w.Uint32(streamDirectionOutput)
			}
		},
	})
	d.register(object.ClassStream, SelectorTerminalType, handler{
		size: sizeOf(SizeUint32),
		get:  func(c call, w *writer) { w.Uint32(0) },
	})
	d.register(object.ClassStream, SelectorStartingChannel, handler{
		size: sizeOf(SizeUint32),
		get:  func(c call, w *writer) { w.Uint32(1) },
	})
	d.register(object.ClassStream, SelectorLatency, handler{
		size: sizeOf(SizeUint32),
		get:  func(c call, w *writer) { w.Uint32(c.store().Config().LatencyFrames) },
	})

	format := handler{
		settable: true,
		setSize:  SizeFormat,
		size:     sizeOf(SizeFormat),
		get: func(c call, w *writer) {
			w.Float64(c.store().SampleRate())
			w.Uint32(uint32(c.store().Config().Channels))
			w.Uint32(bitsPerSample)
		},
		set: func(c call, data []byte) ([]Address, error) {
			rate := getFloat64(data)
			channels := getUint32(data[SizeFloat64:])
			bits := getUint32(data[SizeFloat64+SizeUint32:])
			if channels != uint32(c.store().Config().Channels) || bits != bitsPerSample {
				return nil, fmt.Errorf("%w: only the sample rate of the stream format is negotiable", ErrIllegalOperation)
			}
			return nil, c.d.requestRate(rate)
		},
	}
	// virtual and physical formats are the same thing for a loopback
	// device: there is no hardware encoding behind the stream.
	d.register(object.ClassStream, SelectorVirtualFormat, format)
	d.register(object.ClassStream, SelectorPhysicalFormat, format)

	d.register(object.ClassStream, SelectorAvailableFormats, handler{
		size: func(c call) int {
			return len(c.store().Config().SampleRates) * SizeFormat
		},
		get: func(c call, w *writer) {
			for _, r := range c.store().Config().SampleRates {
				w.Float64(r)
				w.Uint32(uint32(c.store().Config().Channels))
				w.Uint32(bitsPerSample)
			}
		},
	})
}
