package property

import (
	"fmt"

	"github.com/hollowaudio/vloop-go/object"
)

// The device transport is always virtual; there is no physical bus.
const transportTypeVirtual uint32 = 1

func (d *Dispatcher) registerDevice() {
	d.register(object.ClassDevice, SelectorName, handler{
		size: stringSize(func(c call) string { return c.store().Config().DeviceName }),
		get:  stringGet(func(c call) string { return c.store().Config().DeviceName }),
	})
	d.register(object.ClassDevice, SelectorManufacturer, handler{
		size: stringSize(func(c call) string { return c.store().Config().Manufacturer }),
		get:  stringGet(func(c call) string { return c.store().Config().Manufacturer }),
	})
	d.register(object.ClassDevice, SelectorDeviceUID, handler{
		size: stringSize(func(c call) string { return c.store().Config().DeviceUID }),
		get:  stringGet(func(c call) string { return c.store().Config().DeviceUID }),
	})
	d.register(object.ClassDevice, SelectorModelUID, handler{
		size: stringSize(func(c call) string { return c.store().Config().ModelUID }),
		get:  stringGet(func(c call) string { return c.store().Config().ModelUID }),
	})
	d.register(object.ClassDevice, SelectorTransportType, handler{
		size: sizeOf(SizeUint32),
		get:  func(c call, w *writer) { w.Uint32(transportTypeVirtual) },
	})
	d.register(object.ClassDevice, SelectorClockDomain, handler{
		size: sizeOf(SizeUint32),
		get:  func(c call, w *writer) { w.Uint32(0) },
	})
	d.register(object.ClassDevice, SelectorIsAlive, handler{
		size: sizeOf(SizeUint32),
		get:  func(c call, w *writer) { w.Bool(true) },
	})
	d.register(object.ClassDevice, SelectorIsRunning, handler{
		size: sizeOf(SizeUint32),
		get:  func(c call, w *writer) { w.Bool(c.store().Running()) },
	})
	d.register(object.ClassDevice, SelectorCanBeDefault, handler{
		size: sizeOf(SizeUint32),
		get:  func(c call, w *writer) { w.Bool(c.store().Config().CanBeDefault) },
	})
	d.register(object.ClassDevice, SelectorCanBeDefaultSystem, handler{
		size: sizeOf(SizeUint32),
		get:  func(c call, w *writer) { w.Bool(c.store().Config().CanBeDefaultSystem) },
	})
	d.register(object.ClassDevice, SelectorIsHidden, handler{
		size: sizeOf(SizeUint32),
		get:  func(c call, w *writer) { w.Bool(c.store().Config().Hidden) },
	})
	d.register(object.ClassDevice, SelectorLatency, handler{
		size: sizeOf(SizeUint32),
		get:  func(c call, w *writer) { w.Uint32(c.store().Config().LatencyFrames) },
	})
	d.register(object.ClassDevice, SelectorSafetyOffset, handler{
		size: sizeOf(SizeUint32),
		get:  func(c call, w *writer) { w.Uint32(c.store().Config().SafetyOffset) },
	})
	d.register(object.ClassDevice, SelectorZeroTimeStampPeriod, handler{
		size: sizeOf(SizeUint32),
		get:  func(c call, w *writer) { w.Uint32(c.store().Config().RingFrames) },
	})

	d.register(object.ClassDevice, SelectorStreams, handler{
		size: func(c call) int {
			return len(c.graph().Streams(c.addr.Scope)) * SizeID
		},
		get: func(c call, w *writer) {
			w.IDs(c.graph().Streams(c.addr.Scope))
		},
	})
	d.register(object.ClassDevice, SelectorControlList, handler{
		size: func(c call) int {
			return len(c.graph().Controls(c.addr.Scope)) * SizeID
		},
		get: func(c call, w *writer) {
			w.IDs(c.graph().Controls(c.addr.Scope))
		},
	})

	d.register(object.ClassDevice, SelectorNominalSampleRate, handler{
		settable: true,
		setSize:  SizeFloat64,
		size:     sizeOf(SizeFloat64),
		get: func(c call, w *writer) {
			w.Float64(c.store().SampleRate())
		},
		set: func(c call, data []byte) ([]Address, error) {
			return nil, c.d.requestRate(getFloat64(data))
		},
	})
	d.register(object.ClassDevice, SelectorAvailableSampleRates, handler{
		size: func(c call) int {
			return len(c.store().Config().SampleRates) * SizeRange
		},
		get: func(c call, w *writer) {
			for _, r := range c.store().Config().SampleRates {
				w.Range(r, r)
			}
		},
	})

	d.register(object.ClassDevice, SelectorPreferredStereoChannels, handler{
		size: sizeOf(2 * SizeUint32),
		get: func(c call, w *writer) {
			w.Uint32(1)
			w.Uint32(2)
		},
	})
	d.register(object.ClassDevice, SelectorPreferredChannelLayout, handler{
		size: func(c call) int {
			return 2*SizeUint32 + c.store().Config().Channels*SizeUint32
		},
		get: func(c call, w *writer) {
			channels := c.store().Config().Channels
			w.Uint32(0) // layout tag: described by channel labels
			w.Uint32(uint32(channels))
			for i := 0; i < channels; i++ {
				w.Uint32(uint32(i + 1))
			}
		},
	})
}

// requestRate validates the rate and defers the switch to the
// configuration-change handshake. The IsRunning/NominalSampleRate
// notifications fire when the change is performed, not here.
func (d *Dispatcher) requestRate(rate float64) error {
	if err := d.store.RequestRate(rate); err != nil {
		return fmt.Errorf("set sample rate: %w", err)
	}
	if d.hooks.SampleRateRequest != nil {
		d.hooks.SampleRateRequest(rate)
	}
	return nil
}
