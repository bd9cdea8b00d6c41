package property

import "github.com/hollowaudio/vloop-go/object"

func (d *Dispatcher) registerClock() {
	d.register(object.ClassClock, SelectorName, handler{
		size: stringSize(clockName),
		get:  stringGet(clockName),
	})
	d.register(object.ClassClock, SelectorClockDomain, handler{
		size: sizeOf(SizeUint32),
		get:  func(c call, w *writer) { w.Uint32(0) },
	})
	d.register(object.ClassClock, SelectorNominalSampleRate, handler{
		size: sizeOf(SizeFloat64),
		get: func(c call, w *writer) {
			w.Float64(c.store().SampleRate())
		},
	})

	// The clock presents the device's control plane: its control list is
	// the device's controls for the queried scope.
	d.register(object.ClassClock, SelectorControlList, handler{
		size: func(c call) int {
			return len(c.graph().Controls(c.addr.Scope)) * SizeID
		},
		get: func(c call, w *writer) {
			w.IDs(c.graph().Controls(c.addr.Scope))
		},
	})
}

func clockName(c call) string {
	return c.store().Config().DeviceName + " Clock"
}
