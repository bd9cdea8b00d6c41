package property

import "github.com/hollowaudio/vloop-go/object"

// Wire codes for the class and base-class properties.
const (
	classCodeObject            uint32 = 1
	classCodePlugIn            uint32 = 2
	classCodeDevice            uint32 = 3
	classCodeStream            uint32 = 4
	classCodeClock             uint32 = 5
	classCodeControl           uint32 = 6
	classCodeVolumeControl     uint32 = 7
	classCodeMuteControl       uint32 = 8
	classCodeDataSourceControl uint32 = 9
)

func classCode(info object.Info) uint32 {
	switch info.Class {
	case object.ClassPlugIn:
		return classCodePlugIn
	case object.ClassDevice:
		return classCodeDevice
	case object.ClassStream:
		return classCodeStream
	case object.ClassClock:
		return classCodeClock
	case object.ClassControl:
		switch info.Kind {
		case object.ControlVolume:
			return classCodeVolumeControl
		case object.ControlMute:
			return classCodeMuteControl
		case object.ControlDataSource:
			return classCodeDataSourceControl
		}
		return classCodeControl
	}
	return classCodeObject
}

func baseClassCode(info object.Info) uint32 {
	if info.Class == object.ClassControl {
		return classCodeControl
	}
	return classCodeObject
}

// registerCommon installs the selectors every object answers: base
// class, class, owner, and owned objects.
func (d *Dispatcher) registerCommon() {
	classes := []object.Class{
		object.ClassPlugIn,
		object.ClassDevice,
		object.ClassStream,
		object.ClassClock,
		object.ClassControl,
	}

	for _, class := range classes {
		d.register(class, SelectorBaseClass, handler{
			size: sizeOf(SizeUint32),
			get: func(c call, w *writer) {
				w.Uint32(baseClassCode(c.obj))
			},
		})
		d.register(class, SelectorClass, handler{
			size: sizeOf(SizeUint32),
			get: func(c call, w *writer) {
				w.Uint32(classCode(c.obj))
			},
		})
		d.register(class, SelectorOwner, handler{
			size: sizeOf(SizeID),
			get: func(c call, w *writer) {
				w.ID(c.obj.Owner)
			},
		})
		d.register(class, SelectorOwnedObjects, handler{
			size: func(c call) int {
				return len(c.graph().Children(c.obj.ID, c.addr.Scope)) * SizeID
			},
			get: func(c call, w *writer) {
				w.IDs(c.graph().Children(c.obj.ID, c.addr.Scope))
			},
		})
	}
}

func sizeOf(n int) func(call) int {
	return func(call) int { return n }
}

func stringSize(f func(call) string) func(call) int {
	return func(c call) int { return len(f(c)) }
}

func stringGet(f func(call) string) func(call, *writer) {
	return func(c call, w *writer) { w.String(f(c)) }
}
