package object

import "fmt"

// ID identifies one object in the driver's hierarchy. IDs are assigned
// once at initialization and are stable for the lifetime of the process.
type ID uint32

// Unknown is never assigned to a real object.
const Unknown ID = 0

// Class tags the kind of object an ID refers to.
type Class uint8

const (
	ClassPlugIn Class = iota + 1
	ClassDevice
	ClassStream
	ClassClock
	ClassControl
)

func (c Class) String() string {
	switch c {
	case ClassPlugIn:
		return "plugin"
	case ClassDevice:
		return "device"
	case ClassStream:
		return "stream"
	case ClassClock:
		return "clock"
	case ClassControl:
		return "control"
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// Scope is the directional qualifier attached to objects and to
// property queries.
type Scope uint8

const (
	ScopeGlobal Scope = iota
	ScopeInput
	ScopeOutput
)

func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeInput:
		return "input"
	case ScopeOutput:
		return "output"
	}
	return fmt.Sprintf("scope(%d)", uint8(s))
}

// ControlKind distinguishes the control objects. Zero for non-controls.
type ControlKind uint8

const (
	ControlNone ControlKind = iota
	ControlVolume
	ControlMute
	ControlDataSource
)

func (k ControlKind) String() string {
	switch k {
	case ControlNone:
		return "none"
	case ControlVolume:
		return "volume"
	case ControlMute:
		return "mute"
	case ControlDataSource:
		return "data source"
	}
	return fmt.Sprintf("control(%d)", uint8(k))
}

// Info is the immutable description of one object in the graph.
type Info struct {
	ID    ID
	Class Class
	Scope Scope
	Kind  ControlKind
	Owner ID
}
