// Package property implements the driver's queryable attribute surface:
// the typed property store, the address space, and the dispatcher that
// routes host queries to per-class handlers.
package property

import (
	"fmt"

	"github.com/hollowaudio/vloop-go/object"
)

// Selector identifies one queryable attribute. The set is closed; the
// dispatcher rejects selectors it has no handler for.
type Selector uint32

const (
	SelectorBaseClass Selector = iota + 1
	SelectorClass
	SelectorOwner
	SelectorName
	SelectorManufacturer
	SelectorOwnedObjects
	SelectorControlList

	// plug-in
	SelectorBundleID

	// device
	SelectorDeviceUID
	SelectorModelUID
	SelectorTransportType
	SelectorClockDomain
	SelectorIsAlive
	SelectorIsRunning
	SelectorCanBeDefault
	SelectorCanBeDefaultSystem
	SelectorLatency
	SelectorSafetyOffset
	SelectorStreams
	SelectorNominalSampleRate
	SelectorAvailableSampleRates
	SelectorIsHidden
	SelectorZeroTimeStampPeriod
	SelectorPreferredStereoChannels
	SelectorPreferredChannelLayout

	// stream
	SelectorStreamIsActive
	SelectorStreamDirection
	SelectorTerminalType
	SelectorStartingChannel
	SelectorVirtualFormat
	SelectorPhysicalFormat
	SelectorAvailableFormats

	// control
	SelectorControlScalarValue
	SelectorControlDecibelValue
	SelectorControlDecibelRange
	SelectorControlBoolValue
	SelectorDataSourceValue
	SelectorDataSourceItems
	SelectorDataSourceNameForItem
)

func (s Selector) String() string {
	if name, ok := selectorNames[s]; ok {
		return name
	}
	return fmt.Sprintf("selector(%d)", uint32(s))
}

var selectorNames = map[Selector]string{
	SelectorBaseClass:               "base class",
	SelectorClass:                   "class",
	SelectorOwner:                   "owner",
	SelectorName:                    "name",
	SelectorManufacturer:            "manufacturer",
	SelectorOwnedObjects:            "owned objects",
	SelectorControlList:             "control list",
	SelectorBundleID:                "bundle id",
	SelectorDeviceUID:               "device uid",
	SelectorModelUID:                "model uid",
	SelectorTransportType:           "transport type",
	SelectorClockDomain:             "clock domain",
	SelectorIsAlive:                 "is alive",
	SelectorIsRunning:               "is running",
	SelectorCanBeDefault:            "can be default",
	SelectorCanBeDefaultSystem:      "can be default system",
	SelectorLatency:                 "latency",
	SelectorSafetyOffset:            "safety offset",
	SelectorStreams:                 "streams",
	SelectorNominalSampleRate:       "nominal sample rate",
	SelectorAvailableSampleRates:    "available sample rates",
	SelectorIsHidden:                "is hidden",
	SelectorZeroTimeStampPeriod:     "zero timestamp period",
	SelectorPreferredStereoChannels: "preferred stereo channels",
	SelectorPreferredChannelLayout:  "preferred channel layout",
	SelectorStreamIsActive:          "stream is active",
	SelectorStreamDirection:         "stream direction",
	SelectorTerminalType:            "terminal type",
	SelectorStartingChannel:         "starting channel",
	SelectorVirtualFormat:           "virtual format",
	SelectorPhysicalFormat:          "physical format",
	SelectorAvailableFormats:        "available formats",
	SelectorControlScalarValue:      "control scalar value",
	SelectorControlDecibelValue:     "control decibel value",
	SelectorControlDecibelRange:     "control decibel range",
	SelectorControlBoolValue:        "control bool value",
	SelectorDataSourceValue:         "data source value",
	SelectorDataSourceItems:         "data source items",
	SelectorDataSourceNameForItem:   "data source name for item",
}

// ElementMain is the only element the driver serves; per-channel
// elements are not modeled.
const ElementMain uint32 = 0

// Address identifies one attribute on one object.
type Address struct {
	Selector Selector
	Scope    object.Scope
	Element  uint32
}

func (a Address) String() string {
	return fmt.Sprintf("%s/%s/%d", a.Selector, a.Scope, a.Element)
}

// Global is shorthand for a main-element Global-scope address.
func Global(sel Selector) Address {
	return Address{Selector: sel, Scope: object.ScopeGlobal}
}

// Scoped is shorthand for a main-element address in the given scope.
func Scoped(sel Selector, scope object.Scope) Address {
	return Address{Selector: sel, Scope: scope}
}
