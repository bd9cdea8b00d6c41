package vloop

import (
	"github.com/hollowaudio/vloop-go/object"
	"github.com/hollowaudio/vloop-go/property"
)

// DriverInterface is the flat function table a plug-in host binds to.
// Every field is populated by NewDriverInterface; there is no logic
// here beyond translation, hosts that want a richer surface use the
// Driver directly.
type DriverInterface struct {
	Initialize    func() error
	CreateDevice  func() error
	DestroyDevice func() error

	AddDeviceClient    func(c Client)
	RemoveDeviceClient func(id uint32)

	PerformConfigurationChange func(changeID string) error
	AbortConfigurationChange   func(changeID string) error

	HasProperty         func(id object.ID, addr property.Address) bool
	IsPropertySettable  func(id object.ID, addr property.Address) (bool, error)
	GetPropertyDataSize func(id object.ID, addr property.Address) (int, error)
	GetPropertyData     func(id object.ID, addr property.Address, buf []byte) (int, error)
	SetPropertyData     func(id object.ID, addr property.Address, data []byte) error

	StartIO          func(clientID uint32) error
	StopIO           func(clientID uint32) error
	GetZeroTimeStamp func() (sampleTime float64, hostTime uint64, seed uint64, err error)

	WillDoIOOperation func(op Op) (willDo, inPlace bool)
	BeginIOOperation  func(clientID uint32, cycle Cycle) error
	DoIOOperation     func(clientID uint32, op Op, cycle Cycle, buf []float32) error
	EndIOOperation    func(clientID uint32, cycle Cycle) error
}

// NewDriverInterface binds the full host table to one driver. The
// device is fixed at construction, so CreateDevice and DestroyDevice
// are refused.
func NewDriverInterface(d *Driver) *DriverInterface {
	return &DriverInterface{
		Initialize: d.Initialize,
		CreateDevice: func() error {
			return property.ErrNotSupported
		},
		DestroyDevice: func() error {
			return property.ErrNotSupported
		},

		AddDeviceClient:    d.AddDeviceClient,
		RemoveDeviceClient: d.RemoveDeviceClient,

		PerformConfigurationChange: d.PerformConfigurationChange,
		AbortConfigurationChange:   d.AbortConfigurationChange,

		HasProperty:         d.HasProperty,
		IsPropertySettable:  d.IsPropertySettable,
		GetPropertyDataSize: d.GetPropertyDataSize,
		GetPropertyData:     d.GetPropertyData,
		SetPropertyData:     d.SetPropertyData,

		StartIO:          d.StartIO,
		StopIO:           d.StopIO,
		GetZeroTimeStamp: d.GetZeroTimeStamp,

		WillDoIOOperation: d.WillDoIOOperation,
		BeginIOOperation:  d.BeginIOOperation,
		DoIOOperation:     d.DoIOOperation,
		EndIOOperation:    d.EndIOOperation,
	}
}
