package property

import (
	"fmt"

	"github.com/hollowaudio/vloop-go/object"
)

func isVolume(info object.Info) bool     { return info.Kind == object.ControlVolume }
func isMute(info object.Info) bool       { return info.Kind == object.ControlMute }
func isDataSource(info object.Info) bool { return info.Kind == object.ControlDataSource }

func (d *Dispatcher) registerControl() {
	d.register(object.ClassControl, SelectorControlScalarValue, handler{
		applies:  isVolume,
		settable: true,
		setSize:  SizeFloat32,
		size:     sizeOf(SizeFloat32),
		get: func(c call, w *writer) {
			v, _ := c.store().Volume(c.obj.ID)
			w.Float32(VolumeToScalar(v))
		},
		set: func(c call, data []byte) ([]Address, error) {
			return setVolume(c, VolumeFromScalar(getFloat32(data)))
		},
	})
	d.register(object.ClassControl, SelectorControlDecibelValue, handler{
		applies:  isVolume,
		settable: true,
		setSize:  SizeFloat32,
		size:     sizeOf(SizeFloat32),
		get: func(c call, w *writer) {
			v, _ := c.store().Volume(c.obj.ID)
			w.Float32(VolumeToDecibels(v))
		},
		set: func(c call, data []byte) ([]Address, error) {
			return setVolume(c, VolumeFromDecibels(getFloat32(data)))
		},
	})
	d.register(object.ClassControl, SelectorControlDecibelRange, handler{
		applies: isVolume,
		size:    sizeOf(SizeRange),
		get: func(c call, w *writer) {
			w.Range(VolumeMinDB, VolumeMaxDB)
		},
	})

	d.register(object.ClassControl, SelectorControlBoolValue, handler{
		applies:  isMute,
		settable: true,
		setSize:  SizeUint32,
		size:     sizeOf(SizeUint32),
		get: func(c call, w *writer) {
			v, _ := c.store().Mute(c.obj.ID)
			w.Bool(v)
		},
		set: func(c call, data []byte) ([]Address, error) {
			if c.store().SetMute(c.obj.ID, getUint32(data) != 0) {
				return []Address{Global(SelectorControlBoolValue)}, nil
			}
			return nil, nil
		},
	})

	d.register(object.ClassControl, SelectorDataSourceValue, handler{
		applies:  isDataSource,
		settable: true,
		setSize:  SizeUint32,
		size:     sizeOf(SizeUint32),
		get: func(c call, w *writer) {
			v, _ := c.store().DataSource(c.obj.ID)
			w.Uint32(v)
		},
		set: func(c call, data []byte) ([]Address, error) {
			if err := c.store().SetDataSource(c.obj.ID, getUint32(data)); err != nil {
				return nil, err
			}
			return []Address{Global(SelectorDataSourceValue)}, nil
		},
	})
	d.register(object.ClassControl, SelectorDataSourceItems, handler{
		applies: isDataSource,
		size: func(c call) int {
			return len(c.store().Config().DataSourceItems) * SizeUint32
		},
		get: func(c call, w *writer) {
			for i := range c.store().Config().DataSourceItems {
				w.Uint32(uint32(i))
			}
		},
	})
	// The element of the address selects the item whose name is wanted.
	d.register(object.ClassControl, SelectorDataSourceNameForItem, handler{
		applies: isDataSource,
		size: func(c call) int {
			name, _ := dataSourceName(c)
			return len(name)
		},
		get: func(c call, w *writer) {
			name, _ := dataSourceName(c)
			w.String(name)
		},
	})
}

func dataSourceName(c call) (string, error) {
	items := c.store().Config().DataSourceItems
	if int(c.addr.Element) >= len(items) {
		return "", fmt.Errorf("%w: data source item %d", ErrIllegalOperation, c.addr.Element)
	}
	return items[c.addr.Element], nil
}

// setVolume reports both the scalar and decibel views as changed: they
// are two projections of the same state.
func setVolume(c call, v float32) ([]Address, error) {
	if !c.store().SetVolume(c.obj.ID, v) {
		return nil, nil
	}
	return []Address{
		Global(SelectorControlScalarValue),
		Global(SelectorControlDecibelValue),
	}, nil
}
