package vloop

import (
	"github.com/hollowaudio/vloop-go/object"
	"github.com/hollowaudio/vloop-go/property"
)

// The host's four-call property surface. Everything delegates to the
// dispatcher; this layer only adds metrics and mirrors control writes
// into the engine.

func (d *Driver) HasProperty(id object.ID, addr property.Address) bool {
	ok := d.dispatcher.Has(id, addr)
	d.metrics.PropertyQuery("has", property.StatusOK.String())
	return ok
}

func (d *Driver) IsPropertySettable(id object.ID, addr property.Address) (bool, error) {
	settable, err := d.dispatcher.IsSettable(id, addr)
	d.metrics.PropertyQuery("is_settable", property.StatusOf(err).String())
	return settable, err
}

func (d *Driver) GetPropertyDataSize(id object.ID, addr property.Address) (int, error) {
	size, err := d.dispatcher.Size(id, addr)
	d.metrics.PropertyQuery("size", property.StatusOf(err).String())
	return size, err
}

func (d *Driver) GetPropertyData(id object.ID, addr property.Address, buf []byte) (int, error) {
	n, err := d.dispatcher.Get(id, addr, buf)
	d.metrics.PropertyQuery("get", property.StatusOf(err).String())
	return n, err
}

func (d *Driver) SetPropertyData(id object.ID, addr property.Address, data []byte) error {
	err := d.dispatcher.Set(id, addr, data)
	d.metrics.PropertyQuery("set", property.StatusOf(err).String())
	if err == nil {
		d.syncControls()
	}
	return err
}
