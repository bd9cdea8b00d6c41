package property

import "github.com/hollowaudio/vloop-go/object"

func (d *Dispatcher) registerPlugIn() {
	d.register(object.ClassPlugIn, SelectorManufacturer, handler{
		size: stringSize(func(c call) string { return c.store().Config().Manufacturer }),
		get:  stringGet(func(c call) string { return c.store().Config().Manufacturer }),
	})
	d.register(object.ClassPlugIn, SelectorBundleID, handler{
		size: stringSize(func(c call) string { return c.store().Config().BundleID }),
		get:  stringGet(func(c call) string { return c.store().Config().BundleID }),
	})
}
