package property

import (
	"fmt"
	"log/slog"

	"github.com/hollowaudio/vloop-go/object"
)

// Hooks let the driver observe the control path. Both are optional and
// run synchronously on the control thread, never on an I/O callback.
type Hooks struct {
	// PropertiesChanged fires after a successful set, once per affected
	// object.
	PropertiesChanged func(id object.ID, addrs []Address)

	// SampleRateRequest fires when a client asks for a new nominal
	// sample rate. The rate is applied later through the two-phase
	// configuration-change handshake, not here.
	SampleRateRequest func(rate float64)
}

// Dispatcher routes a (object ID, address) pair to the handler for that
// object's class. It is the single entry point behind the host's
// has/size/get/set surface.
type Dispatcher struct {
	graph    *object.Graph
	store    *Store
	hooks    Hooks
	logger   *slog.Logger
	handlers map[handlerKey]*handler
}

type handlerKey struct {
	class object.Class
	sel   Selector
}

// call carries one resolved query through a handler.
type call struct {
	d    *Dispatcher
	obj  object.Info
	addr Address
}

func (c call) graph() *object.Graph { return c.d.graph }
func (c call) store() *Store        { return c.d.store }

// handler implements one (class, selector) cell of the dispatch table.
//
// size must be a pure function of the call; a scope that carries no data
// for this selector reports size 0, which is a legitimate result, not an
// error. set returns the addresses whose values changed.
type handler struct {
	// applies narrows a handler to a subset of a class, e.g. volume
	// selectors to volume controls. nil means the whole class.
	applies func(object.Info) bool

	settable bool

	size func(call) int
	get  func(call, *writer)
	set  func(call, []byte) ([]Address, error)

	// setSize is the exact payload length set expects.
	setSize int
}

func NewDispatcher(g *object.Graph, s *Store, hooks Hooks, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		graph:    g,
		store:    s,
		hooks:    hooks,
		logger:   logger.With(slog.String("component", "dispatcher")),
		handlers: make(map[handlerKey]*handler),
	}
	d.registerCommon()
	d.registerPlugIn()
	d.registerDevice()
	d.registerStream()
	d.registerClock()
	d.registerControl()
	return d
}

func (d *Dispatcher) register(class object.Class, sel Selector, h handler) {
	d.handlers[handlerKey{class, sel}] = &h
}

// lookup resolves the target object and its handler. Unknown objects and
// unknown (class, selector) pairs are the two failure modes; everything
// past this point is a valid query.
func (d *Dispatcher) lookup(id object.ID, addr Address) (call, *handler, error) {
	info, ok := d.graph.Info(id)
	if !ok {
		return call{}, nil, fmt.Errorf("%w: object %d", ErrUnknownObject, id)
	}
	h, ok := d.handlers[handlerKey{info.Class, addr.Selector}]
	if !ok || (h.applies != nil && !h.applies(info)) {
		return call{}, nil, fmt.Errorf("%w: %s on %s %d", ErrUnsupportedProperty, addr, info.Class, id)
	}
	if addr.Element != ElementMain && addr.Selector != SelectorDataSourceNameForItem {
		return call{}, nil, fmt.Errorf("%w: element %d", ErrUnsupportedProperty, addr.Element)
	}
	return call{d: d, obj: info, addr: addr}, h, nil
}

// Has reports whether the (object, address) pair is served at all. It
// never fails: unknown objects and unsupported selectors are both
// simply "no".
func (d *Dispatcher) Has(id object.ID, addr Address) bool {
	_, _, err := d.lookup(id, addr)
	return err == nil
}

// IsSettable distinguishes read-only from read-write attributes.
func (d *Dispatcher) IsSettable(id object.ID, addr Address) (bool, error) {
	_, h, err := d.lookup(id, addr)
	if err != nil {
		return false, err
	}
	return h.settable, nil
}

// Size returns the byte size of the property's value. The size is
// derived without performing the read; callers use it to allocate the
// buffer they pass to Get.
func (d *Dispatcher) Size(id object.ID, addr Address) (int, error) {
	c, h, err := d.lookup(id, addr)
	if err != nil {
		return 0, err
	}
	return h.size(c), nil
}

// Get writes the current value into buf, truncated to len(buf), and
// returns the number of bytes written.
func (d *Dispatcher) Get(id object.ID, addr Address, buf []byte) (int, error) {
	c, h, err := d.lookup(id, addr)
	if err != nil {
		return 0, err
	}
	w := newWriter(buf)
	h.get(c, w)
	return w.Len(), nil
}

// Set validates settability and payload length, applies the value, and
// fires the change hook for every address the write affected.
func (d *Dispatcher) Set(id object.ID, addr Address, data []byte) error {
	c, h, err := d.lookup(id, addr)
	if err != nil {
		return err
	}
	if !h.settable {
		return fmt.Errorf("%w: %s", ErrNotSettable, addr)
	}
	if len(data) != h.setSize {
		return fmt.Errorf("%w: %s wants %d bytes, got %d", ErrBadPropertySize, addr, h.setSize, len(data))
	}

	changed, err := h.set(c, data)
	if err != nil {
		return err
	}
	if len(changed) > 0 {
		d.logger.Debug("property changed",
			slog.Uint64("object", uint64(id)),
			slog.String("address", addr.String()),
		)
		d.notifyChanged(id, changed)
	}
	return nil
}

func (d *Dispatcher) notifyChanged(id object.ID, addrs []Address) {
	if d.hooks.PropertiesChanged != nil {
		d.hooks.PropertiesChanged(id, addrs)
	}
}

// NotifyRunning lets the driver surface I/O start/stop as an IsRunning
// change through the same hook clients already watch.
func (d *Dispatcher) NotifyRunning() {
	d.notifyChanged(d.graph.Device(), []Address{Global(SelectorIsRunning)})
}

// NotifyRateChanged fires after a committed sample-rate change.
func (d *Dispatcher) NotifyRateChanged() {
	d.notifyChanged(d.graph.Device(), []Address{
		Global(SelectorNominalSampleRate),
	})
}
