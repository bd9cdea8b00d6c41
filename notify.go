package vloop

import (
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/hollowaudio/vloop-go/object"
	"github.com/hollowaudio/vloop-go/property"
)

func newChangeID() string {
	id, _ := gonanoid.New()
	return id
}

// HostNotifier receives asynchronous driver-to-host callbacks. All
// methods may be called from the control path and must not call back
// into the driver synchronously, except PerformConfigurationChange and
// AbortConfigurationChange which the host is expected to call in
// response to a change request.
type HostNotifier interface {
	// PropertiesChanged reports that the listed addresses on one
	// object changed value.
	PropertiesChanged(id object.ID, addrs []property.Address)

	// RequestConfigurationChange asks the host to schedule a
	// configuration change. Returning false means no host owns the
	// device and the driver performs the change itself.
	RequestConfigurationChange(changeID string, rate float64) bool
}

// NopNotifier is the notifier used when no host is attached.
// Configuration changes are performed immediately.
type NopNotifier struct{}

func (NopNotifier) PropertiesChanged(object.ID, []property.Address) {}

func (NopNotifier) RequestConfigurationChange(string, float64) bool {
	return false
}

// ChangeNotice is one recorded PropertiesChanged callback.
type ChangeNotice struct {
	Object    object.ID
	Addresses []property.Address
}

// ChangeRequest is one recorded configuration change request.
type ChangeRequest struct {
	ChangeID string
	Rate     float64
}

// TestNotifier records every callback, for tests.
type TestNotifier struct {
	mu       sync.Mutex
	Notices  []ChangeNotice
	Requests []ChangeRequest

	// Own makes the notifier take ownership of change requests, so
	// the driver waits for an explicit Perform or Abort.
	Own bool
}

func (t *TestNotifier) PropertiesChanged(id object.ID, addrs []property.Address) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Notices = append(t.Notices, ChangeNotice{Object: id, Addresses: addrs})
}

func (t *TestNotifier) RequestConfigurationChange(changeID string, rate float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Requests = append(t.Requests, ChangeRequest{ChangeID: changeID, Rate: rate})
	return t.Own
}

// NoticesFor returns the recorded notices touching the given object.
func (t *TestNotifier) NoticesFor(id object.ID) []ChangeNotice {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []ChangeNotice
	for _, n := range t.Notices {
		if n.Object == id {
			out = append(out, n)
		}
	}
	return out
}

var _ HostNotifier = &TestNotifier{}
var _ HostNotifier = NopNotifier{}
