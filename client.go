package vloop

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/hollowaudio/vloop-go/property"
)

// Client identifies one host process attached to the device.
type Client struct {
	ID        uint32
	ProcessID int
	BundleID  string
}

type clientEntry struct {
	client  Client
	running bool
	talker  atomic.Bool
	anchor  int64
}

// ClientState is the registry's view of one client.
type ClientState struct {
	Client  Client
	Running bool
	// Talker is set once the client has written into the mix.
	Talker bool
	// AnchorFrame is the device frame position the client's IO
	// started at.
	AnchorFrame int64
}

// AddDeviceClient registers a client. Re-adding an existing client
// updates its identity and keeps its IO state.
func (d *Driver) AddDeviceClient(c Client) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.clients[c.ID]; ok {
		e.client = c
		return
	}
	d.clients[c.ID] = &clientEntry{client: c}
	d.logger.Debug("client added",
		slog.Int("client", int(c.ID)),
		slog.String("bundle", c.BundleID),
	)
}

// RemoveDeviceClient unregisters a client. A client that still has IO
// started is stopped first. Removing an unknown client is a no-op.
func (d *Driver) RemoveDeviceClient(id uint32) {
	d.mu.Lock()
	e, ok := d.clients[id]
	if !ok {
		d.mu.Unlock()
		return
	}
	var stopped bool
	if e.running {
		stopped = d.stopClientLocked(e)
	}
	delete(d.clients, id)
	d.mu.Unlock()

	d.logger.Debug("client removed", slog.Int("client", int(id)))
	if stopped {
		d.dispatcher.NotifyRunning()
	}
}

// Clients returns a snapshot of the registered clients.
func (d *Driver) Clients() []Client {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Client, 0, len(d.clients))
	for _, e := range d.clients {
		out = append(out, e.client)
	}
	return out
}

// StartIO starts the device on behalf of one client. The first start
// arms the clock and allocates the ring; further starts only count.
func (d *Driver) StartIO(clientID uint32) error {
	d.mu.Lock()
	e, ok := d.clients[clientID]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("%w: start from unknown client %d", property.ErrInvalidClient, clientID)
	}
	if e.running {
		d.mu.Unlock()
		return nil
	}
	e.running = true
	e.talker.Store(false)
	d.running++
	d.metrics.SetRunningClients(d.running)
	if d.running > 1 {
		// joiners anchor at the device's current frame position
		e.anchor = int64(d.clock.SampleTime(d.clock.HostTime()))
		d.mu.Unlock()
		return nil
	}

	e.anchor = 0
	d.clock.Arm()
	d.engine.Start()
	d.store.SetRunning(true)
	d.mu.Unlock()

	d.logger.Info("io started", slog.Int("client", int(clientID)))
	d.dispatcher.NotifyRunning()
	return nil
}

// StopIO stops the device on behalf of one client. The last stop tears
// the stream down.
func (d *Driver) StopIO(clientID uint32) error {
	d.mu.Lock()
	e, ok := d.clients[clientID]
	if !ok || !e.running {
		d.mu.Unlock()
		return fmt.Errorf("%w: stop from client %d without a start", property.ErrInvalidClient, clientID)
	}
	stopped := d.stopClientLocked(e)
	d.mu.Unlock()

	if stopped {
		d.dispatcher.NotifyRunning()
	}
	return nil
}

// stopClientLocked decrements the running count and reports whether
// this was the last client, tearing the stream down if so.
func (d *Driver) stopClientLocked(e *clientEntry) bool {
	e.running = false
	d.running--
	d.metrics.SetRunningClients(d.running)
	if d.running > 0 {
		return false
	}

	d.engine.Stop()
	d.clock.Disarm()
	d.store.SetRunning(false)
	d.logger.Info("io stopped", slog.Int("client", int(e.client.ID)))
	return true
}

// markTalker flags a client after its first mix write.
func (d *Driver) markTalker(clientID uint32) {
	d.mu.Lock()
	e, ok := d.clients[clientID]
	d.mu.Unlock()
	if ok {
		e.talker.Store(true)
	}
}

// ClientInfo returns the registry's view of one client.
func (d *Driver) ClientInfo(id uint32) (ClientState, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.clients[id]
	if !ok {
		return ClientState{}, false
	}
	return ClientState{
		Client:      e.client,
		Running:     e.running,
		Talker:      e.talker.Load(),
		AnchorFrame: e.anchor,
	}, true
}

// Running reports whether any client has IO started.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running > 0
}
