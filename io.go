package vloop

import (
	"errors"
	"fmt"

	"github.com/hollowaudio/vloop-go/audio"
	"github.com/hollowaudio/vloop-go/property"
)

// Op names one IO operation inside a cycle.
type Op uint32

const (
	// OpReadInput captures loopback audio from the ring.
	OpReadInput Op = iota + 1
	// OpWriteMix publishes the mixed output into the ring.
	OpWriteMix
)

func (o Op) String() string {
	switch o {
	case OpReadInput:
		return "read_input"
	case OpWriteMix:
		return "write_mix"
	}
	return fmt.Sprintf("op(%d)", uint32(o))
}

// Cycle carries the host timing for one IO cycle.
type Cycle struct {
	// SampleTime is the absolute frame position the operation starts
	// at.
	SampleTime int64
	// HostTime is the host tick the cycle is scheduled for. Zero
	// means unscheduled; overload detection is skipped.
	HostTime uint64
	// Frames is the cycle length.
	Frames int
}

// GetZeroTimeStamp returns the current ring-boundary anchor of the
// device clock. Only valid while IO is running.
func (d *Driver) GetZeroTimeStamp() (sampleTime float64, hostTime uint64, seed uint64, err error) {
	if !d.clock.Armed() {
		return 0, 0, 0, fmt.Errorf("%w: device is not running", property.ErrStreamNotReady)
	}
	sampleTime, hostTime, seed = d.clock.ZeroTimeStamp()
	return sampleTime, hostTime, seed, nil
}

// WillDoIOOperation reports whether the device participates in the
// given operation, and whether it does so in place.
func (d *Driver) WillDoIOOperation(op Op) (willDo, inPlace bool) {
	switch op {
	case OpReadInput:
		return d.opts.hasInput, true
	case OpWriteMix:
		return d.opts.hasOutput, true
	}
	return false, false
}

// BeginIOOperation opens one cycle. The running check happens here so
// a stop between cycles is seen before any data moves.
func (d *Driver) BeginIOOperation(clientID uint32, cycle Cycle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.clients[clientID]
	if !ok {
		return fmt.Errorf("%w: io from unknown client %d", property.ErrInvalidClient, clientID)
	}
	if !e.running {
		return fmt.Errorf("%w: io from client %d without a start", property.ErrStreamNotReady, clientID)
	}
	return nil
}

// DoIOOperation moves one cycle of interleaved samples. Reads always
// succeed, substituting silence when nothing is playing or the stream
// reconfigures; writes fail when the stream is down or the cycle
// deadline already passed.
func (d *Driver) DoIOOperation(clientID uint32, op Op, cycle Cycle, buf []float32) error {
	switch op {
	case OpReadInput:
		d.engine.ReadInput(cycle.SampleTime, buf)
		d.metrics.IOCycle(op.String())
		return nil

	case OpWriteMix:
		if cycle.HostTime != 0 && d.clock.Armed() {
			deadline := d.clock.SampleTime(cycle.HostTime) + float64(cycle.Frames+int(d.opts.safetyOffset))
			if d.clock.SampleTime(d.clock.HostTime()) > deadline {
				d.metrics.Overload()
				d.logger.Warn("write cycle dropped, deadline passed")
				return fmt.Errorf("%w: cycle at frame %d", property.ErrOverload, cycle.SampleTime)
			}
		}
		if err := d.engine.WriteMix(cycle.SampleTime, buf); err != nil {
			if errors.Is(err, audio.ErrNotReady) {
				return fmt.Errorf("%w: %d", property.ErrStreamNotReady, clientID)
			}
			return err
		}
		d.markTalker(clientID)
		d.metrics.IOCycle(op.String())
		return nil
	}
	return fmt.Errorf("%w: io operation %d", property.ErrNotSupported, uint32(op))
}

// EndIOOperation closes one cycle.
func (d *Driver) EndIOOperation(clientID uint32, cycle Cycle) error {
	return nil
}
