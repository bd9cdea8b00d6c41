package audio

import (
	"math"
	"sync"
	"time"
)

// Clock generates the device zero timestamps. Sample position zero is
// anchored to host time at Arm; each reported timestamp advances one
// ring length at a time as host time crosses the next wrap, so the
// (sample, host) pair always sits on a ring boundary.
type Clock struct {
	ringFrames int64
	now        func() uint64

	mu            sync.Mutex
	ticksPerFrame float64
	anchor        uint64
	seed          uint64
	armed         bool
}

// NewClock builds a clock for the given rate and ring length. The now
// func supplies host time in nanosecond ticks; nil means wall clock.
func NewClock(rate float64, ringFrames int, now func() uint64) *Clock {
	if now == nil {
		now = func() uint64 { return uint64(time.Now().UnixNano()) }
	}
	return &Clock{
		ringFrames:    int64(ringFrames),
		now:           now,
		ticksPerFrame: 1e9 / rate,
	}
}

// Arm anchors sample position zero at the current host time and starts
// a fresh timeline.
func (c *Clock) Arm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anchor = c.now()
	c.seed++
	c.armed = true
}

func (c *Clock) Disarm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armed = false
}

func (c *Clock) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

// SetRate re-anchors the timeline at a new sample rate. The seed bump
// invalidates timestamp pairs cached under the old rate.
func (c *Clock) SetRate(rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticksPerFrame = 1e9 / rate
	c.anchor = c.now()
	c.seed++
}

// ZeroTimeStamp returns the most recent ring-boundary (sample, host)
// pair and the seed identifying the current timeline.
func (c *Clock) ZeroTimeStamp() (sampleTime float64, hostTime uint64, seed uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ticksPerRing := float64(c.ringFrames) * c.ticksPerFrame
	periods := math.Floor(float64(c.now()-c.anchor) / ticksPerRing)
	return periods * float64(c.ringFrames), c.anchor + uint64(periods*ticksPerRing), c.seed
}

// SampleTime converts a host time on the current timeline to an
// absolute sample position.
func (c *Clock) SampleTime(host uint64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if host < c.anchor {
		return 0
	}
	return float64(host-c.anchor) / c.ticksPerFrame
}

// HostTime returns the current host time in ticks.
func (c *Clock) HostTime() uint64 {
	return c.now()
}
