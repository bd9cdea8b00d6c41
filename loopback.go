package vloop

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/smallnest/ringbuffer"

	"github.com/hollowaudio/vloop-go/property"
)

// The loopback adapters give applications plain io semantics over the
// device: a StreamWriter is a talker playing into the output, a
// StreamReader captures from the input. Samples are interleaved
// little-endian float32, matching the wire layout of the property
// surface.

const bytesPerSample = 4

// NewStreamWriter returns a writer that plays PCM into the device on
// behalf of the given client. Bytes are staged until a full cycle is
// available, then pushed through the regular IO path.
func (d *Driver) NewStreamWriter(clientID uint32, cycleFrames int) (*StreamWriter, error) {
	if err := d.checkAdapter(clientID, cycleFrames); err != nil {
		return nil, err
	}
	cycleBytes := cycleFrames * d.opts.channels * bytesPerSample
	return &StreamWriter{
		d:           d,
		clientID:    clientID,
		cycleFrames: cycleFrames,
		stage:       ringbuffer.New(4 * cycleBytes),
		chunk:       make([]byte, cycleBytes),
	}, nil
}

// NewStreamReader returns a reader capturing the loopback input on
// behalf of the given client, one cycle at a time.
func (d *Driver) NewStreamReader(clientID uint32, cycleFrames int) (*StreamReader, error) {
	if err := d.checkAdapter(clientID, cycleFrames); err != nil {
		return nil, err
	}
	cycleBytes := cycleFrames * d.opts.channels * bytesPerSample
	return &StreamReader{
		d:           d,
		clientID:    clientID,
		cycleFrames: cycleFrames,
		stage:       ringbuffer.New(4 * cycleBytes),
		chunk:       make([]byte, cycleBytes),
	}, nil
}

func (d *Driver) checkAdapter(clientID uint32, cycleFrames int) error {
	if cycleFrames <= 0 {
		return fmt.Errorf("cycle frames must be positive, got %d", cycleFrames)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.clients[clientID]; !ok {
		return fmt.Errorf("%w: client %d is not registered", property.ErrInvalidClient, clientID)
	}
	return nil
}

// StreamWriter stages PCM bytes and plays them into the device cycle
// by cycle. Safe for one goroutine.
type StreamWriter struct {
	d           *Driver
	clientID    uint32
	cycleFrames int
	stage       *ringbuffer.RingBuffer
	chunk       []byte
	pos         int64
	mu          sync.Mutex
}

func (w *StreamWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var written int
	for len(p) > 0 {
		n := min(len(p), w.stage.Free())
		if n > 0 {
			if _, err := w.stage.Write(p[:n]); err != nil {
				return written, err
			}
			written += n
			p = p[n:]
		}
		for w.stage.Length() >= len(w.chunk) {
			if err := w.pump(len(w.chunk)); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Flush zero-pads the staged remainder to a full cycle and plays it.
func (w *StreamWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := w.stage.Length()
	if n == 0 {
		return nil
	}
	return w.pump(n)
}

// pump drains n staged bytes (at most one cycle) into the ring.
func (w *StreamWriter) pump(n int) error {
	clear(w.chunk)
	if _, err := w.stage.Read(w.chunk[:n]); err != nil {
		return err
	}
	cycle := Cycle{SampleTime: w.pos, Frames: w.cycleFrames}
	if err := w.d.BeginIOOperation(w.clientID, cycle); err != nil {
		return err
	}
	samples := bytesToSamples(w.chunk)
	if err := w.d.DoIOOperation(w.clientID, OpWriteMix, cycle, samples); err != nil {
		return err
	}
	w.pos += int64(w.cycleFrames)
	return w.d.EndIOOperation(w.clientID, cycle)
}

// StreamReader captures the loopback input cycle by cycle. When no
// talker is active it reads silence, never blocking and never
// returning an error for an empty device. Safe for one goroutine.
type StreamReader struct {
	d           *Driver
	clientID    uint32
	cycleFrames int
	stage       *ringbuffer.RingBuffer
	chunk       []byte
	pos         int64
	mu          sync.Mutex
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stage.Length() == 0 {
		cycle := Cycle{SampleTime: r.pos, Frames: r.cycleFrames}
		if err := r.d.BeginIOOperation(r.clientID, cycle); err != nil {
			return 0, err
		}
		samples := make([]float32, len(r.chunk)/bytesPerSample)
		if err := r.d.DoIOOperation(r.clientID, OpReadInput, cycle, samples); err != nil {
			return 0, err
		}
		if err := r.d.EndIOOperation(r.clientID, cycle); err != nil {
			return 0, err
		}
		samplesToBytes(samples, r.chunk)
		if _, err := r.stage.Write(r.chunk); err != nil {
			return 0, err
		}
		r.pos += int64(r.cycleFrames)
	}

	n := min(len(p), r.stage.Length())
	if n == 0 {
		return 0, nil
	}
	return r.stage.Read(p[:n])
}

func bytesToSamples(b []byte) []float32 {
	out := make([]float32, len(b)/bytesPerSample)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*bytesPerSample:]))
	}
	return out
}

func samplesToBytes(s []float32, b []byte) {
	for i, v := range s {
		binary.LittleEndian.PutUint32(b[i*bytesPerSample:], math.Float32bits(v))
	}
}
