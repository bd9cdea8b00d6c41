package property

import (
	"encoding/binary"
	"math"

	"github.com/hollowaudio/vloop-go/object"
)

// Property values cross the host boundary as little-endian bytes.
// Fixed-width sizes, in bytes.
const (
	SizeUint32  = 4
	SizeFloat32 = 4
	SizeFloat64 = 8
	SizeID      = 4
	SizeRange   = 16 // two float64: minimum, maximum
)

// writer fills a caller-supplied buffer. Writes are whole-value: a value
// that does not fit entirely is dropped, so list results truncate at
// item granularity, matching the "fetch as many items as fit" host
// convention.
type writer struct {
	buf []byte
	n   int
}

func newWriter(buf []byte) *writer {
	return &writer{buf: buf}
}

func (w *writer) Len() int { return w.n }

func (w *writer) room(size int) bool {
	return w.n+size <= len(w.buf)
}

func (w *writer) Uint32(v uint32) {
	if !w.room(SizeUint32) {
		return
	}
	binary.LittleEndian.PutUint32(w.buf[w.n:], v)
	w.n += SizeUint32
}

func (w *writer) Float32(v float32) {
	w.Uint32(math.Float32bits(v))
}

func (w *writer) Float64(v float64) {
	if !w.room(SizeFloat64) {
		return
	}
	binary.LittleEndian.PutUint64(w.buf[w.n:], math.Float64bits(v))
	w.n += SizeFloat64
}

func (w *writer) Bool(v bool) {
	if v {
		w.Uint32(1)
	} else {
		w.Uint32(0)
	}
}

func (w *writer) ID(id object.ID) {
	w.Uint32(uint32(id))
}

func (w *writer) IDs(ids []object.ID) {
	for _, id := range ids {
		w.ID(id)
	}
}

// Range writes a minimum/maximum pair.
func (w *writer) Range(lo, hi float64) {
	if !w.room(SizeRange) {
		return
	}
	w.Float64(lo)
	w.Float64(hi)
}

// String writes the raw UTF-8 bytes of s. Unlike the fixed-width
// values, a string that does not fit is written truncated; callers are
// expected to size the buffer with GetPropertyDataSize first.
func (w *writer) String(s string) {
	w.n += copy(w.buf[w.n:], s)
}

// Set payload decoding. Length checks happen in the dispatcher before
// these run.

func getUint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

func getFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func getFloat64(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// Encode helpers for building set payloads.

func EncodeUint32(v uint32) []byte {
	b := make([]byte, SizeUint32)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func EncodeFloat32(v float32) []byte {
	return EncodeUint32(math.Float32bits(v))
}

func EncodeFloat64(v float64) []byte {
	b := make([]byte, SizeFloat64)
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	return b
}

func EncodeBool(v bool) []byte {
	if v {
		return EncodeUint32(1)
	}
	return EncodeUint32(0)
}
