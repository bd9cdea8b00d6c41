package audio

// ring is a fixed frame buffer addressed by absolute frame position.
// Capacity is a power of two so the slot index reduces to a mask; a
// copy that crosses the end splits into two parts.
type ring struct {
	data     []float32
	mask     int64
	channels int
}

func newRing(frames, channels int) *ring {
	return &ring{
		data:     make([]float32, frames*channels),
		mask:     int64(frames - 1),
		channels: channels,
	}
}

func (r *ring) writeAt(pos int64, src []float32) {
	slot := int(pos&r.mask) * r.channels
	n := copy(r.data[slot:], src)
	if n < len(src) {
		copy(r.data, src[n:])
	}
}

func (r *ring) readAt(pos int64, dst []float32) {
	slot := int(pos&r.mask) * r.channels
	n := copy(dst, r.data[slot:])
	if n < len(dst) {
		copy(dst[n:], r.data)
	}
}

func (r *ring) zero() {
	clear(r.data)
}
