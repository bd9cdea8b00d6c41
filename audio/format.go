package audio

// Format describes the uncompressed interleaved layout moving through
// the ring. Samples are 32-bit floats.
type Format struct {
	SampleRate float64
	Channels   int
}

func (f Format) BytesPerFrame() int {
	return f.Channels * 4
}

func (f Format) Valid() bool {
	return f.SampleRate > 0 && f.Channels > 0
}
