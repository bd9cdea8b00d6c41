package audio

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testEngine(t *testing.T, ringFrames, channels int) *Engine {
	t.Helper()
	e, err := NewEngine(Format{SampleRate: 48000, Channels: channels}, ringFrames, WithEngineLogger(testLogger()))
	require.NoError(t, err)
	return e
}

func ramp(frames, channels int, base float32) []float32 {
	out := make([]float32, frames*channels)
	for i := range out {
		out[i] = base + float32(i)
	}
	return out
}

func TestEngineRejectsBadConfig(t *testing.T) {
	_, err := NewEngine(Format{SampleRate: 48000, Channels: 2}, 1000)
	require.Error(t, err, "ring length must be a power of two")

	_, err = NewEngine(Format{Channels: 2}, 1024)
	require.Error(t, err)
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	e := testEngine(t, 1024, 2)
	e.Start()

	src := ramp(256, 2, 1)
	require.NoError(t, e.WriteMix(0, src))

	dst := make([]float32, len(src))
	e.ReadInput(0, dst)
	require.Equal(t, src, dst)
}

func TestRingWrapSplitsCopy(t *testing.T) {
	e := testEngine(t, 8, 1)
	e.Start()

	// frames 6..10 wrap past the end of an 8-frame ring
	src := []float32{1, 2, 3, 4}
	require.NoError(t, e.WriteMix(6, src))

	dst := make([]float32, 4)
	e.ReadInput(6, dst)
	require.Equal(t, src, dst)
}

func TestLaggingReaderSeesOldestAvailable(t *testing.T) {
	e := testEngine(t, 8, 1)
	e.Start()

	// two full rings: the second write overwrites the first in place
	require.NoError(t, e.WriteMix(0, ramp(8, 1, 0)))
	require.NoError(t, e.WriteMix(16, ramp(8, 1, 16)))

	// a reader more than one capacity behind gets whatever occupies
	// those ring slots now, not silence and not an error
	dst := make([]float32, 4)
	e.ReadInput(0, dst)
	require.Equal(t, []float32{16, 17, 18, 19}, dst)
}

func TestReadWithoutTalkerIsSilence(t *testing.T) {
	e := testEngine(t, 1024, 2)
	e.Start()

	dst := ramp(64, 2, 9)
	e.ReadInput(0, dst)
	require.Equal(t, make([]float32, len(dst)), dst)
}

func TestStaleAudioIsScrubbedAfterTalkerStops(t *testing.T) {
	var scrubs int
	e, err := NewEngine(Format{SampleRate: 48000, Channels: 1}, 64,
		WithObserver(Observer{OnScrub: func() { scrubs++ }}),
	)
	require.NoError(t, err)
	e.Start()

	require.NoError(t, e.WriteMix(0, ramp(16, 1, 1)))

	// reading past the high-water mark goes silent and scrubs once
	dst := make([]float32, 16)
	e.ReadInput(32, dst)
	require.Equal(t, make([]float32, 16), dst)
	require.Equal(t, 1, scrubs)

	// the old region is gone too
	e.ReadInput(0, dst)
	require.Equal(t, make([]float32, 16), dst)

	e.ReadInput(48, dst)
	require.Equal(t, 1, scrubs, "scrub happens once per talker")
}

func TestVolumeAndMuteApplyToReads(t *testing.T) {
	e := testEngine(t, 1024, 1)
	e.Start()

	require.NoError(t, e.WriteMix(0, []float32{1, 1, 1, 1}))

	e.SetVolume(0.5)
	dst := make([]float32, 4)
	e.ReadInput(0, dst)
	require.Equal(t, []float32{0.5, 0.5, 0.5, 0.5}, dst)

	e.SetMuted(true)
	require.NoError(t, e.WriteMix(0, []float32{1, 1, 1, 1}))
	e.ReadInput(0, dst)
	require.Equal(t, make([]float32, 4), dst)
}

func TestIOAgainstStoppedStream(t *testing.T) {
	e := testEngine(t, 1024, 2)

	require.ErrorIs(t, e.WriteMix(0, make([]float32, 64)), ErrNotReady)

	dst := ramp(16, 2, 3)
	e.ReadInput(0, dst)
	require.Equal(t, make([]float32, len(dst)), dst, "reads are silence, never an error")

	e.Start()
	e.Stop()
	require.ErrorIs(t, e.WriteMix(0, make([]float32, 64)), ErrNotReady)
}

func TestSetFormatDropsOldAudio(t *testing.T) {
	e := testEngine(t, 1024, 2)
	e.Start()
	require.NoError(t, e.WriteMix(0, ramp(256, 2, 1)))

	require.NoError(t, e.SetFormat(Format{SampleRate: 96000, Channels: 2}))
	require.Equal(t, float64(96000), e.Format().SampleRate)
	require.True(t, e.Ready())

	dst := make([]float32, 32)
	e.ReadInput(0, dst)
	require.Equal(t, make([]float32, 32), dst)
}

func TestPartialFrameRejected(t *testing.T) {
	e := testEngine(t, 1024, 2)
	e.Start()
	require.Error(t, e.WriteMix(0, make([]float32, 7)))
}

func TestConcurrentIOAcrossFormatChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := testEngine(t, 4096, 2)
	e.Start()

	const cycles = 500
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		src := ramp(128, 2, 1)
		for i := int64(0); i < cycles; i++ {
			_ = e.WriteMix(i*128, src)
		}
	}()
	go func() {
		defer wg.Done()
		dst := make([]float32, 256)
		for i := int64(0); i < cycles; i++ {
			e.ReadInput(i*128, dst)
		}
	}()

	for _, rate := range []float64{96000, 44100, 48000} {
		require.NoError(t, e.SetFormat(Format{SampleRate: rate, Channels: 2}))
	}
	wg.Wait()
	e.Stop()
}
