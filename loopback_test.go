package vloop

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hollowaudio/vloop-go/property"
)

func TestLoopbackAdaptersRoundTrip(t *testing.T) {
	d := testDriver(t)
	startedClient(t, d, 1)

	w, err := d.NewStreamWriter(1, 64)
	require.NoError(t, err)
	r, err := d.NewStreamReader(1, 64)
	require.NoError(t, err)

	// three full cycles of a ramp, bytes in == bytes out
	src := make([]float32, 3*64*2)
	for i := range src {
		src[i] = float32(i%128) / 128
	}
	raw := make([]byte, len(src)*bytesPerSample)
	samplesToBytes(src, raw)

	n, err := w.Write(raw)
	require.NoError(t, err)
	require.Equal(t, len(raw), n)

	got := make([]byte, len(raw))
	_, err = io.ReadFull(r, got)
	require.NoError(t, err)
	require.True(t, bytes.Equal(raw, got))
}

func TestLoopbackReaderAheadOfWriterGetsSilence(t *testing.T) {
	d := testDriver(t)
	startedClient(t, d, 1)

	r, err := d.NewStreamReader(1, 64)
	require.NoError(t, err)

	got := make([]byte, 64*2*bytesPerSample)
	_, err = io.ReadFull(r, got)
	require.NoError(t, err)
	require.Equal(t, make([]byte, len(got)), got)
}

func TestLoopbackFlushPadsPartialCycle(t *testing.T) {
	d := testDriver(t)
	startedClient(t, d, 1)

	w, err := d.NewStreamWriter(1, 64)
	require.NoError(t, err)
	r, err := d.NewStreamReader(1, 64)
	require.NoError(t, err)

	// half a cycle of full-scale samples
	src := make([]float32, 64)
	for i := range src {
		src[i] = 1
	}
	raw := make([]byte, len(src)*bytesPerSample)
	samplesToBytes(src, raw)
	_, err = w.Write(raw)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	got := make([]byte, 64*2*bytesPerSample)
	_, err = io.ReadFull(r, got)
	require.NoError(t, err)
	require.Equal(t, raw, got[:len(raw)], "written samples survive")
	require.Equal(t, make([]byte, len(raw)), got[len(raw):], "padding reads as silence")
}

func TestLoopbackAdapterValidation(t *testing.T) {
	d := testDriver(t)

	_, err := d.NewStreamWriter(42, 64)
	require.ErrorIs(t, err, property.ErrInvalidClient)

	d.AddDeviceClient(Client{ID: 1})
	_, err = d.NewStreamReader(1, 0)
	require.Error(t, err)

	// io before StartIO is refused at cycle entry
	w, err := d.NewStreamWriter(1, 4)
	require.NoError(t, err)
	raw := make([]byte, 4*2*bytesPerSample)
	_, err = w.Write(raw)
	require.ErrorIs(t, err, property.ErrStreamNotReady)
}