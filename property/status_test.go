package property

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	require.Equal(t, StatusUnknownObject, StatusOf(ErrUnknownObject))
	require.Equal(t, StatusUnknownObject, StatusOf(fmt.Errorf("lookup: %w", ErrUnknownObject)))
	require.Equal(t, StatusNotSupported, StatusOf(errors.New("plain")))
	require.Equal(t, StatusOK, StatusOf(nil))
}

func TestErrorIsMatchesByStatus(t *testing.T) {
	err := NewError(StatusBadPropertySize, errors.New("expected 8 bytes, got 3"))
	require.ErrorIs(t, err, ErrBadPropertySize)
	require.NotErrorIs(t, err, ErrNotSettable)
	require.Contains(t, err.Error(), "8 bytes")
}

func TestVolumeCurve(t *testing.T) {
	require.InDelta(t, VolumeMinDB, VolumeToDecibels(0), 0.01)
	require.InDelta(t, VolumeMaxDB, VolumeToDecibels(1), 0.01)

	for _, v := range []float32{0, 0.1, 0.25, 0.5, 0.75, 1} {
		db := VolumeToDecibels(v)
		require.InDelta(t, v, VolumeFromDecibels(db), 1e-3, "scalar %v", v)
	}
}
