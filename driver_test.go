package vloop

import (
	"encoding/binary"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hollowaudio/vloop-go/metric"
	"github.com/hollowaudio/vloop-go/object"
	"github.com/hollowaudio/vloop-go/property"
)

func testDriver(t *testing.T, opts ...Option) *Driver {
	t.Helper()
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithDeviceUID("test-uid"),
		WithRingFrames(4096),
	}
	d, err := New(append(base, opts...)...)
	require.NoError(t, err)
	require.NoError(t, d.Initialize())
	return d
}

func startedClient(t *testing.T, d *Driver, id uint32) {
	t.Helper()
	d.AddDeviceClient(Client{ID: id, ProcessID: 100 + int(id)})
	require.NoError(t, d.StartIO(id))
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(WithSampleRate(12345))
	require.Error(t, err, "nominal rate must be in the supported list")

	_, err = New(WithRingFrames(1000))
	require.Error(t, err, "ring length must be a power of two")
}

func TestDefaultUIDIsGenerated(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	b, err := New()
	require.NoError(t, err)
	require.NotEmpty(t, a.DeviceUID())
	require.NotEqual(t, a.DeviceUID(), b.DeviceUID())
}

func TestInitializeIsIdempotent(t *testing.T) {
	d := testDriver(t)
	require.NoError(t, d.Initialize())
	require.NoError(t, d.Initialize())
}

func TestClientLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)
	d := testDriver(t)

	d.AddDeviceClient(Client{ID: 1, BundleID: "app.one"})
	d.AddDeviceClient(Client{ID: 1, BundleID: "app.one.renamed"})
	require.Len(t, d.Clients(), 1, "re-adding is an update, not a duplicate")

	require.ErrorIs(t, d.StartIO(7), property.ErrInvalidClient)
	require.ErrorIs(t, d.StopIO(1), property.ErrInvalidClient, "stop without a start")

	require.NoError(t, d.StartIO(1))
	require.NoError(t, d.StartIO(1), "second start from the same client counts once")
	require.True(t, d.Running())

	d.AddDeviceClient(Client{ID: 2})
	require.NoError(t, d.StartIO(2))
	require.NoError(t, d.StopIO(1))
	require.True(t, d.Running(), "device runs until the last client stops")
	require.NoError(t, d.StopIO(2))
	require.False(t, d.Running())

	// removing a running client implies its stop
	startedClient(t, d, 3)
	d.RemoveDeviceClient(3)
	require.False(t, d.Running())
	d.RemoveDeviceClient(3)
}

func TestStopIsSeenBeforeNextCycle(t *testing.T) {
	d := testDriver(t)
	startedClient(t, d, 1)

	cycle := Cycle{SampleTime: 0, Frames: 64}
	require.NoError(t, d.BeginIOOperation(1, cycle))

	require.NoError(t, d.StopIO(1))
	require.ErrorIs(t, d.BeginIOOperation(1, cycle), property.ErrStreamNotReady)

	err := d.DoIOOperation(1, OpWriteMix, cycle, make([]float32, 128))
	require.ErrorIs(t, err, property.ErrStreamNotReady)
}

func TestZeroTimeStampRequiresRunning(t *testing.T) {
	var now uint64 = 1_000_000_000
	d := testDriver(t, WithHostClock(func() uint64 { return now }))

	_, _, _, err := d.GetZeroTimeStamp()
	require.ErrorIs(t, err, property.ErrStreamNotReady)

	startedClient(t, d, 1)
	sample, host, seed, err := d.GetZeroTimeStamp()
	require.NoError(t, err)
	require.Equal(t, float64(0), sample)
	require.Equal(t, now, host)
	require.NotZero(t, seed)
}

func TestWriteThenReadThroughDriver(t *testing.T) {
	d := testDriver(t)
	startedClient(t, d, 1)

	cycle := Cycle{SampleTime: 0, Frames: 64}
	src := make([]float32, 128)
	for i := range src {
		src[i] = float32(i) / 128
	}
	require.NoError(t, d.DoIOOperation(1, OpWriteMix, cycle, src))

	dst := make([]float32, 128)
	require.NoError(t, d.DoIOOperation(1, OpReadInput, cycle, dst))
	require.Equal(t, src, dst)

	// past the talker's last write, capture is silence
	require.NoError(t, d.DoIOOperation(1, OpReadInput, Cycle{SampleTime: 512, Frames: 64}, dst))
	require.Equal(t, make([]float32, 128), dst)
}

func TestClientAnchorAndTalkerTracking(t *testing.T) {
	var now uint64 = 1_000_000_000
	d := testDriver(t, WithHostClock(func() uint64 { return now }))

	startedClient(t, d, 1)
	state, ok := d.ClientInfo(1)
	require.True(t, ok)
	require.Zero(t, state.AnchorFrame, "first client anchors at frame zero")
	require.False(t, state.Talker)

	// a client joining 100ms in anchors at the current frame position
	now += 100_000_000
	startedClient(t, d, 2)
	state, ok = d.ClientInfo(2)
	require.True(t, ok)
	require.Equal(t, int64(4800), state.AnchorFrame)

	require.NoError(t, d.DoIOOperation(1, OpWriteMix, Cycle{Frames: 64}, make([]float32, 128)))
	state, _ = d.ClientInfo(1)
	require.True(t, state.Talker)
	state, _ = d.ClientInfo(2)
	require.False(t, state.Talker, "only the writer is a talker")

	_, ok = d.ClientInfo(42)
	require.False(t, ok)
}

func TestWillDoIOOperation(t *testing.T) {
	d := testDriver(t)
	willDo, inPlace := d.WillDoIOOperation(OpReadInput)
	require.True(t, willDo)
	require.True(t, inPlace)

	sink := testDriver(t, WithOutputOnly())
	willDo, _ = sink.WillDoIOOperation(OpReadInput)
	require.False(t, willDo)
	willDo, _ = sink.WillDoIOOperation(OpWriteMix)
	require.True(t, willDo)
}

func TestLateWriteCycleIsDropped(t *testing.T) {
	var now uint64 = 1_000_000_000
	m := metric.New()
	d := testDriver(t,
		WithHostClock(func() uint64 { return now }),
		WithMetrics(m),
	)
	startedClient(t, d, 1)

	scheduled := now
	// half a second late on a sub-millisecond cycle
	now += 500_000_000
	err := d.DoIOOperation(1, OpWriteMix,
		Cycle{SampleTime: 0, HostTime: scheduled, Frames: 64},
		make([]float32, 128),
	)
	require.ErrorIs(t, err, property.ErrOverload)
	require.Equal(t, property.StatusOverload, property.StatusOf(err))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Overloads))

	// an unscheduled cycle is exempt
	require.NoError(t, d.DoIOOperation(1, OpWriteMix,
		Cycle{SampleTime: 0, Frames: 64},
		make([]float32, 128),
	))
	require.Equal(t, float64(1), testutil.ToFloat64(m.IOCycles.WithLabelValues(OpWriteMix.String())))

	// a read with no talker in range counts as a silent cycle
	require.NoError(t, d.DoIOOperation(1, OpReadInput,
		Cycle{SampleTime: 10_000, Frames: 64},
		make([]float32, 128),
	))
	require.Equal(t, float64(1), testutil.ToFloat64(m.SilentCycles))
}

func TestVolumeAndMuteReachTheEngine(t *testing.T) {
	d := testDriver(t)
	startedClient(t, d, 1)

	cycle := Cycle{SampleTime: 0, Frames: 4}
	require.NoError(t, d.DoIOOperation(1, OpWriteMix, cycle, []float32{1, 1, 1, 1, 1, 1, 1, 1}))

	vol, ok := d.Graph().Control(object.ControlVolume, object.ScopeOutput)
	require.True(t, ok)
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, math.Float32bits(property.VolumeToScalar(0.5)))
	require.NoError(t, d.SetPropertyData(vol, property.Global(property.SelectorControlScalarValue), payload))

	dst := make([]float32, 8)
	require.NoError(t, d.DoIOOperation(1, OpReadInput, cycle, dst))
	for _, v := range dst {
		require.InDelta(t, 0.5, v, 1e-4)
	}

	mute, ok := d.Graph().Control(object.ControlMute, object.ScopeOutput)
	require.True(t, ok)
	require.NoError(t, d.SetPropertyData(mute, property.Global(property.SelectorControlBoolValue), []byte{1, 0, 0, 0}))
	require.NoError(t, d.DoIOOperation(1, OpWriteMix, cycle, []float32{1, 1, 1, 1, 1, 1, 1, 1}))
	require.NoError(t, d.DoIOOperation(1, OpReadInput, cycle, dst))
	require.Equal(t, make([]float32, 8), dst)
}

func TestRunningNotificationOnStartStop(t *testing.T) {
	n := &TestNotifier{}
	d := testDriver(t, WithNotifier(n))
	startedClient(t, d, 1)
	require.NoError(t, d.StopIO(1))

	notices := n.NoticesFor(d.Graph().Device())
	require.Len(t, notices, 2)
	for _, notice := range notices {
		require.Equal(t, []property.Address{property.Global(property.SelectorIsRunning)}, notice.Addresses)
	}
}

func TestConfigChangeWithoutHostPerformsImmediately(t *testing.T) {
	d := testDriver(t)
	startedClient(t, d, 1)

	payload := make([]byte, 8)
	binary.LittleEndian.PutUint64(payload, math.Float64bits(96000))
	dev := d.Graph().Device()
	require.NoError(t, d.SetPropertyData(dev, property.Global(property.SelectorNominalSampleRate), payload))

	buf := make([]byte, 8)
	_, err := d.GetPropertyData(dev, property.Global(property.SelectorNominalSampleRate), buf)
	require.NoError(t, err)
	require.Equal(t, float64(96000), math.Float64frombits(binary.LittleEndian.Uint64(buf)))
}

func TestConfigChangeTwoPhase(t *testing.T) {
	n := &TestNotifier{Own: true}
	d := testDriver(t, WithNotifier(n))
	dev := d.Graph().Device()

	payload := make([]byte, 8)
	binary.LittleEndian.PutUint64(payload, math.Float64bits(96000))
	require.NoError(t, d.SetPropertyData(dev, property.Global(property.SelectorNominalSampleRate), payload))
	require.Len(t, n.Requests, 1)
	require.Equal(t, float64(96000), n.Requests[0].Rate)

	// nothing applied until the host performs the change
	buf := make([]byte, 8)
	_, err := d.GetPropertyData(dev, property.Global(property.SelectorNominalSampleRate), buf)
	require.NoError(t, err)
	require.Equal(t, float64(48000), math.Float64frombits(binary.LittleEndian.Uint64(buf)))

	require.NoError(t, d.PerformConfigurationChange(n.Requests[0].ChangeID))
	_, err = d.GetPropertyData(dev, property.Global(property.SelectorNominalSampleRate), buf)
	require.NoError(t, err)
	require.Equal(t, float64(96000), math.Float64frombits(binary.LittleEndian.Uint64(buf)))

	// the committed rate is announced exactly once
	var rateNotices int
	for _, notice := range n.NoticesFor(dev) {
		for _, addr := range notice.Addresses {
			if addr.Selector == property.SelectorNominalSampleRate {
				rateNotices++
			}
		}
	}
	require.Equal(t, 1, rateNotices)

	require.ErrorIs(t, d.PerformConfigurationChange(n.Requests[0].ChangeID), property.ErrIllegalOperation)
}

func TestConfigChangeAbort(t *testing.T) {
	n := &TestNotifier{Own: true}
	d := testDriver(t, WithNotifier(n))
	dev := d.Graph().Device()

	payload := make([]byte, 8)
	binary.LittleEndian.PutUint64(payload, math.Float64bits(96000))
	require.NoError(t, d.SetPropertyData(dev, property.Global(property.SelectorNominalSampleRate), payload))
	require.NoError(t, d.AbortConfigurationChange(n.Requests[0].ChangeID))

	buf := make([]byte, 8)
	_, err := d.GetPropertyData(dev, property.Global(property.SelectorNominalSampleRate), buf)
	require.NoError(t, err)
	require.Equal(t, float64(48000), math.Float64frombits(binary.LittleEndian.Uint64(buf)))

	require.ErrorIs(t, d.AbortConfigurationChange("nope"), property.ErrIllegalOperation)
}

func TestDriverInterfaceBindsEverything(t *testing.T) {
	d := testDriver(t)
	di := NewDriverInterface(d)

	require.NoError(t, di.Initialize())
	require.ErrorIs(t, di.CreateDevice(), property.ErrNotSupported)
	require.ErrorIs(t, di.DestroyDevice(), property.ErrNotSupported)

	di.AddDeviceClient(Client{ID: 9})
	require.NoError(t, di.StartIO(9))
	require.True(t, di.HasProperty(d.Graph().Device(), property.Global(property.SelectorName)))
	require.NoError(t, di.StopIO(9))
	di.RemoveDeviceClient(9)
}
