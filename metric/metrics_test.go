package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndRecord(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	m.IOCycle("read_input")
	m.IOCycle("read_input")
	m.IOCycle("write_mix")
	m.SilentCycle()
	m.Overload()
	m.PropertyQuery("get", "ok")
	m.ConfigChange()
	m.SetRunningClients(3)

	require.Equal(t, float64(2), testutil.ToFloat64(m.IOCycles.WithLabelValues("read_input")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.SilentCycles))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Overloads))
	require.Equal(t, float64(3), testutil.ToFloat64(m.RunningClients))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.IOCycle("read_input")
	m.SilentCycle()
	m.Overload()
	m.PropertyQuery("get", "ok")
	m.ConfigChange()
	m.SetRunningClients(0)
}

func TestRegisterTwiceFails(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))
	require.Error(t, m.Register(reg))
}
