package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.Frame()
	m.Frame()
	m.FrameSkipped(SkipNoPose)
	m.Placement(Placed)
	m.Placement(Ignored)
	m.Placement(Ignored)
	m.AssetFailure("model")
	m.DeltaClamped()
	m.SelectDropped()
	m.HitResults(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.frames))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped.WithLabelValues(SkipNoPose)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.placements.WithLabelValues(Ignored)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.assetFailures.WithLabelValues("model")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.clamped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dropped))
	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestDoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Frame()
		m.FrameSkipped(SkipRender)
		m.HitResults(3)
		m.Placement(Failed)
		m.AssetFailure("marker")
		m.DeltaClamped()
		m.SelectDropped()
	})
}
