package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkxr/xr/asset"
	"sparkxr/xr/binder"
	"sparkxr/xr/hittest"
	"sparkxr/xr/metrics"
	"sparkxr/xr/platform"
	"sparkxr/xr/platform/platformtest"
	"sparkxr/xr/scene"
	"sparkxr/xr/session"
)

func syncSpawn(ctx context.Context, l asset.Loader, uri string) *asset.Future {
	m, err := l.Load(ctx, uri)
	return asset.Resolved(uri, m, err)
}

func ms(n int) time.Duration { return time.Duration(n) * 16 * time.Millisecond }

func newApp(t *testing.T, reg *prometheus.Registry) *App {
	t.Helper()
	var m *metrics.Metrics
	if reg != nil {
		var err error
		m, err = metrics.New(reg)
		require.NoError(t, err)
	}
	return New(Options{
		MarkerURI: "reticle.yaml",
		ModelURI:  "flower.yaml",
		Spawn:     syncSpawn,
		Metrics:   m,
	})
}

func activate(t *testing.T, a *App, rt platform.Runtime) *Activation {
	t.Helper()
	act, err := a.Activate(context.Background(), rt)
	require.NoError(t, err)
	t.Cleanup(func() { _ = act.End() })
	return act
}

func waitDone(t *testing.T, act *Activation) {
	t.Helper()
	select {
	case <-act.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("activation did not finish")
	}
}

func gathered(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestActivateWiresSession(t *testing.T) {
	rt := platformtest.NewRuntime()
	act := activate(t, newApp(t, nil), rt)

	ps := rt.Last()
	require.NotNil(t, ps)
	assert.Equal(t, platform.ModeImmersiveAR, ps.Mode())
	assert.Equal(t, 1, ps.SpaceRequests[platform.SpaceLocal])
	assert.Equal(t, 1, ps.SpaceRequests[platform.SpaceViewer])
	require.NotNil(t, ps.Source)
	assert.Equal(t, platform.SpaceViewer, ps.Source.Space().Kind())
	assert.Equal(t, 1, ps.Pending(), "first frame requested")

	ps.Step(platformtest.Tracked(ms(1)))
	assert.NotNil(t, act.Graph().FindByName("marker"))
	assert.Equal(t, 1, ps.Layer.FB.Presents)
}

func TestSelectPlacesModelAtMarker(t *testing.T) {
	rt := platformtest.NewRuntime()
	act := activate(t, newApp(t, nil), rt)
	ps := rt.Last()

	ps.Step(platformtest.Tracked(ms(1), platformtest.HitAt(0.5, -1, -2)))
	require.True(t, act.Binder().Marker().Visible)

	ps.Select(ms(1))
	n := 1
	require.Eventually(t, func() bool {
		n++
		ps.Step(platformtest.Tracked(ms(n), platformtest.HitAt(0.5, -1, -2)))
		return len(act.Binder().Placed()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	placed := act.Binder().Placed()[0]
	assert.Equal(t, "placed", placed.Node.Name)
	assert.Equal(t, "flower", placed.Model.Name)
	assert.True(t, act.Graph().Contains(placed.Node))
	pos := placed.Node.WorldMatrix().Position()
	assert.InDelta(t, 0.5, pos.X, 1e-5)
	assert.InDelta(t, -2, pos.Z, 1e-5)
}

func TestActivateTwice(t *testing.T) {
	rt := platformtest.NewRuntime()
	a := newApp(t, nil)
	act := activate(t, a, rt)

	_, err := a.Activate(context.Background(), rt)
	assert.ErrorIs(t, err, ErrAlreadyActive)

	require.NoError(t, act.End())
	waitDone(t, act)
	activate(t, a, rt)
}

func TestActivateFailuresEndSession(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*platformtest.Runtime)
		want  error
	}{
		{"local space", func(rt *platformtest.Runtime) { rt.RejectSpaces = []platform.SpaceKind{platform.SpaceLocal} }, session.ErrSpaceUnavailable},
		{"viewer space", func(rt *platformtest.Runtime) { rt.RejectSpaces = []platform.SpaceKind{platform.SpaceViewer} }, session.ErrSpaceUnavailable},
		{"hit-test source", func(rt *platformtest.Runtime) { rt.HitTestErr = errors.New("no planes") }, hittest.ErrSourceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := platformtest.NewRuntime()
			tt.setup(rt)
			_, err := newApp(t, nil).Activate(context.Background(), rt)
			require.ErrorIs(t, err, tt.want)
			require.NotNil(t, rt.Last())
			assert.Equal(t, 1, rt.Last().Ends)
		})
	}
}

func TestActivateUnsupported(t *testing.T) {
	rt := platformtest.NewRuntime()
	rt.Features = []platform.Feature{platform.FeatureLocal}
	_, err := newApp(t, nil).Activate(context.Background(), rt)
	assert.ErrorIs(t, err, session.ErrFeatureUnavailable)

	rt = platformtest.NewRuntime()
	rt.Modes = nil
	_, err = newApp(t, nil).Activate(context.Background(), rt)
	assert.ErrorIs(t, err, session.ErrUnsupportedMode)
	assert.Nil(t, rt.Last())
}

func TestPlatformEndStopsEverything(t *testing.T) {
	rt := platformtest.NewRuntime()
	a := newApp(t, nil)
	act := activate(t, a, rt)
	ps := rt.Last()

	require.NoError(t, ps.End())
	waitDone(t, act)
	assert.True(t, act.Session().Ended())
	assert.Zero(t, ps.Pending())
	assert.Zero(t, ps.RequestsAfterEnd)
	assert.True(t, ps.Source.Canceled)

	_, err := a.Activate(context.Background(), rt)
	assert.NoError(t, err)
}

func TestCanceledStartupContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newApp(t, nil).Activate(ctx, platformtest.NewRuntime())
	assert.ErrorIs(t, err, context.Canceled)
}

type backdropRuntime struct {
	*platformtest.Runtime
}

func (backdropRuntime) Backdrop() *scene.Node { return scene.NewNode("backdrop") }

func TestBackdropAdded(t *testing.T) {
	act := activate(t, newApp(t, nil), backdropRuntime{platformtest.NewRuntime()})
	assert.NotNil(t, act.Graph().FindByName("backdrop"))
}

func TestDeltaClampCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt := platformtest.NewRuntime()
	a := New(Options{MaxDelta: 50 * time.Millisecond, Spawn: syncSpawn, Metrics: mustMetrics(t, reg), Placement: binder.Replace})
	activate(t, a, rt)
	ps := rt.Last()

	ps.Step(platformtest.Tracked(0))
	ps.Step(platformtest.Tracked(time.Second))
	assert.Equal(t, 1.0, gathered(t, reg, "sparkxr_animation_delta_clamped_total"))
	assert.Equal(t, 2.0, gathered(t, reg, "sparkxr_frames_total"))
}

func mustMetrics(t *testing.T, reg *prometheus.Registry) *metrics.Metrics {
	t.Helper()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	return m
}
