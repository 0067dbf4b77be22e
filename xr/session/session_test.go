package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkxr/xr/platform"
	"sparkxr/xr/platform/platformtest"
)

var hitTest = []platform.Feature{platform.FeatureHitTest}

func TestStartGrantsRequiredFeatures(t *testing.T) {
	rt := platformtest.NewRuntime()
	s, err := NewManager(rt, nil).Start(context.Background(), platform.ModeImmersiveAR, hitTest, platform.FeatureDOMOverlay)
	require.NoError(t, err)

	assert.Equal(t, platform.ModeImmersiveAR, s.Mode())
	assert.True(t, platform.HasFeature(s.GrantedFeatures(), platform.FeatureHitTest))
	assert.False(t, platform.HasFeature(s.GrantedFeatures(), platform.FeatureDOMOverlay))
	assert.False(t, s.Ended())
}

func TestStartUnsupportedMode(t *testing.T) {
	rt := platformtest.NewRuntime()
	rt.Modes = nil

	_, err := NewManager(rt, nil).Start(context.Background(), platform.ModeImmersiveAR, hitTest)
	require.ErrorIs(t, err, ErrUnsupportedMode)
	assert.Nil(t, rt.Last())
}

func TestStartFeatureUnavailable(t *testing.T) {
	rt := platformtest.NewRuntime()
	rt.Features = []platform.Feature{platform.FeatureLocal}

	_, err := NewManager(rt, nil).Start(context.Background(), platform.ModeImmersiveAR, hitTest)
	require.ErrorIs(t, err, ErrFeatureUnavailable)
}

func TestReferenceSpaceRequestedOncePerKind(t *testing.T) {
	rt := platformtest.NewRuntime()
	s, err := NewManager(rt, nil).Start(context.Background(), platform.ModeImmersiveAR, hitTest)
	require.NoError(t, err)

	local1, err := s.RequestReferenceSpace(platform.SpaceLocal)
	require.NoError(t, err)
	local2, err := s.RequestReferenceSpace(platform.SpaceLocal)
	require.NoError(t, err)
	viewer, err := s.RequestReferenceSpace(platform.SpaceViewer)
	require.NoError(t, err)

	assert.Same(t, local1, local2)
	assert.Equal(t, platform.SpaceViewer, viewer.Kind())
	assert.Equal(t, 1, rt.Last().SpaceRequests[platform.SpaceLocal])
	assert.Equal(t, 1, rt.Last().SpaceRequests[platform.SpaceViewer])
}

func TestReferenceSpaceUnavailable(t *testing.T) {
	rt := platformtest.NewRuntime()
	rt.RejectSpaces = []platform.SpaceKind{platform.SpaceViewer}
	s, err := NewManager(rt, nil).Start(context.Background(), platform.ModeImmersiveAR, hitTest)
	require.NoError(t, err)

	_, err = s.RequestReferenceSpace(platform.SpaceViewer)
	require.ErrorIs(t, err, ErrSpaceUnavailable)
}

func TestEndIsIdempotentAndRunsHooksOnce(t *testing.T) {
	rt := platformtest.NewRuntime()
	s, err := NewManager(rt, nil).Start(context.Background(), platform.ModeImmersiveAR, hitTest)
	require.NoError(t, err)

	calls := 0
	s.OnEnd(func() { calls++ })

	require.NoError(t, s.End())
	require.NoError(t, s.End())

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, rt.Last().Ends)
	assert.True(t, s.Ended())
	select {
	case <-s.Done():
	default:
		t.Fatal("Done() not closed after End")
	}

	late := false
	s.OnEnd(func() { late = true })
	assert.True(t, late, "hook registered after end must run immediately")

	_, err = s.RequestReferenceSpace(platform.SpaceLocal)
	require.ErrorIs(t, err, ErrEnded)
}

func TestPlatformTerminationIsObserved(t *testing.T) {
	rt := platformtest.NewRuntime()
	s, err := NewManager(rt, nil).Start(context.Background(), platform.ModeImmersiveAR, hitTest)
	require.NoError(t, err)

	hooked := make(chan struct{})
	s.OnEnd(func() { close(hooked) })

	require.NoError(t, rt.Last().End())

	select {
	case <-hooked:
	case <-time.After(time.Second):
		t.Fatal("end hook did not run after platform termination")
	}
	assert.True(t, s.Ended())
	require.NoError(t, s.End())
	assert.Equal(t, 1, rt.Last().Ends)
}
