package pose

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkxr/xr/platform"
	"sparkxr/xr/platform/platformtest"
	"sparkxr/xr/quarkgl"
)

type localSpace struct{}

func (localSpace) Kind() platform.SpaceKind { return platform.SpaceLocal }

func TestResolveTrackedSetsCameraMatrices(t *testing.T) {
	world := quarkgl.Mat4Compose(quarkgl.V3(0.5, 1.6, 2), quarkgl.QuatFromAxisAngle(quarkgl.V3(0, 1, 0), 0.3), quarkgl.V3(1, 1, 1))
	proj := quarkgl.Mat4Perspective(0.9, 0.5, 0.01, 20)
	frame := &platformtest.Frame{T: 1, Viewer: &platform.ViewerPose{Transform: world, Projection: proj}}

	cam := quarkgl.NewCamera()
	cam.Position = quarkgl.V3(9, 9, 9)
	res := NewTracker(localSpace{}, nil).Resolve(frame, cam)

	tr, ok := res.(Tracked)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, world, tr.Pose.Transform)
	assert.False(t, cam.MatrixAutoUpdate)
	assert.Equal(t, world, cam.World)
	assert.Equal(t, proj, cam.Projection(4.0/3), "projection must not be recomputed from the aspect")

	inv, _ := quarkgl.Mat4Invert(world)
	assert.True(t, cam.View().ApproxEqual(inv, 1e-5), "view ignores Position/Target")
}

func TestResolveNotEstablishedLeavesCamera(t *testing.T) {
	cam := quarkgl.NewCamera()
	before := *cam
	res := NewTracker(localSpace{}, nil).Resolve(&platformtest.Frame{T: 1}, cam)

	_, ok := res.(NotEstablished)
	require.True(t, ok, "got %T", res)
	assert.Equal(t, before, *cam)
}

func TestTransitionsLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	tr := NewTracker(localSpace{}, log)
	cam := quarkgl.NewCamera()

	frames := []*platformtest.Frame{
		{T: 1},
		platformtest.Tracked(2),
		platformtest.Tracked(3),
		platformtest.Tracked(4),
		{T: 5},
		{T: 6},
		platformtest.Tracked(7),
	}
	for _, f := range frames {
		tr.Resolve(f, cam)
	}

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "tracking established"))
	assert.Equal(t, 1, strings.Count(out, "tracking lost"))
	assert.True(t, tr.Tracking())
}
