// Package pose resolves the viewer pose of each frame and drives the camera
// from it.
package pose

import (
	"io"
	"log/slog"

	"sparkxr/xr/platform"
	"sparkxr/xr/quarkgl"
)

// Result is the outcome of resolving one frame: Tracked or NotEstablished.
type Result interface {
	isResult()
}

// Tracked carries an authoritative viewer pose.
type Tracked struct {
	Pose platform.ViewerPose
}

// NotEstablished means the runtime has no pose for this frame yet. It is a
// transient state, not an error.
type NotEstablished struct{}

func (Tracked) isResult()        {}
func (NotEstablished) isResult() {}

// Tracker resolves viewer poses against one reference space.
type Tracker struct {
	space platform.Space
	log   *slog.Logger

	tracking bool
	seen     bool
}

// NewTracker returns a tracker for space. A nil logger discards output.
func NewTracker(space platform.Space, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tracker{space: space, log: log}
}

// Resolve reads the viewer pose from frame. When tracked, the camera's world
// and projection matrices are replaced by the pose's matrices and automatic
// matrix updates are switched off. The camera is left untouched otherwise.
func (t *Tracker) Resolve(frame platform.Frame, cam *quarkgl.Camera) Result {
	var vp platform.ViewerPose
	ok := false
	if frame != nil && t.space != nil {
		vp, ok = frame.ViewerPose(t.space)
	}
	t.transition(ok)
	if !ok {
		return NotEstablished{}
	}
	if cam != nil {
		cam.SetMatrices(vp.Transform, vp.Projection)
	}
	return Tracked{Pose: vp}
}

// Tracking reports the state of the most recent Resolve.
func (t *Tracker) Tracking() bool { return t.tracking }

func (t *Tracker) transition(ok bool) {
	if t.seen && ok == t.tracking {
		return
	}
	switch {
	case ok:
		t.log.Info("tracking established")
	case t.seen:
		t.log.Info("tracking lost")
	default:
		t.log.Debug("tracking not established yet")
	}
	t.seen = true
	t.tracking = ok
}
