// Package platform describes the tracking runtime the AR core drives: session
// start and end, reference spaces, per-frame pose and hit-test queries,
// framebuffer/viewport binding and a select trigger.
//
// The core only depends on these interfaces. The host implementation lives in
// platform/sim; scripted fakes for tests live in platform/platformtest.
package platform

import (
	"context"
	"errors"
	"time"

	"sparkxr/hal"
	"sparkxr/xr/quarkgl"
)

// Mode is a session mode.
type Mode string

const (
	ModeImmersiveAR Mode = "immersive-ar"
	ModeInline      Mode = "inline"
)

// Feature is an optional runtime capability requested at session start.
type Feature string

const (
	FeatureHitTest    Feature = "hit-test"
	FeatureLocal      Feature = "local"
	FeatureDOMOverlay Feature = "dom-overlay"
)

// SpaceKind names a reference space.
type SpaceKind string

const (
	SpaceLocal  SpaceKind = "local"
	SpaceViewer SpaceKind = "viewer"
)

var (
	ErrModeNotSupported    = errors.New("mode not supported")
	ErrFeatureNotSupported = errors.New("feature not supported")
	ErrSpaceNotSupported   = errors.New("reference space not supported")
	ErrSessionEnded        = errors.New("session ended")
)

// SessionInit lists features the session must and may grant.
type SessionInit struct {
	Required []Feature
	Optional []Feature
}

// Space is a reference space handle.
type Space interface {
	Kind() SpaceKind
}

// HitTestSource is a persistent hit-test query bound to an origin space.
type HitTestSource interface {
	Space() Space
	Cancel()
}

// Pose is a rigid transform in some reference space.
type Pose struct {
	Transform quarkgl.Mat4
}

// Position returns the translation of the pose.
func (p Pose) Position() quarkgl.Vec3 { return p.Transform.Position() }

// ViewerPose is the viewer transform plus the single view's projection.
type ViewerPose struct {
	Transform  quarkgl.Mat4
	Projection quarkgl.Mat4
}

// Viewport is a rectangle in framebuffer pixels.
type Viewport struct {
	X, Y, W, H int
}

// Layer is the session's output surface.
type Layer interface {
	Framebuffer() hal.Framebuffer
	Viewport() Viewport
}

// Frame is valid only inside the callback that received it.
type Frame interface {
	Time() time.Duration
	ViewerPose(space Space) (ViewerPose, bool)
	HitTestResults(source HitTestSource) []Pose
}

// FrameCallback runs once per display refresh.
type FrameCallback func(now time.Duration, frame Frame)

// SelectEvent is a primary action (tap, click, trigger) from the user.
type SelectEvent struct {
	Time time.Duration
}

// Session is a live runtime session.
type Session interface {
	Mode() Mode
	GrantedFeatures() []Feature
	RequestReferenceSpace(kind SpaceKind) (Space, error)
	RequestHitTestSource(origin Space) (HitTestSource, error)

	// RequestAnimationFrame queues cb for the next display refresh. Callbacks
	// requested while a frame is being delivered fire on the following one.
	RequestAnimationFrame(cb FrameCallback) uint32
	CancelAnimationFrame(id uint32)

	BaseLayer() Layer
	Selects() <-chan SelectEvent

	// End is safe to call more than once.
	End() error
	Ended() <-chan struct{}
}

// Runtime starts sessions.
type Runtime interface {
	SupportsMode(mode Mode) bool
	RequestSession(ctx context.Context, mode Mode, init SessionInit) (Session, error)
}

// HasFeature reports whether f is in granted.
func HasFeature(granted []Feature, f Feature) bool {
	for _, g := range granted {
		if g == f {
			return true
		}
	}
	return false
}
