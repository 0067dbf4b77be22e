// Package platformtest provides a scripted tracking runtime for tests.
//
// Tests create a Runtime, let the code under test start a session, then drive
// frames one at a time with Session.Step.
package platformtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sparkxr/hal"
	"sparkxr/xr/platform"
	"sparkxr/xr/quarkgl"
)

// Runtime is a scripted platform.Runtime.
type Runtime struct {
	Modes    []platform.Mode
	Features []platform.Feature
	// RejectSpaces lists kinds RequestReferenceSpace refuses.
	RejectSpaces []platform.SpaceKind
	// HitTestErr is returned by RequestHitTestSource when set.
	HitTestErr error

	mu       sync.Mutex
	sessions []*Session
}

// NewRuntime supports immersive-ar with hit-test and local granted.
func NewRuntime() *Runtime {
	return &Runtime{
		Modes:    []platform.Mode{platform.ModeImmersiveAR},
		Features: []platform.Feature{platform.FeatureHitTest, platform.FeatureLocal},
	}
}

func (r *Runtime) SupportsMode(mode platform.Mode) bool {
	for _, m := range r.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

func (r *Runtime) RequestSession(ctx context.Context, mode platform.Mode, init platform.SessionInit) (platform.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !r.SupportsMode(mode) {
		return nil, fmt.Errorf("%w: %s", platform.ErrModeNotSupported, mode)
	}
	var granted []platform.Feature
	for _, f := range init.Required {
		if !platform.HasFeature(r.Features, f) {
			return nil, fmt.Errorf("%w: %s", platform.ErrFeatureNotSupported, f)
		}
		granted = append(granted, f)
	}
	for _, f := range init.Optional {
		if platform.HasFeature(r.Features, f) {
			granted = append(granted, f)
		}
	}

	s := &Session{
		rt:            r,
		mode:          mode,
		granted:       granted,
		SpaceRequests: map[platform.SpaceKind]int{},
		Layer:         &Layer{FB: NewFramebuffer(64, 48)},
		selects:       make(chan platform.SelectEvent, 8),
		ended:         make(chan struct{}),
	}
	r.mu.Lock()
	r.sessions = append(r.sessions, s)
	r.mu.Unlock()
	return s, nil
}

// Last returns the most recently started session or nil.
func (r *Runtime) Last() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) == 0 {
		return nil
	}
	return r.sessions[len(r.sessions)-1]
}

type space struct {
	kind platform.SpaceKind
}

func (s *space) Kind() platform.SpaceKind { return s.kind }

// HitSource is the scripted hit-test source.
type HitSource struct {
	origin   platform.Space
	Canceled bool
}

func (h *HitSource) Space() platform.Space { return h.origin }
func (h *HitSource) Cancel()               { h.Canceled = true }

// Frame is a scripted frame. A nil Viewer means tracking is not established.
type Frame struct {
	T      time.Duration
	Viewer *platform.ViewerPose
	Hits   []platform.Pose
}

func (f *Frame) Time() time.Duration { return f.T }

func (f *Frame) ViewerPose(platform.Space) (platform.ViewerPose, bool) {
	if f.Viewer == nil {
		return platform.ViewerPose{}, false
	}
	return *f.Viewer, true
}

func (f *Frame) HitTestResults(platform.HitTestSource) []platform.Pose { return f.Hits }

// Tracked returns a frame at t with an identity viewer pose and hits.
func Tracked(t time.Duration, hits ...platform.Pose) *Frame {
	return &Frame{
		T: t,
		Viewer: &platform.ViewerPose{
			Transform:  quarkgl.Mat4Identity(),
			Projection: quarkgl.Mat4Perspective(1, 4.0/3, 0.05, 50),
		},
		Hits: hits,
	}
}

// HitAt returns an upright pose at p.
func HitAt(x, y, z float32) platform.Pose {
	return platform.Pose{Transform: quarkgl.Mat4Translate(quarkgl.V3(x, y, z))}
}

// Layer is a scripted output surface.
type Layer struct {
	FB *Framebuffer
}

func (l *Layer) Framebuffer() hal.Framebuffer { return l.FB }

func (l *Layer) Viewport() platform.Viewport {
	return platform.Viewport{W: l.FB.W, H: l.FB.H}
}

// Session is a scripted platform.Session.
type Session struct {
	rt      *Runtime
	mode    platform.Mode
	granted []platform.Feature

	SpaceRequests     map[platform.SpaceKind]int
	HitSourceRequests int
	Source            *HitSource
	Layer             *Layer

	frames  platform.CallbackQueue
	selects chan platform.SelectEvent

	endOnce          sync.Once
	ended            chan struct{}
	Ends             int
	RequestsAfterEnd int
}

func (s *Session) Mode() platform.Mode                 { return s.mode }
func (s *Session) GrantedFeatures() []platform.Feature { return s.granted }

func (s *Session) RequestReferenceSpace(kind platform.SpaceKind) (platform.Space, error) {
	s.SpaceRequests[kind]++
	for _, k := range s.rt.RejectSpaces {
		if k == kind {
			return nil, fmt.Errorf("%w: %s", platform.ErrSpaceNotSupported, kind)
		}
	}
	return &space{kind: kind}, nil
}

func (s *Session) RequestHitTestSource(origin platform.Space) (platform.HitTestSource, error) {
	s.HitSourceRequests++
	if s.rt.HitTestErr != nil {
		return nil, s.rt.HitTestErr
	}
	s.Source = &HitSource{origin: origin}
	return s.Source, nil
}

// RequestAnimationFrame queues cb even after End so tests can observe callers
// that keep scheduling; RequestsAfterEnd counts them.
func (s *Session) RequestAnimationFrame(cb platform.FrameCallback) uint32 {
	if s.isEnded() {
		s.RequestsAfterEnd++
	}
	return s.frames.Add(cb)
}

func (s *Session) CancelAnimationFrame(id uint32) { s.frames.Cancel(id) }

func (s *Session) BaseLayer() platform.Layer            { return s.Layer }
func (s *Session) Selects() <-chan platform.SelectEvent { return s.selects }

// Select delivers a select event as the platform would.
func (s *Session) Select(t time.Duration) {
	s.selects <- platform.SelectEvent{Time: t}
}

func (s *Session) End() error {
	s.endOnce.Do(func() {
		s.Ends++
		s.frames.Clear()
		close(s.ended)
	})
	return nil
}

func (s *Session) Ended() <-chan struct{} { return s.ended }

func (s *Session) isEnded() bool {
	select {
	case <-s.ended:
		return true
	default:
		return false
	}
}

// Pending returns the number of queued frame callbacks.
func (s *Session) Pending() int { return s.frames.Len() }

// Step delivers f to queued callbacks and returns how many fired.
func (s *Session) Step(f *Frame) int {
	return s.frames.Run(f.T, f)
}

// Framebuffer is an in-memory RGB565 framebuffer with a settable size.
type Framebuffer struct {
	W, H     int
	buf      []byte
	Presents int
}

func NewFramebuffer(w, h int) *Framebuffer {
	f := &Framebuffer{}
	f.Resize(w, h)
	return f
}

// Resize changes the dimensions, as a rotation or window resize would.
func (f *Framebuffer) Resize(w, h int) {
	f.W, f.H = w, h
	f.buf = make([]byte, w*h*2)
}

func (f *Framebuffer) Width() int              { return f.W }
func (f *Framebuffer) Height() int             { return f.H }
func (f *Framebuffer) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *Framebuffer) StrideBytes() int        { return f.W * 2 }
func (f *Framebuffer) Buffer() []byte          { return f.buf }
func (f *Framebuffer) ClearRGB(_, _, _ uint8)  {}
func (f *Framebuffer) Present() error          { f.Presents++; return nil }
