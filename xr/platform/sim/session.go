package sim

import (
	"sync"
	"time"

	"sparkxr/hal"
	"sparkxr/xr/platform"
	"sparkxr/xr/quarkgl"
)

type space struct {
	kind platform.SpaceKind
}

func (s *space) Kind() platform.SpaceKind { return s.kind }

type hitSource struct {
	origin   platform.Space
	mu       sync.Mutex
	canceled bool
}

func (h *hitSource) Space() platform.Space { return h.origin }

func (h *hitSource) Cancel() {
	h.mu.Lock()
	h.canceled = true
	h.mu.Unlock()
}

func (h *hitSource) isCanceled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.canceled
}

type layer struct {
	h hal.HAL
}

func (l layer) Framebuffer() hal.Framebuffer {
	if d := l.h.Display(); d != nil {
		return d.Framebuffer()
	}
	return nil
}

func (l layer) Viewport() platform.Viewport {
	fb := l.Framebuffer()
	if fb == nil {
		return platform.Viewport{}
	}
	return platform.Viewport{W: fb.Width(), H: fb.Height()}
}

// Session is a simulated session. Frames are delivered by Runtime.Pump.
type Session struct {
	rt      *Runtime
	mode    platform.Mode
	granted []platform.Feature

	frames  platform.CallbackQueue
	selects chan platform.SelectEvent

	endOnce sync.Once
	ended   chan struct{}
}

func (s *Session) Mode() platform.Mode                 { return s.mode }
func (s *Session) GrantedFeatures() []platform.Feature { return s.granted }

func (s *Session) RequestReferenceSpace(kind platform.SpaceKind) (platform.Space, error) {
	if s.isEnded() {
		return nil, platform.ErrSessionEnded
	}
	switch kind {
	case platform.SpaceLocal, platform.SpaceViewer:
		return &space{kind: kind}, nil
	}
	return nil, platform.ErrSpaceNotSupported
}

func (s *Session) RequestHitTestSource(origin platform.Space) (platform.HitTestSource, error) {
	if s.isEnded() {
		return nil, platform.ErrSessionEnded
	}
	if origin == nil {
		return nil, platform.ErrSpaceNotSupported
	}
	return &hitSource{origin: origin}, nil
}

// RequestAnimationFrame returns 0 and drops cb once the session has ended.
func (s *Session) RequestAnimationFrame(cb platform.FrameCallback) uint32 {
	if s.isEnded() {
		return 0
	}
	return s.frames.Add(cb)
}

func (s *Session) CancelAnimationFrame(id uint32) { s.frames.Cancel(id) }

func (s *Session) BaseLayer() platform.Layer            { return layer{h: s.rt.h} }
func (s *Session) Selects() <-chan platform.SelectEvent { return s.selects }

func (s *Session) fireSelect(now time.Duration) {
	select {
	case s.selects <- platform.SelectEvent{Time: now}:
	default:
		s.rt.log.Warn("sim select dropped")
	}
}

func (s *Session) End() error {
	s.endOnce.Do(func() {
		close(s.ended)
		s.frames.Clear()
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

// Frame is one simulated refresh. Poses are expressed in the local space.
type Frame struct {
	t       time.Duration
	tracked bool
	viewer  quarkgl.Mat4
	proj    quarkgl.Mat4
	floorY  float32
}

func (f *Frame) Time() time.Duration { return f.t }

func (f *Frame) ViewerPose(sp platform.Space) (platform.ViewerPose, bool) {
	if !f.tracked || sp == nil {
		return platform.ViewerPose{}, false
	}
	world := f.viewer
	if sp.Kind() == platform.SpaceViewer {
		world = quarkgl.Mat4Identity()
	}
	return platform.ViewerPose{Transform: world, Projection: f.proj}, true
}

// HitTestResults casts from the source's origin along its forward axis onto
// the floor. There is at most one surface, so at most one result.
func (f *Frame) HitTestResults(src platform.HitTestSource) []platform.Pose {
	if !f.tracked || src == nil {
		return nil
	}
	if hs, ok := src.(*hitSource); ok && hs.isCanceled() {
		return nil
	}
	origin := quarkgl.Mat4Identity()
	if src.Space() != nil && src.Space().Kind() == platform.SpaceViewer {
		origin = f.viewer
	}
	p, ok := floorHit(origin.Position(), origin.Forward(), f.floorY)
	if !ok {
		return nil
	}
	return []platform.Pose{{Transform: quarkgl.Mat4Translate(p)}}
}
