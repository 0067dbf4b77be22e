// Package frame runs the per-refresh tick: pose, hit test, marker, animation,
// render.
package frame

import (
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"sparkxr/hal"
	"sparkxr/xr/anim"
	"sparkxr/xr/binder"
	"sparkxr/xr/hittest"
	"sparkxr/xr/metrics"
	"sparkxr/xr/platform"
	"sparkxr/xr/pose"
	"sparkxr/xr/quarkgl"
	"sparkxr/xr/scene"
)

// Renderer draws a scene into the bound framebuffer.
type Renderer interface {
	BindFramebuffer(fb hal.Framebuffer)
	SetViewport(vp platform.Viewport)
	Render(g *scene.Graph, cam *quarkgl.Camera) error
}

// Config wires the components a tick drives.
type Config struct {
	Session  platform.Session
	HitTest  *hittest.Engine
	Tracker  *pose.Tracker
	Binder   *binder.Binder
	Clock    *anim.Clocker
	Renderer Renderer
	Graph    *scene.Graph
	Camera   *quarkgl.Camera

	Log     *slog.Logger
	Metrics *metrics.Metrics
}

// Stats counts ticks by outcome.
type Stats struct {
	Ticks    uint64
	Rendered uint64
	NoPose   uint64
	Failed   uint64
}

// Scheduler drives one session's frame loop. Exactly one tick runs at a time;
// the platform delivers callbacks serially.
type Scheduler struct {
	cfg Config
	log *slog.Logger

	mu      sync.Mutex
	id      uint32
	started bool
	stopped bool

	stats Stats
}

// New returns a scheduler driving the frame steps described by cfg.
func New(cfg Config) *Scheduler {
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Camera == nil {
		cfg.Camera = quarkgl.NewCamera()
	}
	return &Scheduler{cfg: cfg, log: cfg.Log}
}

// Start requests the first frame. Later calls are ignored.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.id = s.cfg.Session.RequestAnimationFrame(s.onFrame)
}

// Stop cancels the outstanding frame request; no callback fires afterwards.
// It is safe from any goroutine and more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.started {
		s.cfg.Session.CancelAnimationFrame(s.id)
	}
	s.log.Debug("frame loop stopped", "ticks", s.stats.Ticks, "rendered", s.stats.Rendered)
}

// Stats returns a copy of the tick counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Scheduler) onFrame(now time.Duration, f platform.Frame) {
	s.mu.Lock()
	if s.stopped || ended(s.cfg.Session) {
		s.stopped = true
		s.mu.Unlock()
		return
	}
	// The next frame is requested first so a failing tick cannot end the loop.
	s.id = s.cfg.Session.RequestAnimationFrame(s.onFrame)
	s.stats.Ticks++
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.count(func(st *Stats) { st.Failed++ })
			s.cfg.Metrics.FrameSkipped(metrics.SkipPanic)
			s.log.Error("frame panic", "panic", r, "stack", strings.TrimSpace(string(debug.Stack())))
		}
	}()
	s.tick(now, f)
}

func (s *Scheduler) tick(now time.Duration, f platform.Frame) {
	c := &s.cfg
	c.Metrics.Frame()

	layer := c.Session.BaseLayer()
	c.Renderer.BindFramebuffer(layer.Framebuffer())
	c.Renderer.SetViewport(layer.Viewport())

	c.Binder.MergeLoads()

	switch c.Tracker.Resolve(f, c.Camera).(type) {
	case pose.NotEstablished:
		s.count(func(st *Stats) { st.NoPose++ })
		c.Metrics.FrameSkipped(metrics.SkipNoPose)
		return
	case pose.Tracked:
	}

	hits := c.HitTest.Query(f)
	c.Metrics.HitResults(len(hits))
	c.Binder.Update(hits)
	c.Binder.ApplyCommands()

	c.Clock.Tick(now)

	if err := c.Renderer.Render(c.Graph, c.Camera); err != nil {
		s.count(func(st *Stats) { st.Failed++ })
		c.Metrics.FrameSkipped(metrics.SkipRender)
		s.log.Error("render failed", "error", err)
		return
	}
	s.count(func(st *Stats) { st.Rendered++ })
}

func (s *Scheduler) count(fn func(*Stats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}

func ended(sess platform.Session) bool {
	select {
	case <-sess.Ended():
		return true
	default:
		return false
	}
}
