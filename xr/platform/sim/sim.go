// Package sim is a host-side tracking runtime: a keyboard-steered device
// looking at an infinite floor, presented through the HAL window or headless
// loop.
package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"sparkxr/hal"
	"sparkxr/xr/platform"
	"sparkxr/xr/quarkgl"
)

type Config struct {
	// WarmupFrames is how many frames pass before tracking is established.
	WarmupFrames int
	// FloorY is the height of the floor plane in the local space.
	FloorY float32
	// TurnStep is the yaw/pitch change per arrow key press, in radians.
	TurnStep float32
	FOVYRad  float32
	Near     float32
	Far      float32
}

func (c Config) withDefaults() Config {
	if c.WarmupFrames < 0 {
		c.WarmupFrames = 0
	}
	if c.FloorY == 0 {
		c.FloorY = -1.4
	}
	if c.TurnStep == 0 {
		c.TurnStep = 0.08
	}
	if c.FOVYRad == 0 {
		c.FOVYRad = 1.0
	}
	if c.Near == 0 {
		c.Near = 0.05
	}
	if c.Far == 0 {
		c.Far = 50
	}
	return c
}

// Runtime grants immersive-ar and inline sessions with hit-test and local.
type Runtime struct {
	h   hal.HAL
	cfg Config
	log *slog.Logger

	mu   sync.Mutex
	cur  *Session
	rig  *Rig
	tick int
}

func New(h hal.HAL, cfg Config, log *slog.Logger) *Runtime {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runtime{h: h, cfg: cfg.withDefaults(), log: log, rig: NewRig()}
}

var granted = []platform.Feature{platform.FeatureHitTest, platform.FeatureLocal}

func (rt *Runtime) SupportsMode(mode platform.Mode) bool {
	return mode == platform.ModeImmersiveAR || mode == platform.ModeInline
}

func (rt *Runtime) RequestSession(ctx context.Context, mode platform.Mode, init platform.SessionInit) (platform.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !rt.SupportsMode(mode) {
		return nil, fmt.Errorf("sim: %w: %s", platform.ErrModeNotSupported, mode)
	}
	var feats []platform.Feature
	for _, f := range init.Required {
		if !platform.HasFeature(granted, f) {
			return nil, fmt.Errorf("sim: %w: %s", platform.ErrFeatureNotSupported, f)
		}
		feats = append(feats, f)
	}
	for _, f := range init.Optional {
		if platform.HasFeature(granted, f) && !platform.HasFeature(feats, f) {
			feats = append(feats, f)
		}
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.cur != nil && !rt.cur.isEnded() {
		return nil, fmt.Errorf("sim: a session is already running")
	}
	rt.tick = 0
	rt.rig = NewRig()
	rt.cur = &Session{
		rt:      rt,
		mode:    mode,
		granted: feats,
		selects: make(chan platform.SelectEvent, 8),
		ended:   make(chan struct{}),
	}
	rt.log.Debug("sim session created", "mode", mode)
	return rt.cur, nil
}

// Rig returns the simulated device of the current session.
func (rt *Runtime) Rig() *Rig {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.rig
}

// Pump runs one display refresh: it applies host input, then delivers a frame
// to the callbacks queued before it. Call it once per refresh from the host
// loop.
func (rt *Runtime) Pump(now time.Duration) {
	rt.mu.Lock()
	s := rt.cur
	rig := rt.rig
	rt.mu.Unlock()
	if s == nil || s.isEnded() {
		return
	}

	rt.pollInput(s, rig, now)
	if s.isEnded() {
		return
	}

	rt.tick++
	fb := rt.h.Display().Framebuffer()
	aspect := quarkgl.Scalar(1)
	if fb != nil && fb.Height() > 0 {
		aspect = quarkgl.Scalar(fb.Width()) / quarkgl.Scalar(fb.Height())
	}
	f := &Frame{
		t:       now,
		tracked: rt.tick > rt.cfg.WarmupFrames,
		viewer:  rig.Transform(),
		proj:    quarkgl.Mat4Perspective(rt.cfg.FOVYRad, aspect, rt.cfg.Near, rt.cfg.Far),
		floorY:  rt.cfg.FloorY,
	}
	s.frames.Run(now, f)
}

func (rt *Runtime) pollInput(s *Session, rig *Rig, now time.Duration) {
	in := rt.h.Input()
	if in == nil {
		return
	}
	if kbd := in.Keyboard(); kbd != nil {
		rt.pollKeys(s, rig, kbd.Events(), now)
	}
	if ptr := in.Pointer(); ptr != nil && !s.isEnded() {
		for {
			select {
			case <-ptr.Events():
				s.fireSelect(now)
			default:
				return
			}
		}
	}
}

func (rt *Runtime) pollKeys(s *Session, rig *Rig, events <-chan hal.KeyEvent, now time.Duration) {
	step := quarkgl.Scalar(rt.cfg.TurnStep)
	for {
		var ev hal.KeyEvent
		select {
		case ev = <-events:
		default:
			return
		}
		if !ev.Press {
			continue
		}
		switch ev.Code {
		case hal.KeyLeft:
			rig.Rotate(step, 0)
		case hal.KeyRight:
			rig.Rotate(-step, 0)
		case hal.KeyUp:
			rig.Rotate(0, step)
		case hal.KeyDown:
			rig.Rotate(0, -step)
		case hal.KeyEnter, hal.KeySpace:
			s.fireSelect(now)
		case hal.KeyEscape:
			rt.log.Info("sim session ended by host")
			_ = s.End()
			return
		}
	}
}
