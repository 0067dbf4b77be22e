// Package session owns the AR session lifecycle and reference-space
// acquisition.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"sparkxr/xr/platform"
)

var (
	ErrUnsupportedMode    = errors.New("unsupported session mode")
	ErrFeatureUnavailable = errors.New("required feature unavailable")
	ErrSpaceUnavailable   = errors.New("reference space unavailable")
	ErrEnded              = errors.New("session ended")
)

// Manager starts sessions against a platform runtime.
type Manager struct {
	rt  platform.Runtime
	log *slog.Logger
}

// NewManager returns a manager for rt. A nil logger discards output.
func NewManager(rt platform.Runtime, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{rt: rt, log: log}
}

// Start requests a session in mode. Every feature in required must be granted;
// optional features are requested but not enforced.
func (m *Manager) Start(ctx context.Context, mode platform.Mode, required []platform.Feature, optional ...platform.Feature) (*Session, error) {
	if m.rt == nil || !m.rt.SupportsMode(mode) {
		return nil, fmt.Errorf("start %s: %w", mode, ErrUnsupportedMode)
	}

	h, err := m.rt.RequestSession(ctx, mode, platform.SessionInit{Required: required, Optional: optional})
	switch {
	case errors.Is(err, platform.ErrModeNotSupported):
		return nil, fmt.Errorf("start %s: %w: %v", mode, ErrUnsupportedMode, err)
	case errors.Is(err, platform.ErrFeatureNotSupported):
		return nil, fmt.Errorf("start %s: %w: %v", mode, ErrFeatureUnavailable, err)
	case err != nil:
		return nil, fmt.Errorf("start %s: %w", mode, err)
	}

	granted := h.GrantedFeatures()
	for _, f := range required {
		if !platform.HasFeature(granted, f) {
			_ = h.End()
			return nil, fmt.Errorf("start %s: %w: %s", mode, ErrFeatureUnavailable, f)
		}
	}

	s := &Session{
		h:       h,
		log:     m.log,
		mode:    mode,
		granted: granted,
		spaces:  map[platform.SpaceKind]platform.Space{},
		done:    make(chan struct{}),
	}
	go s.watch()

	m.log.Info("session started", "mode", mode, "features", granted)
	return s, nil
}

// Session is a live AR session. It is the only owner of the platform handle.
type Session struct {
	h       platform.Session
	log     *slog.Logger
	mode    platform.Mode
	granted []platform.Feature

	mu     sync.Mutex
	spaces map[platform.SpaceKind]platform.Space
	hooks  []func()
	ended  bool
	done   chan struct{}
}

func (s *Session) Mode() platform.Mode                 { return s.mode }
func (s *Session) GrantedFeatures() []platform.Feature { return s.granted }

// Platform exposes the underlying handle to the frame-loop components.
func (s *Session) Platform() platform.Session { return s.h }

// RequestReferenceSpace acquires the space of the given kind. The platform is
// asked once per kind; later calls return the same space.
func (s *Session) RequestReferenceSpace(kind platform.SpaceKind) (platform.Space, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil, fmt.Errorf("reference space %s: %w", kind, ErrEnded)
	}
	if sp, ok := s.spaces[kind]; ok {
		return sp, nil
	}
	sp, err := s.h.RequestReferenceSpace(kind)
	if err != nil {
		return nil, fmt.Errorf("reference space %s: %w: %v", kind, ErrSpaceUnavailable, err)
	}
	s.spaces[kind] = sp
	s.log.Debug("reference space acquired", "kind", kind)
	return sp, nil
}

// Done is closed once the session has ended, whoever ended it.
func (s *Session) Done() <-chan struct{} { return s.done }

// Ended reports whether the session has ended.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// OnEnd registers fn to run once when the session ends. If it already has,
// fn runs immediately. Hooks may run on any goroutine.
func (s *Session) OnEnd(fn func()) {
	s.mu.Lock()
	if !s.ended {
		s.hooks = append(s.hooks, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn()
}

// End ends the session. It is safe to call at any point and more than once.
func (s *Session) End() error {
	if !s.finish("user") {
		return nil
	}
	if err := s.h.End(); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (s *Session) watch() {
	select {
	case <-s.h.Ended():
		s.finish("platform")
	case <-s.done:
	}
}

// finish flips the session to ended and runs hooks. It reports whether this
// call did the transition.
func (s *Session) finish(reason string) bool {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return false
	}
	s.ended = true
	hooks := s.hooks
	s.hooks = nil
	close(s.done)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	s.log.Info("session ended", "reason", reason)
	return true
}
