// Package hittest owns the persistent hit-test query and resolves its
// per-frame results.
package hittest

import (
	"errors"
	"fmt"

	"sparkxr/xr/platform"
)

var (
	ErrSourceUnavailable = errors.New("hit-test source unavailable")
	ErrSourceExists      = errors.New("hit-test source already requested")
)

// Engine issues one hit-test source per session and reads it every frame.
type Engine struct {
	s      platform.Session
	source platform.HitTestSource
}

// New returns an engine with no hit-test source bound yet.
func New(s platform.Session) *Engine {
	return &Engine{s: s}
}

// RequestSource binds the persistent query to origin. It may be called once.
func (e *Engine) RequestSource(origin platform.Space) (platform.HitTestSource, error) {
	if e.source != nil {
		return nil, ErrSourceExists
	}
	if origin == nil {
		return nil, fmt.Errorf("%w: nil origin space", ErrSourceUnavailable)
	}
	src, err := e.s.RequestHitTestSource(origin)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, origin.Kind(), err)
	}
	e.source = src
	return src, nil
}

// Source returns the bound source or nil.
func (e *Engine) Source() platform.HitTestSource { return e.source }

// Query returns the frame's results nearest-surface-first. An empty result is
// a normal outcome; so is a missing source.
func (e *Engine) Query(frame platform.Frame) []platform.Pose {
	if e.source == nil || frame == nil {
		return nil
	}
	return frame.HitTestResults(e.source)
}

// Nearest returns the first result of the frame, if any.
func (e *Engine) Nearest(frame platform.Frame) (platform.Pose, bool) {
	res := e.Query(frame)
	if len(res) == 0 {
		return platform.Pose{}, false
	}
	return res[0], true
}

// Close cancels the source. The engine cannot be rebound afterwards.
func (e *Engine) Close() {
	if e.source != nil {
		e.source.Cancel()
	}
}
