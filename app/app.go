// Package app activates the AR experience on a tracking runtime: one session,
// its spaces and hit-test source, the marker and model assets, the select
// listener and the frame loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"sparkxr/xr/anim"
	"sparkxr/xr/asset"
	"sparkxr/xr/binder"
	"sparkxr/xr/frame"
	"sparkxr/xr/hittest"
	"sparkxr/xr/input"
	"sparkxr/xr/metrics"
	"sparkxr/xr/platform"
	"sparkxr/xr/pose"
	"sparkxr/xr/quarkgl"
	"sparkxr/xr/render"
	"sparkxr/xr/scene"
	"sparkxr/xr/session"
)

var ErrAlreadyActive = errors.New("app already active")

type Options struct {
	Placement binder.Policy
	MarkerURI string
	ModelURI  string

	// Loader defaults to a cache over the embedded assets.
	Loader asset.Loader
	// Spawn defaults to asset.Go.
	Spawn     binder.Spawner
	MaxDelta  time.Duration
	QueueSize int
	// Renderer defaults to render.New().
	Renderer frame.Renderer

	Log     *slog.Logger
	Metrics *metrics.Metrics
}

// Backdropper is implemented by runtimes that draw their own surroundings,
// such as the host simulator's floor.
type Backdropper interface {
	Backdrop() *scene.Node
}

// App runs at most one activation at a time.
type App struct {
	opts Options
	log  *slog.Logger

	mu  sync.Mutex
	cur *Activation
}

func New(opts Options) *App {
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Loader == nil {
		opts.Loader = asset.NewCache(asset.NewFS(asset.Builtin()))
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = input.DefaultQueueSize
	}
	return &App{opts: opts, log: opts.Log}
}

// Activation is a running session with its frame loop.
type Activation struct {
	sess   *session.Session
	sched  *frame.Scheduler
	binder *binder.Binder
	graph  *scene.Graph
	done   chan struct{}
}

// Activate starts an immersive-ar session on rt and begins rendering. ctx
// bounds startup only; the activation runs until End or until the platform
// ends the session. If any step after the session starts fails, the session
// is ended before the error is returned.
func (a *App) Activate(ctx context.Context, rt platform.Runtime) (*Activation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cur != nil && !a.cur.sess.Ended() {
		return nil, ErrAlreadyActive
	}

	o := a.opts
	sess, err := session.NewManager(rt, a.log).Start(ctx, platform.ModeImmersiveAR,
		[]platform.Feature{platform.FeatureHitTest}, platform.FeatureLocal)
	if err != nil {
		return nil, fmt.Errorf("activate: %w", err)
	}
	fail := func(err error) (*Activation, error) {
		_ = sess.End()
		return nil, fmt.Errorf("activate: %w", err)
	}

	local, err := sess.RequestReferenceSpace(platform.SpaceLocal)
	if err != nil {
		return fail(err)
	}
	viewer, err := sess.RequestReferenceSpace(platform.SpaceViewer)
	if err != nil {
		return fail(err)
	}
	hits := hittest.New(sess.Platform())
	if _, err := hits.RequestSource(viewer); err != nil {
		return fail(err)
	}
	a.log.Debug("hit-test source ready", "origin", viewer.Kind())

	graph := scene.NewGraph()
	if bd, ok := rt.(Backdropper); ok {
		if n := bd.Backdrop(); n != nil {
			graph.Add(n)
		}
	}

	clock := anim.NewClocker(o.MaxDelta)
	clock.OnClamp = func(raw time.Duration) {
		o.Metrics.DeltaClamped()
		a.log.Debug("animation delta clamped", "gap", raw, "max", clock.MaxDelta)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	queue := input.NewQueue(o.QueueSize)
	b := binder.New(runCtx, graph, clock, o.Loader, queue, binder.Options{
		Placement: o.Placement,
		MarkerURI: o.MarkerURI,
		ModelURI:  o.ModelURI,
		Spawn:     o.Spawn,
		Log:       a.log,
		Metrics:   o.Metrics,
	})

	renderer := o.Renderer
	if renderer == nil {
		renderer = render.New()
	}
	sched := frame.New(frame.Config{
		Session:  sess.Platform(),
		HitTest:  hits,
		Tracker:  pose.NewTracker(local, a.log),
		Binder:   b,
		Clock:    clock,
		Renderer: renderer,
		Graph:    graph,
		Camera:   quarkgl.NewCamera(),
		Log:      a.log,
		Metrics:  o.Metrics,
	})

	act := &Activation{sess: sess, sched: sched, binder: b, graph: graph, done: make(chan struct{})}

	listening := make(chan struct{})
	handler := input.NewHandler(queue, b, a.log, o.Metrics)
	go func() {
		defer close(listening)
		handler.Listen(runCtx, sess.Platform().Selects())
	}()

	sess.OnEnd(func() {
		sched.Stop()
		b.Close()
		hits.Close()
		cancel()
	})
	go func() {
		<-sess.Done()
		<-listening
		close(act.done)
	}()

	sched.Start()
	a.cur = act
	a.log.Info("activated", "placement", o.Placement, "marker", o.MarkerURI, "model", o.ModelURI)
	return act, nil
}

// End ends the session. It is safe to call more than once.
func (a *Activation) End() error { return a.sess.End() }

// Done is closed after the session has ended and the select listener has
// stopped.
func (a *Activation) Done() <-chan struct{} { return a.done }

func (a *Activation) Session() *session.Session   { return a.sess }
func (a *Activation) Scheduler() *frame.Scheduler { return a.sched }
func (a *Activation) Binder() *binder.Binder      { return a.binder }
func (a *Activation) Graph() *scene.Graph         { return a.graph }
