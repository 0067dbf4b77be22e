// Package binder maps hit-test results onto the marker node and turns
// placement commands into placed models.
package binder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"sparkxr/xr/anim"
	"sparkxr/xr/asset"
	"sparkxr/xr/input"
	"sparkxr/xr/metrics"
	"sparkxr/xr/platform"
	"sparkxr/xr/quarkgl"
	"sparkxr/xr/scene"
)

// Policy decides what a new placement does to earlier ones.
type Policy int

const (
	// Additive keeps every placed model.
	Additive Policy = iota
	// Replace removes the previous model when a new one lands.
	Replace
)

func (p Policy) String() string {
	switch p {
	case Additive:
		return "additive"
	case Replace:
		return "replace"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy accepts "additive" or "replace".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "additive":
		return Additive, nil
	case "replace":
		return Replace, nil
	}
	return 0, fmt.Errorf("unknown placement policy %q", s)
}

// State is the marker lifecycle.
type State int

const (
	NoTrackingYet State = iota
	TrackingNoHit
	TrackingWithHit
)

func (s State) String() string {
	switch s {
	case NoTrackingYet:
		return "no-tracking-yet"
	case TrackingNoHit:
		return "tracking-no-hit"
	case TrackingWithHit:
		return "tracking-with-hit"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Spawner starts an asynchronous model load.
type Spawner func(ctx context.Context, l asset.Loader, uri string) *asset.Future

// Options configures a Binder.
type Options struct {
	Placement Policy
	MarkerURI string
	ModelURI  string

	// Spawn defaults to asset.Go.
	Spawn   Spawner
	Log     *slog.Logger
	Metrics *metrics.Metrics
}

// Placed is a model put into the scene by a command. Node is the anchor
// carrying the command transform; Model is the loaded asset root under it.
type Placed struct {
	Command uuid.UUID
	Node    *scene.Node
	Model   *scene.Node
	Mixer   *anim.Mixer
}

type pendingLoad struct {
	cmd    input.Command
	future *asset.Future
}

// Binder is owned by the frame loop; only Marker and Close may be called from
// other goroutines.
type Binder struct {
	opts   Options
	log    *slog.Logger
	graph  *scene.Graph
	clock  *anim.Clocker
	loader asset.Loader
	queue  *input.Queue

	ctx    context.Context
	cancel context.CancelFunc

	state     State
	transform quarkgl.Mat4
	visible   bool
	tick      uint64

	marker       *scene.Node
	markerFuture *asset.Future

	pending  []pendingLoad
	placed   []*Placed
	cmds     []input.Command
	snapshot atomic.Pointer[input.Marker]
	closed   atomic.Bool
}

// New starts loading the marker and returns a binder placing models into
// graph. Placed mixers are registered with clock.
func New(ctx context.Context, graph *scene.Graph, clock *anim.Clocker, loader asset.Loader, queue *input.Queue, opts Options) *Binder {
	if opts.Spawn == nil {
		opts.Spawn = asset.Go
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	b := &Binder{
		opts:      opts,
		log:       opts.Log,
		graph:     graph,
		clock:     clock,
		loader:    loader,
		queue:     queue,
		transform: quarkgl.Mat4Identity(),
	}
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.publish()
	if opts.MarkerURI != "" {
		b.markerFuture = opts.Spawn(b.ctx, loader, opts.MarkerURI)
	}
	return b
}

// Marker returns the marker state published at the end of the last Update.
func (b *Binder) Marker() input.Marker { return *b.snapshot.Load() }

// State returns the marker lifecycle state after the last Update.
func (b *Binder) State() State { return b.state }

// MarkerNode returns the marker's anchor node, nil until its asset has
// loaded. The asset root is its only child and keeps its authored transform.
func (b *Binder) MarkerNode() *scene.Node { return b.marker }

// Placed returns the models currently in the scene, oldest first.
func (b *Binder) Placed() []*Placed { return b.placed }

// Pending returns the number of placements waiting on their model.
func (b *Binder) Pending() int { return len(b.pending) }

// MergeLoads applies finished asset loads to the scene. The frame loop calls
// it at the start of a tick, before anything reads the graph.
func (b *Binder) MergeLoads() {
	if b.closed.Load() {
		return
	}
	if f := b.markerFuture; f != nil && f.Ready() {
		b.markerFuture = nil
		b.attachMarker(f)
	}
	if len(b.pending) == 0 {
		return
	}
	keep := b.pending[:0]
	for _, p := range b.pending {
		if !p.future.Ready() {
			keep = append(keep, p)
			continue
		}
		b.place(p)
	}
	clear(b.pending[len(keep):])
	b.pending = keep
}

func (b *Binder) attachMarker(f *asset.Future) {
	m, err := f.Result()
	if err != nil {
		b.opts.Metrics.AssetFailure("marker")
		b.log.Error("marker load failed", "uri", f.URI, "error", err)
		return
	}
	b.marker = scene.NewNode("marker")
	b.marker.Add(m.Root)
	b.applyMarker()
	b.graph.Add(b.marker)
	b.log.Debug("marker attached", "uri", f.URI)
}

func (b *Binder) place(p pendingLoad) {
	m, err := p.future.Result()
	if err != nil {
		b.opts.Metrics.AssetFailure("model")
		b.opts.Metrics.Placement(metrics.Failed)
		b.log.Error("model load failed", "uri", p.future.URI, "command", p.cmd.ID, "error", err)
		return
	}
	if b.opts.Placement == Replace {
		b.removeAll()
	}

	anchor := scene.NewNode("placed")
	anchor.SetMatrix(p.cmd.Target.Transform)
	anchor.Add(m.Root)
	pl := &Placed{Command: p.cmd.ID, Node: anchor, Model: m.Root}
	if len(m.Clips) > 0 {
		pl.Mixer = anim.NewMixer(m.Root)
		for _, c := range m.Clips {
			pl.Mixer.Play(c)
		}
		b.clock.Register(pl.Mixer)
	}
	b.graph.Add(anchor)
	b.placed = append(b.placed, pl)
	b.opts.Metrics.Placement(metrics.Placed)
	b.log.Info("model placed", "command", p.cmd.ID, "position", p.cmd.Target.Transform.Position(), "policy", b.opts.Placement)
}

func (b *Binder) removeAll() {
	for _, pl := range b.placed {
		b.graph.Remove(pl.Node)
		if pl.Mixer != nil {
			b.clock.Unregister(pl.Mixer)
		}
	}
	clear(b.placed)
	b.placed = b.placed[:0]
}

// Update sets the marker from the nearest of hits. With no hits the marker is
// hidden and keeps its last transform.
func (b *Binder) Update(hits []platform.Pose) {
	b.tick++
	next := TrackingNoHit
	if len(hits) > 0 {
		next = TrackingWithHit
		b.transform = hits[0].Transform
	}
	b.visible = len(hits) > 0
	if next != b.state {
		b.log.Debug("marker state", "from", b.state, "to", next)
		b.state = next
	}
	b.applyMarker()
	b.publish()
}

func (b *Binder) applyMarker() {
	if b.marker == nil {
		return
	}
	if b.state != NoTrackingYet {
		b.marker.SetMatrix(b.transform)
	}
	b.marker.Visible = b.visible
}

func (b *Binder) publish() {
	b.snapshot.Store(&input.Marker{Transform: b.transform, Visible: b.visible, Tick: b.tick})
}

// ApplyCommands drains the queue. A command issued while the marker was
// hidden is ignored; otherwise the model load starts and the model lands at
// the transform captured in the command.
func (b *Binder) ApplyCommands() {
	if b.closed.Load() {
		return
	}
	b.cmds = b.queue.Drain(b.cmds[:0])
	for _, cmd := range b.cmds {
		if !cmd.Target.Visible {
			b.opts.Metrics.Placement(metrics.Ignored)
			b.log.Info("placement ignored: no surface under marker", "command", cmd.ID)
			continue
		}
		if b.opts.ModelURI == "" {
			b.opts.Metrics.Placement(metrics.Failed)
			b.log.Error("placement failed: no model configured", "command", cmd.ID)
			continue
		}
		b.pending = append(b.pending, pendingLoad{cmd: cmd, future: b.opts.Spawn(b.ctx, b.loader, b.opts.ModelURI)})
	}
	clear(b.cmds)
}

// Close discards queued commands and abandons loads in flight; nothing queued
// or loading before Close reaches the scene. It returns the number of commands
// discarded.
func (b *Binder) Close() int {
	if !b.closed.CompareAndSwap(false, true) {
		return 0
	}
	b.cancel()
	n := b.queue.Close()
	if n > 0 {
		b.log.Info("pending placements discarded", "count", n)
	}
	return n
}
