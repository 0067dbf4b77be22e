package anim

import (
	"math"

	"sparkxr/xr/scene"
)

// Action is a clip playing on a mixer.
type Action struct {
	Clip *Clip
	Loop bool
	Time float64
}

type binding struct {
	track Track
	node  *scene.Node
}

// Mixer plays clips against one node's subtree.
type Mixer struct {
	root    *scene.Node
	actions []*playing
}

type playing struct {
	*Action
	bindings []binding
}

func NewMixer(root *scene.Node) *Mixer {
	return &Mixer{root: root}
}

// Root returns the node the mixer is bound to.
func (m *Mixer) Root() *scene.Node { return m.root }

// Play starts clip looping from time zero. Tracks naming nodes absent from the
// subtree are ignored.
func (m *Mixer) Play(clip *Clip) *Action {
	p := &playing{Action: &Action{Clip: clip, Loop: true}}
	for _, t := range clip.Tracks {
		if t.Validate() != nil {
			continue
		}
		if n := m.root.Find(t.Node); n != nil {
			p.bindings = append(p.bindings, binding{track: t, node: n})
		}
	}
	m.actions = append(m.actions, p)
	return p.Action
}

// Actions returns the number of playing actions.
func (m *Mixer) Actions() int { return len(m.actions) }

// Advance moves every action forward by dt seconds. Negative deltas are
// treated as zero.
func (m *Mixer) Advance(dt float64) {
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}
	for _, p := range m.actions {
		p.Time += dt
		length := p.Clip.length()
		at := p.Time
		if length > 0 {
			if p.Loop {
				at = math.Mod(p.Time, length)
			} else {
				at = math.Min(p.Time, length)
			}
		}
		for _, b := range p.bindings {
			b.track.sample(b.node, at)
		}
	}
}
