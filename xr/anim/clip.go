// Package anim advances keyframe animation clips on scene nodes.
package anim

import (
	"fmt"
	"math"
	"sort"

	"sparkxr/xr/quarkgl"
	"sparkxr/xr/scene"
)

// Property selects the node field a track drives.
type Property string

const (
	PropPosition Property = "position"
	PropRotation Property = "rotation"
	PropScale    Property = "scale"
)

// Track animates one property of the node named Node. Values holds 3 floats
// per key for position and scale, 4 (x, y, z, w) for rotation.
type Track struct {
	Node     string
	Property Property
	Times    []float64
	Values   []float32
}

func (t Track) stride() int {
	if t.Property == PropRotation {
		return 4
	}
	return 3
}

// Validate checks key counts and ordering.
func (t Track) Validate() error {
	switch t.Property {
	case PropPosition, PropRotation, PropScale:
	default:
		return fmt.Errorf("track %s: unknown property %q", t.Node, t.Property)
	}
	if len(t.Times) == 0 {
		return fmt.Errorf("track %s.%s: no keys", t.Node, t.Property)
	}
	if len(t.Values) != len(t.Times)*t.stride() {
		return fmt.Errorf("track %s.%s: %d values for %d keys", t.Node, t.Property, len(t.Values), len(t.Times))
	}
	if !sort.Float64sAreSorted(t.Times) {
		return fmt.Errorf("track %s.%s: key times not ascending", t.Node, t.Property)
	}
	return nil
}

// Clip is a named set of tracks. A zero Duration is derived from the last key.
type Clip struct {
	Name     string
	Duration float64
	Tracks   []Track
}

func (c *Clip) length() float64 {
	if c.Duration > 0 {
		return c.Duration
	}
	var d float64
	for _, t := range c.Tracks {
		if n := len(t.Times); n > 0 && t.Times[n-1] > d {
			d = t.Times[n-1]
		}
	}
	return d
}

// sample writes the track value at time at into n.
func (t Track) sample(n *scene.Node, at float64) {
	i, f := t.locate(at)
	s := t.stride()
	a := t.Values[i*s : i*s+s]
	b := a
	if i+1 < len(t.Times) {
		b = t.Values[(i+1)*s : (i+1)*s+s]
	}
	switch t.Property {
	case PropRotation:
		qa := quarkgl.Quat{X: a[0], Y: a[1], Z: a[2], W: a[3]}
		qb := quarkgl.Quat{X: b[0], Y: b[1], Z: b[2], W: b[3]}
		n.Rotation = qa.Slerp(qb, f)
	case PropPosition:
		n.Position = quarkgl.V3(a[0], a[1], a[2]).Lerp(quarkgl.V3(b[0], b[1], b[2]), f)
	case PropScale:
		n.Scale = quarkgl.V3(a[0], a[1], a[2]).Lerp(quarkgl.V3(b[0], b[1], b[2]), f)
	}
}

// locate returns the key before at and the blend factor towards the next key.
func (t Track) locate(at float64) (int, float32) {
	n := len(t.Times)
	if at <= t.Times[0] || n == 1 {
		return 0, 0
	}
	if at >= t.Times[n-1] {
		return n - 1, 0
	}
	i := sort.SearchFloat64s(t.Times, at)
	if t.Times[i] == at {
		return i, 0
	}
	i--
	span := t.Times[i+1] - t.Times[i]
	return i, float32(math.Min(1, (at-t.Times[i])/span))
}
