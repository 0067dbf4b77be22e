package anim

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkxr/xr/quarkgl"
	"sparkxr/xr/scene"
)

func bobClip() *Clip {
	return &Clip{
		Name: "bob",
		Tracks: []Track{{
			Node:     "petals",
			Property: PropPosition,
			Times:    []float64{0, 1, 2},
			Values:   []float32{0, 0, 0, 0, 1, 0, 0, 0, 0},
		}},
	}
}

func rig() (*scene.Node, *scene.Node) {
	root := scene.NewNode("flower")
	petals := scene.NewNode("petals")
	root.Add(petals)
	return root, petals
}

func TestTrackValidate(t *testing.T) {
	tests := []struct {
		name string
		tr   Track
		ok   bool
	}{
		{"position", Track{Node: "a", Property: PropPosition, Times: []float64{0}, Values: []float32{1, 2, 3}}, true},
		{"rotation stride", Track{Node: "a", Property: PropRotation, Times: []float64{0}, Values: []float32{0, 0, 0}}, false},
		{"unsorted", Track{Node: "a", Property: PropScale, Times: []float64{1, 0}, Values: make([]float32, 6)}, false},
		{"unknown", Track{Node: "a", Property: "color", Times: []float64{0}, Values: []float32{1, 2, 3}}, false},
		{"empty", Track{Node: "a", Property: PropScale}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tr.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestMixerInterpolatesAndLoops(t *testing.T) {
	root, petals := rig()
	m := NewMixer(root)
	m.Play(bobClip())

	m.Advance(0.5)
	assert.InDelta(t, 0.5, petals.Position.Y, 1e-6)
	m.Advance(0.5)
	assert.InDelta(t, 1, petals.Position.Y, 1e-6)
	m.Advance(1.75)
	assert.InDelta(t, 0.75, petals.Position.Y, 1e-6, "wrapped to t=0.75")
}

func TestMixerLeavesRootAlone(t *testing.T) {
	root, _ := rig()
	placed := quarkgl.Mat4Translate(quarkgl.V3(1, 0, -2))
	root.SetMatrix(placed)

	m := NewMixer(root)
	m.Play(&Clip{Name: "spin", Tracks: []Track{{
		Node:     "petals",
		Property: PropRotation,
		Times:    []float64{0, 1},
		Values:   []float32{0, 0, 0, 1, 0, 1, 0, 0},
	}}})
	m.Advance(0.3)

	assert.Equal(t, placed, root.LocalMatrix())
}

func TestMixerRotationSlerp(t *testing.T) {
	root, petals := rig()
	m := NewMixer(root)
	half := quarkgl.QuatFromAxisAngle(quarkgl.V3(0, 1, 0), 1)
	m.Play(&Clip{Name: "turn", Tracks: []Track{{
		Node:     "petals",
		Property: PropRotation,
		Times:    []float64{0, 2},
		Values:   []float32{0, 0, 0, 1, half.X, half.Y, half.Z, half.W},
	}}})
	m.Advance(1)

	want := quarkgl.QuatFromAxisAngle(quarkgl.V3(0, 1, 0), 0.5)
	assert.InDelta(t, want.Y, petals.Rotation.Y, 1e-4)
	assert.InDelta(t, want.W, petals.Rotation.W, 1e-4)
}

func TestMixerIgnoresUnknownNodes(t *testing.T) {
	root, _ := rig()
	m := NewMixer(root)
	clip := bobClip()
	clip.Tracks[0].Node = "stem"
	m.Play(clip)
	assert.NotPanics(t, func() { m.Advance(1) })
	assert.Equal(t, 1, m.Actions())
}

func TestClockerFirstTickIsZero(t *testing.T) {
	c := NewClocker(0)
	assert.Equal(t, DefaultMaxDelta, c.MaxDelta)
	assert.Zero(t, c.Tick(5*time.Second))
	assert.InDelta(t, 0.016, c.Tick(5*time.Second+16*time.Millisecond), 1e-9)
}

func TestClockerNeverNegative(t *testing.T) {
	c := NewClocker(time.Second)
	c.Tick(100 * time.Millisecond)
	assert.Zero(t, c.Tick(50*time.Millisecond))
	assert.InDelta(t, 0.01, c.Tick(60*time.Millisecond), 1e-9)
}

func TestClockerClamp(t *testing.T) {
	c := NewClocker(100 * time.Millisecond)
	var clamped []time.Duration
	c.OnClamp = func(raw time.Duration) { clamped = append(clamped, raw) }

	c.Tick(0)
	assert.InDelta(t, 0.1, c.Tick(3*time.Second), 1e-9)
	require.Len(t, clamped, 1)
	assert.Equal(t, 3*time.Second, clamped[0])
}

func TestClockerDeltaSumBound(t *testing.T) {
	const maxDelta = 100 * time.Millisecond
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		c := NewClocker(maxDelta)
		now := time.Duration(rng.Int63n(int64(time.Second)))
		start := now
		var sum, capped float64
		for i := 0; i < 200; i++ {
			d := c.Tick(now)
			require.GreaterOrEqual(t, d, 0.0)
			sum += d
			gap := time.Duration(1 + rng.Int63n(int64(250*time.Millisecond)))
			capped += min(gap, maxDelta).Seconds()
			now += gap
		}
		// The last gap was never ticked.
		last := c.Tick(now)
		sum += last
		elapsed := (now - start).Seconds()
		assert.LessOrEqual(t, sum, elapsed+1e-9)
		assert.InDelta(t, capped, sum, 1e-6)
	}
}

func TestClockerAdvancesRegisteredMixers(t *testing.T) {
	c := NewClocker(time.Second)
	rootA, petalsA := rig()
	rootB, petalsB := rig()
	a, b := NewMixer(rootA), NewMixer(rootB)
	a.Play(bobClip())
	b.Play(bobClip())

	c.Register(a)
	c.Register(b)
	c.Register(a)
	assert.Equal(t, 2, c.Len())

	c.Tick(0)
	c.Tick(250 * time.Millisecond)
	assert.InDelta(t, 0.25, petalsA.Position.Y, 1e-6)
	assert.InDelta(t, 0.25, petalsB.Position.Y, 1e-6)

	assert.True(t, c.Unregister(b))
	assert.False(t, c.Unregister(b))
	c.Tick(500 * time.Millisecond)
	assert.InDelta(t, 0.5, petalsA.Position.Y, 1e-6)
	assert.InDelta(t, 0.25, petalsB.Position.Y, 1e-6)
}

func TestClockerReset(t *testing.T) {
	c := NewClocker(time.Second)
	c.Tick(0)
	c.Reset()
	assert.Zero(t, c.Tick(500*time.Millisecond))
}
