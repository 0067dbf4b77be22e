package render

import (
	"testing"

	"sparkxr/xr/platform"
	"sparkxr/xr/platform/platformtest"
	"sparkxr/xr/quarkgl"
	"sparkxr/xr/scene"
)

func TestRenderRequiresFramebuffer(t *testing.T) {
	r := New()
	if err := r.Render(scene.NewGraph(), quarkgl.NewCamera()); err != ErrNoFramebuffer {
		t.Fatalf("Render() = %v, want %v", err, ErrNoFramebuffer)
	}
}

func TestRenderDrawsAndPresents(t *testing.T) {
	fb := platformtest.NewFramebuffer(32, 24)
	r := New()
	r.Light = quarkgl.Light{Mode: quarkgl.LightOff}
	r.BindFramebuffer(fb)
	r.SetViewport(platform.Viewport{W: 32, H: 24})

	g := scene.NewGraph()
	n := scene.NewNode("quad")
	n.Position = quarkgl.V3(0, 0, -2)
	n.Mesh = &quarkgl.Mesh{
		Vertices: []quarkgl.Vertex{
			{Pos: quarkgl.V3(-1, -1, 0)}, {Pos: quarkgl.V3(1, -1, 0)},
			{Pos: quarkgl.V3(1, 1, 0)}, {Pos: quarkgl.V3(-1, 1, 0)},
		},
		Indices:  []uint16{0, 1, 2, 0, 2, 3},
		Material: quarkgl.Material{BaseColor: quarkgl.RGB(0xFF, 0xFF, 0xFF)},
	}
	g.Add(n)

	cam := quarkgl.NewCamera()
	cam.SetMatrices(quarkgl.Mat4Identity(), quarkgl.Mat4Perspective(1.2, 32.0/24, 0.05, 10))
	if err := r.Render(g, cam); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if fb.Presents != 1 {
		t.Fatalf("Presents = %d, want 1", fb.Presents)
	}

	center := (12*32 + 16) * 2
	if fb.Buffer()[center] != 0xFF || fb.Buffer()[center+1] != 0xFF {
		t.Fatalf("center pixel = %#x %#x, want white", fb.Buffer()[center], fb.Buffer()[center+1])
	}
	if fb.Buffer()[0] != 0 || fb.Buffer()[1] != 0 {
		t.Fatalf("corner pixel not cleared to background")
	}

	n.Visible = false
	if err := r.Render(g, cam); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if fb.Buffer()[center] != 0 {
		t.Fatalf("hidden node still drawn")
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		in   platform.Viewport
		want platform.Viewport
	}{
		{platform.Viewport{}, platform.Viewport{W: 10, H: 8}},
		{platform.Viewport{X: -2, Y: 0, W: 6, H: 4}, platform.Viewport{X: 0, Y: 0, W: 4, H: 4}},
		{platform.Viewport{X: 8, Y: 6, W: 6, H: 6}, platform.Viewport{X: 8, Y: 6, W: 2, H: 2}},
		{platform.Viewport{X: 20, Y: 0, W: 6, H: 6}, platform.Viewport{}},
	}
	for _, tt := range tests {
		if got := clip(tt.in, 10, 8); got != tt.want {
			t.Fatalf("clip(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
