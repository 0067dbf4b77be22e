package quarkgl

import "testing"

type recordTarget struct {
	w, h int
	set  int
}

func (t *recordTarget) Size() (int, int)         { return t.w, t.h }
func (t *recordTarget) SetPixel(int, int, Color) { t.set++ }
func (t *recordTarget) Clear(Color)              {}

func quad() *Mesh {
	return &Mesh{
		Vertices: []Vertex{
			{Pos: V3(-0.5, -0.5, 0)},
			{Pos: V3(0.5, -0.5, 0)},
			{Pos: V3(0.5, 0.5, 0)},
			{Pos: V3(-0.5, 0.5, 0)},
		},
		Indices:  []uint16{0, 1, 2, 0, 2, 3},
		Material: Material{BaseColor: RGB(0xFF, 0xFF, 0xFF)},
	}
}

func TestRenderDrawsVisibleMesh(t *testing.T) {
	r := NewRenderer(32, 32, true)
	tgt := &recordTarget{w: 32, h: 32}
	cam := NewCamera()

	r.Render(tgt, cam, DefaultLight(), []Draw{{Mesh: quad(), World: Mat4Identity()}})
	if tgt.set == 0 {
		t.Fatalf("Render() set no pixels for a quad in front of the camera")
	}
}

func TestRenderSkipsGeometryBehindCamera(t *testing.T) {
	r := NewRenderer(32, 32, true)
	tgt := &recordTarget{w: 32, h: 32}
	cam := NewCamera()

	r.Render(tgt, cam, DefaultLight(), []Draw{{Mesh: quad(), World: Mat4Translate(V3(0, 0, 10))}})
	if tgt.set != 0 {
		t.Fatalf("Render() set %d pixels for geometry behind the camera, want 0", tgt.set)
	}
}

func TestRGB565TargetViewportOffset(t *testing.T) {
	buf := make([]byte, 4*4*2)
	tgt := &RGB565Target{Buf: buf, Stride: 8, X: 2, Y: 1, W: 2, H: 2}
	tgt.SetPixel(0, 0, RGB(0xFF, 0xFF, 0xFF))
	off := 1*8 + 2*2
	if buf[off] != 0xFF || buf[off+1] != 0xFF {
		t.Fatalf("pixel at viewport origin = %x %x, want ff ff", buf[off], buf[off+1])
	}
	tgt.SetPixel(2, 0, RGB(0xFF, 0xFF, 0xFF))
	if buf[off+4] != 0 {
		t.Fatalf("SetPixel outside the viewport wrote into the framebuffer")
	}
}
