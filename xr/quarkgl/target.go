package quarkgl

import (
	"image"
	"image/color"
)

// Target is a minimal pixel target for software rendering.
//
// Implementations should clip out-of-bounds coordinates.
type Target interface {
	Size() (w, h int)
	SetPixel(x, y int, c Color)
	Clear(c Color)
}

// RenderMode selects the rasterization mode.
type RenderMode uint8

const (
	RenderWireframe RenderMode = iota
	RenderSolidFlat
	RenderSolidVertexColor
)

// ParseRenderMode accepts wire, flat and vertex.
func ParseRenderMode(s string) (RenderMode, bool) {
	switch s {
	case "wire":
		return RenderWireframe, true
	case "flat":
		return RenderSolidFlat, true
	case "vertex":
		return RenderSolidVertexColor, true
	}
	return RenderSolidFlat, false
}

// ImageTarget renders into an RGBA image, for offline previews.
type ImageTarget struct {
	Img *image.RGBA
}

func (t ImageTarget) Size() (w, h int) {
	if t.Img == nil {
		return 0, 0
	}
	b := t.Img.Bounds()
	return b.Dx(), b.Dy()
}

func (t ImageTarget) SetPixel(x, y int, c Color) {
	if t.Img == nil {
		return
	}
	b := t.Img.Bounds()
	t.Img.SetRGBA(b.Min.X+x, b.Min.Y+y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF})
}

func (t ImageTarget) Clear(c Color) {
	if t.Img == nil {
		return
	}
	px := color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
	b := t.Img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			t.Img.SetRGBA(x, y, px)
		}
	}
}
