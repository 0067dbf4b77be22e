// Package render draws a scene graph into the session framebuffer with the
// quarkgl software rasterizer.
package render

import (
	"errors"
	"fmt"

	"sparkxr/hal"
	"sparkxr/xr/platform"
	"sparkxr/xr/quarkgl"
	"sparkxr/xr/scene"
)

var ErrNoFramebuffer = errors.New("no framebuffer bound")

// Renderer is bound to a framebuffer and viewport each frame, then renders.
type Renderer struct {
	Light      quarkgl.Light
	Background quarkgl.Color

	gl    *quarkgl.Renderer
	fb    hal.Framebuffer
	vp    platform.Viewport
	draws []quarkgl.Draw
}

func New() *Renderer {
	gl := quarkgl.NewRenderer(0, 0, true)
	return &Renderer{
		Light:      quarkgl.DefaultLight(),
		Background: quarkgl.RGB(0, 0, 0),
		gl:         gl,
	}
}

func (r *Renderer) BindFramebuffer(fb hal.Framebuffer) { r.fb = fb }

// SetViewport sets the output rectangle. It is clipped to the framebuffer at
// render time.
func (r *Renderer) SetViewport(vp platform.Viewport) { r.vp = vp }

// Size returns the current output size.
func (r *Renderer) Size() (w, h int) { return r.vp.W, r.vp.H }

// Render draws every visible mesh in g from cam and presents the framebuffer.
func (r *Renderer) Render(g *scene.Graph, cam *quarkgl.Camera) error {
	if r.fb == nil {
		return ErrNoFramebuffer
	}
	if f := r.fb.Format(); f != hal.PixelFormatRGB565 {
		return fmt.Errorf("render: unsupported pixel format %d", f)
	}

	vp := clip(r.vp, r.fb.Width(), r.fb.Height())
	t := &quarkgl.RGB565Target{
		Buf:    r.fb.Buffer(),
		Stride: r.fb.StrideBytes(),
		X:      vp.X,
		Y:      vp.Y,
		W:      vp.W,
		H:      vp.H,
	}
	r.gl.ClearColor = r.Background
	if g != nil {
		r.draws = g.Collect(r.draws[:0])
	} else {
		r.draws = r.draws[:0]
	}
	r.gl.Render(t, cam, r.Light, r.draws)
	clear(r.draws)

	if err := r.fb.Present(); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

func clip(vp platform.Viewport, w, h int) platform.Viewport {
	if vp.W <= 0 || vp.H <= 0 {
		return platform.Viewport{W: w, H: h}
	}
	x0, y0 := max(vp.X, 0), max(vp.Y, 0)
	x1, y1 := min(vp.X+vp.W, w), min(vp.Y+vp.H, h)
	if x1 <= x0 || y1 <= y0 {
		return platform.Viewport{}
	}
	return platform.Viewport{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}
