//go:build cgo

package hal

import (
	"errors"
	"image"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"sparkxr/internal/buildinfo"
)

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Width  int
	Height int
	Scale  int
	TPS    int
}

// RunWindow opens a desktop window that presents the framebuffer once per
// display refresh and forwards keyboard, mouse and touch input. The step
// returned by newApp runs once per refresh with the display clock. It blocks
// until the window closes or step returns an error.
func RunWindow(newApp func(HAL) func(now time.Duration) error, cfg WindowConfig) error {
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}
	h := newHost(os.Stdout, cfg.Width, cfg.Height)
	step := newApp(h)

	g := &hostGame{h: h, step: step, scale: cfg.Scale}
	ebiten.SetWindowTitle("SparkXR (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.Width()*cfg.Scale, h.fb.Height()*cfg.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

type hostGame struct {
	h       *hostHAL
	scale   int
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	touches []ebiten.TouchID
	step    func(now time.Duration) error
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	g.touches = g.h.ptr.poll(g.scale, g.touches)
	if g.step != nil {
		if err := g.step(g.h.clock.Now()); err != nil {
			if errors.Is(err, ErrStopped) {
				return ebiten.Termination
			}
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	g.scratch = fb.snapshotRGB565(g.scratch)
	w, h := fb.Width(), fb.Height()
	if len(g.scratch) < w*h*2 {
		return
	}
	if g.img == nil || g.img.Bounds().Dx() != w || g.img.Bounds().Dy() != h {
		g.img = image.NewRGBA(image.Rect(0, 0, w, h))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(w, h)
	}

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, gg, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

// Layout follows the window size so the AR viewport tracks resizes and
// rotation; the framebuffer is the window divided by the pixel scale.
func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.h.fb.resize(outsideWidth/g.scale, outsideHeight/g.scale)
	return g.h.fb.Width(), g.h.fb.Height()
}
