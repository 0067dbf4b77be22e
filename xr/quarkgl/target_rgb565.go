package quarkgl

// RGB565Target renders into an RGB565 framebuffer region.
//
// X/Y offset the region inside the buffer so a viewport can address part of a
// larger framebuffer. Callers provide the backing buffer and layout (stride).
type RGB565Target struct {
	Buf    []byte
	Stride int // bytes per row
	X, Y   int
	W, H   int
}

func (t *RGB565Target) Size() (w, h int) { return t.W, t.H }

func (t *RGB565Target) Clear(c Color) {
	if !t.ok() {
		return
	}
	p := rgb565From888(c.R, c.G, c.B)
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			t.put(x, y, p)
		}
	}
}

func (t *RGB565Target) SetPixel(x, y int, c Color) {
	if !t.ok() {
		return
	}
	if x < 0 || y < 0 || x >= t.W || y >= t.H {
		return
	}
	t.put(x, y, rgb565From888(c.R, c.G, c.B))
}

func (t *RGB565Target) ok() bool {
	return t != nil && t.Buf != nil && t.Stride > 0 && t.W > 0 && t.H > 0
}

func (t *RGB565Target) put(x, y int, p uint16) {
	off := (t.Y+y)*t.Stride + (t.X+x)*2
	if off < 0 || off+1 >= len(t.Buf) {
		return
	}
	t.Buf[off] = byte(p)
	t.Buf[off+1] = byte(p >> 8)
}

func rgb565From888(r, g, b uint8) uint16 {
	return uint16((uint16(r>>3)&0x1F)<<11 | (uint16(g>>2)&0x3F)<<5 | (uint16(b>>3) & 0x1F))
}
