package quarkgl

// Renderer is a fixed-pipeline software renderer.
//
// Create it once and reuse it to avoid allocations.
type Renderer struct {
	Mode       RenderMode
	Depth      bool
	ClearColor Color

	depthBuf []float32
}

// NewRenderer creates a renderer for a given maximum target size.
//
// If enableDepth is true, a depth buffer of size w*h is allocated.
func NewRenderer(w, h int, enableDepth bool) *Renderer {
	r := &Renderer{
		Mode:       RenderSolidFlat,
		Depth:      enableDepth,
		ClearColor: RGB(0, 0, 0),
	}
	if enableDepth && w > 0 && h > 0 {
		r.depthBuf = make([]float32, w*h)
	}
	return r
}

func (r *Renderer) SetRenderMode(m RenderMode) { r.Mode = m }

func (r *Renderer) ensureDepth(w, h int) {
	if !r.Depth || w <= 0 || h <= 0 {
		r.depthBuf = nil
		return
	}
	if cap(r.depthBuf) < w*h {
		r.depthBuf = make([]float32, w*h)
	} else {
		r.depthBuf = r.depthBuf[:w*h]
	}
	for i := range r.depthBuf {
		r.depthBuf[i] = 1e9
	}
}

// Render clears the target and draws every item with the camera and light.
func (r *Renderer) Render(t Target, cam *Camera, light Light, draws []Draw) {
	if r == nil || t == nil || cam == nil {
		return
	}
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return
	}
	t.Clear(r.ClearColor)
	r.ensureDepth(w, h)

	aspect := Scalar(w) / Scalar(h)
	viewProj := Mat4Mul(cam.Projection(aspect), cam.View())

	for _, d := range draws {
		if d.Mesh == nil {
			continue
		}
		r.renderMesh(t, w, h, viewProj, d, light)
	}
}

func (r *Renderer) renderMesh(t Target, w, h int, viewProj Mat4, d Draw, light Light) {
	m := d.Mesh
	if len(m.Vertices) == 0 || len(m.Indices) < 3 {
		return
	}
	world := d.World
	if world == (Mat4{}) {
		world = Mat4Identity()
	}
	mvp := Mat4Mul(viewProj, world)

	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0 := int(m.Indices[i+0])
		i1 := int(m.Indices[i+1])
		i2 := int(m.Indices[i+2])
		if i0 >= len(m.Vertices) || i1 >= len(m.Vertices) || i2 >= len(m.Vertices) {
			continue
		}

		v0 := m.Vertices[i0]
		v1 := m.Vertices[i1]
		v2 := m.Vertices[i2]

		p0 := Mat4MulV4(mvp, Vec4{X: v0.Pos.X, Y: v0.Pos.Y, Z: v0.Pos.Z, W: 1})
		p1 := Mat4MulV4(mvp, Vec4{X: v1.Pos.X, Y: v1.Pos.Y, Z: v1.Pos.Z, W: 1})
		p2 := Mat4MulV4(mvp, Vec4{X: v2.Pos.X, Y: v2.Pos.Y, Z: v2.Pos.Z, W: 1})

		// Trivial clip: drop triangles touching the camera plane or behind it.
		if p0.W <= 0 || p1.W <= 0 || p2.W <= 0 {
			continue
		}

		ndc0 := clipToNDC(p0)
		ndc1 := clipToNDC(p1)
		ndc2 := clipToNDC(p2)

		x0, y0 := ndcToScreen(ndc0, w, h)
		x1, y1 := ndcToScreen(ndc1, w, h)
		x2, y2 := ndcToScreen(ndc2, w, h)

		base := m.Material.BaseColor
		if light.Mode == LightAmbientDirectional && !m.Material.Unlit {
			a := Mat4MulV4(world, Vec4{X: v0.Pos.X, Y: v0.Pos.Y, Z: v0.Pos.Z, W: 1})
			b := Mat4MulV4(world, Vec4{X: v1.Pos.X, Y: v1.Pos.Y, Z: v1.Pos.Z, W: 1})
			c := Mat4MulV4(world, Vec4{X: v2.Pos.X, Y: v2.Pos.Y, Z: v2.Pos.Z, W: 1})
			n := triangleNormal(V3(a.X, a.Y, a.Z), V3(b.X, b.Y, b.Z), V3(c.X, c.Y, c.Z))
			base = base.MulScalar(lightIntensity(light, n))
		}

		switch r.Mode {
		case RenderWireframe:
			r.drawLine(t, x0, y0, x1, y1, base)
			r.drawLine(t, x1, y1, x2, y2, base)
			r.drawLine(t, x2, y2, x0, y0, base)
		case RenderSolidVertexColor:
			r.fillTriangle(t, w, h, [3]screenVert{{x0, y0, ndc0.Z, v0.Color}, {x1, y1, ndc1.Z, v1.Color}, {x2, y2, ndc2.Z, v2.Color}}, false)
		default:
			r.fillTriangle(t, w, h, [3]screenVert{{x0, y0, ndc0.Z, base}, {x1, y1, ndc1.Z, base}, {x2, y2, ndc2.Z, base}}, true)
		}
	}
}

type ndcPoint struct {
	X, Y, Z float32
}

type screenVert struct {
	x, y int
	z    float32
	c    Color
}

func clipToNDC(p Vec4) ndcPoint {
	invW := 1 / p.W
	return ndcPoint{X: p.X * invW, Y: p.Y * invW, Z: p.Z * invW}
}

func ndcToScreen(p ndcPoint, w, h int) (x, y int) {
	sx := (p.X*0.5 + 0.5) * float32(w-1)
	sy := (1 - (p.Y*0.5 + 0.5)) * float32(h-1)
	return int(sx + 0.5), int(sy + 0.5)
}

func triangleNormal(a, b, c Vec3) Vec3 {
	return Normalize(Cross(b.Sub(a), c.Sub(a)))
}

// lightIntensity is two-sided: geometry here has no consistent winding.
func lightIntensity(l Light, n Vec3) Scalar {
	amb := Clamp01(l.Ambient)
	dir := Clamp01(l.DirAmount)
	ld := Normalize(l.Dir)
	if ld == (Vec3{}) {
		return amb
	}
	d := Dot(n, ld.Mul(-1))
	if d < 0 {
		d = -d
	}
	return Clamp01(amb + d*dir)
}

func (r *Renderer) depthTest(w int, x, y int, z float32) bool {
	if r.depthBuf == nil {
		return true
	}
	idx := y*w + x
	if x < 0 || y < 0 || x >= w || idx >= len(r.depthBuf) {
		return false
	}
	// NDC z is in [-1,1]. Map to [0,1].
	d := clampF32(z*0.5+0.5, 0, 1)
	if d >= r.depthBuf[idx] {
		return false
	}
	r.depthBuf[idx] = d
	return true
}

func (r *Renderer) drawLine(t Target, x0, y0, x1, y1 int, c Color) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		t.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (r *Renderer) fillTriangle(t Target, w, h int, v [3]screenVert, flat bool) {
	minX := max(min(v[0].x, v[1].x, v[2].x), 0)
	maxX := min(max(v[0].x, v[1].x, v[2].x), w-1)
	minY := max(min(v[0].y, v[1].y, v[2].y), 0)
	maxY := min(max(v[0].y, v[1].y, v[2].y), h-1)
	if minX > maxX || minY > maxY {
		return
	}

	area := edgeFn(v[0].x, v[0].y, v[1].x, v[1].y, v[2].x, v[2].y)
	if area == 0 {
		return
	}
	// Either winding rasterizes; the sign of the area tells which side is inside.
	sign := 1
	if area < 0 {
		sign = -1
	}
	invArea := 1.0 / float32(area)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			w0 := edgeFn(v[1].x, v[1].y, v[2].x, v[2].y, x, y)
			w1 := edgeFn(v[2].x, v[2].y, v[0].x, v[0].y, x, y)
			w2 := edgeFn(v[0].x, v[0].y, v[1].x, v[1].y, x, y)
			if w0*sign < 0 || w1*sign < 0 || w2*sign < 0 {
				continue
			}
			a0 := float32(w0) * invArea
			a1 := float32(w1) * invArea
			a2 := float32(w2) * invArea
			if !r.depthTest(w, x, y, a0*v[0].z+a1*v[1].z+a2*v[2].z) {
				continue
			}
			if flat {
				t.SetPixel(x, y, v[0].c)
				continue
			}
			t.SetPixel(x, y, Color{
				R: uint8(clampF32(a0*float32(v[0].c.R)+a1*float32(v[1].c.R)+a2*float32(v[2].c.R), 0, 255)),
				G: uint8(clampF32(a0*float32(v[0].c.G)+a1*float32(v[1].c.G)+a2*float32(v[2].c.G), 0, 255)),
				B: uint8(clampF32(a0*float32(v[0].c.B)+a1*float32(v[1].c.B)+a2*float32(v[2].c.B), 0, 255)),
				A: 0xFF,
			})
		}
	}
}

func edgeFn(x0, y0, x1, y1, x, y int) int {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
