package asset

import (
	"fmt"
	"math"

	"sparkxr/xr/quarkgl"
)

const maxVertices = math.MaxUint16 + 1

type meshBuilder struct {
	verts []quarkgl.Vertex
	idx   []uint16
	color quarkgl.Color
}

func (b *meshBuilder) vertex(p, n quarkgl.Vec3) uint16 {
	b.verts = append(b.verts, quarkgl.Vertex{Pos: p, Normal: n, Color: b.color})
	return uint16(len(b.verts) - 1)
}

func (b *meshBuilder) tri(a, c, d uint16) { b.idx = append(b.idx, a, c, d) }

func (b *meshBuilder) quad(a, c, d, e uint16) {
	b.tri(a, c, d)
	b.tri(a, d, e)
}

func circle(i, n int) (sin, cos quarkgl.Scalar) {
	a := 2 * math.Pi * float64(i) / float64(n)
	return quarkgl.Scalar(math.Sin(a)), quarkgl.Scalar(math.Cos(a))
}

// box is centered on the origin.
func box(b *meshBuilder, w, h, d quarkgl.Scalar) {
	x, y, z := w/2, h/2, d/2
	v := quarkgl.V3
	faces := []struct {
		n       quarkgl.Vec3
		corners [4]quarkgl.Vec3
	}{
		{v(0, 0, 1), [4]quarkgl.Vec3{v(-x, -y, z), v(x, -y, z), v(x, y, z), v(-x, y, z)}},
		{v(0, 0, -1), [4]quarkgl.Vec3{v(x, -y, -z), v(-x, -y, -z), v(-x, y, -z), v(x, y, -z)}},
		{v(1, 0, 0), [4]quarkgl.Vec3{v(x, -y, z), v(x, -y, -z), v(x, y, -z), v(x, y, z)}},
		{v(-1, 0, 0), [4]quarkgl.Vec3{v(-x, -y, -z), v(-x, -y, z), v(-x, y, z), v(-x, y, -z)}},
		{v(0, 1, 0), [4]quarkgl.Vec3{v(-x, y, z), v(x, y, z), v(x, y, -z), v(-x, y, -z)}},
		{v(0, -1, 0), [4]quarkgl.Vec3{v(-x, -y, -z), v(x, -y, -z), v(x, -y, z), v(-x, -y, z)}},
	}
	for _, f := range faces {
		a := b.vertex(f.corners[0], f.n)
		c := b.vertex(f.corners[1], f.n)
		d := b.vertex(f.corners[2], f.n)
		e := b.vertex(f.corners[3], f.n)
		b.quad(a, c, d, e)
	}
}

// plane lies in XZ facing +Y.
func plane(b *meshBuilder, w, d quarkgl.Scalar) {
	x, z := w/2, d/2
	n := quarkgl.V3(0, 1, 0)
	a := b.vertex(quarkgl.V3(-x, 0, z), n)
	c := b.vertex(quarkgl.V3(x, 0, z), n)
	e := b.vertex(quarkgl.V3(x, 0, -z), n)
	f := b.vertex(quarkgl.V3(-x, 0, -z), n)
	b.quad(a, c, e, f)
}

// ring is a flat annulus in XY facing +Z.
func ring(b *meshBuilder, inner, outer quarkgl.Scalar, segs int) {
	n := quarkgl.V3(0, 0, 1)
	first := uint16(len(b.verts))
	for i := 0; i < segs; i++ {
		s, c := circle(i, segs)
		b.vertex(quarkgl.V3(c*inner, s*inner, 0), n)
		b.vertex(quarkgl.V3(c*outer, s*outer, 0), n)
	}
	for i := 0; i < segs; i++ {
		j := (i + 1) % segs
		i0, o0 := first+uint16(2*i), first+uint16(2*i+1)
		i1, o1 := first+uint16(2*j), first+uint16(2*j+1)
		b.quad(i0, o0, o1, i1)
	}
}

// torus lies in XY around Z.
func torus(b *meshBuilder, radius, tube quarkgl.Scalar, segs int) {
	tubeSegs := max(3, segs/2)
	first := uint16(len(b.verts))
	for i := 0; i < segs; i++ {
		su, cu := circle(i, segs)
		center := quarkgl.V3(cu*radius, su*radius, 0)
		for j := 0; j < tubeSegs; j++ {
			sv, cv := circle(j, tubeSegs)
			n := quarkgl.V3(cu*cv, su*cv, sv)
			b.vertex(center.Add(n.Mul(tube)), n)
		}
	}
	at := func(i, j int) uint16 {
		return first + uint16((i%segs)*tubeSegs+(j%tubeSegs))
	}
	for i := 0; i < segs; i++ {
		for j := 0; j < tubeSegs; j++ {
			b.quad(at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1))
		}
	}
}

// cone stands on Y, centered, apex up.
func cone(b *meshBuilder, radius, height quarkgl.Scalar, segs int) {
	top := height / 2
	apex := b.vertex(quarkgl.V3(0, top, 0), quarkgl.V3(0, 1, 0))
	base := b.vertex(quarkgl.V3(0, -top, 0), quarkgl.V3(0, -1, 0))
	first := uint16(len(b.verts))
	for i := 0; i < segs; i++ {
		s, c := circle(i, segs)
		b.vertex(quarkgl.V3(c*radius, -top, s*radius), quarkgl.Normalize(quarkgl.V3(c, radius/height, s)))
	}
	for i := 0; i < segs; i++ {
		a := first + uint16(i)
		c := first + uint16((i+1)%segs)
		b.tri(apex, c, a)
		b.tri(base, a, c)
	}
}

func buildMesh(d *meshDoc) (*quarkgl.Mesh, error) {
	col, err := parseColor(d.Color)
	if err != nil {
		return nil, err
	}
	segs := d.Segments
	if segs == 0 {
		segs = 24
	}
	if segs < 3 || segs > 256 {
		return nil, fmt.Errorf("segments %d: want 3..256", segs)
	}

	b := &meshBuilder{color: col}
	switch d.Primitive {
	case "box":
		w, h, dp, err := size3(d.Size)
		if err != nil {
			return nil, err
		}
		box(b, w, h, dp)
	case "plane":
		if len(d.Size) != 2 {
			return nil, fmt.Errorf("plane: size needs 2 values, got %d", len(d.Size))
		}
		plane(b, d.Size[0], d.Size[1])
	case "ring":
		if d.Inner < 0 || d.Outer <= d.Inner {
			return nil, fmt.Errorf("ring: need 0 <= inner < outer, got %g, %g", d.Inner, d.Outer)
		}
		ring(b, d.Inner, d.Outer, segs)
	case "torus":
		if d.Radius <= 0 || d.Tube <= 0 {
			return nil, fmt.Errorf("torus: radius and tube must be positive")
		}
		torus(b, d.Radius, d.Tube, segs)
	case "cone":
		if d.Radius <= 0 || d.Height <= 0 {
			return nil, fmt.Errorf("cone: radius and height must be positive")
		}
		cone(b, d.Radius, d.Height, segs)
	default:
		return nil, fmt.Errorf("unknown primitive %q", d.Primitive)
	}
	if len(b.verts) > maxVertices {
		return nil, fmt.Errorf("%s: %d vertices exceeds %d", d.Primitive, len(b.verts), maxVertices)
	}

	return &quarkgl.Mesh{
		Vertices: b.verts,
		Indices:  b.idx,
		Material: quarkgl.Material{BaseColor: col, Unlit: d.Unlit},
	}, nil
}

func size3(v []float32) (w, h, d quarkgl.Scalar, err error) {
	switch len(v) {
	case 1:
		return v[0], v[0], v[0], nil
	case 3:
		return v[0], v[1], v[2], nil
	}
	return 0, 0, 0, fmt.Errorf("box: size needs 1 or 3 values, got %d", len(v))
}

func parseColor(s string) (quarkgl.Color, error) {
	if s == "" {
		return quarkgl.RGB(0xCC, 0xCC, 0xCC), nil
	}
	var r, g, b uint8
	if n, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil || n != 3 || len(s) != 7 {
		return quarkgl.Color{}, fmt.Errorf("color %q: want #rrggbb", s)
	}
	return quarkgl.RGB(r, g, b), nil
}
