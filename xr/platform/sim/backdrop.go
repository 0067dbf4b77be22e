package sim

import (
	"sparkxr/xr/quarkgl"
	"sparkxr/xr/scene"
)

// Backdrop returns a checkered floor at the simulated floor height. It stands
// in for the camera image a real device would show behind the scene.
func (rt *Runtime) Backdrop() *scene.Node {
	const tiles, size = 12, quarkgl.Scalar(1)

	floor := scene.NewNode("backdrop")
	floor.Position = quarkgl.V3(0, rt.cfg.FloorY, 0)
	light := &quarkgl.Mesh{Material: quarkgl.Material{BaseColor: quarkgl.RGB(0x6a, 0x6a, 0x70)}}
	dark := &quarkgl.Mesh{Material: quarkgl.Material{BaseColor: quarkgl.RGB(0x3a, 0x3a, 0x40)}}

	half := quarkgl.Scalar(tiles) * size / 2
	up := quarkgl.V3(0, 1, 0)
	for i := 0; i < tiles; i++ {
		for j := 0; j < tiles; j++ {
			m := light
			if (i+j)%2 == 1 {
				m = dark
			}
			x0, z0 := quarkgl.Scalar(i)*size-half, quarkgl.Scalar(j)*size-half
			base := uint16(len(m.Vertices))
			m.Vertices = append(m.Vertices,
				quarkgl.Vertex{Pos: quarkgl.V3(x0, 0, z0), Normal: up},
				quarkgl.Vertex{Pos: quarkgl.V3(x0+size, 0, z0), Normal: up},
				quarkgl.Vertex{Pos: quarkgl.V3(x0+size, 0, z0+size), Normal: up},
				quarkgl.Vertex{Pos: quarkgl.V3(x0, 0, z0+size), Normal: up},
			)
			m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
		}
	}

	for _, m := range []*quarkgl.Mesh{light, dark} {
		n := scene.NewNode("tiles")
		n.Mesh = m
		floor.Add(n)
	}
	return floor
}
