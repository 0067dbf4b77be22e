package quarkgl

// Material is a minimal surface description.
type Material struct {
	BaseColor Color
	Unlit     bool
}

// LightMode defines minimal lighting options.
type LightMode uint8

const (
	LightOff LightMode = iota
	LightAmbientDirectional
)

// Light is a minimal light setup.
type Light struct {
	Mode      LightMode
	Ambient   Scalar // 0..1
	Dir       Vec3   // direction *towards* the scene
	DirAmount Scalar // 0..1
}

// DefaultLight is a soft key light from above.
func DefaultLight() Light {
	return Light{
		Mode:      LightAmbientDirectional,
		Ambient:   Scalar(0.3),
		Dir:       Normalize(V3(-0.4, -1, -0.3)),
		DirAmount: Scalar(0.7),
	}
}

// Vertex is a mesh vertex.
type Vertex struct {
	Pos    Vec3
	Normal Vec3
	Color  Color
}

// Mesh is triangle geometry plus a material. Placement comes from the Draw that
// references it.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16 // triangle list

	Material Material
}

// Draw is one mesh instance in world space.
type Draw struct {
	Mesh  *Mesh
	World Mat4
}
