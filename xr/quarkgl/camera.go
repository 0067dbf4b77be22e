package quarkgl

// Camera describes the viewing transform.
//
// With MatrixAutoUpdate set, the view is derived from Position/Target/Up and the
// projection from FOVYRad/Near/Far. With it cleared, World and ProjectionMatrix
// are used verbatim; SetMatrices is the only writer in that mode.
type Camera struct {
	Position Vec3
	Target   Vec3
	Up       Vec3

	FOVYRad Scalar
	Near    Scalar
	Far     Scalar

	MatrixAutoUpdate bool

	World            Mat4
	ProjectionMatrix Mat4
}

// NewCamera returns a perspective camera with auto update enabled.
func NewCamera() *Camera {
	return &Camera{
		Position:         V3(0, 0, 3),
		Target:           V3(0, 0, 0),
		Up:               V3(0, 1, 0),
		FOVYRad:          Scalar(1.0),
		Near:             Scalar(0.05),
		Far:              Scalar(100),
		MatrixAutoUpdate: true,
		World:            Mat4Identity(),
		ProjectionMatrix: Mat4Identity(),
	}
}

// SetMatrices installs externally supplied world and projection matrices and
// disables automatic recomputation.
func (c *Camera) SetMatrices(world, projection Mat4) {
	c.MatrixAutoUpdate = false
	c.World = world
	c.ProjectionMatrix = projection
}

// View returns the camera view matrix.
func (c *Camera) View() Mat4 {
	if !c.MatrixAutoUpdate {
		inv, ok := Mat4Invert(c.World)
		if !ok {
			return Mat4Identity()
		}
		return inv
	}
	up := c.Up
	if up == (Vec3{}) {
		up = V3(0, 1, 0)
	}
	return Mat4LookAt(c.Position, c.Target, up)
}

// Projection returns the projection matrix for a target aspect.
func (c *Camera) Projection(aspect Scalar) Mat4 {
	if !c.MatrixAutoUpdate {
		return c.ProjectionMatrix
	}
	fov := c.FOVYRad
	if fov == 0 {
		fov = Scalar(1.0)
	}
	return Mat4Perspective(fov, aspect, c.Near, c.Far)
}
