package sim

import (
	"math"

	"sparkxr/xr/quarkgl"
)

// Rig is the simulated device: a position plus yaw/pitch, turned by the host
// keys the way an orbit controller turns a camera.
type Rig struct {
	Position quarkgl.Vec3
	Yaw      quarkgl.Scalar
	Pitch    quarkgl.Scalar

	// Pitch is clamped to [MinPitch, MaxPitch] when both are non-zero.
	MinPitch quarkgl.Scalar
	MaxPitch quarkgl.Scalar
}

// NewRig returns a rig at the local origin tilted towards the floor.
func NewRig() *Rig {
	return &Rig{
		Pitch:    -0.6,
		MinPitch: -math.Pi / 2 * 0.95,
		MaxPitch: math.Pi / 2 * 0.95,
	}
}

func (r *Rig) Rotate(deltaYaw, deltaPitch quarkgl.Scalar) {
	r.Yaw += deltaYaw
	r.Pitch += deltaPitch
	if r.MinPitch != 0 && r.Pitch < r.MinPitch {
		r.Pitch = r.MinPitch
	}
	if r.MaxPitch != 0 && r.Pitch > r.MaxPitch {
		r.Pitch = r.MaxPitch
	}
}

// Transform is the viewer pose in the local space.
func (r *Rig) Transform() quarkgl.Mat4 {
	rot := quarkgl.Mat4Mul(quarkgl.Mat4RotateY(r.Yaw), quarkgl.Mat4RotateX(r.Pitch))
	return quarkgl.Mat4Mul(quarkgl.Mat4Translate(r.Position), rot)
}

// floorHit intersects the ray from origin along dir with the plane y = floorY.
func floorHit(origin, dir quarkgl.Vec3, floorY quarkgl.Scalar) (quarkgl.Vec3, bool) {
	if dir.Y > -1e-4 {
		return quarkgl.Vec3{}, false
	}
	t := (floorY - origin.Y) / dir.Y
	if t <= 0 {
		return quarkgl.Vec3{}, false
	}
	return origin.Add(dir.Mul(t)), true
}
