package phys

import "github.com/pitchsim/pitchsim/pkg/geom"

// Shape is the collision geometry attached to a body.
type Shape interface {
	// LocalInertia returns the diagonal of the local inertia tensor.
	LocalInertia(mass float32) geom.Vec
	// AABB returns the world-space bounds for a body transform.
	AABB(pos geom.Vec, rot geom.RotMat) (min, max geom.Vec)
}

type SphereShape struct {
	Radius float32
}

func (s SphereShape) LocalInertia(mass float32) geom.Vec {
	i := 0.4 * mass * s.Radius * s.Radius
	return geom.Vec{X: i, Y: i, Z: i}
}

func (s SphereShape) AABB(pos geom.Vec, _ geom.RotMat) (geom.Vec, geom.Vec) {
	r := geom.Vec{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return pos.Sub(r), pos.Add(r)
}

type BoxShape struct {
	HalfExtents geom.Vec
}

func (b BoxShape) LocalInertia(mass float32) geom.Vec {
	e := b.HalfExtents.Scale(2)
	k := mass / 12
	return geom.Vec{
		X: k * (e.Y*e.Y + e.Z*e.Z),
		Y: k * (e.X*e.X + e.Z*e.Z),
		Z: k * (e.X*e.X + e.Y*e.Y),
	}
}

func (b BoxShape) AABB(pos geom.Vec, rot geom.RotMat) (geom.Vec, geom.Vec) {
	// extent of the rotated box along each world axis
	cols := rot.Transpose()
	ext := geom.Vec{
		X: cols.Forward.Abs().Dot(b.HalfExtents),
		Y: cols.Right.Abs().Dot(b.HalfExtents),
		Z: cols.Up.Abs().Dot(b.HalfExtents),
	}
	return pos.Sub(ext), pos.Add(ext)
}

// PlaneShape is an infinite static plane with Normal*x = Offset.
type PlaneShape struct {
	Normal geom.Vec
	Offset float32
}

func (p PlaneShape) LocalInertia(float32) geom.Vec { return geom.Vec{} }

func (p PlaneShape) AABB(geom.Vec, geom.RotMat) (geom.Vec, geom.Vec) {
	const big = 1e8
	return geom.Vec{X: -big, Y: -big, Z: -big}, geom.Vec{X: big, Y: big, Z: big}
}
