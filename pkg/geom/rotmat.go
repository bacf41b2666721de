package geom

import "math"

// RotMat is an orthonormal rotation basis stored as three row vectors.
type RotMat struct {
	Forward, Right, Up Vec
}

func IdentityRotMat() RotMat {
	return RotMat{
		Forward: Vec{1, 0, 0},
		Right:   Vec{0, 1, 0},
		Up:      Vec{0, 0, 1},
	}
}

// MulVec rotates a local-space vector into world space.
func (m RotMat) MulVec(v Vec) Vec {
	return m.Forward.Scale(v.X).Add(m.Right.Scale(v.Y)).Add(m.Up.Scale(v.Z))
}

// TransMulVec rotates a world-space vector into local space.
func (m RotMat) TransMulVec(v Vec) Vec {
	return Vec{m.Forward.Dot(v), m.Right.Dot(v), m.Up.Dot(v)}
}

func (m RotMat) Transpose() RotMat {
	return RotMat{
		Forward: Vec{m.Forward.X, m.Right.X, m.Up.X},
		Right:   Vec{m.Forward.Y, m.Right.Y, m.Up.Y},
		Up:      Vec{m.Forward.Z, m.Right.Z, m.Up.Z},
	}
}

func (m RotMat) Mul(o RotMat) RotMat {
	return RotMat{
		Forward: m.MulVec(o.Forward),
		Right:   m.MulVec(o.Right),
		Up:      m.MulVec(o.Up),
	}
}

// Row returns the i-th basis vector (0=Forward, 1=Right, 2=Up).
func (m RotMat) Row(i int) Vec {
	switch i {
	case 0:
		return m.Forward
	case 1:
		return m.Right
	default:
		return m.Up
	}
}

// Angle is a yaw/pitch/roll triple in radians using the source game's
// Z-Y-X intrinsic rotation order.
type Angle struct {
	Yaw, Pitch, Roll float32
}

// ToRotMat builds the rotation basis for the angle.
func (a Angle) ToRotMat() RotMat {
	cy := float32(math.Cos(float64(a.Yaw)))
	sy := float32(math.Sin(float64(a.Yaw)))
	cp := float32(math.Cos(float64(a.Pitch)))
	sp := float32(math.Sin(float64(a.Pitch)))
	cr := float32(math.Cos(float64(a.Roll)))
	sr := float32(math.Sin(float64(a.Roll)))

	return RotMat{
		Forward: Vec{cp * cy, cp * sy, sp},
		Right:   Vec{cy*sp*sr - cr*sy, sy*sp*sr + cr*cy, -cp * sr},
		Up:      Vec{-cr*cy*sp - sr*sy, -cr*sy*sp + sr*cy, cp * cr},
	}
}

// AngleFromRotMat is the inverse of Angle.ToRotMat.
func AngleFromRotMat(m RotMat) Angle {
	var a Angle
	a.Pitch = float32(math.Asin(float64(clampf(m.Forward.Z, -1, 1))))
	a.Yaw = float32(math.Atan2(float64(m.Forward.Y), float64(m.Forward.X)))
	a.Roll = float32(math.Atan2(float64(-m.Right.Z), float64(m.Up.Z)))
	return a
}

// NormalizeFix wraps each component into (-pi, pi], pitch into (-pi/2, pi/2].
func (a Angle) NormalizeFix() Angle {
	a.Yaw = WrapNormalizeFloat(a.Yaw, math.Pi)
	a.Pitch = WrapNormalizeFloat(a.Pitch, math.Pi/2)
	a.Roll = WrapNormalizeFloat(a.Roll, math.Pi)
	return a
}

func clampf(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
