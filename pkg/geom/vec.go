package geom

import "math"

// Vec is a 3-component vector in unreal units (1 UU ~= 1 cm).
type Vec struct {
	X, Y, Z float32
}

func NewVec(x, y, z float32) Vec {
	return Vec{x, y, z}
}

func (v Vec) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec) Scale(k float32) Vec { return Vec{v.X * k, v.Y * k, v.Z * k} }

func (v Vec) Neg() Vec { return Vec{-v.X, -v.Y, -v.Z} }

func (v Vec) Dot(o Vec) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec) Cross(o Vec) Vec {
	return Vec{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec) LengthSq() float32 { return v.Dot(v) }

func (v Vec) Length() float32 {
	return float32(math.Sqrt(float64(v.LengthSq())))
}

func (v Vec) Length2D() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

func (v Vec) Dist(o Vec) float32 { return v.Sub(o).Length() }

func (v Vec) DistSq(o Vec) float32 { return v.Sub(o).LengthSq() }

// Normalized returns the unit vector, or the zero vector when too short.
func (v Vec) Normalized() Vec {
	lenSq := v.LengthSq()
	if lenSq < 1e-12 {
		return Vec{}
	}
	return v.Scale(1 / float32(math.Sqrt(float64(lenSq))))
}

// ClampedLength limits the vector to maxLen, preserving direction.
func (v Vec) ClampedLength(maxLen float32) Vec {
	lenSq := v.LengthSq()
	if lenSq <= maxLen*maxLen {
		return v
	}
	return v.Scale(maxLen / float32(math.Sqrt(float64(lenSq))))
}

func (v Vec) Lerp(o Vec, t float32) Vec {
	return v.Add(o.Sub(v).Scale(t))
}

func (v Vec) Abs() Vec {
	return Vec{absf(v.X), absf(v.Y), absf(v.Z)}
}

// Comp returns the i-th component (0=X, 1=Y, 2=Z).
func (v Vec) Comp(i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func (v *Vec) SetComp(i int, val float32) {
	switch i {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
