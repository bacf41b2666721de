package geom

import "math"

// WrapNormalizeFloat wraps val into (-minmax, minmax].
func WrapNormalizeFloat(val, minmax float32) float32 {
	result := float32(math.Mod(float64(val), float64(minmax*2)))
	if result > minmax {
		result -= minmax * 2
	} else if result <= -minmax {
		result += minmax * 2
	}
	return result
}

// RoundVec rounds each component to the nearest multiple of precision.
func RoundVec(v Vec, precision float32) Vec {
	return Vec{
		roundf(v.X/precision) * precision,
		roundf(v.Y/precision) * precision,
		roundf(v.Z/precision) * precision,
	}
}

// RoundAngleUE3 quantizes yaw and pitch the way UE3 rounds a rotator when
// converting to a direction vector: 16-bit rotator units, low two bits
// dropped. Roll is assumed zero.
func RoundAngleUE3(ang Angle) Angle {
	const toInts = float32(1<<15) / math.Pi
	const backToRadians = (1.0 / toInts) * 4
	const roundingMask = 0x4000 - 1

	rYaw := (int32(ang.Yaw*toInts) >> 2) & roundingMask
	rPitch := (int32(ang.Pitch*toInts) >> 2) & roundingMask
	ang.Yaw = float32(rYaw) * backToRadians
	ang.Pitch = float32(rPitch) * backToRadians

	return ang
}

func roundf(x float32) float32 {
	return float32(math.Round(float64(x)))
}

func Clamp(x, lo, hi float32) float32 {
	return clampf(x, lo, hi)
}

func Lerpf(a, b, t float32) float32 {
	return a + (b-a)*t
}

func Sgn(x float32) float32 {
	if x < 0 {
		return -1
	}
	if x > 0 {
		return 1
	}
	return 0
}

func Minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func Maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
