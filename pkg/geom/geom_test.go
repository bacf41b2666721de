package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurveEmptyReturnsDefault(t *testing.T) {
	var c LinearPieceCurve
	assert.Equal(t, float32(7), c.GetOutput(123, 7))
}

func TestCurveSinglePoint(t *testing.T) {
	c := NewCurve(CurvePoint{10, 3})
	assert.Equal(t, float32(3), c.GetOutput(-100, 0))
	assert.Equal(t, float32(3), c.GetOutput(10, 0))
	assert.Equal(t, float32(3), c.GetOutput(100, 0))
}

func TestCurveClampAndInterpolate(t *testing.T) {
	c := NewCurve(
		CurvePoint{0, 0},
		CurvePoint{10, 100},
		CurvePoint{20, 100},
		CurvePoint{30, 0},
	)

	assert.Equal(t, float32(0), c.GetOutput(-5, 1))
	assert.Equal(t, float32(0), c.GetOutput(30, 1))
	assert.Equal(t, float32(0), c.GetOutput(99, 1))
	assert.InDelta(t, 50, c.GetOutput(5, 1), 1e-4)
	assert.InDelta(t, 100, c.GetOutput(15, 1), 1e-4)
	assert.InDelta(t, 50, c.GetOutput(25, 1), 1e-4)
}

func TestCurveZeroWidthSegment(t *testing.T) {
	c := NewCurve(
		CurvePoint{0, 1},
		CurvePoint{5, 2},
		CurvePoint{5, 9},
		CurvePoint{10, 10},
	)
	// the duplicated control point is a step: the left segment governs
	// everything below it, the right segment everything from it on
	assert.InDelta(t, 2, c.GetOutput(4.999, 0), 0.01)
	assert.InDelta(t, 9, c.GetOutput(5, 0), 0.01)
	assert.InDelta(t, 9.5, c.GetOutput(7.5, 0), 0.01)
}

func TestWrapNormalizeFloat(t *testing.T) {
	const pi = math.Pi
	for _, x := range []float32{0, 1, -1, 3.5, -3.5, 10, -10, 1000, -1000} {
		got := WrapNormalizeFloat(x, pi)
		assert.LessOrEqual(t, got, float32(pi), "input %v", x)
		assert.Greater(t, got, float32(-pi)-1e-5, "input %v", x)
	}
	assert.InDelta(t, 0.5, WrapNormalizeFloat(0.5, pi), 1e-6)
	assert.InDelta(t, 0.5, WrapNormalizeFloat(0.5+2*pi, pi), 1e-4)
	assert.InDelta(t, -0.5, WrapNormalizeFloat(-0.5-2*pi, pi), 1e-4)
}

func TestAngleRotMatRoundTrip(t *testing.T) {
	angles := []Angle{
		{0, 0, 0},
		{1.2, 0.4, -0.7},
		{-2.5, -1.1, 2.0},
		{0.01, 1.4, 0},
	}
	for _, a := range angles {
		m := a.ToRotMat()

		// basis stays orthonormal
		assert.InDelta(t, 1, m.Forward.Length(), 1e-5)
		assert.InDelta(t, 1, m.Right.Length(), 1e-5)
		assert.InDelta(t, 1, m.Up.Length(), 1e-5)
		assert.InDelta(t, 0, m.Forward.Dot(m.Right), 1e-5)
		assert.InDelta(t, 0, m.Forward.Dot(m.Up), 1e-5)

		back := AngleFromRotMat(m)
		assert.InDelta(t, a.Yaw, back.Yaw, 1e-4)
		assert.InDelta(t, a.Pitch, back.Pitch, 1e-4)
		assert.InDelta(t, a.Roll, back.Roll, 1e-4)
	}
}

func TestRotMatIdentity(t *testing.T) {
	m := IdentityRotMat()
	v := Vec{1, 2, 3}
	assert.Equal(t, v, m.MulVec(v))
	assert.Equal(t, v, m.TransMulVec(v))
}

func TestRotMatTransposeInverts(t *testing.T) {
	m := Angle{0.8, -0.3, 0.5}.ToRotMat()
	v := Vec{10, -4, 2}
	rotated := m.MulVec(v)
	back := m.Transpose().MulVec(rotated)
	assert.InDelta(t, v.X, back.X, 1e-4)
	assert.InDelta(t, v.Y, back.Y, 1e-4)
	assert.InDelta(t, v.Z, back.Z, 1e-4)
}

func TestRoundAngleUE3Quantizes(t *testing.T) {
	// rotator unit after dropping the low two bits
	const step = math.Pi / float32(1<<13)

	a := RoundAngleUE3(Angle{Yaw: 1.0, Pitch: 0.5})
	yawSteps := float64(a.Yaw / step)
	pitchSteps := float64(a.Pitch / step)
	assert.InDelta(t, math.Round(yawSteps), yawSteps, 0.01)
	assert.InDelta(t, math.Round(pitchSteps), pitchSteps, 0.01)

	// close to, but coarser than, the input
	assert.InDelta(t, 1.0, a.Yaw, 0.002)
	assert.InDelta(t, 0.5, a.Pitch, 0.002)
}

func TestRNGDeterminism(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.RandInt(0, 1000), b.RandInt(0, 1000))
	}

	c := NewRNG(43)
	different := false
	d := NewRNG(42)
	for i := 0; i < 20; i++ {
		if c.RandInt(0, 1000) != d.RandInt(0, 1000) {
			different = true
		}
	}
	assert.True(t, different)
}

func TestRNGRanges(t *testing.T) {
	r := NewRNG(7)
	for i := 0; i < 1000; i++ {
		n := r.RandInt(3, 8)
		require.GreaterOrEqual(t, n, 3)
		require.Less(t, n, 8)

		f := r.RandFloat(-2, 2)
		require.GreaterOrEqual(t, f, float32(-2))
		require.Less(t, f, float32(2))
	}
}

func TestRandIntSeededReproducible(t *testing.T) {
	assert.Equal(t, RandIntSeeded(0, 5, 42), RandIntSeeded(0, 5, 42))
}

func TestVecOps(t *testing.T) {
	v := Vec{3, 4, 0}
	assert.Equal(t, float32(5), v.Length())
	assert.Equal(t, float32(5), v.Length2D())
	assert.InDelta(t, 1, v.Normalized().Length(), 1e-6)

	clamped := Vec{10, 0, 0}.ClampedLength(3)
	assert.InDelta(t, 3, clamped.Length(), 1e-5)

	assert.Equal(t, Vec{0, 0, 1}, Vec{1, 0, 0}.Cross(Vec{0, 1, 0}))
}
