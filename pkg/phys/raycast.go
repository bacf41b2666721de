package phys

import (
	"math"

	"github.com/pitchsim/pitchsim/pkg/geom"
)

type RayHit struct {
	Body   *Body
	Point  geom.Vec
	Normal geom.Vec
	Frac   float32
}

// RayCast finds the closest hit along the segment from->to among bodies
// accepted by the filter (nil accepts all). Returns false on a miss.
func (w *World) RayCast(from, to geom.Vec, filter func(*Body) bool) (RayHit, bool) {
	best := RayHit{Frac: 2}
	dir := to.Sub(from)

	for _, b := range w.bodies {
		if b.Frozen {
			continue
		}
		if filter != nil && !filter(b) {
			continue
		}
		if frac, normal, ok := rayVsBody(from, dir, b); ok && frac < best.Frac {
			best = RayHit{
				Body:   b,
				Point:  from.Add(dir.Scale(frac)),
				Normal: normal,
				Frac:   frac,
			}
		}
	}
	return best, best.Frac <= 1
}

func rayVsBody(from, dir geom.Vec, b *Body) (float32, geom.Vec, bool) {
	switch s := b.Shape.(type) {
	case SphereShape:
		return rayVsSphere(from, dir, b.Pos, s.Radius)
	case BoxShape:
		return rayVsBox(from, dir, b.Pos, b.Rot, s.HalfExtents)
	case PlaneShape:
		return rayVsPlane(from, dir, s.Normal, s.Offset)
	case *TriMeshShape:
		return rayVsMesh(from, dir, s)
	}
	return 0, geom.Vec{}, false
}

func rayVsPlane(from, dir, n geom.Vec, offset float32) (float32, geom.Vec, bool) {
	denom := dir.Dot(n)
	if absf32(denom) < 1e-9 {
		return 0, geom.Vec{}, false
	}
	t := (offset - from.Dot(n)) / denom
	if t < 0 || t > 1 {
		return 0, geom.Vec{}, false
	}
	if denom > 0 {
		n = n.Neg()
	}
	return t, n, true
}

func rayVsSphere(from, dir, center geom.Vec, radius float32) (float32, geom.Vec, bool) {
	oc := from.Sub(center)
	a := dir.LengthSq()
	if a < 1e-12 {
		return 0, geom.Vec{}, false
	}
	bHalf := oc.Dot(dir)
	c := oc.LengthSq() - radius*radius
	disc := bHalf*bHalf - a*c
	if disc < 0 {
		return 0, geom.Vec{}, false
	}
	t := (-bHalf - sqrtf(disc)) / a
	if t < 0 || t > 1 {
		return 0, geom.Vec{}, false
	}
	point := from.Add(dir.Scale(t))
	return t, point.Sub(center).Normalized(), true
}

func rayVsBox(from, dir, pos geom.Vec, rot geom.RotMat, half geom.Vec) (float32, geom.Vec, bool) {
	localFrom := rot.TransMulVec(from.Sub(pos))
	localDir := rot.TransMulVec(dir)

	tMin, tMax := float32(0), float32(1)
	hitAxis, hitSign := -1, float32(1)

	for i := 0; i < 3; i++ {
		o := localFrom.Comp(i)
		d := localDir.Comp(i)
		h := half.Comp(i)
		if absf32(d) < 1e-9 {
			if o < -h || o > h {
				return 0, geom.Vec{}, false
			}
			continue
		}
		t1 := (-h - o) / d
		t2 := (h - o) / d
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tMin {
			tMin = t1
			hitAxis = i
			hitSign = sign
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, geom.Vec{}, false
		}
	}
	if hitAxis < 0 {
		return 0, geom.Vec{}, false
	}
	return tMin, rot.Row(hitAxis).Scale(hitSign), true
}

func rayVsMesh(from, dir geom.Vec, mesh *TriMeshShape) (float32, geom.Vec, bool) {
	to := from.Add(dir)
	lo := vecMin(from, to)
	hi := vecMax(from, to)

	bestT := float32(2)
	var bestN geom.Vec
	seen := map[int32]bool{}
	mesh.ForEachTriangleIn(lo, hi, func(i int32, tri Triangle) {
		if seen[i] {
			return
		}
		seen[i] = true
		if t, ok := rayVsTriangle(from, dir, tri); ok && t < bestT {
			bestT = t
			bestN = tri.Normal()
			if bestN.Dot(dir) > 0 {
				bestN = bestN.Neg()
			}
		}
	})
	if bestT > 1 {
		return 0, geom.Vec{}, false
	}
	return bestT, bestN, true
}

// rayVsTriangle is Moller-Trumbore restricted to t in [0, 1].
func rayVsTriangle(from, dir geom.Vec, tri Triangle) (float32, bool) {
	e1 := tri.B.Sub(tri.A)
	e2 := tri.C.Sub(tri.A)
	h := dir.Cross(e2)
	a := e1.Dot(h)
	if absf32(a) < 1e-9 {
		return 0, false
	}
	f := 1 / a
	s := from.Sub(tri.A)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := f * e2.Dot(q)
	if t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}

func sqrtf(x float32) float32 {
	if x <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(x)))
}
