package phys

import "github.com/pitchsim/pitchsim/pkg/geom"

const maxManifoldPoints = 4

// ContactPoint is a single manifold point. NormalOnB points from body B
// toward body A; Depth is positive while penetrating.
type ContactPoint struct {
	WorldPoint geom.Vec
	NormalOnB  geom.Vec
	Depth      float32
}

type Manifold struct {
	A, B   *Body
	Points []ContactPoint

	CombinedFriction    float32
	CombinedRestitution float32
}

func combineMaterials(m *Manifold) {
	m.CombinedFriction = m.A.Friction * m.B.Friction
	m.CombinedRestitution = geom.Maxf(m.A.Restitution, m.B.Restitution)
}

// collidePair produces the manifold for two bodies, or nil. The first body
// of the returned manifold is always a dynamic body.
func collidePair(a, b *Body) *Manifold {
	// order so that a sphere comes before a box, and statics come second
	switch sa := a.Shape.(type) {
	case SphereShape:
		switch sb := b.Shape.(type) {
		case SphereShape:
			return collideSphereSphere(a, b, sa, sb)
		case BoxShape:
			return collideSphereBox(a, b, sa, sb)
		case PlaneShape:
			return collideSpherePlane(a, b, sa, sb)
		case *TriMeshShape:
			return collideSphereMesh(a, b, sa, sb)
		}
	case BoxShape:
		switch sb := b.Shape.(type) {
		case SphereShape:
			return swapManifold(collideSphereBox(b, a, sb, sa))
		case BoxShape:
			return collideBoxBox(a, b, sa, sb)
		case PlaneShape:
			return collideBoxPlane(a, b, sa, sb)
		case *TriMeshShape:
			return collideBoxMesh(a, b, sa, sb)
		}
	case PlaneShape:
		return swapManifold(collidePair(b, a))
	case *TriMeshShape:
		return swapManifold(collidePair(b, a))
	}
	return nil
}

func swapManifold(m *Manifold) *Manifold {
	if m == nil {
		return nil
	}
	m.A, m.B = m.B, m.A
	for i := range m.Points {
		m.Points[i].NormalOnB = m.Points[i].NormalOnB.Neg()
	}
	return m
}

func collideSphereSphere(a, b *Body, sa, sb SphereShape) *Manifold {
	delta := a.Pos.Sub(b.Pos)
	distSq := delta.LengthSq()
	rSum := sa.Radius + sb.Radius
	if distSq >= rSum*rSum {
		return nil
	}

	dist := delta.Length()
	var n geom.Vec
	if dist > 1e-6 {
		n = delta.Scale(1 / dist)
	} else {
		n = geom.Vec{Z: 1}
	}

	m := &Manifold{A: a, B: b}
	m.Points = append(m.Points, ContactPoint{
		WorldPoint: b.Pos.Add(n.Scale(sb.Radius)),
		NormalOnB:  n,
		Depth:      rSum - dist,
	})
	combineMaterials(m)
	return m
}

// closestPointOnOBB returns the closest point on the box surface (or the
// clamped interior point) to p, in world space.
func closestPointOnOBB(p, boxPos geom.Vec, boxRot geom.RotMat, half geom.Vec) geom.Vec {
	local := boxRot.TransMulVec(p.Sub(boxPos))
	clamped := geom.Vec{
		X: geom.Clamp(local.X, -half.X, half.X),
		Y: geom.Clamp(local.Y, -half.Y, half.Y),
		Z: geom.Clamp(local.Z, -half.Z, half.Z),
	}
	return boxPos.Add(boxRot.MulVec(clamped))
}

func collideSphereBox(a, b *Body, sa SphereShape, sb BoxShape) *Manifold {
	closest := closestPointOnOBB(a.Pos, b.Pos, b.Rot, sb.HalfExtents)
	delta := a.Pos.Sub(closest)
	distSq := delta.LengthSq()

	if distSq > 1e-9 {
		if distSq >= sa.Radius*sa.Radius {
			return nil
		}
		dist := delta.Length()
		n := delta.Scale(1 / dist)
		m := &Manifold{A: a, B: b}
		m.Points = append(m.Points, ContactPoint{
			WorldPoint: closest,
			NormalOnB:  n,
			Depth:      sa.Radius - dist,
		})
		combineMaterials(m)
		return m
	}

	// center inside the box: push out along the axis of least penetration
	local := b.Rot.TransMulVec(a.Pos.Sub(b.Pos))
	minPen := float32(1e9)
	axis := 0
	sign := float32(1)
	for i := 0; i < 3; i++ {
		h := sb.HalfExtents.Comp(i)
		for _, s := range []float32{1, -1} {
			pen := h - s*local.Comp(i)
			if pen < minPen {
				minPen = pen
				axis = i
				sign = s
			}
		}
	}
	n := b.Rot.Row(axis).Scale(sign)
	m := &Manifold{A: a, B: b}
	m.Points = append(m.Points, ContactPoint{
		WorldPoint: a.Pos,
		NormalOnB:  n,
		Depth:      minPen + sa.Radius,
	})
	combineMaterials(m)
	return m
}

func collideSpherePlane(a, b *Body, sa SphereShape, sb PlaneShape) *Manifold {
	dist := a.Pos.Dot(sb.Normal) - sb.Offset
	if dist >= sa.Radius {
		return nil
	}
	m := &Manifold{A: a, B: b}
	m.Points = append(m.Points, ContactPoint{
		WorldPoint: a.Pos.Sub(sb.Normal.Scale(dist)),
		NormalOnB:  sb.Normal,
		Depth:      sa.Radius - dist,
	})
	combineMaterials(m)
	return m
}

func boxCorners(pos geom.Vec, rot geom.RotMat, half geom.Vec) [8]geom.Vec {
	var out [8]geom.Vec
	i := 0
	for _, sx := range []float32{-1, 1} {
		for _, sy := range []float32{-1, 1} {
			for _, sz := range []float32{-1, 1} {
				local := geom.Vec{X: sx * half.X, Y: sy * half.Y, Z: sz * half.Z}
				out[i] = pos.Add(rot.MulVec(local))
				i++
			}
		}
	}
	return out
}

func collideBoxPlane(a, b *Body, sa BoxShape, sb PlaneShape) *Manifold {
	m := &Manifold{A: a, B: b}
	for _, c := range boxCorners(a.Pos, a.Rot, sa.HalfExtents) {
		dist := c.Dot(sb.Normal) - sb.Offset
		if dist < 0 {
			m.Points = appendDeepest(m.Points, ContactPoint{
				WorldPoint: c,
				NormalOnB:  sb.Normal,
				Depth:      -dist,
			})
		}
	}
	if len(m.Points) == 0 {
		return nil
	}
	combineMaterials(m)
	return m
}

// appendDeepest keeps at most maxManifoldPoints, discarding the shallowest.
func appendDeepest(pts []ContactPoint, p ContactPoint) []ContactPoint {
	if len(pts) < maxManifoldPoints {
		return append(pts, p)
	}
	shallowest := 0
	for i := 1; i < len(pts); i++ {
		if pts[i].Depth < pts[shallowest].Depth {
			shallowest = i
		}
	}
	if p.Depth > pts[shallowest].Depth {
		pts[shallowest] = p
	}
	return pts
}

func closestPointOnTriangle(p geom.Vec, t Triangle) geom.Vec {
	ab := t.B.Sub(t.A)
	ac := t.C.Sub(t.A)
	ap := p.Sub(t.A)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return t.A
	}

	bp := p.Sub(t.B)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return t.B
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return t.A.Add(ab.Scale(v))
	}

	cp := p.Sub(t.C)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return t.C
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return t.A.Add(ac.Scale(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return t.B.Add(t.C.Sub(t.B).Scale(w))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return t.A.Add(ab.Scale(v)).Add(ac.Scale(w))
}

func collideSphereMesh(a, b *Body, sa SphereShape, sb *TriMeshShape) *Manifold {
	lo, hi := sa.AABB(a.Pos, a.Rot)
	m := &Manifold{A: a, B: b}
	seen := map[int32]bool{}
	sb.ForEachTriangleIn(lo, hi, func(i int32, t Triangle) {
		if seen[i] {
			return
		}
		seen[i] = true

		closest := closestPointOnTriangle(a.Pos, t)
		delta := a.Pos.Sub(closest)
		distSq := delta.LengthSq()
		if distSq >= sa.Radius*sa.Radius || distSq < 1e-12 {
			return
		}
		dist := delta.Length()
		m.Points = appendDeepest(m.Points, ContactPoint{
			WorldPoint: closest,
			NormalOnB:  delta.Scale(1 / dist),
			Depth:      sa.Radius - dist,
		})
	})
	if len(m.Points) == 0 {
		return nil
	}
	combineMaterials(m)
	return m
}

func collideBoxMesh(a, b *Body, sa BoxShape, sb *TriMeshShape) *Manifold {
	lo, hi := sa.AABB(a.Pos, a.Rot)
	corners := boxCorners(a.Pos, a.Rot, sa.HalfExtents)
	m := &Manifold{A: a, B: b}
	seen := map[int32]bool{}
	sb.ForEachTriangleIn(lo, hi, func(i int32, t Triangle) {
		if seen[i] {
			return
		}
		seen[i] = true

		n := t.Normal()
		if n.IsZero() {
			return
		}
		planeD := n.Dot(t.A)
		for _, c := range corners {
			dist := c.Dot(n) - planeD
			if dist >= 0 || dist < -boxMeshMaxPen {
				continue
			}
			// the corner must project into the triangle
			proj := c.Sub(n.Scale(dist))
			if proj.DistSq(closestPointOnTriangle(proj, t)) > 1e-4 {
				continue
			}
			m.Points = appendDeepest(m.Points, ContactPoint{
				WorldPoint: c,
				NormalOnB:  n,
				Depth:      -dist,
			})
		}
	})
	if len(m.Points) == 0 {
		return nil
	}
	combineMaterials(m)
	return m
}

// boxMeshMaxPen bounds tunnel depth for box-vs-triangle corner tests; deeper
// corners belong to triangles on the far side of thin geometry.
const boxMeshMaxPen = 50.0

func collideBoxBox(a, b *Body, sa, sb BoxShape) *Manifold {
	axes := make([]geom.Vec, 0, 15)
	for i := 0; i < 3; i++ {
		axes = append(axes, a.Rot.Row(i), b.Rot.Row(i))
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cross := a.Rot.Row(i).Cross(b.Rot.Row(j))
			if cross.LengthSq() > 1e-8 {
				axes = append(axes, cross.Normalized())
			}
		}
	}

	delta := a.Pos.Sub(b.Pos)
	minPen := float32(1e9)
	var minAxis geom.Vec

	for _, axis := range axes {
		ra := projectBox(axis, a.Rot, sa.HalfExtents)
		rb := projectBox(axis, b.Rot, sb.HalfExtents)
		d := delta.Dot(axis)
		pen := ra + rb - absf32(d)
		if pen <= 0 {
			return nil
		}
		if pen < minPen {
			minPen = pen
			if d >= 0 {
				minAxis = axis
			} else {
				minAxis = axis.Neg()
			}
		}
	}

	// single-point manifold at the midpoint of the supports
	supA := supportPointBox(a.Pos, a.Rot, sa.HalfExtents, minAxis.Neg())
	supB := supportPointBox(b.Pos, b.Rot, sb.HalfExtents, minAxis)

	m := &Manifold{A: a, B: b}
	m.Points = append(m.Points, ContactPoint{
		WorldPoint: supA.Lerp(supB, 0.5),
		NormalOnB:  minAxis,
		Depth:      minPen,
	})
	combineMaterials(m)
	return m
}

func projectBox(axis geom.Vec, rot geom.RotMat, half geom.Vec) float32 {
	return absf32(axis.Dot(rot.Forward))*half.X +
		absf32(axis.Dot(rot.Right))*half.Y +
		absf32(axis.Dot(rot.Up))*half.Z
}

func supportPointBox(pos geom.Vec, rot geom.RotMat, half, dir geom.Vec) geom.Vec {
	local := geom.Vec{
		X: geom.Sgn(dir.Dot(rot.Forward)) * half.X,
		Y: geom.Sgn(dir.Dot(rot.Right)) * half.Y,
		Z: geom.Sgn(dir.Dot(rot.Up)) * half.Z,
	}
	return pos.Add(rot.MulVec(local))
}

func absf32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
