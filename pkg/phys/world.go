package phys

import "github.com/pitchsim/pitchsim/pkg/geom"

const (
	solverIterations = 8
	penetrationSlop  = 0.5
	baumgarte        = 0.2

	restitutionThreshold = 30.0
)

// ContactInfo is handed to the contact hook once per manifold point, during
// the step. The hook must not mutate body state; it may override the
// manifold's combined material before the solve.
type ContactInfo struct {
	BodyA, BodyB *Body

	LocalPointA geom.Vec
	LocalPointB geom.Vec
	WorldPoint  geom.Vec
	NormalOnB   geom.Vec
	Depth       float32

	Manifold *Manifold
}

// World is a discrete rigid-body world. Not safe for concurrent use; one
// arena owns one world.
type World struct {
	Gravity geom.Vec

	bodies []*Body

	contactHook func(*ContactInfo)
	pairFilter  func(a, b *Body) bool

	manifolds []*Manifold
}

func NewWorld(gravity geom.Vec) *World {
	return &World{Gravity: gravity}
}

func (w *World) AddBody(b *Body) {
	b.world = w
	b.index = len(w.bodies)
	w.bodies = append(w.bodies, b)
}

func (w *World) RemoveBody(b *Body) {
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			for j := i; j < len(w.bodies); j++ {
				w.bodies[j].index = j
			}
			b.world = nil
			return
		}
	}
}

func (w *World) Bodies() []*Body { return w.bodies }

// SetContactHook installs the per-manifold-point callback. The engine's
// contact tracker is the only intended consumer.
func (w *World) SetContactHook(hook func(*ContactInfo)) {
	w.contactHook = hook
}

// SetPairFilter installs an additional pair predicate checked after the
// group/mask filter. Used for the car-car / car-ball collision mutators.
func (w *World) SetPairFilter(filter func(a, b *Body) bool) {
	w.pairFilter = filter
}

func (w *World) shouldCollide(a, b *Body) bool {
	if a.Frozen || b.Frozen {
		return false
	}
	if a.Static && b.Static {
		return false
	}
	if a.Group&b.Mask == 0 || b.Group&a.Mask == 0 {
		return false
	}
	if w.pairFilter != nil && !w.pairFilter(a, b) {
		return false
	}
	return true
}

// Step advances the world by dt: integrate velocities, find contacts (firing
// the contact hook), solve impulses, integrate positions.
func (w *World) Step(dt float32) {
	for _, b := range w.bodies {
		b.integrateVelocity(dt, w.Gravity)
	}

	w.manifolds = w.manifolds[:0]
	n := len(w.bodies)
	for i := 0; i < n; i++ {
		a := w.bodies[i]
		for j := i + 1; j < n; j++ {
			b := w.bodies[j]
			if !w.shouldCollide(a, b) {
				continue
			}
			if !aabbOverlap(a, b) {
				continue
			}
			m := collidePair(a, b)
			if m == nil || len(m.Points) == 0 {
				continue
			}
			w.manifolds = append(w.manifolds, m)
			w.fireContactHook(m)
		}
	}

	for iter := 0; iter < solverIterations; iter++ {
		for _, m := range w.manifolds {
			solveManifold(m, dt)
		}
	}

	for _, b := range w.bodies {
		b.integratePosition(dt)
	}
}

func (w *World) fireContactHook(m *Manifold) {
	if w.contactHook == nil {
		return
	}
	for _, p := range m.Points {
		info := ContactInfo{
			BodyA:       m.A,
			BodyB:       m.B,
			LocalPointA: m.A.Rot.TransMulVec(p.WorldPoint.Sub(m.A.Pos)),
			LocalPointB: m.B.Rot.TransMulVec(p.WorldPoint.Sub(m.B.Pos)),
			WorldPoint:  p.WorldPoint,
			NormalOnB:   p.NormalOnB,
			Depth:       p.Depth,
			Manifold:    m,
		}
		w.contactHook(&info)
	}
}

func aabbOverlap(a, b *Body) bool {
	aLo, aHi := a.Shape.AABB(a.Pos, a.Rot)
	bLo, bHi := b.Shape.AABB(b.Pos, b.Rot)
	return aLo.X <= bHi.X && bLo.X <= aHi.X &&
		aLo.Y <= bHi.Y && bLo.Y <= aHi.Y &&
		aLo.Z <= bHi.Z && bLo.Z <= aHi.Z
}

// solveManifold runs one sequential-impulse pass over a manifold.
func solveManifold(m *Manifold, dt float32) {
	a, b := m.A, m.B
	for _, p := range m.Points {
		n := p.NormalOnB
		rA := p.WorldPoint.Sub(a.Pos)
		rB := p.WorldPoint.Sub(b.Pos)

		relVel := a.VelocityAt(p.WorldPoint).Sub(b.VelocityAt(p.WorldPoint))
		vn := relVel.Dot(n)

		// effective mass along the normal
		angA := a.InvInertiaWorldMulVec(rA.Cross(n)).Cross(rA)
		angB := b.InvInertiaWorldMulVec(rB.Cross(n)).Cross(rB)
		kn := a.InvMass + b.InvMass + n.Dot(angA.Add(angB))
		if kn < 1e-9 {
			continue
		}

		bias := baumgarte / dt * geom.Maxf(0, p.Depth-penetrationSlop)

		bounce := float32(0)
		if -vn > restitutionThreshold {
			bounce = m.CombinedRestitution * -vn
		}

		lambda := (-vn + geom.Maxf(bias, bounce)) / kn
		if lambda <= 0 {
			continue
		}

		impulse := n.Scale(lambda)
		a.applySolveImpulse(impulse, rA)
		b.applySolveImpulse(impulse.Neg(), rB)

		// friction along the tangent of the new relative velocity
		relVel = a.VelocityAt(p.WorldPoint).Sub(b.VelocityAt(p.WorldPoint))
		tangent := relVel.Sub(n.Scale(relVel.Dot(n)))
		tLen := tangent.Length()
		if tLen < 1e-5 {
			continue
		}
		tangent = tangent.Scale(1 / tLen)

		angA = a.InvInertiaWorldMulVec(rA.Cross(tangent)).Cross(rA)
		angB = b.InvInertiaWorldMulVec(rB.Cross(tangent)).Cross(rB)
		kt := a.InvMass + b.InvMass + tangent.Dot(angA.Add(angB))
		if kt < 1e-9 {
			continue
		}

		jt := -relVel.Dot(tangent) / kt
		maxFriction := m.CombinedFriction * lambda
		jt = geom.Clamp(jt, -maxFriction, maxFriction)

		fImpulse := tangent.Scale(jt)
		a.applySolveImpulse(fImpulse, rA)
		b.applySolveImpulse(fImpulse.Neg(), rB)
	}
}

func (b *Body) applySolveImpulse(imp, relPos geom.Vec) {
	if b.InvMass == 0 || b.Static || b.Frozen {
		return
	}
	b.Vel = b.Vel.Add(imp.Scale(b.InvMass))
	b.AngVel = b.AngVel.Add(b.InvInertiaWorldMulVec(relPos.Cross(imp)))
}
