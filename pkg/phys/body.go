package phys

import (
	"math"

	"github.com/pitchsim/pitchsim/pkg/geom"
)

// Body is a single rigid body. Entity bookkeeping (what kind of game object
// this is, and which one) lives in Kind and UserID; the simulation layer
// resolves those back to its own wrappers.
type Body struct {
	Shape Shape

	Pos    geom.Vec
	Rot    geom.RotMat
	Vel    geom.Vec
	AngVel geom.Vec

	InvMass       float32
	invInertiaLoc geom.Vec // diagonal inverse inertia in local space

	Friction      float32
	Restitution   float32
	LinearDamping float32

	// Static bodies never move; Frozen bodies keep state but are skipped
	// entirely (demolished cars).
	Static bool
	Frozen bool

	// Group/Mask collision filter, checked both ways.
	Group uint32
	Mask  uint32

	Kind   int
	UserID uint32

	forceAcc  geom.Vec
	torqueAcc geom.Vec

	world *World
	index int
}

func NewBody(shape Shape, mass float32) *Body {
	b := &Body{
		Shape:    shape,
		Rot:      geom.IdentityRotMat(),
		Friction: 0.5,
		Group:    0xffffffff,
		Mask:     0xffffffff,
	}
	b.SetMass(mass)
	return b
}

func (b *Body) SetMass(mass float32) {
	if mass <= 0 {
		b.InvMass = 0
		b.invInertiaLoc = geom.Vec{}
		b.Static = true
		return
	}
	b.InvMass = 1 / mass
	in := b.Shape.LocalInertia(mass)
	b.invInertiaLoc = geom.Vec{
		X: safeInv(in.X),
		Y: safeInv(in.Y),
		Z: safeInv(in.Z),
	}
}

func safeInv(x float32) float32 {
	if x <= 0 {
		return 0
	}
	return 1 / x
}

func (b *Body) Mass() float32 {
	if b.InvMass == 0 {
		return 0
	}
	return 1 / b.InvMass
}

// InvInertiaWorldMulVec applies the world-space inverse inertia tensor.
func (b *Body) InvInertiaWorldMulVec(v geom.Vec) geom.Vec {
	local := b.Rot.TransMulVec(v)
	local = geom.Vec{
		X: local.X * b.invInertiaLoc.X,
		Y: local.Y * b.invInertiaLoc.Y,
		Z: local.Z * b.invInertiaLoc.Z,
	}
	return b.Rot.MulVec(local)
}

func (b *Body) ApplyCentralImpulse(imp geom.Vec) {
	if b.InvMass == 0 || b.Frozen {
		return
	}
	b.Vel = b.Vel.Add(imp.Scale(b.InvMass))
}

func (b *Body) ApplyImpulse(imp, relPos geom.Vec) {
	if b.InvMass == 0 || b.Frozen {
		return
	}
	b.Vel = b.Vel.Add(imp.Scale(b.InvMass))
	b.AngVel = b.AngVel.Add(b.InvInertiaWorldMulVec(relPos.Cross(imp)))
}

func (b *Body) ApplyTorqueImpulse(t geom.Vec) {
	if b.InvMass == 0 || b.Frozen {
		return
	}
	b.AngVel = b.AngVel.Add(b.InvInertiaWorldMulVec(t))
}

// ApplyCentralForce accumulates a force for the next Step.
func (b *Body) ApplyCentralForce(f geom.Vec) {
	b.forceAcc = b.forceAcc.Add(f)
}

func (b *Body) ApplyTorque(t geom.Vec) {
	b.torqueAcc = b.torqueAcc.Add(t)
}

// VelocityAt returns the velocity of the body at a world point.
func (b *Body) VelocityAt(worldPoint geom.Vec) geom.Vec {
	return b.Vel.Add(b.AngVel.Cross(worldPoint.Sub(b.Pos)))
}

func (b *Body) integrateVelocity(dt float32, gravity geom.Vec) {
	if b.Static || b.Frozen || b.InvMass == 0 {
		return
	}
	b.Vel = b.Vel.Add(gravity.Scale(dt))
	b.Vel = b.Vel.Add(b.forceAcc.Scale(b.InvMass * dt))
	b.AngVel = b.AngVel.Add(b.InvInertiaWorldMulVec(b.torqueAcc).Scale(dt))
	b.forceAcc = geom.Vec{}
	b.torqueAcc = geom.Vec{}

	if b.LinearDamping > 0 {
		f := 1 - b.LinearDamping*dt
		if f < 0 {
			f = 0
		}
		b.Vel = b.Vel.Scale(f)
	}
}

func (b *Body) integratePosition(dt float32) {
	if b.Static || b.Frozen {
		return
	}
	b.Pos = b.Pos.Add(b.Vel.Scale(dt))

	w := b.AngVel
	angle := w.Length() * dt
	if angle > 1e-7 {
		b.Rot = rotateBasis(b.Rot, w.Normalized(), angle)
	}
}

// rotateBasis rotates each basis row around axis by angle (Rodrigues).
func rotateBasis(m geom.RotMat, axis geom.Vec, angle float32) geom.RotMat {
	s := float32(math.Sin(float64(angle)))
	c := float32(math.Cos(float64(angle)))
	rot := func(v geom.Vec) geom.Vec {
		return v.Scale(c).
			Add(axis.Cross(v).Scale(s)).
			Add(axis.Scale(axis.Dot(v) * (1 - c)))
	}
	out := geom.RotMat{
		Forward: rot(m.Forward),
		Right:   rot(m.Right),
		Up:      rot(m.Up),
	}
	return orthonormalize(out)
}

// orthonormalize re-squares the basis; error accumulates over many ticks
// otherwise.
func orthonormalize(m geom.RotMat) geom.RotMat {
	f := m.Forward.Normalized()
	r := m.Up.Cross(f)
	if r.LengthSq() < 1e-12 {
		r = geom.Vec{X: 0, Y: 1, Z: 0}
	}
	r = r.Normalized()
	u := f.Cross(r)
	return geom.RotMat{Forward: f, Right: r, Up: u}
}
