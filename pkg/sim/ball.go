package sim

import (
	"github.com/pitchsim/pitchsim/pkg/geom"
	"github.com/pitchsim/pitchsim/pkg/phys"
)

// HeatseekerInfo is the ball's targeting state in heatseeker mode.
type HeatseekerInfo struct {
	// YTargetDir is the sign of the goal currently targeted, 0 before the
	// first touch.
	YTargetDir     float32
	CurTargetSpeed float32
	TimeSinceHit   float32
}

// DropshotInfo is the ball's charge state in dropshot mode.
type DropshotInfo struct {
	ChargeLevel         int32
	AccumulatedHitForce float32
	YTargetDir          float32
	HasDamaged          bool
}

// BallState is the externally visible ball snapshot.
type BallState struct {
	Pos    geom.Vec
	RotMat geom.RotMat
	Vel    geom.Vec
	AngVel geom.Vec

	LastHitCarID uint32

	HSInfo HeatseekerInfo
	DSInfo DropshotInfo

	TickCountSinceUpdate uint64
}

func DefaultBallState() BallState {
	return BallState{
		Pos:    geom.Vec{Z: BallRestZ},
		RotMat: geom.IdentityRotMat(),
		HSInfo: HeatseekerInfo{CurTargetSpeed: HeatseekerInitialSpeed},
	}
}

// Ball wraps the ball rigid body plus the per-mode extra state.
type Ball struct {
	arena *Arena
	body  *phys.Body

	lastHitCarID uint32
	hsInfo       HeatseekerInfo
	hsTouchCount int
	dsInfo       DropshotInfo

	tickCountSinceUpdate uint64
}

func newBall(arena *Arena) *Ball {
	mutators := &arena.mutatorConfig

	body := phys.NewBody(phys.SphereShape{Radius: mutators.BallRadius}, mutators.BallMass)
	body.Pos = geom.Vec{Z: BallRestZ}
	body.Friction = mutators.BallWorldFriction
	body.Restitution = mutators.BallWorldRestitution
	body.LinearDamping = mutators.BallDrag
	body.Kind = entityBall
	arena.world.AddBody(body)

	return &Ball{
		arena: arena,
		body:  body,
		hsInfo: HeatseekerInfo{
			CurTargetSpeed: HeatseekerInitialSpeed,
		},
	}
}

// Radius returns the ball's collision radius.
func (b *Ball) Radius() float32 {
	return b.body.Shape.(phys.SphereShape).Radius
}

func (b *Ball) GetState() BallState {
	return BallState{
		Pos:                  b.body.Pos,
		RotMat:               b.body.Rot,
		Vel:                  b.body.Vel,
		AngVel:               b.body.AngVel,
		LastHitCarID:         b.lastHitCarID,
		HSInfo:               b.hsInfo,
		DSInfo:               b.dsInfo,
		TickCountSinceUpdate: b.tickCountSinceUpdate,
	}
}

// SetState overwrites the ball. Speeds are clamped to the active mutators and
// the staleness counter resets.
func (b *Ball) SetState(s BallState) {
	mutators := &b.arena.mutatorConfig
	b.body.Pos = s.Pos
	b.body.Rot = s.RotMat
	b.body.Vel = s.Vel.ClampedLength(mutators.BallMaxSpeed)
	b.body.AngVel = s.AngVel.ClampedLength(mutators.BallMaxAngSpeed)
	b.lastHitCarID = s.LastHitCarID
	b.hsInfo = s.HSInfo
	b.dsInfo = s.DSInfo
	b.tickCountSinceUpdate = 0
}

func (b *Ball) applyMutators(mutators *MutatorConfig) {
	b.body.Shape = phys.SphereShape{Radius: mutators.BallRadius}
	b.body.SetMass(mutators.BallMass)
	b.body.Friction = mutators.BallWorldFriction
	b.body.Restitution = mutators.BallWorldRestitution
	b.body.LinearDamping = mutators.BallDrag
}

// onTouch records a car touch and feeds the per-mode state machines.
func (b *Ball) onTouch(car *Car, relSpeed float32) {
	b.lastHitCarID = car.id

	switch b.arena.gameMode {
	case Heatseeker:
		b.hsTouchCount++
		b.hsInfo.YTargetDir = -car.team.YDir()
		b.hsInfo.TimeSinceHit = 0
		b.hsInfo.CurTargetSpeed = heatseekerTouchSpeedCurve.GetOutput(
			float32(b.hsTouchCount), HeatseekerInitialSpeed)
	case Dropshot:
		b.dsInfo.YTargetDir = -car.team.YDir()
		b.dsInfo.HasDamaged = false
		b.dsInfo.AccumulatedHitForce += relSpeed
		switch {
		case b.dsInfo.AccumulatedHitForce >= DropshotChargeThreshold2:
			b.dsInfo.ChargeLevel = 2
		case b.dsInfo.AccumulatedHitForce >= DropshotChargeThreshold1:
			b.dsInfo.ChargeLevel = 1
		}
	}
}

// postTickUpdate runs the per-mode hook and clamps speeds; called after the
// solver step and contact dispatch.
func (b *Ball) postTickUpdate(dt float32) {
	switch b.arena.gameMode {
	case Heatseeker:
		b.heatseekerUpdate(dt)
	case Dropshot:
		b.dropshotUpdate()
	}

	mutators := &b.arena.mutatorConfig
	b.body.Vel = b.body.Vel.ClampedLength(mutators.BallMaxSpeed)
	b.body.AngVel = b.body.AngVel.ClampedLength(mutators.BallMaxAngSpeed)

	b.tickCountSinceUpdate++
}

func (b *Ball) heatseekerUpdate(dt float32) {
	hs := &b.hsInfo
	hs.TimeSinceHit += dt

	if hs.YTargetDir == 0 {
		return
	}
	if hs.TimeSinceHit < HeatseekerRetargetDelay {
		return
	}
	if b.body.Pos.Z < HeatseekerMinFieldZ {
		return
	}

	target := geom.Vec{
		Y: hs.YTargetDir * (ArenaExtentY + GoalDepth/2),
		Z: HeatseekerTargetZ,
	}
	desired := target.Sub(b.body.Pos).Normalized()

	speed := b.body.Vel.Length()
	targetSpeed := geom.Minf(hs.CurTargetSpeed, HeatseekerMaxSpeed)
	speed = geom.Lerpf(speed, targetSpeed, geom.Minf(1, HeatseekerAccelPerSecond*dt/targetSpeed))

	dir := b.body.Vel.Normalized()
	if dir.IsZero() {
		dir = desired
	} else {
		dir = dir.Lerp(desired, HeatseekerTurnRatePerTick).Normalized()
	}
	b.body.Vel = dir.Scale(speed)
}

func (b *Ball) dropshotUpdate() {
	ds := &b.dsInfo
	if ds.ChargeLevel == 0 || ds.HasDamaged {
		return
	}
	if b.arena.tiles == nil {
		return
	}
	// damage resolves when the charged ball lands on the target half
	if b.body.Vel.Z > -DropshotMinDamageVel {
		return
	}
	if b.body.Pos.Z > b.Radius()+10 {
		return
	}
	if geom.Sgn(b.body.Pos.Y) != ds.YTargetDir {
		return
	}

	if b.arena.tiles.damageAt(b.body.Pos, ds.ChargeLevel) {
		ds.HasDamaged = true
		ds.ChargeLevel = 0
		ds.AccumulatedHitForce = 0
	}
}
