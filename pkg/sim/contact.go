package sim

import (
	"github.com/pitchsim/pitchsim/pkg/geom"
	"github.com/pitchsim/pitchsim/pkg/phys"
)

// Entity kind tags carried on rigid bodies.
const (
	entityWorld = 1
	entityBall  = 2
	entityCar   = 3
)

// collisionRecord is one manifold point captured during the solver step for
// deferred processing. Entities are referenced by kind + id, never by
// pointer.
type collisionRecord struct {
	kindA, kindB int
	idA, idB     uint32

	localPointA geom.Vec
	localPointB geom.Vec
	worldPoint  geom.Vec
	normalOnB   geom.Vec

	combinedFriction    float32
	combinedRestitution float32
}

// contactTracker records manifold points inside the solver's contact hook.
// The hook must stay a pure read of world state; all game-state mutation
// happens when the tracker is drained after the step.
type contactTracker struct {
	records []collisionRecord
}

func (t *contactTracker) clear() {
	t.records = t.records[:0]
}

func (t *contactTracker) record(ci *phys.ContactInfo) {
	t.records = append(t.records, collisionRecord{
		kindA:               ci.BodyA.Kind,
		kindB:               ci.BodyB.Kind,
		idA:                 ci.BodyA.UserID,
		idB:                 ci.BodyB.UserID,
		localPointA:         ci.LocalPointA,
		localPointB:         ci.LocalPointB,
		worldPoint:          ci.WorldPoint,
		normalOnB:           ci.NormalOnB,
		combinedFriction:    ci.Manifold.CombinedFriction,
		combinedRestitution: ci.Manifold.CombinedRestitution,
	})
}

// dispatchContacts drains the tracker in insertion order and routes each
// record. At most one ball touch per car and one bump per car pair are
// emitted per tick.
func (a *Arena) dispatchContacts() {
	for i := range a.tracker.records {
		rec := &a.tracker.records[i]
		switch {
		case rec.kindA == entityCar && rec.kindB == entityBall:
			a.onCarBallCollision(a.getCarInternal(rec.idA), rec)
		case rec.kindA == entityBall && rec.kindB == entityCar:
			a.onCarBallCollision(a.getCarInternal(rec.idB), rec)
		case rec.kindA == entityCar && rec.kindB == entityCar:
			a.onCarCarCollision(a.getCarInternal(rec.idA), a.getCarInternal(rec.idB), rec)
		case rec.kindA == entityCar && rec.kindB == entityWorld:
			a.onCarWorldCollision(a.getCarInternal(rec.idA), rec, false)
		case rec.kindA == entityWorld && rec.kindB == entityCar:
			a.onCarWorldCollision(a.getCarInternal(rec.idB), rec, true)
		}
	}
}

// onCarBallCollision applies the extra hit force and witnesses the touch.
func (a *Arena) onCarBallCollision(car *Car, rec *collisionRecord) {
	if car == nil || car.state.IsDemoed {
		return
	}

	ball := a.ball
	mutators := &a.mutatorConfig

	if !a.touchedBall[car.id] {
		a.touchedBall[car.id] = true

		relVel := car.body.Vel.Sub(ball.body.Vel)
		relSpeed := relVel.Length()

		dir := ball.body.Pos.Sub(car.body.Pos).Normalized()
		forceScale := ballHitExtraForceCurve.GetOutput(relSpeed, 0.3)
		extra := dir.Scale(relSpeed * forceScale * mutators.BallHitExtraForceScale)
		ball.body.Vel = ball.body.Vel.Add(extra)

		car.state.BallHitInfo = BallHitInfo{
			IsValid:           true,
			RelativePosOnBall: rec.worldPoint.Sub(ball.body.Pos),
			BallPos:           ball.body.Pos,
			ExtraHitVel:       extra,

			TickCountWhenHit:                 a.tickCount,
			TickCountWhenExtraImpulseApplied: a.tickCount,
		}

		ball.onTouch(car, relSpeed)
		a.emitBallTouch(car)
	}
}

// onCarCarCollision normalizes the pair so the bumper is the car approaching
// faster, then applies bump and demo rules.
func (a *Arena) onCarCarCollision(carA, carB *Car, rec *collisionRecord) {
	if carA == nil || carB == nil || carA == carB {
		return
	}
	if carA.state.IsDemoed || carB.state.IsDemoed {
		return
	}

	pairKey := uint64(carA.id)<<32 | uint64(carB.id)
	if carB.id < carA.id {
		pairKey = uint64(carB.id)<<32 | uint64(carA.id)
	}
	if a.bumpedPairs[pairKey] {
		return
	}
	a.bumpedPairs[pairKey] = true

	dirAB := carB.body.Pos.Sub(carA.body.Pos).Normalized()
	approachA := carA.body.Vel.Dot(dirAB)
	approachB := carB.body.Vel.Dot(dirAB.Neg())

	bumper, victim := carA, carB
	n := dirAB
	if approachB > approachA {
		bumper, victim = carB, carA
		n = dirAB.Neg()
	}

	relSpeed := bumper.body.Vel.Sub(victim.body.Vel).Dot(n)
	if relSpeed <= 0 {
		return
	}

	cc := &bumper.state.CarContact
	if cc.CooldownTimer > 0 && cc.OtherCarID == victim.id {
		return
	}

	mutators := &a.mutatorConfig

	// bump impulse on the victim, biased slightly upward
	impulseDir := n.Add(geom.Vec{Z: 0.35}).Normalized()
	victim.body.Vel = victim.body.Vel.Add(
		impulseDir.Scale(relSpeed * 0.65 * mutators.BumpForceScale))

	cc.OtherCarID = victim.id
	cc.CooldownTimer = mutators.BumpCooldownTime

	isDemo := false
	switch mutators.DemoMode {
	case DemoDisabled:
	case DemoOnContact:
		isDemo = true
	case DemoNormal:
		isDemo = bumper.state.IsSupersonic && relSpeed > DemoMinRelSpeed
	}
	if isDemo && !mutators.EnableTeamDemos && bumper.team == victim.team {
		isDemo = false
	}

	if isDemo {
		victim.demolish(mutators.RespawnDelay)
		a.emitCarBump(bumper, victim, true)
		a.emitCarDemo(bumper, victim)
	} else {
		a.emitCarBump(bumper, victim, false)
	}
}

func (a *Arena) onCarWorldCollision(car *Car, rec *collisionRecord, swapped bool) {
	if car == nil || car.state.IsDemoed {
		return
	}
	n := rec.normalOnB
	if swapped {
		n = n.Neg()
	}
	car.state.WorldContact = WorldContact{
		HasContact:    true,
		ContactNormal: n,
	}
}
