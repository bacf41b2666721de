package sim

import "github.com/pitchsim/pitchsim/pkg/geom"

// Step runs n sub-ticks. A callback calling Stop ends the loop at the next
// sub-tick boundary; a callback panic is captured, stops the loop, and is
// returned after the faulting sub-tick's solver step has completed.
func (a *Arena) Step(ticks int) error {
	a.stopFlag = false
	for i := 0; i < ticks; i++ {
		a.stepOne()
		if a.fault != nil {
			err := a.fault
			a.fault = nil
			return err
		}
		if a.stopFlag {
			break
		}
	}
	return nil
}

func (a *Arena) stepOne() {
	a.tracker.clear()
	clear(a.touchedBall)
	clear(a.bumpedPairs)

	// pre-physics, ascending car id
	a.profilePhase("PreTickUpdate", true)
	for _, car := range a.cars {
		car.preTickUpdate(a.tickTime)
	}
	a.profilePhase("PreTickUpdate", false)

	// world contact is rebuilt from this tick's manifolds; pre-tick code
	// above still saw last tick's
	for _, car := range a.cars {
		car.state.WorldContact = WorldContact{}
	}

	a.profilePhase("PhysicsStep", true)
	a.world.Step(a.tickTime)
	a.profilePhase("PhysicsStep", false)

	a.profilePhase("ContactDispatch", true)
	a.dispatchContacts()
	a.profilePhase("ContactDispatch", false)

	// post-physics
	a.profilePhase("PostTickUpdate", true)
	a.ball.postTickUpdate(a.tickTime)
	for _, car := range a.cars {
		car.postTickUpdate(a.tickTime)
	}
	a.updateBoostPads()

	if a.gameMode.HasGoals() {
		a.checkGoal()
	}
	a.profilePhase("PostTickUpdate", false)

	if a.fault == nil {
		a.tickCount++
	}
}

func (a *Arena) updateBoostPads() {
	if len(a.pads) == 0 {
		return
	}
	for _, pad := range a.pads {
		pad.preTickUpdate(a.tickTime)
	}
	for _, car := range a.cars {
		if car.state.IsDemoed {
			continue
		}
		for _, pad := range a.grid.padsNear(car.body.Pos) {
			if !pad.sensorContains(car.body.Pos) {
				continue
			}
			if pad.tryPickup(car) {
				a.emitBoostPickup(car, pad)
			}
		}
	}
}

// checkGoal emits the goal callback once per entry into the scored state.
// The arena does not reset itself; the caller does.
func (a *Arena) checkGoal() {
	team, scored := a.ballScoredTeam()
	if scored && !a.ballScored {
		a.emitGoalScore(team)
	}
	a.ballScored = scored
}

// IsBallScored reports whether the ball is currently inside a goal.
func (a *Arena) IsBallScored() bool {
	_, scored := a.ballScoredTeam()
	return scored
}

func (a *Arena) ballScoredTeam() (Team, bool) {
	pos := a.ball.body.Pos
	radius := a.ball.Radius()

	switch a.gameMode {
	case Hoops:
		if pos.Z > HoopsRimHeight || a.ball.body.Vel.Z > 0 {
			return TeamBlue, false
		}
		for _, yDir := range []float32{-1, 1} {
			rim := geom.Vec{Y: yDir * HoopsRimY}
			dx := pos.X - rim.X
			dy := pos.Y - rim.Y
			if dx*dx+dy*dy < HoopsRimRadius*HoopsRimRadius {
				// a basket on the +Y side scores for blue
				if yDir > 0 {
					return TeamBlue, true
				}
				return TeamOrange, true
			}
		}
		return TeamBlue, false

	case Dropshot:
		if a.tiles == nil || pos.Z > 0 {
			return TeamBlue, false
		}
		if owner, broken := a.tiles.brokenTileAt(pos); broken {
			return owner.Opposite(), true
		}
		return TeamBlue, false

	case TheVoid, TheVoidWithGround:
		return TeamBlue, false

	default:
		scoreY := GoalScoreYBase + radius
		if pos.Y > scoreY {
			return TeamBlue, true
		}
		if pos.Y < -scoreY {
			return TeamOrange, true
		}
		return TeamBlue, false
	}
}
