package sim

// Clone produces a fully independent deep copy: a fresh solver world with
// new rigid bodies at identical transforms, cars at identical ids, pads and
// tiles at identical states. Callbacks carry over only when copyCallbacks is
// set.
func (a *Arena) Clone(copyCallbacks bool) *Arena {
	clone, err := NewArena(a.gameMode, a.config, a.TickRate())
	if err != nil {
		// the source arena was built from this exact config
		panic(err)
	}

	clone.tickCount = a.tickCount
	clone.ballScored = a.ballScored
	clone.SetMutatorConfig(a.mutatorConfig)
	*clone.rng = *a.rng

	clone.ball.SetState(a.ball.GetState())
	clone.ball.tickCountSinceUpdate = a.ball.tickCountSinceUpdate
	clone.ball.hsTouchCount = a.ball.hsTouchCount

	for _, car := range a.cars {
		copied := clone.addCarWithID(car.id, car.team, car.config)
		copied.SetState(car.GetState())
		copied.state.TickCountSinceUpdate = car.state.TickCountSinceUpdate
		copied.controls = car.controls
		copied.prevJumpPressed = car.prevJumpPressed
	}
	clone.lastCarID = a.lastCarID

	for i, pad := range a.pads {
		clone.pads[i].SetState(pad.GetState())
	}

	if a.tiles != nil && clone.tiles != nil {
		clone.tiles.setState(a.tiles.getState())
	}

	if copyCallbacks {
		clone.goalScoreCb = a.goalScoreCb
		clone.carBumpCb = a.carBumpCb
		clone.carDemoCb = a.carDemoCb
		clone.boostPickupCb = a.boostPickupCb
		clone.ballTouchCb = a.ballTouchCb
	}

	return clone
}
