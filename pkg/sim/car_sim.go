package sim

import (
	"github.com/pitchsim/pitchsim/pkg/geom"
	"github.com/pitchsim/pitchsim/pkg/phys"
)

// preTickUpdate runs the whole pre-physics vehicle pipeline for one tick.
func (c *Car) preTickUpdate(dt float32) {
	mutators := &c.arena.mutatorConfig

	if c.state.IsDemoed {
		c.state.DemoRespawnTimer -= dt
		if c.state.DemoRespawnTimer <= 0 {
			c.Respawn(c.arena.respawnSeed())
		}
		return
	}

	controls := c.controls.ClampFix()
	c.state.LastControls = controls

	c.updateHandbrake(controls, dt)
	c.updateSuspension(dt)

	if c.state.IsOnGround {
		c.updateGroundControl(controls, dt)
	} else {
		c.updateAirControl(controls, dt)
	}

	jumpEdge := controls.Jump && !c.prevJumpPressed
	c.updateJump(controls, jumpEdge, dt, mutators)
	c.updateFlip(controls, jumpEdge, dt, mutators)
	c.updateBoost(controls, dt, mutators)
	c.updateSupersonic(dt)
	c.updateAutoFlip(controls, dt)

	c.body.Vel = c.body.Vel.ClampedLength(CarMaxSpeed)
	c.body.AngVel = c.body.AngVel.ClampedLength(CarMaxAngSpeed)

	c.prevJumpPressed = controls.Jump
}

// postTickUpdate advances the passive timers after the solver step and
// contact dispatch.
func (c *Car) postTickUpdate(dt float32) {
	if c.state.IsDemoed {
		return
	}

	if c.state.IsOnGround {
		c.state.AirTime = 0
		c.state.AirTimeSinceJump = 0
	} else {
		c.state.AirTime += dt
		if c.state.HasJumped && !c.state.IsJumping {
			c.state.AirTimeSinceJump += dt
		}
	}

	if c.state.CarContact.CooldownTimer > 0 {
		c.state.CarContact.CooldownTimer -= dt
		if c.state.CarContact.CooldownTimer <= 0 {
			c.state.CarContact = CarContact{}
		}
	}

	c.state.TickCountSinceUpdate++
}

func (c *Car) updateHandbrake(controls CarControls, dt float32) {
	target := float32(0)
	if controls.Handbrake {
		target = 1
	}
	hv := &c.state.HandbrakeVal
	*hv += (target - *hv) * geom.Minf(1, handbrakeRate*dt)
}

// updateSuspension raycasts the four wheels and applies spring impulses at
// the connection points.
func (c *Car) updateSuspension(dt float32) {
	quarterMass := c.body.Mass() / 4
	contacts := 0

	for i := 0; i < 4; i++ {
		from, dir, length := c.wheelWorldRay(i)
		hit, ok := c.arena.world.RayCast(from, from.Add(dir.Scale(length)), isWorldBody)
		if !ok {
			c.state.WheelsWithContact[i] = false
			continue
		}
		c.state.WheelsWithContact[i] = true
		contacts++

		pair := c.config.wheelPair(i)
		restDist := pair.SuspensionRestLength + pair.WheelRadius
		compression := restDist - hit.Frac*length
		if compression < 0 {
			continue
		}

		springVel := c.body.VelocityAt(from).Dot(c.up())
		accel := suspensionStiffness*compression - suspensionDamping*springVel
		if accel < 0 {
			continue
		}
		impulse := c.up().Scale(accel * quarterMass * dt)
		c.body.ApplyImpulse(impulse, from.Sub(c.body.Pos))
	}

	c.state.IsOnGround = contacts >= 3
}

func isWorldBody(b *phys.Body) bool {
	return b.Kind == entityWorld
}

func (c *Car) updateGroundControl(controls CarControls, dt float32) {
	forward := c.forward()
	right := c.body.Rot.Right

	forwardSpeed := c.body.Vel.Dot(forward)
	absSpeed := geom.Maxf(forwardSpeed, -forwardSpeed)

	switch {
	case absf(controls.Throttle) > 0.01:
		if controls.Throttle*forwardSpeed < -1 {
			// braking against current motion
			delta := geom.Minf(brakeAccel*dt, absSpeed)
			c.body.Vel = c.body.Vel.Sub(forward.Scale(geom.Sgn(forwardSpeed) * delta))
		} else {
			accel := controls.Throttle * driveSpeedTorqueCurve.GetOutput(absSpeed, 0)
			c.body.Vel = c.body.Vel.Add(forward.Scale(accel * dt))
		}
	case absSpeed > 25:
		delta := geom.Minf(coastAccel*dt, absSpeed)
		c.body.Vel = c.body.Vel.Sub(forward.Scale(geom.Sgn(forwardSpeed) * delta))
	}

	// steering turns the chassis about its up axis
	steerAngle := controls.Steer * steerAngleCurve.GetOutput(absSpeed, 0)
	targetYawRate := forwardSpeed * steerAngle * steerYawGain
	if c.state.HandbrakeVal > 0.1 {
		targetYawRate *= 1 + 0.6*c.state.HandbrakeVal
	}
	up := c.up()
	yawRate := c.body.AngVel.Dot(up)
	c.body.AngVel = c.body.AngVel.Add(
		up.Scale((targetYawRate - yawRate) * geom.Minf(1, 10*dt)))

	// lateral tire grip, reduced while drifting
	grip := geom.Lerpf(lateralGrip, lateralGripHandbrake, c.state.HandbrakeVal)
	latVel := c.body.Vel.Dot(right)
	c.body.Vel = c.body.Vel.Sub(right.Scale(latVel * geom.Minf(1, grip*dt)))
}

func (c *Car) updateAirControl(controls CarControls, dt float32) {
	local := c.body.Rot.TransMulVec(c.body.AngVel)

	pitchInput := controls.Pitch
	if c.state.IsFlipping {
		// pitch is locked to the flip torque for the flip window
		pitchInput = 0
	}

	// roll about forward, pitch about right, yaw about up
	local.X += (airControlTorque.Z*controls.Roll -
		airControlDamping.Z*(1-absf(controls.Roll))*local.X) * dt
	local.Y += (airControlTorque.X*pitchInput -
		airControlDamping.X*(1-absf(pitchInput))*local.Y) * dt
	local.Z += (airControlTorque.Y*controls.Yaw -
		airControlDamping.Y*(1-absf(controls.Yaw))*local.Z) * dt

	c.body.AngVel = c.body.Rot.MulVec(local)
}

func (c *Car) updateJump(controls CarControls, jumpEdge bool, dt float32, mutators *MutatorConfig) {
	s := &c.state

	if s.IsJumping {
		s.JumpTime += dt
		holding := controls.Jump && s.JumpTime < JumpMaxTime
		if holding || s.JumpTime < JumpMinTime {
			c.body.Vel = c.body.Vel.Add(c.up().Scale(mutators.JumpAccel * dt))
		} else {
			s.IsJumping = false
		}
		return
	}

	if jumpEdge && s.IsOnGround {
		c.body.Vel = c.body.Vel.Add(c.up().Scale(mutators.JumpImmediateForce))
		s.IsJumping = true
		s.HasJumped = true
		s.JumpTime = 0
		return
	}

	// landing resets every jump sub-state
	if s.IsOnGround && s.HasJumped {
		s.HasJumped = false
		s.HasDoubleJumped = false
		s.HasFlipped = false
		s.IsFlipping = false
		s.JumpTime = 0
		s.FlipTime = 0
	}
}

func (c *Car) updateFlip(controls CarControls, jumpEdge bool, dt float32, mutators *MutatorConfig) {
	s := &c.state

	if s.IsFlipping {
		s.FlipTime += dt
		if s.FlipTime < FlipTorqueTime {
			desired := c.body.Rot.MulVec(s.FlipRelTorque).Scale(FlipAngVel)
			// holding opposite pitch cancels the pitch part of the flip
			if controls.Pitch*s.FlipRelTorque.Y > 0 {
				desired = desired.Sub(
					c.body.Rot.Right.Scale(desired.Dot(c.body.Rot.Right)))
			}
			c.body.AngVel = c.body.AngVel.Lerp(desired, geom.Minf(1, 12*dt))

			// front flips fall slower for the duration of the torque window
			if s.FlipRelTorque.Y > 0.1 {
				c.body.Vel.Z -= mutators.Gravity.Z * dt * (1 - FlipForwardGravScale)
			}
		} else if s.FlipTime >= FlipTorqueTime+flipFadeTime {
			s.IsFlipping = false
		}
	}

	if !jumpEdge || s.IsOnGround || !s.HasJumped || s.IsJumping {
		return
	}
	if s.AirTimeSinceJump >= DoubleJumpMaxDelay {
		return
	}

	dodgePitch := controls.Pitch
	dodgeYaw := controls.Yaw
	dodgeMag := geom.Maxf(absf(dodgePitch), absf(dodgeYaw))

	if dodgeMag > c.config.DodgeDeadzone {
		if (s.HasFlipped || s.HasDoubleJumped) && !mutators.UnlimitedFlips {
			return
		}

		dir := geom.Vec{X: -dodgePitch, Y: dodgeYaw}.Normalized()
		s.FlipRelTorque = geom.Vec{X: -dir.Y, Y: dir.X}
		s.HasFlipped = true
		s.IsFlipping = true
		s.FlipTime = 0

		scale := float32(FlipInitialVelScale)
		if dir.X < 0 {
			scale *= FlipBackwardVelScale
			if c.body.Vel.Z < 0 {
				c.body.Vel.Z = 0
			}
		}
		impulseDir := c.forward().Scale(dir.X).Add(c.body.Rot.Right.Scale(dir.Y))
		impulseDir.Z = 0
		c.body.Vel = c.body.Vel.Add(impulseDir.Normalized().Scale(scale))
	} else {
		if (s.HasDoubleJumped || s.HasFlipped) && !mutators.UnlimitedDoubleJumps {
			return
		}
		c.body.Vel = c.body.Vel.Add(c.up().Scale(DoubleJumpImpulseVel))
		s.HasDoubleJumped = true
	}
}

const flipFadeTime = 0.3

func (c *Car) updateBoost(controls CarControls, dt float32, mutators *MutatorConfig) {
	s := &c.state

	s.IsBoosting = controls.Boost && s.Boost > 0

	if s.IsBoosting {
		s.Boost = geom.Maxf(0, s.Boost-mutators.BoostUsedPerSecond*dt)
		accel := mutators.BoostAccelAir
		if s.IsOnGround {
			accel = mutators.BoostAccelGround
		}
		c.body.Vel = c.body.Vel.Add(c.forward().Scale(accel * dt))
		s.BoostingTime += dt
		s.TimeSinceBoosted = 0
		return
	}

	s.BoostingTime = 0
	s.TimeSinceBoosted += dt
	if mutators.RechargeBoost && s.TimeSinceBoosted >= RechargeBoostDelay {
		s.Boost = geom.Minf(100, s.Boost+RechargeBoostPerSecond*dt)
	}
}

func (c *Car) updateSupersonic(dt float32) {
	s := &c.state
	speed := c.body.Vel.Length()

	switch {
	case speed >= SupersonicStartSpeed:
		s.IsSupersonic = true
		s.SupersonicTime = 0
	case s.IsSupersonic && speed >= SupersonicMaintainMinSpeed &&
		s.SupersonicTime < SupersonicMaintainMaxTime:
		s.SupersonicTime += dt
	default:
		s.IsSupersonic = false
		s.SupersonicTime = 0
	}
}

func (c *Car) updateAutoFlip(controls CarControls, dt float32) {
	s := &c.state

	if s.IsAutoFlipping {
		s.AutoFlipTimer -= dt
		if s.AutoFlipTimer <= 0 || c.up().Z > 0.8 {
			s.IsAutoFlipping = false
			s.AutoFlipTimer = 0
			return
		}
		c.body.AngVel = c.body.AngVel.Add(
			c.forward().Scale(s.AutoFlipTorqueScale * dt))
		return
	}

	if !s.WorldContact.HasContact {
		return
	}
	if c.up().Z > AutoFlipRollThreshold {
		return
	}
	if c.body.Vel.Length() > AutoFlipMaxSpeed {
		return
	}
	if !controls.Jump {
		return
	}

	s.IsAutoFlipping = true
	s.AutoFlipTimer = AutoFlipDuration
	s.AutoFlipTorqueScale = AutoFlipTorqueScale
	if c.body.Rot.Right.Z > 0 {
		s.AutoFlipTorqueScale = -AutoFlipTorqueScale
	}
	c.body.Vel.Z += AutoFlipImpulseVel
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
