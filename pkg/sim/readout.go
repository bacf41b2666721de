package sim

import "github.com/pitchsim/pitchsim/pkg/geom"

// Batched numeric readout for learning agents: flat float32 slices that can
// be handed to an array library without per-field marshaling.

// BallReadoutStride is the per-ball float count in BatchedBallState:
// pos(3) + vel(3) + angVel(3) + rotMat rows(9).
const BallReadoutStride = 18

// CarReadoutStride is the per-car float count in BatchedCarStates:
// id, team, pos(3), vel(3), angVel(3), rotMat rows(9), boost,
// isOnGround, hasJumped, hasDoubleJumped, hasFlipped, isSupersonic,
// isDemoed.
const CarReadoutStride = 2 + 3 + 3 + 3 + 9 + 1 + 6

// BatchedBallState fills out (allocating when nil or short) with the ball's
// kinematic state and returns it.
func (a *Arena) BatchedBallState(out []float32) []float32 {
	if cap(out) < BallReadoutStride {
		out = make([]float32, BallReadoutStride)
	}
	out = out[:0]
	s := a.ball.GetState()
	out = appendVec(out, s.Pos)
	out = appendVec(out, s.Vel)
	out = appendVec(out, s.AngVel)
	out = appendVec(out, s.RotMat.Forward)
	out = appendVec(out, s.RotMat.Right)
	out = appendVec(out, s.RotMat.Up)
	return out
}

// BatchedCarStates fills out with one CarReadoutStride block per car in
// ascending id order and returns it.
func (a *Arena) BatchedCarStates(out []float32) []float32 {
	need := len(a.cars) * CarReadoutStride
	if cap(out) < need {
		out = make([]float32, need)
	}
	out = out[:0]
	for _, car := range a.cars {
		s := car.GetState()
		out = append(out, float32(car.id), float32(car.team))
		out = appendVec(out, s.Pos)
		out = appendVec(out, s.Vel)
		out = appendVec(out, s.AngVel)
		out = appendVec(out, s.RotMat.Forward)
		out = appendVec(out, s.RotMat.Right)
		out = appendVec(out, s.RotMat.Up)
		out = append(out, s.Boost)
		out = append(out,
			boolToFloat(s.IsOnGround),
			boolToFloat(s.HasJumped),
			boolToFloat(s.HasDoubleJumped),
			boolToFloat(s.HasFlipped),
			boolToFloat(s.IsSupersonic),
			boolToFloat(s.IsDemoed))
	}
	return out
}

// BatchedPadStates fills out with (isActive, cooldown) per pad in the sorted
// enumeration order and returns it.
func (a *Arena) BatchedPadStates(out []float32) []float32 {
	need := len(a.pads) * 2
	if cap(out) < need {
		out = make([]float32, need)
	}
	out = out[:0]
	for _, pad := range a.pads {
		s := pad.GetState()
		out = append(out, boolToFloat(s.IsActive), s.Cooldown)
	}
	return out
}

func appendVec(out []float32, v geom.Vec) []float32 {
	return append(out, v.X, v.Y, v.Z)
}

func boolToFloat(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
