package sim

import "github.com/pitchsim/pitchsim/pkg/geom"

const predictionStep = 1.0 / 30

// IsBallProbablyGoingIn extrapolates the ball ballistically (ignoring walls
// and the ceiling) for up to maxTime seconds and reports whether the path
// enters either goal mouth. It deliberately overestimates, like the source
// game's shot prediction. The returned team is the one that would score.
func (a *Arena) IsBallProbablyGoingIn(maxTime, extraMargin float32) (Team, bool) {
	if !a.gameMode.HasGoals() || a.gameMode == Hoops || a.gameMode == Dropshot {
		return TeamBlue, false
	}

	pos := a.ball.body.Pos
	vel := a.ball.body.Vel
	radius := a.ball.Radius()
	gravity := a.mutatorConfig.Gravity

	scoreY := GoalScoreYBase + radius
	mouthHalfWidth := GoalHalfWidth + extraMargin + radius
	mouthHeight := GoalHeight + extraMargin + radius

	for t := float32(0); t < maxTime; t += predictionStep {
		dt := geom.Minf(predictionStep, maxTime-t)
		pos = pos.Add(vel.Scale(dt))
		vel = vel.Add(gravity.Scale(dt))

		if pos.Y > scoreY || pos.Y < -scoreY {
			if absf(pos.X) <= mouthHalfWidth && pos.Z <= mouthHeight && pos.Z >= 0 {
				if pos.Y > 0 {
					return TeamBlue, true
				}
				return TeamOrange, true
			}
			return TeamBlue, false
		}
	}
	return TeamBlue, false
}
