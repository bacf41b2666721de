package sim

import (
	"math"

	"github.com/pitchsim/pitchsim/pkg/geom"
)

// kickoffSpawn is a canonical kickoff pose for the blue team; orange mirrors
// it through the origin.
type kickoffSpawn struct {
	pos geom.Vec
	yaw float32
}

var kickoffSpawnsBlue = [5]kickoffSpawn{
	{pos: geom.Vec{X: -2048, Y: -2560, Z: CarSpawnZ}, yaw: 0.25 * piF},
	{pos: geom.Vec{X: 2048, Y: -2560, Z: CarSpawnZ}, yaw: 0.75 * piF},
	{pos: geom.Vec{X: -256, Y: -3840, Z: CarSpawnZ}, yaw: 0.5 * piF},
	{pos: geom.Vec{X: 256, Y: -3840, Z: CarSpawnZ}, yaw: 0.5 * piF},
	{pos: geom.Vec{X: 0, Y: -4608, Z: CarSpawnZ}, yaw: 0.5 * piF},
}

// respawnXOptions are the post-demo respawn lanes; y is fixed per team.
var respawnXOptions = [4]float32{-2304, -1152, 1152, 2304}

const respawnY = 4608.0

// ResetToRandomKickoff places the ball at center and the cars at canonical
// kickoff spawns chosen reproducibly from the seed. Pads reactivate and
// dropshot tiles repair. Pass a negative seed to draw one from the arena's
// own generator.
func (a *Arena) ResetToRandomKickoff(seed int64) {
	if seed < 0 {
		seed = int64(a.rng.RandInt(0, 1<<30))
	}

	ballState := DefaultBallState()
	if a.gameMode == Heatseeker {
		ballState.Pos.Z = BallRestZ
		ballState.HSInfo = HeatseekerInfo{CurTargetSpeed: HeatseekerInitialSpeed}
	}
	a.ball.SetState(ballState)
	a.ball.hsTouchCount = 0

	// one seeded spawn order serves both teams, so lineups mirror exactly
	order := kickoffOrder(seed)
	used := [2]int{}

	for _, car := range a.cars {
		team := int(car.team)
		slot := order[used[team]%len(order)]
		used[team]++

		spawn := kickoffSpawnsBlue[slot]
		pos := spawn.pos
		yaw := spawn.yaw
		if car.team == TeamOrange {
			pos.X = -pos.X
			pos.Y = -pos.Y
			yaw += piF
		}

		ang := geom.RoundAngleUE3(geom.Angle{
			Yaw: geom.WrapNormalizeFloat(yaw, piF),
		})

		s := DefaultCarState()
		s.Pos = pos
		s.RotMat = ang.ToRotMat()
		s.Boost = a.mutatorConfig.CarSpawnBoostAmount
		s.LastControls = car.controls
		car.SetState(s)
	}

	for _, pad := range a.pads {
		pad.SetState(BoostPadState{IsActive: true})
	}
	if a.tiles != nil {
		a.tiles.reset()
	}
	a.ballScored = false
}

// kickoffOrder is a seeded permutation of the five spawn slots.
func kickoffOrder(seed int64) []int {
	order := []int{0, 1, 2, 3, 4}
	rng := geom.NewRNG(seed)
	for i := len(order) - 1; i > 0; i-- {
		j := rng.RandInt(0, i+1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// respawnPose is the post-demo pose for a car, reproducible from the seed.
func respawnPose(team Team, seed int64, carID uint32) kickoffSpawn {
	lane := geom.RandIntSeeded(0, len(respawnXOptions), seed+int64(carID))
	yaw := float32(0.5 * math.Pi)
	y := float32(-respawnY)
	if team == TeamOrange {
		yaw = -0.5 * math.Pi
		y = respawnY
	}
	return kickoffSpawn{
		pos: geom.Vec{X: respawnXOptions[lane], Y: y, Z: CarSpawnZ},
		yaw: yaw,
	}
}
