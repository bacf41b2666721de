package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchsim/pitchsim/pkg/geom"
)

const (
	posTol = 0.1
	velTol = 0.1
)

// groundedCar returns an arena with one car settled on its wheels.
func groundedCar(t *testing.T) (*Arena, *Car) {
	t.Helper()
	arena := newTestArena(t, Soccar)
	car := arena.AddCar(TeamBlue, CarConfigOctane)
	require.NoError(t, arena.Step(60))
	require.True(t, car.GetState().IsOnGround, "car must settle onto its wheels")
	return arena, car
}

func TestCarStateRoundTrip(t *testing.T) {
	arena := newTestArena(t, Soccar)
	car := arena.AddCar(TeamBlue, CarConfigOctane)

	want := DefaultCarState()
	want.Pos = geom.Vec{X: 1000, Y: 500, Z: 100}
	want.RotMat = geom.Angle{Yaw: 1.1, Pitch: 0.2, Roll: -0.3}.ToRotMat()
	want.Vel = geom.Vec{X: 300, Y: -200, Z: 40}
	want.AngVel = geom.Vec{Z: 1.5}
	want.Boost = 77
	want.HasJumped = true
	want.BallHitInfo = BallHitInfo{IsValid: true, TickCountWhenHit: 12}

	car.SetState(want)
	got := car.GetState()

	assert.InDelta(t, want.Pos.X, got.Pos.X, posTol)
	assert.InDelta(t, want.Pos.Y, got.Pos.Y, posTol)
	assert.InDelta(t, want.Pos.Z, got.Pos.Z, posTol)
	assert.InDelta(t, want.Vel.X, got.Vel.X, velTol)
	assert.InDelta(t, want.Vel.Y, got.Vel.Y, velTol)
	assert.Equal(t, want.Boost, got.Boost)
	assert.True(t, got.HasJumped)

	wantAng := geom.AngleFromRotMat(want.RotMat)
	gotAng := geom.AngleFromRotMat(got.RotMat)
	assert.InDelta(t, wantAng.Yaw, gotAng.Yaw, 0.01)
	assert.InDelta(t, wantAng.Pitch, gotAng.Pitch, 0.01)
	assert.InDelta(t, wantAng.Roll, gotAng.Roll, 0.01)

	// the ball-hit witness travels through SetState untouched
	assert.True(t, got.BallHitInfo.IsValid)
	assert.Equal(t, uint64(12), got.BallHitInfo.TickCountWhenHit)
	assert.Equal(t, uint64(0), got.TickCountSinceUpdate)
}

func TestCarFallsWithGravity(t *testing.T) {
	arena := newTestArena(t, Soccar)
	car := arena.AddCar(TeamBlue, CarConfigOctane)

	s := car.GetState()
	s.Pos.Z = 500
	car.SetState(s)

	require.NoError(t, arena.Step(60))
	assert.Less(t, car.GetState().Pos.Z, float32(500))
}

func TestCarMovesWithThrottle(t *testing.T) {
	arena, car := groundedCar(t)

	s := car.GetState()
	startY := s.Pos.Y

	// face +y so forward throttle drives up the field
	s.RotMat = geom.Angle{Yaw: piF / 2}.ToRotMat()
	car.SetState(s)
	car.SetControls(CarControls{Throttle: 1})

	require.NoError(t, arena.Step(60))
	assert.Greater(t, car.GetState().Pos.Y, startY+100)
}

func TestJumpTiming(t *testing.T) {
	arena, car := groundedCar(t)

	car.SetControls(CarControls{Jump: true})
	require.NoError(t, arena.Step(1))

	s := car.GetState()
	assert.True(t, s.HasJumped, "jump edge must register on the first tick")
	assert.True(t, s.IsJumping)
	assert.Greater(t, s.Vel.Z, float32(100))

	// hold for the full window
	sawJumpingUnderMax := false
	for i := 0; i < 36; i++ {
		require.NoError(t, arena.Step(1))
		s = car.GetState()
		if s.IsJumping {
			assert.Less(t, s.JumpTime, float32(JumpMaxTime)+0.01)
			sawJumpingUnderMax = true
		}
	}
	assert.True(t, sawJumpingUnderMax)

	s = car.GetState()
	assert.False(t, s.IsJumping, "sustain window is over after 0.3 s")
	assert.True(t, s.HasJumped, "hasJumped persists while airborne")
	assert.False(t, s.IsOnGround)
}

func TestLandingResetsJumpState(t *testing.T) {
	arena, car := groundedCar(t)

	car.SetControls(CarControls{Jump: true})
	require.NoError(t, arena.Step(6))
	car.SetControls(CarControls{})

	// wait for the car to come back down and settle
	for i := 0; i < 300; i++ {
		require.NoError(t, arena.Step(1))
		if car.GetState().IsOnGround && !car.GetState().IsJumping {
			break
		}
	}
	require.NoError(t, arena.Step(5))

	s := car.GetState()
	assert.True(t, s.IsOnGround)
	assert.False(t, s.HasJumped)
	assert.False(t, s.HasDoubleJumped)
	assert.False(t, s.HasFlipped)
}

// airborneAfterJump jumps, releases, and leaves the car in the air with the
// double-jump window open.
func airborneAfterJump(t *testing.T, arena *Arena, car *Car) {
	t.Helper()
	car.SetControls(CarControls{Jump: true})
	require.NoError(t, arena.Step(12))
	car.SetControls(CarControls{})
	require.NoError(t, arena.Step(12))

	s := car.GetState()
	require.False(t, s.IsOnGround)
	require.True(t, s.HasJumped)
	require.False(t, s.IsJumping)
}

func TestFlipVsDoubleJump(t *testing.T) {
	arena, car := groundedCar(t)
	airborneAfterJump(t, arena, car)

	car.SetControls(CarControls{Jump: true, Pitch: 0.6})
	require.NoError(t, arena.Step(1))

	s := car.GetState()
	assert.True(t, s.HasFlipped)
	assert.False(t, s.HasDoubleJumped)
	assert.True(t, s.IsFlipping)
}

func TestDoubleJumpUnderDeadzone(t *testing.T) {
	arena, car := groundedCar(t)
	airborneAfterJump(t, arena, car)

	velBefore := car.GetState().Vel.Z

	car.SetControls(CarControls{Jump: true, Pitch: 0.3})
	require.NoError(t, arena.Step(1))

	s := car.GetState()
	assert.False(t, s.HasFlipped)
	assert.True(t, s.HasDoubleJumped)
	assert.Greater(t, s.Vel.Z, velBefore+100)
}

func TestBoostDrainAndRecharge(t *testing.T) {
	// no pads in this mode, so only draining and recharging change the tank
	arena := newTestArena(t, TheVoidWithGround)
	car := arena.AddCar(TeamBlue, CarConfigOctane)
	require.NoError(t, arena.Step(60))

	s := car.GetState()
	s.Boost = 100
	car.SetState(s)

	car.SetControls(CarControls{Boost: true})
	require.NoError(t, arena.Step(360)) // exactly the 3 s a full tank lasts
	assert.Less(t, car.GetState().Boost, float32(0.5))

	// recharge kicks in after the delay and runs at the mutator rate
	car.SetControls(CarControls{})
	require.NoError(t, arena.Step(60))
	before := car.GetState().Boost
	assert.Greater(t, before, float32(0))

	require.NoError(t, arena.Step(120))
	gained := car.GetState().Boost - before
	assert.InDelta(t, RechargeBoostPerSecond, gained, 1)
}

func TestBoostAcceleratesCar(t *testing.T) {
	arena, car := groundedCar(t)

	s := car.GetState()
	s.Boost = 100
	car.SetState(s)
	car.SetControls(CarControls{Throttle: 1, Boost: true})

	require.NoError(t, arena.Step(120))
	s = car.GetState()
	assert.Less(t, s.Boost, float32(100))
	assert.Greater(t, s.Vel.Length(), float32(1300))
	assert.LessOrEqual(t, s.Vel.Length(), float32(CarMaxSpeed)+1)
}

func TestSupersonicHysteresis(t *testing.T) {
	arena := newTestArena(t, TheVoidWithGround)
	car := arena.AddCar(TeamBlue, CarConfigOctane)
	require.NoError(t, arena.Step(30))

	s := car.GetState()
	s.Vel = geom.Vec{X: 2250}
	car.SetState(s)
	require.NoError(t, arena.Step(1))
	assert.True(t, car.GetState().IsSupersonic)

	// drop into the maintain band: still supersonic for a while
	s = car.GetState()
	s.Vel = geom.Vec{X: 2150}
	car.SetState(s)
	require.NoError(t, arena.Step(1))
	assert.True(t, car.GetState().IsSupersonic)

	// drop below the maintain band: cleared
	s = car.GetState()
	s.Vel = geom.Vec{X: 1000}
	car.SetState(s)
	require.NoError(t, arena.Step(1))
	assert.False(t, car.GetState().IsSupersonic)
}

func TestDemolishAndRespawn(t *testing.T) {
	arena, car := groundedCar(t)

	car.Demolish()
	s := car.GetState()
	assert.True(t, s.IsDemoed)
	assert.Greater(t, s.DemoRespawnTimer, float32(0))

	// frozen while demoed
	require.NoError(t, arena.Step(10))
	assert.True(t, car.GetState().IsDemoed)

	respawnDelay := arena.GetMutatorConfig().RespawnDelay
	require.NoError(t, arena.Step(int(120*respawnDelay)+10))

	s = car.GetState()
	assert.False(t, s.IsDemoed)
	assert.Equal(t, arena.GetMutatorConfig().CarSpawnBoostAmount, s.Boost)
	assert.Equal(t, float32(-respawnY), s.Pos.Y, "blue respawns on its own half")
}

func TestBumpCooldown(t *testing.T) {
	arena := newTestArena(t, Soccar)
	cfg := arena.GetMutatorConfig()
	cfg.DemoMode = DemoDisabled
	arena.SetMutatorConfig(cfg)

	bumper := arena.AddCar(TeamBlue, CarConfigOctane)
	victim := arena.AddCar(TeamOrange, CarConfigOctane)

	bumps := 0
	arena.SetCarBumpCallback(func(_ *Arena, b, v *Car, isDemo bool, _ any) {
		bumps++
		assert.Equal(t, bumper.ID(), b.ID())
		assert.Equal(t, victim.ID(), v.ID())
		assert.False(t, isDemo)
	}, nil)

	sb := bumper.GetState()
	sb.Pos = geom.Vec{X: 0, Y: -120, Z: 40}
	sb.RotMat = geom.Angle{Yaw: piF / 2}.ToRotMat()
	sb.Vel = geom.Vec{Y: 2400}
	bumper.SetState(sb)

	sv := victim.GetState()
	sv.Pos = geom.Vec{X: 0, Y: 20, Z: 40}
	victim.SetState(sv)

	require.NoError(t, arena.Step(10))

	require.Equal(t, 1, bumps, "cooldown must suppress repeat bumps")
	s := bumper.GetState()
	if s.CarContact.CooldownTimer > 0 {
		assert.Equal(t, victim.ID(), s.CarContact.OtherCarID)
	}
	assert.Greater(t, victim.GetState().Vel.Y, float32(100), "victim got shoved")
}

func TestDemoOnSupersonicBump(t *testing.T) {
	arena := newTestArena(t, Soccar)

	bumper := arena.AddCar(TeamBlue, CarConfigOctane)
	victim := arena.AddCar(TeamOrange, CarConfigOctane)

	demos := 0
	arena.SetCarDemoCallback(func(*Arena, *Car, *Car, any) { demos++ }, nil)

	sb := bumper.GetState()
	sb.Pos = geom.Vec{X: 0, Y: -130, Z: 40}
	sb.RotMat = geom.Angle{Yaw: piF / 2}.ToRotMat()
	sb.Vel = geom.Vec{Y: 2300}
	sb.IsSupersonic = true
	bumper.SetState(sb)

	sv := victim.GetState()
	sv.Pos = geom.Vec{X: 0, Y: 30, Z: 40}
	victim.SetState(sv)

	require.NoError(t, arena.Step(10))

	assert.Equal(t, 1, demos)
	assert.True(t, victim.GetState().IsDemoed)
}

func TestTeamDemosSuppressed(t *testing.T) {
	arena := newTestArena(t, Soccar)

	bumper := arena.AddCar(TeamBlue, CarConfigOctane)
	victim := arena.AddCar(TeamBlue, CarConfigOctane)

	sb := bumper.GetState()
	sb.Pos = geom.Vec{X: 0, Y: -130, Z: 40}
	sb.RotMat = geom.Angle{Yaw: piF / 2}.ToRotMat()
	sb.Vel = geom.Vec{Y: 2300}
	bumper.SetState(sb)

	sv := victim.GetState()
	sv.Pos = geom.Vec{X: 0, Y: 30, Z: 40}
	victim.SetState(sv)

	require.NoError(t, arena.Step(10))
	assert.False(t, victim.GetState().IsDemoed, "team demos are off by default")
}

func TestControlsClampFix(t *testing.T) {
	c := CarControls{Throttle: 3, Steer: -9, Pitch: 0.5, Yaw: 2, Roll: -2}.ClampFix()
	assert.Equal(t, float32(1), c.Throttle)
	assert.Equal(t, float32(-1), c.Steer)
	assert.Equal(t, float32(0.5), c.Pitch)
	assert.Equal(t, float32(1), c.Yaw)
	assert.Equal(t, float32(-1), c.Roll)
}
