package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchsim/pitchsim/pkg/collision"
	"github.com/pitchsim/pitchsim/pkg/geom"
	"github.com/pitchsim/pitchsim/pkg/sim"
)

func TestMain(m *testing.M) {
	collision.InitEmpty()
	m.Run()
}

func buildSnapshot(t *testing.T) GameState {
	t.Helper()
	arena, err := sim.NewArena(sim.Soccar, sim.DefaultArenaConfig(), 120)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		blue := arena.AddCar(sim.TeamBlue, sim.CarConfigOctane)
		orange := arena.AddCar(sim.TeamOrange, sim.CarConfigDominus)
		blue.SetControls(sim.CarControls{Throttle: 1, Boost: true, Steer: 0.25})
		orange.SetControls(sim.CarControls{Throttle: 1, Steer: -0.5})
	}
	arena.ResetToRandomKickoff(6)
	require.NoError(t, arena.Step(1000))

	return FromArena(arena)
}

func TestGameStateRoundTrip(t *testing.T) {
	gs := buildSnapshot(t)

	data := gs.ToBytes()
	require.Len(t, data, gs.NumBytes())

	decoded, err := FromBytes(data)
	require.NoError(t, err)

	// floats bit-exact, integers exact
	assert.Equal(t, gs, decoded)

	// and encoding again is byte-identical
	assert.Equal(t, data, decoded.ToBytes())
}

func TestPayloadSize(t *testing.T) {
	gs := buildSnapshot(t)
	data := gs.ToBytes()

	assert.Equal(t, len(data), PayloadSize(data))
	assert.Equal(t, 0, PayloadSize(data[:10]))
}

func TestBlockSizes(t *testing.T) {
	// three pads, two cars, empty ball: sizes come straight from the layout
	gs := GameState{
		Pads: make([]PadInfo, 3),
		Cars: make([]CarInfo, 2),
	}
	for i := range gs.Cars {
		gs.Cars[i].State.RotMat = geom.IdentityRotMat()
	}
	data := gs.ToBytes()
	assert.Len(t, data, HeaderBytes+BallBytes+3*PadBytes+2*CarBytes)
}

func TestFromBytesTruncated(t *testing.T) {
	gs := buildSnapshot(t)
	data := gs.ToBytes()

	_, err := FromBytes(data[:len(data)-7])
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = FromBytes(data[:5])
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestHeatseekerFieldsSurvive(t *testing.T) {
	gs := GameState{
		TickCount: 77,
		TickRate:  120,
		GameMode:  sim.Heatseeker,
		Ball: BallInfo{
			RotMat:           geom.IdentityRotMat(),
			HSYTargetDir:     -1,
			HSCurTargetSpeed: 3100,
			HSTimeSinceHit:   0.5,
		},
	}
	decoded, err := FromBytes(gs.ToBytes())
	require.NoError(t, err)
	assert.Equal(t, float32(-1), decoded.Ball.HSYTargetDir)
	assert.Equal(t, float32(3100), decoded.Ball.HSCurTargetSpeed)
	assert.Equal(t, float32(0.5), decoded.Ball.HSTimeSinceHit)
	assert.Equal(t, uint64(77), decoded.TickCount)
}
