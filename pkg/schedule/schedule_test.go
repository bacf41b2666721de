package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchsim/pitchsim/pkg/collision"
	"github.com/pitchsim/pitchsim/pkg/sim"
)

func TestMain(m *testing.M) {
	collision.InitEmpty()
	m.Run()
}

func newSeededArena(t *testing.T, seed int64) *sim.Arena {
	t.Helper()
	arena, err := sim.NewArena(sim.Soccar, sim.DefaultArenaConfig(), 120)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		blue := arena.AddCar(sim.TeamBlue, sim.CarConfigOctane)
		orange := arena.AddCar(sim.TeamOrange, sim.CarConfigOctane)
		blue.SetControls(sim.CarControls{Throttle: 1, Boost: true})
		orange.SetControls(sim.CarControls{Throttle: 1, Boost: true})
	}
	arena.ResetToRandomKickoff(seed)
	return arena
}

func TestDuplicateArenaRejected(t *testing.T) {
	g := NewGroup()
	arena := newSeededArena(t, 1)

	require.NoError(t, g.Add(arena))
	assert.ErrorIs(t, g.Add(arena), ErrDuplicateArena)
	assert.Equal(t, 1, g.Len())
}

func TestParallelArenasIndependent(t *testing.T) {
	a := newSeededArena(t, 42)
	b := newSeededArena(t, 42)

	g := NewGroup()
	g.MaxWorkers = 2
	require.NoError(t, g.Add(a))
	require.NoError(t, g.Add(b))

	require.NoError(t, g.StepAll(500))

	assert.Equal(t, uint64(500), a.TickCount())
	assert.Equal(t, uint64(500), b.TickCount())
	assert.Equal(t, a.StateHash(), b.StateHash(),
		"identical seeds and control schedules must stay byte-identical")
}

func TestDifferentSeedsDiverge(t *testing.T) {
	g := NewGroup()
	g.MaxWorkers = 4

	arenas := make([]*sim.Arena, 0, 4)
	for seed := int64(10); seed < 14; seed++ {
		arena := newSeededArena(t, seed)
		require.NoError(t, g.Add(arena))
		arenas = append(arenas, arena)
	}

	require.NoError(t, g.StepAll(100))

	allEqual := true
	first := arenas[0].StateHash()
	for _, arena := range arenas[1:] {
		if arena.StateHash() != first {
			allEqual = false
		}
	}
	assert.False(t, allEqual, "different seeds must diverge")
}

func TestStepAllPropagatesFault(t *testing.T) {
	arena := newSeededArena(t, 5)
	_, _, err := arena.SetBoostPickupCallback(func(*sim.Arena, *sim.Car, *sim.BoostPad, any) {
		panic("boom")
	}, nil)
	require.NoError(t, err)

	// park a car on a pad so the callback fires
	car := arena.Cars()[0]
	s := car.GetState()
	s.Pos = arena.BoostPads()[0].Pos()
	s.Pos.Z = 17
	s.Boost = 0
	s.Vel = s.Vel.Scale(0)
	car.SetState(s)
	car.SetControls(sim.CarControls{})

	g := NewGroup()
	require.NoError(t, g.Add(arena))
	err = g.StepAll(50)
	require.Error(t, err)
	assert.ErrorIs(t, err, sim.ErrCallbackFault)
}

func TestEmptyGroupStepAll(t *testing.T) {
	g := NewGroup()
	assert.NoError(t, g.StepAll(10))
}
