package replay

import (
	"bytes"
	"io"
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

func TestRecordAndReadBack(t *testing.T) {
	arena, err := sim.NewArena(sim.Soccar, sim.DefaultArenaConfig(), 120)
	require.NoError(t, err)
	car := arena.AddCar(sim.TeamBlue, sim.CarConfigOctane)
	car.SetControls(sim.CarControls{Throttle: 1})
	arena.ResetToRandomKickoff(9)

	var buf bytes.Buffer
	rec, err := NewRecorder(&buf)
	require.NoError(t, err)

	const frames = 5
	var ticks []uint64
	for i := 0; i < frames; i++ {
		require.NoError(t, arena.Step(30))
		ticks = append(ticks, arena.TickCount())
		require.NoError(t, rec.WriteFrame(arena))
	}
	require.NoError(t, rec.Close())
	require.NotZero(t, buf.Len())

	r, err := NewReader(&buf)
	require.NoError(t, err)
	defer r.Close()

	for i := 0; i < frames; i++ {
		frame, gs, err := r.NextFrame()
		require.NoError(t, err)
		assert.Equal(t, ticks[i], frame.TickCount)
		assert.Equal(t, ticks[i], gs.TickCount)
		require.Len(t, gs.Cars, 1)
		assert.Equal(t, car.ID(), gs.Cars[0].ID)
	}

	_, _, err = r.NextFrame()
	assert.Equal(t, io.EOF, err)
}
