package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/pitchsim/pitchsim/pkg/collision"
	"github.com/pitchsim/pitchsim/pkg/replay"
	"github.com/pitchsim/pitchsim/pkg/schedule"
	"github.com/pitchsim/pitchsim/pkg/sim"
)

const readmeTicks = 1_000_000

// phaseTimer accumulates wall time per named step phase.
type phaseTimer struct {
	started map[string]time.Time
	total   map[string]time.Duration
}

func newPhaseTimer() *phaseTimer {
	return &phaseTimer{
		started: map[string]time.Time{},
		total:   map[string]time.Duration{},
	}
}

func (p *phaseTimer) record(phase string, isStart bool, _ any) {
	if isStart {
		p.started[phase] = time.Now()
		return
	}
	if start, ok := p.started[phase]; ok {
		p.total[phase] += time.Since(start)
	}
}

func (cmd *BenchCmd) Run() error {
	if cmd.Meshes != "" {
		if err := collision.Init(cmd.Meshes); err != nil {
			return err
		}
	} else {
		collision.InitEmpty()
	}

	ticks := cmd.Ticks
	if cmd.Readme {
		ticks = readmeTicks
	}
	if ticks <= 0 {
		return fmt.Errorf("nothing to simulate: %d ticks", ticks)
	}

	var overrides *sim.MutatorConfig
	if cmd.Config != "" {
		data, err := os.ReadFile(cmd.Config)
		if err != nil {
			return err
		}
		cfg := sim.DefaultMutatorConfig(sim.Soccar)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", cmd.Config, err)
		}
		overrides = &cfg
	}

	group := schedule.NewGroup()
	group.MaxWorkers = cmd.Threads

	numArenas := cmd.Threads
	if numArenas < 1 {
		numArenas = 1
	}

	var profiled *phaseTimer
	for i := 0; i < numArenas; i++ {
		arena, err := newBenchArena(cmd.Seed + int64(i))
		if err != nil {
			return err
		}
		if overrides != nil {
			arena.SetMutatorConfig(*overrides)
		}
		if cmd.Profile && i == 0 {
			profiled = newPhaseTimer()
			arena.SetProfilerCallback(profiled.record, nil)
		}
		if err := group.Add(arena); err != nil {
			return err
		}
	}

	var recorder *replay.Recorder
	var recordFile *os.File
	if cmd.Record != "" {
		var err error
		recordFile, err = os.Create(cmd.Record)
		if err != nil {
			return err
		}
		defer recordFile.Close()
		recorder, err = replay.NewRecorder(recordFile)
		if err != nil {
			return err
		}
	}

	log.Info().
		Int("arenas", numArenas).
		Int("ticks", ticks).
		Msg("starting benchmark")

	start := time.Now()

	if recorder != nil {
		// recording forces the chunked path so frames land between steps
		arena := group.Arenas()[0]
		const chunk = 120
		for done := 0; done < ticks; done += chunk {
			n := chunk
			if ticks-done < n {
				n = ticks - done
			}
			if err := group.StepAll(n); err != nil {
				return err
			}
			if err := recorder.WriteFrame(arena); err != nil {
				return err
			}
		}
		if err := recorder.Close(); err != nil {
			return err
		}
	} else if err := group.StepAll(ticks); err != nil {
		return err
	}

	elapsed := time.Since(start)
	totalTicks := float64(ticks) * float64(numArenas)
	rate := totalTicks / elapsed.Seconds()

	fmt.Printf("simulated %d ticks x %d arenas in %s\n", ticks, numArenas, elapsed.Round(time.Millisecond))
	fmt.Printf("%.0f ticks/sec\n", rate)

	if profiled != nil {
		fmt.Println("per-phase totals (arena 0):")
		for _, phase := range []string{"PreTickUpdate", "PhysicsStep", "ContactDispatch", "PostTickUpdate"} {
			fmt.Printf("  %-16s %s\n", phase, profiled.total[phase].Round(time.Microsecond))
		}
	}

	return nil
}

// newBenchArena builds the standard 2v2 soccar benchmark arena.
func newBenchArena(seed int64) (*sim.Arena, error) {
	arena, err := sim.NewArena(sim.Soccar, sim.DefaultArenaConfig(), 120)
	if err != nil {
		return nil, err
	}

	for i := 0; i < 2; i++ {
		blue := arena.AddCar(sim.TeamBlue, sim.CarConfigOctane)
		orange := arena.AddCar(sim.TeamOrange, sim.CarConfigOctane)

		// simple symmetric inputs keep the cars moving the whole run
		blue.SetControls(sim.CarControls{Throttle: 1, Steer: 0.2, Boost: true})
		orange.SetControls(sim.CarControls{Throttle: 1, Steer: -0.2, Boost: true})
	}

	arena.ResetToRandomKickoff(seed)
	return arena, nil
}
