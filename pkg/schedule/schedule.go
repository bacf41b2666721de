// Package schedule steps independent arenas in parallel. The engine core
// guarantees arenas share no mutable state after startup init, so the only
// bookkeeping needed here is duplicate detection and fan-out.
package schedule

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/sasha-s/go-deadlock"

	"github.com/pitchsim/pitchsim/pkg/sim"
)

var ErrDuplicateArena = errors.New("arena already in group")

// Group is a set of arenas stepped together.
type Group struct {
	mu      deadlock.Mutex
	arenas  []*sim.Arena
	members map[*sim.Arena]bool

	// MaxWorkers caps the goroutines used by StepAll; 0 means GOMAXPROCS.
	MaxWorkers int
}

func NewGroup() *Group {
	return &Group{members: map[*sim.Arena]bool{}}
}

// Add registers an arena. The same arena cannot be stepped from two workers,
// so duplicates are rejected.
func (g *Group) Add(a *sim.Arena) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.members[a] {
		return ErrDuplicateArena
	}
	g.members[a] = true
	g.arenas = append(g.arenas, a)
	return nil
}

func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.arenas)
}

// Arenas returns the members in registration order.
func (g *Group) Arenas() []*sim.Arena {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*sim.Arena(nil), g.arenas...)
}

// StepAll advances every arena by n ticks across worker goroutines and
// returns the first error encountered.
func (g *Group) StepAll(n int) error {
	arenas := g.Arenas()
	if len(arenas) == 0 {
		return nil
	}

	workers := g.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(arenas) {
		workers = len(arenas)
	}

	jobs := make(chan *sim.Arena)
	errs := make(chan error, len(arenas))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range jobs {
				if err := a.Step(n); err != nil {
					errs <- fmt.Errorf("arena at tick %d: %w", a.TickCount(), err)
				}
			}
		}()
	}
	for _, a := range arenas {
		jobs <- a
	}
	close(jobs)
	wg.Wait()
	close(errs)

	return <-errs
}
