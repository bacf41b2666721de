package sim

import (
	"fmt"

	"github.com/pitchsim/pitchsim/pkg/collision"
	"github.com/pitchsim/pitchsim/pkg/geom"
	"github.com/pitchsim/pitchsim/pkg/phys"
)

// Callback signatures. UserData is whatever was registered alongside the
// callback.
type (
	GoalScoreFn   func(arena *Arena, scoringTeam Team, userData any)
	CarBumpFn     func(arena *Arena, bumper, victim *Car, isDemo bool, userData any)
	CarDemoFn     func(arena *Arena, bumper, victim *Car, userData any)
	BoostPickupFn func(arena *Arena, car *Car, pad *BoostPad, userData any)
	BallTouchFn   func(arena *Arena, car *Car, userData any)

	// ProfilerPhaseFn is called at the start (isStart=true) and end of each
	// named phase inside a sub-tick.
	ProfilerPhaseFn func(phase string, isStart bool, userData any)
)

type callbackSlot[F any] struct {
	fn   F
	data any
}

// Arena owns a world, a ball, the cars, and the pads, and drives the tick
// loop. A single arena is single-threaded; independent arenas can run on
// independent goroutines with no shared state.
type Arena struct {
	gameMode GameMode

	tickTime  float32
	tickCount uint64

	mutatorConfig MutatorConfig
	config        ArenaConfig

	world *phys.World
	ball  *Ball

	cars      []*Car // ascending id
	carByID   map[uint32]*Car
	lastCarID uint32

	pads    []*BoostPad
	grid    *padGrid
	tiles   *dropshotTiles
	tracker contactTracker

	touchedBall map[uint32]bool
	bumpedPairs map[uint64]bool

	profilerCb callbackSlot[ProfilerPhaseFn]

	goalScoreCb   callbackSlot[GoalScoreFn]
	carBumpCb     callbackSlot[CarBumpFn]
	carDemoCb     callbackSlot[CarDemoFn]
	boostPickupCb callbackSlot[BoostPickupFn]
	ballTouchCb   callbackSlot[BallTouchFn]

	stopFlag   bool
	fault      error
	ballScored bool

	rng *geom.RNG
}

// NewArena creates an arena for a mode at a tick rate. Collision geometry
// must have been initialized first.
func NewArena(mode GameMode, config ArenaConfig, tickRate float32) (*Arena, error) {
	if !collision.IsInitialized() {
		return nil, collision.ErrInitMissing
	}
	if !mode.valid() {
		return nil, fmt.Errorf("%w: unknown game mode %d", ErrInvalidConfig, mode)
	}
	if config.MinTickRate == 0 && config.MaxTickRate == 0 {
		def := DefaultArenaConfig()
		config.MinTickRate = def.MinTickRate
		config.MaxTickRate = def.MaxTickRate
	}
	if tickRate < config.MinTickRate || tickRate > config.MaxTickRate {
		return nil, fmt.Errorf("%w: tick rate %v outside [%v, %v]",
			ErrInvalidConfig, tickRate, config.MinTickRate, config.MaxTickRate)
	}
	if config.UseCustomBoostPads && !mode.HasBoostPads() && len(config.CustomBoostPads) > 0 {
		return nil, fmt.Errorf("%w: custom pads in a mode without pads", ErrInvalidConfig)
	}

	mutators := DefaultMutatorConfig(mode)

	a := &Arena{
		gameMode:      mode,
		tickTime:      1 / tickRate,
		mutatorConfig: mutators,
		config:        config,
		carByID:       map[uint32]*Car{},
		touchedBall:   map[uint32]bool{},
		bumpedPairs:   map[uint64]bool{},
		rng:           geom.NewRNG(0x51c7a5),
	}

	a.world = phys.NewWorld(mutators.Gravity)
	a.world.SetContactHook(a.tracker.record)
	a.world.SetPairFilter(a.pairFilter)

	a.buildStaticGeometry()
	a.ball = newBall(a)

	if mode == Dropshot {
		a.tiles = newDropshotTiles()
	}

	if mode.HasBoostPads() {
		layout := defaultPadLayout(mode)
		if config.UseCustomBoostPads {
			layout = append([]BoostPadConfig(nil), config.CustomBoostPads...)
			if len(layout) == 0 {
				layout = defaultPadLayout(mode)
			}
		}
		sortPadConfigs(layout)
		for _, cfg := range layout {
			a.pads = append(a.pads, newBoostPad(a, cfg))
		}
		a.grid = newPadGrid(a.pads)
	}

	return a, nil
}

func (a *Arena) GameMode() GameMode { return a.gameMode }

func (a *Arena) TickRate() float32 { return 1 / a.tickTime }

func (a *Arena) TickTime() float32 { return a.tickTime }

func (a *Arena) TickCount() uint64 { return a.tickCount }

func (a *Arena) Ball() *Ball { return a.ball }

// Cars returns the cars in ascending id order. The slice is shared; do not
// mutate.
func (a *Arena) Cars() []*Car { return a.cars }

// BoostPads returns the pads sorted by (y, x).
func (a *Arena) BoostPads() []*BoostPad { return a.pads }

func (a *Arena) GetMutatorConfig() MutatorConfig { return a.mutatorConfig }

func (a *Arena) GetArenaConfig() ArenaConfig { return a.config }

// SetMutatorConfig atomically replaces the active constants; they apply from
// the next tick.
func (a *Arena) SetMutatorConfig(cfg MutatorConfig) {
	a.mutatorConfig = cfg
	a.world.Gravity = cfg.Gravity
	a.ball.applyMutators(&cfg)
	for _, car := range a.cars {
		car.body.SetMass(cfg.CarMass)
		car.body.Friction = cfg.CarWorldFriction
		car.body.Restitution = cfg.CarWorldRestitution
	}
}

func (a *Arena) SetCarCarCollision(enabled bool) {
	a.mutatorConfig.EnableCarCarCollision = enabled
}

func (a *Arena) SetCarBallCollision(enabled bool) {
	a.mutatorConfig.EnableCarBallCollision = enabled
}

// AddCar adds a car for a team; ids are issued from a monotonic counter and
// never reused within the arena's lifetime.
func (a *Arena) AddCar(team Team, config CarConfig) *Car {
	a.lastCarID++
	return a.addCarWithID(a.lastCarID, team, config)
}

func (a *Arena) addCarWithID(id uint32, team Team, config CarConfig) *Car {
	car := newCar(a, id, team, config)
	a.cars = append(a.cars, car)
	a.carByID[id] = car
	return car
}

// RemoveCar removes and frees a car by id.
func (a *Arena) RemoveCar(id uint32) error {
	car, ok := a.carByID[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrCarNotFound, id)
	}
	delete(a.carByID, id)
	for i, other := range a.cars {
		if other == car {
			a.cars = append(a.cars[:i], a.cars[i+1:]...)
			break
		}
	}
	a.world.RemoveBody(car.body)
	car.arena = nil
	return nil
}

// GetCar returns the car with the given id, or nil.
func (a *Arena) GetCar(id uint32) *Car {
	return a.carByID[id]
}

// GetCarFromID returns the car with the given id, or def when unknown.
func (a *Arena) GetCarFromID(id uint32, def *Car) *Car {
	if car, ok := a.carByID[id]; ok {
		return car
	}
	return def
}

func (a *Arena) getCarInternal(id uint32) *Car { return a.carByID[id] }

// GetDropshotTilesState snapshots the tile damage. Zero value outside
// dropshot.
func (a *Arena) GetDropshotTilesState() DropshotTilesState {
	if a.tiles == nil {
		return DropshotTilesState{}
	}
	return a.tiles.getState()
}

func (a *Arena) SetDropshotTilesState(s DropshotTilesState) {
	if a.tiles != nil {
		a.tiles.setState(s)
	}
}

// Stop makes the running Step return after the current sub-tick.
func (a *Arena) Stop() {
	a.stopFlag = true
}

// pairFilter implements the collision mutator toggles.
func (a *Arena) pairFilter(x, y *phys.Body) bool {
	if x.Kind == entityCar && y.Kind == entityCar {
		return a.mutatorConfig.EnableCarCarCollision
	}
	if (x.Kind == entityCar && y.Kind == entityBall) ||
		(x.Kind == entityBall && y.Kind == entityCar) {
		return a.mutatorConfig.EnableCarBallCollision
	}
	if a.gameMode == Dropshot && a.tiles != nil {
		// the ball falls through broken tiles
		ball, floor := x, y
		if ball.Kind != entityBall {
			ball, floor = y, x
		}
		if ball.Kind == entityBall && floor.Kind == entityWorld && floor.UserID == dropshotFloorID {
			if _, broken := a.tiles.brokenTileAt(ball.Pos); broken {
				return false
			}
		}
	}
	return true
}

func (a *Arena) respawnSeed() int64 {
	return int64(a.rng.RandInt(0, 1<<30))
}

// SetGoalScoreCallback registers the goal callback, returning the previous
// registration. Fails in modes without goals.
func (a *Arena) SetGoalScoreCallback(fn GoalScoreFn, userData any) (GoalScoreFn, any, error) {
	if !a.gameMode.HasGoals() {
		return nil, nil, fmt.Errorf("%w: %s has no goals", ErrModeUnsupported, a.gameMode)
	}
	prev := a.goalScoreCb
	a.goalScoreCb = callbackSlot[GoalScoreFn]{fn, userData}
	return prev.fn, prev.data, nil
}

func (a *Arena) SetCarBumpCallback(fn CarBumpFn, userData any) (CarBumpFn, any) {
	prev := a.carBumpCb
	a.carBumpCb = callbackSlot[CarBumpFn]{fn, userData}
	return prev.fn, prev.data
}

func (a *Arena) SetCarDemoCallback(fn CarDemoFn, userData any) (CarDemoFn, any) {
	prev := a.carDemoCb
	a.carDemoCb = callbackSlot[CarDemoFn]{fn, userData}
	return prev.fn, prev.data
}

// SetBoostPickupCallback registers the pickup callback. Fails in modes
// without pads.
func (a *Arena) SetBoostPickupCallback(fn BoostPickupFn, userData any) (BoostPickupFn, any, error) {
	if !a.gameMode.HasBoostPads() {
		return nil, nil, fmt.Errorf("%w: %s has no boost pads", ErrModeUnsupported, a.gameMode)
	}
	prev := a.boostPickupCb
	a.boostPickupCb = callbackSlot[BoostPickupFn]{fn, userData}
	return prev.fn, prev.data, nil
}

func (a *Arena) SetBallTouchCallback(fn BallTouchFn, userData any) (BallTouchFn, any) {
	prev := a.ballTouchCb
	a.ballTouchCb = callbackSlot[BallTouchFn]{fn, userData}
	return prev.fn, prev.data
}

// SetProfilerCallback installs the per-phase timing hook used by the
// benchmark CLI's profile mode.
func (a *Arena) SetProfilerCallback(fn ProfilerPhaseFn, userData any) (ProfilerPhaseFn, any) {
	prev := a.profilerCb
	a.profilerCb = callbackSlot[ProfilerPhaseFn]{fn, userData}
	return prev.fn, prev.data
}

func (a *Arena) profilePhase(phase string, isStart bool) {
	if a.profilerCb.fn == nil {
		return
	}
	a.profilerCb.fn(phase, isStart, a.profilerCb.data)
}

// invokeCallback isolates a user callback: a panic is captured, the stop
// flag raised, and the fault surfaced when Step returns.
func (a *Arena) invokeCallback(run func()) {
	defer func() {
		if r := recover(); r != nil {
			if a.fault == nil {
				a.fault = fmt.Errorf("%w: %v", ErrCallbackFault, r)
			}
			a.stopFlag = true
		}
	}()
	run()
}

func (a *Arena) emitGoalScore(team Team) {
	if a.goalScoreCb.fn == nil {
		return
	}
	a.invokeCallback(func() { a.goalScoreCb.fn(a, team, a.goalScoreCb.data) })
}

func (a *Arena) emitCarBump(bumper, victim *Car, isDemo bool) {
	if a.carBumpCb.fn == nil {
		return
	}
	a.invokeCallback(func() { a.carBumpCb.fn(a, bumper, victim, isDemo, a.carBumpCb.data) })
}

func (a *Arena) emitCarDemo(bumper, victim *Car) {
	if a.carDemoCb.fn == nil {
		return
	}
	a.invokeCallback(func() { a.carDemoCb.fn(a, bumper, victim, a.carDemoCb.data) })
}

func (a *Arena) emitBoostPickup(car *Car, pad *BoostPad) {
	if a.boostPickupCb.fn == nil {
		return
	}
	a.invokeCallback(func() { a.boostPickupCb.fn(a, car, pad, a.boostPickupCb.data) })
}

func (a *Arena) emitBallTouch(car *Car) {
	if a.ballTouchCb.fn == nil {
		return
	}
	a.invokeCallback(func() { a.ballTouchCb.fn(a, car, a.ballTouchCb.data) })
}
