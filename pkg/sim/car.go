package sim

import (
	"github.com/pitchsim/pitchsim/pkg/geom"
	"github.com/pitchsim/pitchsim/pkg/phys"
)

// WorldContact is the most recent car-world manifold summary.
type WorldContact struct {
	HasContact    bool
	ContactNormal geom.Vec
}

// CarContact is the bump-cooldown back reference to another car.
type CarContact struct {
	OtherCarID    uint32
	CooldownTimer float32
}

// BallHitInfo witnesses the car's last ball touch.
type BallHitInfo struct {
	IsValid bool

	RelativePosOnBall geom.Vec
	BallPos           geom.Vec
	ExtraHitVel       geom.Vec

	TickCountWhenHit                 uint64
	TickCountWhenExtraImpulseApplied uint64
}

// CarState is the externally visible car snapshot.
type CarState struct {
	Pos    geom.Vec
	RotMat geom.RotMat
	Vel    geom.Vec
	AngVel geom.Vec

	IsOnGround        bool
	WheelsWithContact [4]bool // FL, FR, BL, BR

	HasJumped bool
	IsJumping bool
	JumpTime  float32

	HasDoubleJumped  bool
	AirTime          float32
	AirTimeSinceJump float32

	HasFlipped    bool
	IsFlipping    bool
	FlipTime      float32
	FlipRelTorque geom.Vec

	IsAutoFlipping      bool
	AutoFlipTimer       float32
	AutoFlipTorqueScale float32

	Boost            float32
	BoostingTime     float32
	TimeSinceBoosted float32
	IsBoosting       bool

	IsSupersonic   bool
	SupersonicTime float32

	HandbrakeVal float32

	IsDemoed         bool
	DemoRespawnTimer float32

	WorldContact WorldContact
	CarContact   CarContact

	BallHitInfo BallHitInfo

	LastControls CarControls

	TickCountSinceUpdate uint64
}

// DefaultCarState is a grounded, stationary car at the origin.
func DefaultCarState() CarState {
	return CarState{
		Pos:    geom.Vec{Z: CarSpawnZ},
		RotMat: geom.IdentityRotMat(),
	}
}

// HasFlipOrJump reports whether the car can still initiate a jump, double
// jump, or flip.
func (s CarState) HasFlipOrJump() bool {
	if !s.HasJumped {
		return true
	}
	return !s.HasDoubleJumped && !s.HasFlipped && s.AirTimeSinceJump < DoubleJumpMaxDelay
}

// Car is a chassis body plus four raycast suspension wheels and the vehicle
// state machines.
type Car struct {
	id     uint32
	team   Team
	config CarConfig

	arena *Arena
	body  *phys.Body

	controls CarControls
	state    CarState

	// set while the jump button was down on the previous tick, for edge
	// detection
	prevJumpPressed bool
}

func (c *Car) ID() uint32 { return c.id }

func (c *Car) Team() Team { return c.team }

func (c *Car) GetConfig() CarConfig { return c.config }

func (c *Car) GetControls() CarControls { return c.controls }

// SetControls stores the controls snapshot read at the next tick.
func (c *Car) SetControls(controls CarControls) {
	c.controls = controls
}

func newCar(arena *Arena, id uint32, team Team, config CarConfig) *Car {
	mutators := &arena.mutatorConfig

	body := phys.NewBody(phys.BoxShape{
		HalfExtents: config.HitboxSize.Scale(0.5),
	}, mutators.CarMass)
	body.Friction = mutators.CarWorldFriction
	body.Restitution = mutators.CarWorldRestitution
	body.Kind = entityCar
	body.UserID = id
	arena.world.AddBody(body)

	c := &Car{
		id:     id,
		team:   team,
		config: config,
		arena:  arena,
		body:   body,
		state:  DefaultCarState(),
	}
	c.writeBodyFromState()
	return c
}

// GetState assembles the full snapshot from the rigid body and internal
// fields.
func (c *Car) GetState() CarState {
	s := c.state
	s.Pos = c.body.Pos
	s.RotMat = c.body.Rot
	s.Vel = c.body.Vel
	s.AngVel = c.body.AngVel
	return s
}

// SetState overwrites the car. BallHitInfo is carried verbatim from the
// given state: the caller owns that field and a stale witness is never
// cleared here.
func (c *Car) SetState(s CarState) {
	s.TickCountSinceUpdate = 0
	s.Boost = geom.Clamp(s.Boost, 0, 100)
	c.state = s
	c.prevJumpPressed = s.LastControls.Jump
	c.writeBodyFromState()
}

func (c *Car) writeBodyFromState() {
	c.body.Pos = c.state.Pos
	c.body.Rot = c.state.RotMat
	c.body.Vel = c.state.Vel
	c.body.AngVel = c.state.AngVel
	c.body.Frozen = c.state.IsDemoed
}

// Demolish demos the car immediately, regardless of the demo mutator.
func (c *Car) Demolish() {
	c.demolish(c.arena.mutatorConfig.RespawnDelay)
}

func (c *Car) demolish(respawnDelay float32) {
	if c.state.IsDemoed {
		return
	}
	c.state.IsDemoed = true
	c.state.DemoRespawnTimer = respawnDelay
	c.body.Frozen = true
	c.body.Vel = geom.Vec{}
	c.body.AngVel = geom.Vec{}
}

// Respawn places the car at a team-side respawn pose with spawn boost.
func (c *Car) Respawn(seed int64) {
	spawn := respawnPose(c.team, seed, c.id)

	s := DefaultCarState()
	s.Pos = spawn.pos
	s.RotMat = geom.Angle{Yaw: spawn.yaw}.ToRotMat()
	s.Boost = c.arena.mutatorConfig.CarSpawnBoostAmount
	s.LastControls = c.controls
	c.SetState(s)
}

func (c *Car) forward() geom.Vec { return c.body.Rot.Forward }

func (c *Car) up() geom.Vec { return c.body.Rot.Up }

// wheelWorldRay returns the suspension ray start and direction for a wheel.
func (c *Car) wheelWorldRay(i int) (from, dir geom.Vec, length float32) {
	pair := c.config.wheelPair(i)
	local := c.config.wheelConnectionPoint(i)
	from = c.body.Pos.Add(c.body.Rot.MulVec(local))
	dir = c.up().Neg()
	length = pair.SuspensionRestLength + pair.WheelRadius + wheelContactRayExtra
	return from, dir, length
}
