package sim

import "github.com/pitchsim/pitchsim/pkg/geom"

// MutatorConfig is the flat record of tunable physical constants. Setting a
// new config on an arena atomically replaces the active one; changes apply
// from the next tick.
type MutatorConfig struct {
	Gravity geom.Vec `yaml:"gravity"`

	CarMass             float32 `yaml:"car_mass"`
	CarWorldFriction    float32 `yaml:"car_world_friction"`
	CarWorldRestitution float32 `yaml:"car_world_restitution"`

	BallMass             float32 `yaml:"ball_mass"`
	BallMaxSpeed         float32 `yaml:"ball_max_speed"`
	BallDrag             float32 `yaml:"ball_drag"`
	BallWorldFriction    float32 `yaml:"ball_world_friction"`
	BallWorldRestitution float32 `yaml:"ball_world_restitution"`
	BallRadius           float32 `yaml:"ball_radius"`
	BallMaxAngSpeed      float32 `yaml:"ball_max_ang_speed"`

	JumpAccel          float32 `yaml:"jump_accel"`
	JumpImmediateForce float32 `yaml:"jump_immediate_force"`

	BoostAccelGround   float32 `yaml:"boost_accel_ground"`
	BoostAccelAir      float32 `yaml:"boost_accel_air"`
	BoostUsedPerSecond float32 `yaml:"boost_used_per_second"`

	RespawnDelay     float32 `yaml:"respawn_delay"`
	BumpCooldownTime float32 `yaml:"bump_cooldown_time"`

	BoostPadCooldownBig   float32 `yaml:"boost_pad_cooldown_big"`
	BoostPadCooldownSmall float32 `yaml:"boost_pad_cooldown_small"`
	CarSpawnBoostAmount   float32 `yaml:"car_spawn_boost_amount"`

	BallHitExtraForceScale float32 `yaml:"ball_hit_extra_force_scale"`
	BumpForceScale         float32 `yaml:"bump_force_scale"`

	UnlimitedFlips       bool `yaml:"unlimited_flips"`
	UnlimitedDoubleJumps bool `yaml:"unlimited_double_jumps"`

	DemoMode        DemoMode `yaml:"demo_mode"`
	EnableTeamDemos bool     `yaml:"enable_team_demos"`

	EnableCarCarCollision  bool `yaml:"enable_car_car_collision"`
	EnableCarBallCollision bool `yaml:"enable_car_ball_collision"`

	// RechargeBoost recharges boost passively after a delay instead of (or
	// in addition to) pad pickups.
	RechargeBoost bool `yaml:"recharge_boost"`
}

// DefaultMutatorConfig returns the preset for a mode.
func DefaultMutatorConfig(mode GameMode) MutatorConfig {
	cfg := MutatorConfig{
		Gravity: geom.Vec{Z: -650},

		CarMass:             180,
		CarWorldFriction:    0.3,
		CarWorldRestitution: 0.3,

		BallMass:             30,
		BallMaxSpeed:         6000,
		BallDrag:             0.03,
		BallWorldFriction:    0.35,
		BallWorldRestitution: 0.6,
		BallRadius:           91.25,
		BallMaxAngSpeed:      6,

		JumpAccel:          4375.0 / 3,
		JumpImmediateForce: 875.0 / 3,

		BoostAccelGround:   2975.0 / 3,
		BoostAccelAir:      3175.0 / 3,
		BoostUsedPerSecond: 100.0 / 3,

		RespawnDelay:     3,
		BumpCooldownTime: 0.25,

		BoostPadCooldownBig:   10,
		BoostPadCooldownSmall: 4,
		CarSpawnBoostAmount:   100.0 / 3,

		BallHitExtraForceScale: 1,
		BumpForceScale:         1,

		DemoMode:        DemoNormal,
		EnableTeamDemos: false,

		EnableCarCarCollision:  true,
		EnableCarBallCollision: true,

		RechargeBoost: true,
	}

	switch mode {
	case Heatseeker:
		cfg.BallMaxSpeed = HeatseekerMaxSpeed
		cfg.BallWorldRestitution = 0.97
	case Dropshot:
		cfg.BallRadius = 100.2283
		cfg.BallMass = 150
		cfg.BallWorldRestitution = 0.3
	case Snowday:
		// the puck
		cfg.BallRadius = 114.25
		cfg.BallMass = 50
		cfg.BallDrag = 0
		cfg.BallWorldFriction = 0.1
		cfg.BallWorldRestitution = 0.1
	case Hoops:
		cfg.BallRadius = 96.3831
	}
	return cfg
}
