package sim

import (
	"math"

	"github.com/pitchsim/pitchsim/pkg/geom"
)

// Speed and rotation limits.
const (
	CarMaxSpeed    = 2300.0
	CarMaxAngSpeed = 5.5

	SupersonicStartSpeed       = 2200.0
	SupersonicMaintainMinSpeed = 2100.0
	SupersonicMaintainMaxTime  = 1.0
)

// Jump, double jump and flip timing.
const (
	JumpMinTime = 0.025
	JumpMaxTime = 0.2

	// window after releasing the first jump in which a flip or double jump
	// can still be triggered
	DoubleJumpMaxDelay = 1.25

	FlipTorqueTime    = 0.65
	FlipTorqueMinTime = 0.41
	FlipPitchLockTime = 1.0

	FlipInitialVelScale   = 500.0
	FlipBackwardVelScale  = 16.0 / 15.0
	FlipForwardGravScale  = 0.35
	FlipAngVel            = 5.5
	DoubleJumpImpulseVel  = 291.667
	AutoFlipImpulseVel    = 200.0
	AutoFlipTorqueScale   = 5.75
	AutoFlipDuration      = 0.4
	AutoFlipMaxSpeed      = 250.0
	AutoFlipRollThreshold = -0.5
)

// Boost.
const (
	RechargeBoostDelay     = 0.25
	RechargeBoostPerSecond = 10.0

	BoostAmountBig   = 100.0
	BoostAmountSmall = 12.0
)

// Bumps and demos.
const (
	DemoMinRelSpeed = 2000.0
)

// Suspension and ground handling.
const (
	suspensionStiffness  = 130.0
	suspensionDamping    = 20.0
	wheelContactRayExtra = 8.0

	brakeAccel           = 3500.0
	coastAccel           = 525.0
	lateralGrip          = 10.0
	lateralGripHandbrake = 2.0
	handbrakeRate        = 9.0

	steerYawGain = 1.0 / 85.0
)

// Ball.
const (
	BallRestZ = 93.15
)

// Soccar field geometry (procedural hull; loaded meshes refine this).
const (
	ArenaExtentX = 4096.0
	ArenaExtentY = 5120.0
	ArenaHeight  = 2048.0

	GoalHalfWidth  = 892.755
	GoalHeight     = 642.775
	GoalDepth      = 880.0
	GoalScoreYBase = 5121.75
)

// Hoops field geometry.
const (
	HoopsExtentX   = 2966.0
	HoopsExtentY   = 3586.0
	HoopsHeight    = 1820.0
	HoopsRimRadius = 368.5
	HoopsRimHeight = 365.0
	HoopsRimY      = 3353.0
)

const CarSpawnZ = 17.0

// Speed-dependent drive force per unit throttle.
var driveSpeedTorqueCurve = geom.NewCurve(
	geom.CurvePoint{Input: 0, Output: 1600},
	geom.CurvePoint{Input: 1400, Output: 160},
	geom.CurvePoint{Input: 1410, Output: 0},
)

// Max steering angle by forward speed.
var steerAngleCurve = geom.NewCurve(
	geom.CurvePoint{Input: 0, Output: 0.53356},
	geom.CurvePoint{Input: 500, Output: 0.31930},
	geom.CurvePoint{Input: 1000, Output: 0.18203},
	geom.CurvePoint{Input: 1500, Output: 0.10570},
	geom.CurvePoint{Input: 1750, Output: 0.08507},
	geom.CurvePoint{Input: 3000, Output: 0.03454},
)

// Extra ball-hit impulse scale by forward speed of the car.
var ballHitExtraForceCurve = geom.NewCurve(
	geom.CurvePoint{Input: 0, Output: 0.65},
	geom.CurvePoint{Input: 500, Output: 0.65},
	geom.CurvePoint{Input: 2300, Output: 0.55},
	geom.CurvePoint{Input: 4600, Output: 0.30},
)

// Heatseeker target speed by consecutive touches.
var heatseekerTouchSpeedCurve = geom.NewCurve(
	geom.CurvePoint{Input: 0, Output: 2900},
	geom.CurvePoint{Input: 5, Output: 3750},
	geom.CurvePoint{Input: 10, Output: 4600},
)

// Air control torque and damping (pitch, yaw, roll order).
var (
	airControlTorque  = geom.Vec{X: 130, Y: 95, Z: 400}
	airControlDamping = geom.Vec{X: 30, Y: 20, Z: 50}
)

// Heatseeker behavior.
const (
	HeatseekerRetargetDelay   = 0.25
	HeatseekerInitialSpeed    = 2900.0
	HeatseekerMaxSpeed        = 4600.0
	HeatseekerAccelPerSecond  = 850.0
	HeatseekerTargetZ         = 320.0
	HeatseekerMinFieldZ       = 150.0
	HeatseekerTurnRatePerTick = 0.065
)

// Dropshot ball charge thresholds on accumulated hit force.
const (
	DropshotChargeThreshold1 = 2500.0
	DropshotChargeThreshold2 = 11000.0
	DropshotMinDamageVel     = 250.0
)

const piF = float32(math.Pi)
