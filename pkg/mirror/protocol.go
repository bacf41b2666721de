// Package mirror implements the UDP state-mirror wire protocol spoken by the
// external renderer. All integers and floats are little-endian; floats are
// IEEE-754 binary32. The byte layouts here are fixed by the protocol and
// must round-trip exactly.
package mirror

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/pitchsim/pitchsim/pkg/geom"
	"github.com/pitchsim/pitchsim/pkg/sim"
)

// PacketType is the one-byte datagram tag.
type PacketType byte

const (
	PacketQuit PacketType = iota
	PacketGameState
	PacketConnection
	PacketPaused
	PacketSpeed
	PacketRender
)

// Fixed block sizes of the GameState payload.
const (
	HeaderBytes = 8 + 4 + 1 + 4 + 4
	BallBytes   = 12 + 36 + 12 + 12 + 12
	PadBytes    = 1 + 4 + 12 + 1
	// id + team + full car state + controls + config
	CarBytes = 4 + 1 + 220 + 23 + 68
)

var ErrTruncated = errors.New("mirror packet truncated")

// BallInfo is the ball block of a GameState payload.
type BallInfo struct {
	Pos    geom.Vec
	RotMat geom.RotMat
	Vel    geom.Vec
	AngVel geom.Vec

	HSYTargetDir     float32
	HSCurTargetSpeed float32
	HSTimeSinceHit   float32
}

// PadInfo is one pad block.
type PadInfo struct {
	IsActive bool
	Cooldown float32
	Pos      geom.Vec
	IsBig    bool
}

// CarInfo is one car block: id, team, the full car state, and the config.
type CarInfo struct {
	ID     uint32
	Team   sim.Team
	State  sim.CarState
	Config sim.CarConfig
}

// GameState is one full snapshot.
type GameState struct {
	TickCount uint64
	TickRate  float32
	GameMode  sim.GameMode

	Ball BallInfo
	Pads []PadInfo
	Cars []CarInfo
}

// FromArena snapshots an arena into the wire structure.
func FromArena(a *sim.Arena) GameState {
	gs := GameState{
		TickCount: a.TickCount(),
		TickRate:  a.TickRate(),
		GameMode:  a.GameMode(),
	}

	ball := a.Ball().GetState()
	gs.Ball = BallInfo{
		Pos:              ball.Pos,
		RotMat:           ball.RotMat,
		Vel:              ball.Vel,
		AngVel:           ball.AngVel,
		HSYTargetDir:     ball.HSInfo.YTargetDir,
		HSCurTargetSpeed: ball.HSInfo.CurTargetSpeed,
		HSTimeSinceHit:   ball.HSInfo.TimeSinceHit,
	}

	for _, pad := range a.BoostPads() {
		s := pad.GetState()
		gs.Pads = append(gs.Pads, PadInfo{
			IsActive: s.IsActive,
			Cooldown: s.Cooldown,
			Pos:      pad.Pos(),
			IsBig:    pad.IsBig(),
		})
	}

	for _, car := range a.Cars() {
		state := car.GetState()
		// the staleness counter is not part of the wire layout
		state.TickCountSinceUpdate = 0
		gs.Cars = append(gs.Cars, CarInfo{
			ID:     car.ID(),
			Team:   car.Team(),
			State:  state,
			Config: car.GetConfig(),
		})
	}

	return gs
}

type wireWriter struct {
	data []byte
}

func (w *wireWriter) u8(v byte) { w.data = append(w.data, v) }

func (w *wireWriter) boolean(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *wireWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.data = append(w.data, b[:]...)
}

func (w *wireWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.data = append(w.data, b[:]...)
}

func (w *wireWriter) f32(v float32) { w.u32(math.Float32bits(v)) }

func (w *wireWriter) vec(v geom.Vec) {
	w.f32(v.X)
	w.f32(v.Y)
	w.f32(v.Z)
}

func (w *wireWriter) rotMat(m geom.RotMat) {
	w.vec(m.Forward)
	w.vec(m.Right)
	w.vec(m.Up)
}

type wireReader struct {
	data []byte
	pos  int
	err  error
}

func (r *wireReader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.pos+n > len(r.data) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d", ErrTruncated, n, r.pos)
		return false
	}
	return true
}

func (r *wireReader) u8() byte {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *wireReader) boolean() bool { return r.u8() != 0 }

func (r *wireReader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *wireReader) u64() uint64 {
	if !r.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v
}

func (r *wireReader) f32() float32 { return math.Float32frombits(r.u32()) }

func (r *wireReader) vec() geom.Vec {
	return geom.Vec{X: r.f32(), Y: r.f32(), Z: r.f32()}
}

func (r *wireReader) rotMat() geom.RotMat {
	return geom.RotMat{Forward: r.vec(), Right: r.vec(), Up: r.vec()}
}

// NumBytes is the exact payload size for the snapshot.
func (gs *GameState) NumBytes() int {
	return HeaderBytes + BallBytes + len(gs.Pads)*PadBytes + len(gs.Cars)*CarBytes
}

// PayloadSize reads the header of an encoded payload and computes the total
// size, or 0 when even the header is short.
func PayloadSize(data []byte) int {
	if len(data) < HeaderBytes {
		return 0
	}
	numPads := binary.LittleEndian.Uint32(data[13:])
	numCars := binary.LittleEndian.Uint32(data[17:])
	return HeaderBytes + BallBytes + int(numPads)*PadBytes + int(numCars)*CarBytes
}

// ToBytes encodes the snapshot payload.
func (gs *GameState) ToBytes() []byte {
	w := &wireWriter{data: make([]byte, 0, gs.NumBytes())}

	w.u64(gs.TickCount)
	w.f32(gs.TickRate)
	w.u8(byte(gs.GameMode))
	w.u32(uint32(len(gs.Pads)))
	w.u32(uint32(len(gs.Cars)))

	w.vec(gs.Ball.Pos)
	w.rotMat(gs.Ball.RotMat)
	w.vec(gs.Ball.Vel)
	w.vec(gs.Ball.AngVel)
	w.f32(gs.Ball.HSYTargetDir)
	w.f32(gs.Ball.HSCurTargetSpeed)
	w.f32(gs.Ball.HSTimeSinceHit)

	for _, pad := range gs.Pads {
		w.boolean(pad.IsActive)
		w.f32(pad.Cooldown)
		w.vec(pad.Pos)
		w.boolean(pad.IsBig)
	}

	for i := range gs.Cars {
		writeCarInfo(w, &gs.Cars[i])
	}

	return w.data
}

// FromBytes decodes a payload produced by ToBytes.
func FromBytes(data []byte) (GameState, error) {
	r := &wireReader{data: data}
	var gs GameState

	gs.TickCount = r.u64()
	gs.TickRate = r.f32()
	gs.GameMode = sim.GameMode(r.u8())
	numPads := r.u32()
	numCars := r.u32()

	gs.Ball.Pos = r.vec()
	gs.Ball.RotMat = r.rotMat()
	gs.Ball.Vel = r.vec()
	gs.Ball.AngVel = r.vec()
	gs.Ball.HSYTargetDir = r.f32()
	gs.Ball.HSCurTargetSpeed = r.f32()
	gs.Ball.HSTimeSinceHit = r.f32()

	if numPads < 1<<16 {
		for i := uint32(0); i < numPads && r.err == nil; i++ {
			var pad PadInfo
			pad.IsActive = r.boolean()
			pad.Cooldown = r.f32()
			pad.Pos = r.vec()
			pad.IsBig = r.boolean()
			gs.Pads = append(gs.Pads, pad)
		}
	}
	if numCars < 1<<12 {
		for i := uint32(0); i < numCars && r.err == nil; i++ {
			gs.Cars = append(gs.Cars, readCarInfo(r))
		}
	}

	return gs, r.err
}

func writeCarInfo(w *wireWriter, c *CarInfo) {
	w.u32(c.ID)
	w.u8(byte(c.Team))

	s := &c.State
	w.vec(s.Pos)
	w.rotMat(s.RotMat)
	w.vec(s.Vel)
	w.vec(s.AngVel)
	w.boolean(s.IsOnGround)
	for i := 0; i < 4; i++ {
		w.boolean(s.WheelsWithContact[i])
	}
	w.boolean(s.HasJumped)
	w.boolean(s.HasDoubleJumped)
	w.boolean(s.HasFlipped)
	w.vec(s.FlipRelTorque)
	w.f32(s.JumpTime)
	w.f32(s.FlipTime)
	w.boolean(s.IsFlipping)
	w.boolean(s.IsJumping)
	w.f32(s.AirTime)
	w.f32(s.AirTimeSinceJump)
	w.f32(s.Boost)
	w.f32(s.TimeSinceBoosted)
	w.boolean(s.IsBoosting)
	w.f32(s.BoostingTime)
	w.boolean(s.IsSupersonic)
	w.f32(s.SupersonicTime)
	w.f32(s.HandbrakeVal)
	w.boolean(s.IsAutoFlipping)
	w.f32(s.AutoFlipTimer)
	w.f32(s.AutoFlipTorqueScale)
	w.boolean(s.WorldContact.HasContact)
	w.vec(s.WorldContact.ContactNormal)
	w.u32(s.CarContact.OtherCarID)
	w.f32(s.CarContact.CooldownTimer)
	w.boolean(s.IsDemoed)
	w.f32(s.DemoRespawnTimer)

	w.boolean(s.BallHitInfo.IsValid)
	w.vec(s.BallHitInfo.RelativePosOnBall)
	w.vec(s.BallHitInfo.BallPos)
	w.vec(s.BallHitInfo.ExtraHitVel)
	w.u64(s.BallHitInfo.TickCountWhenHit)
	w.u64(s.BallHitInfo.TickCountWhenExtraImpulseApplied)

	w.f32(s.LastControls.Throttle)
	w.f32(s.LastControls.Steer)
	w.f32(s.LastControls.Pitch)
	w.f32(s.LastControls.Yaw)
	w.f32(s.LastControls.Roll)
	w.boolean(s.LastControls.Boost)
	w.boolean(s.LastControls.Jump)
	w.boolean(s.LastControls.Handbrake)

	cfg := &c.Config
	w.vec(cfg.HitboxSize)
	w.vec(cfg.HitboxPosOffset)
	w.f32(cfg.FrontWheels.WheelRadius)
	w.f32(cfg.FrontWheels.SuspensionRestLength)
	w.vec(cfg.FrontWheels.ConnectionPointOffset)
	w.f32(cfg.BackWheels.WheelRadius)
	w.f32(cfg.BackWheels.SuspensionRestLength)
	w.vec(cfg.BackWheels.ConnectionPointOffset)
	w.f32(cfg.DodgeDeadzone)
}

func readCarInfo(r *wireReader) CarInfo {
	var c CarInfo
	c.ID = r.u32()
	c.Team = sim.Team(r.u8())

	s := &c.State
	s.Pos = r.vec()
	s.RotMat = r.rotMat()
	s.Vel = r.vec()
	s.AngVel = r.vec()
	s.IsOnGround = r.boolean()
	for i := 0; i < 4; i++ {
		s.WheelsWithContact[i] = r.boolean()
	}
	s.HasJumped = r.boolean()
	s.HasDoubleJumped = r.boolean()
	s.HasFlipped = r.boolean()
	s.FlipRelTorque = r.vec()
	s.JumpTime = r.f32()
	s.FlipTime = r.f32()
	s.IsFlipping = r.boolean()
	s.IsJumping = r.boolean()
	s.AirTime = r.f32()
	s.AirTimeSinceJump = r.f32()
	s.Boost = r.f32()
	s.TimeSinceBoosted = r.f32()
	s.IsBoosting = r.boolean()
	s.BoostingTime = r.f32()
	s.IsSupersonic = r.boolean()
	s.SupersonicTime = r.f32()
	s.HandbrakeVal = r.f32()
	s.IsAutoFlipping = r.boolean()
	s.AutoFlipTimer = r.f32()
	s.AutoFlipTorqueScale = r.f32()
	s.WorldContact.HasContact = r.boolean()
	s.WorldContact.ContactNormal = r.vec()
	s.CarContact.OtherCarID = r.u32()
	s.CarContact.CooldownTimer = r.f32()
	s.IsDemoed = r.boolean()
	s.DemoRespawnTimer = r.f32()

	s.BallHitInfo.IsValid = r.boolean()
	s.BallHitInfo.RelativePosOnBall = r.vec()
	s.BallHitInfo.BallPos = r.vec()
	s.BallHitInfo.ExtraHitVel = r.vec()
	s.BallHitInfo.TickCountWhenHit = r.u64()
	s.BallHitInfo.TickCountWhenExtraImpulseApplied = r.u64()

	s.LastControls.Throttle = r.f32()
	s.LastControls.Steer = r.f32()
	s.LastControls.Pitch = r.f32()
	s.LastControls.Yaw = r.f32()
	s.LastControls.Roll = r.f32()
	s.LastControls.Boost = r.boolean()
	s.LastControls.Jump = r.boolean()
	s.LastControls.Handbrake = r.boolean()

	cfg := &c.Config
	cfg.HitboxSize = r.vec()
	cfg.HitboxPosOffset = r.vec()
	cfg.FrontWheels.WheelRadius = r.f32()
	cfg.FrontWheels.SuspensionRestLength = r.f32()
	cfg.FrontWheels.ConnectionPointOffset = r.vec()
	cfg.BackWheels.WheelRadius = r.f32()
	cfg.BackWheels.SuspensionRestLength = r.f32()
	cfg.BackWheels.ConnectionPointOffset = r.vec()
	cfg.DodgeDeadzone = r.f32()

	return c
}
