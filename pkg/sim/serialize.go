package sim

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/pitchsim/pitchsim/pkg/geom"
)

const (
	snapshotMagic   = 0x52415350 // "PSAR"
	snapshotVersion = 1
)

type snapWriter struct {
	buf bytes.Buffer
}

func (w *snapWriter) u8(v byte) { w.buf.WriteByte(v) }

func (w *snapWriter) boolean(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *snapWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *snapWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *snapWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *snapWriter) f32(v float32) { w.u32(math.Float32bits(v)) }

func (w *snapWriter) vec(v geom.Vec) {
	w.f32(v.X)
	w.f32(v.Y)
	w.f32(v.Z)
}

func (w *snapWriter) rotMat(m geom.RotMat) {
	w.vec(m.Forward)
	w.vec(m.Right)
	w.vec(m.Up)
}

type snapReader struct {
	data []byte
	off  int
	err  error
}

func (r *snapReader) fail() {
	if r.err == nil {
		r.err = fmt.Errorf("%w: truncated at offset %d", ErrSerialization, r.off)
	}
}

func (r *snapReader) u8() byte {
	if r.err != nil || r.off+1 > len(r.data) {
		r.fail()
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *snapReader) boolean() bool { return r.u8() != 0 }

func (r *snapReader) u16() uint16 {
	if r.err != nil || r.off+2 > len(r.data) {
		r.fail()
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *snapReader) u32() uint32 {
	if r.err != nil || r.off+4 > len(r.data) {
		r.fail()
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *snapReader) u64() uint64 {
	if r.err != nil || r.off+8 > len(r.data) {
		r.fail()
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

func (r *snapReader) f32() float32 { return math.Float32frombits(r.u32()) }

func (r *snapReader) vec() geom.Vec {
	return geom.Vec{X: r.f32(), Y: r.f32(), Z: r.f32()}
}

func (r *snapReader) rotMat() geom.RotMat {
	return geom.RotMat{Forward: r.vec(), Right: r.vec(), Up: r.vec()}
}

// Serialize writes the versioned snapshot of the whole arena.
func (a *Arena) Serialize(out io.Writer) error {
	w := &snapWriter{}

	w.u32(snapshotMagic)
	w.u16(snapshotVersion)
	w.u8(byte(a.gameMode))
	w.f32(a.TickRate())
	w.u64(a.tickCount)

	writeMutatorConfig(w, &a.mutatorConfig)
	writeArenaConfig(w, &a.config)
	writeBallState(w, a.ball.GetState())

	w.u32(uint32(len(a.pads)))
	for _, pad := range a.pads {
		s := pad.GetState()
		w.boolean(s.IsActive)
		w.f32(s.Cooldown)
		w.vec(pad.Config.Pos)
		w.boolean(pad.Config.IsBig)
	}

	w.u32(uint32(len(a.cars)))
	for _, car := range a.cars {
		w.u8(byte(car.team))
		writeCarConfig(w, car.config)
		writeCarState(w, car.GetState())
	}

	hasTiles := a.tiles != nil
	w.boolean(hasTiles)
	if hasTiles {
		state := a.tiles.getState()
		for _, t := range state.States {
			w.u8(byte(t))
		}
	}

	_, err := out.Write(w.buf.Bytes())
	return err
}

// DeserializeNew builds a fresh arena from a snapshot. Car ids are issued by
// the new arena's counter rather than round-tripped.
func DeserializeNew(in io.Reader) (*Arena, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	r := &snapReader{data: data}

	if r.u32() != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrSerialization)
	}
	if v := r.u16(); v != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrSerialization, v, snapshotVersion)
	}

	mode := GameMode(r.u8())
	tickRate := r.f32()
	tickCount := r.u64()

	mutators := readMutatorConfig(r)
	config := readArenaConfig(r)
	ballState := readBallState(r)

	padCount := int(r.u32())
	padStates := make([]BoostPadState, 0, padCount)
	padConfigs := make([]BoostPadConfig, 0, padCount)
	for i := 0; i < padCount; i++ {
		var s BoostPadState
		s.IsActive = r.boolean()
		s.Cooldown = r.f32()
		cfg := BoostPadConfig{Pos: r.vec(), IsBig: r.boolean()}
		padStates = append(padStates, s)
		padConfigs = append(padConfigs, cfg)
	}

	type carBlock struct {
		team   Team
		config CarConfig
		state  CarState
	}
	carCount := int(r.u32())
	carBlocks := make([]carBlock, 0, carCount)
	for i := 0; i < carCount; i++ {
		var cb carBlock
		cb.team = Team(r.u8())
		cb.config = readCarConfig(r)
		cb.state = readCarState(r)
		carBlocks = append(carBlocks, cb)
	}

	var tiles DropshotTilesState
	hasTiles := r.boolean()
	if hasTiles {
		for i := range tiles.States {
			tiles.States[i] = TileState(r.u8())
		}
	}

	if r.err != nil {
		return nil, r.err
	}

	arena, err := NewArena(mode, config, tickRate)
	if err != nil {
		return nil, err
	}
	arena.tickCount = tickCount
	arena.SetMutatorConfig(mutators)
	arena.ball.SetState(ballState)
	arena.ball.tickCountSinceUpdate = ballState.TickCountSinceUpdate

	if len(arena.pads) != padCount {
		return nil, fmt.Errorf("%w: pad count %d does not match mode layout %d",
			ErrSerialization, padCount, len(arena.pads))
	}
	for i, pad := range arena.pads {
		pad.SetState(padStates[i])
		pad.Config = padConfigs[i]
	}

	for _, cb := range carBlocks {
		car := arena.AddCar(cb.team, cb.config)
		car.SetState(cb.state)
		car.state.TickCountSinceUpdate = cb.state.TickCountSinceUpdate
		car.controls = cb.state.LastControls
	}

	if hasTiles {
		arena.SetDropshotTilesState(tiles)
	}

	return arena, nil
}

// StateHash is a 64-bit digest of the serialized arena, for determinism
// checks across parallel runs.
func (a *Arena) StateHash() uint64 {
	var buf bytes.Buffer
	if err := a.Serialize(&buf); err != nil {
		return 0
	}
	return xxhash.Sum64(buf.Bytes())
}

func writeMutatorConfig(w *snapWriter, m *MutatorConfig) {
	w.vec(m.Gravity)
	w.f32(m.CarMass)
	w.f32(m.CarWorldFriction)
	w.f32(m.CarWorldRestitution)
	w.f32(m.BallMass)
	w.f32(m.BallMaxSpeed)
	w.f32(m.BallDrag)
	w.f32(m.BallWorldFriction)
	w.f32(m.BallWorldRestitution)
	w.f32(m.BallRadius)
	w.f32(m.BallMaxAngSpeed)
	w.f32(m.JumpAccel)
	w.f32(m.JumpImmediateForce)
	w.f32(m.BoostAccelGround)
	w.f32(m.BoostAccelAir)
	w.f32(m.BoostUsedPerSecond)
	w.f32(m.RespawnDelay)
	w.f32(m.BumpCooldownTime)
	w.f32(m.BoostPadCooldownBig)
	w.f32(m.BoostPadCooldownSmall)
	w.f32(m.CarSpawnBoostAmount)
	w.f32(m.BallHitExtraForceScale)
	w.f32(m.BumpForceScale)
	w.boolean(m.UnlimitedFlips)
	w.boolean(m.UnlimitedDoubleJumps)
	w.u8(byte(m.DemoMode))
	w.boolean(m.EnableTeamDemos)
	w.boolean(m.EnableCarCarCollision)
	w.boolean(m.EnableCarBallCollision)
	w.boolean(m.RechargeBoost)
}

func readMutatorConfig(r *snapReader) MutatorConfig {
	var m MutatorConfig
	m.Gravity = r.vec()
	m.CarMass = r.f32()
	m.CarWorldFriction = r.f32()
	m.CarWorldRestitution = r.f32()
	m.BallMass = r.f32()
	m.BallMaxSpeed = r.f32()
	m.BallDrag = r.f32()
	m.BallWorldFriction = r.f32()
	m.BallWorldRestitution = r.f32()
	m.BallRadius = r.f32()
	m.BallMaxAngSpeed = r.f32()
	m.JumpAccel = r.f32()
	m.JumpImmediateForce = r.f32()
	m.BoostAccelGround = r.f32()
	m.BoostAccelAir = r.f32()
	m.BoostUsedPerSecond = r.f32()
	m.RespawnDelay = r.f32()
	m.BumpCooldownTime = r.f32()
	m.BoostPadCooldownBig = r.f32()
	m.BoostPadCooldownSmall = r.f32()
	m.CarSpawnBoostAmount = r.f32()
	m.BallHitExtraForceScale = r.f32()
	m.BumpForceScale = r.f32()
	m.UnlimitedFlips = r.boolean()
	m.UnlimitedDoubleJumps = r.boolean()
	m.DemoMode = DemoMode(r.u8())
	m.EnableTeamDemos = r.boolean()
	m.EnableCarCarCollision = r.boolean()
	m.EnableCarBallCollision = r.boolean()
	m.RechargeBoost = r.boolean()
	return m
}

func writeArenaConfig(w *snapWriter, c *ArenaConfig) {
	w.u8(byte(c.MemWeightMode))
	w.boolean(c.UseCustomBoostPads)
	w.u32(uint32(len(c.CustomBoostPads)))
	for _, pad := range c.CustomBoostPads {
		w.vec(pad.Pos)
		w.boolean(pad.IsBig)
	}
}

func readArenaConfig(r *snapReader) ArenaConfig {
	c := DefaultArenaConfig()
	c.MemWeightMode = MemWeightMode(r.u8())
	c.UseCustomBoostPads = r.boolean()
	n := int(r.u32())
	if n > 0 && n < 1<<16 {
		c.CustomBoostPads = make([]BoostPadConfig, n)
		for i := range c.CustomBoostPads {
			c.CustomBoostPads[i] = BoostPadConfig{Pos: r.vec(), IsBig: r.boolean()}
		}
	}
	return c
}

func writeBallState(w *snapWriter, s BallState) {
	w.vec(s.Pos)
	w.rotMat(s.RotMat)
	w.vec(s.Vel)
	w.vec(s.AngVel)
	w.u32(s.LastHitCarID)
	w.f32(s.HSInfo.YTargetDir)
	w.f32(s.HSInfo.CurTargetSpeed)
	w.f32(s.HSInfo.TimeSinceHit)
	w.u32(uint32(s.DSInfo.ChargeLevel))
	w.f32(s.DSInfo.AccumulatedHitForce)
	w.f32(s.DSInfo.YTargetDir)
	w.boolean(s.DSInfo.HasDamaged)
	w.u64(s.TickCountSinceUpdate)
}

func readBallState(r *snapReader) BallState {
	var s BallState
	s.Pos = r.vec()
	s.RotMat = r.rotMat()
	s.Vel = r.vec()
	s.AngVel = r.vec()
	s.LastHitCarID = r.u32()
	s.HSInfo.YTargetDir = r.f32()
	s.HSInfo.CurTargetSpeed = r.f32()
	s.HSInfo.TimeSinceHit = r.f32()
	s.DSInfo.ChargeLevel = int32(r.u32())
	s.DSInfo.AccumulatedHitForce = r.f32()
	s.DSInfo.YTargetDir = r.f32()
	s.DSInfo.HasDamaged = r.boolean()
	s.TickCountSinceUpdate = r.u64()
	return s
}

func writeCarConfig(w *snapWriter, c CarConfig) {
	w.vec(c.HitboxSize)
	w.vec(c.HitboxPosOffset)
	w.f32(c.FrontWheels.WheelRadius)
	w.f32(c.FrontWheels.SuspensionRestLength)
	w.vec(c.FrontWheels.ConnectionPointOffset)
	w.f32(c.BackWheels.WheelRadius)
	w.f32(c.BackWheels.SuspensionRestLength)
	w.vec(c.BackWheels.ConnectionPointOffset)
	w.f32(c.DodgeDeadzone)
}

func readCarConfig(r *snapReader) CarConfig {
	var c CarConfig
	c.HitboxSize = r.vec()
	c.HitboxPosOffset = r.vec()
	c.FrontWheels.WheelRadius = r.f32()
	c.FrontWheels.SuspensionRestLength = r.f32()
	c.FrontWheels.ConnectionPointOffset = r.vec()
	c.BackWheels.WheelRadius = r.f32()
	c.BackWheels.SuspensionRestLength = r.f32()
	c.BackWheels.ConnectionPointOffset = r.vec()
	c.DodgeDeadzone = r.f32()
	return c
}

func writeControls(w *snapWriter, c CarControls) {
	w.f32(c.Throttle)
	w.f32(c.Steer)
	w.f32(c.Pitch)
	w.f32(c.Yaw)
	w.f32(c.Roll)
	w.boolean(c.Boost)
	w.boolean(c.Jump)
	w.boolean(c.Handbrake)
}

func readControls(r *snapReader) CarControls {
	var c CarControls
	c.Throttle = r.f32()
	c.Steer = r.f32()
	c.Pitch = r.f32()
	c.Yaw = r.f32()
	c.Roll = r.f32()
	c.Boost = r.boolean()
	c.Jump = r.boolean()
	c.Handbrake = r.boolean()
	return c
}

func writeCarState(w *snapWriter, s CarState) {
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
	writeControls(w, s.LastControls)
	w.u64(s.TickCountSinceUpdate)
}

func readCarState(r *snapReader) CarState {
	var s CarState
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
	s.LastControls = readControls(r)
	s.TickCountSinceUpdate = r.u64()
	return s
}
