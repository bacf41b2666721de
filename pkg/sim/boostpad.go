package sim

import (
	"sort"

	"github.com/pitchsim/pitchsim/pkg/geom"
)

// BoostPadState is the mutable part of a pad.
type BoostPadState struct {
	IsActive bool
	Cooldown float32
}

// BoostPad is a static pickup. Pads never move; collision with cars is
// resolved through the pad grid, not the solver.
type BoostPad struct {
	Config BoostPadConfig

	state BoostPadState

	arena *Arena
}

func newBoostPad(arena *Arena, cfg BoostPadConfig) *BoostPad {
	return &BoostPad{
		Config: cfg,
		state:  BoostPadState{IsActive: true},
		arena:  arena,
	}
}

func (p *BoostPad) GetState() BoostPadState { return p.state }

func (p *BoostPad) SetState(s BoostPadState) { p.state = s }

func (p *BoostPad) Pos() geom.Vec { return p.Config.Pos }

func (p *BoostPad) IsBig() bool { return p.Config.IsBig }

// BoostAmount is the boost granted on pickup.
func (p *BoostPad) BoostAmount() float32 {
	if p.Config.IsBig {
		return BoostAmountBig
	}
	return BoostAmountSmall
}

func (p *BoostPad) cooldownFor(mutators *MutatorConfig) float32 {
	if p.Config.IsBig {
		return mutators.BoostPadCooldownBig
	}
	return mutators.BoostPadCooldownSmall
}

// preTickUpdate advances the cooldown.
func (p *BoostPad) preTickUpdate(dt float32) {
	if p.state.IsActive {
		return
	}
	p.state.Cooldown -= dt
	if p.state.Cooldown <= 0 {
		p.state.Cooldown = 0
		p.state.IsActive = true
	}
}

// tryPickup activates the pickup for a car overlapping the sensor volume.
func (p *BoostPad) tryPickup(car *Car) bool {
	if !p.state.IsActive || car.state.IsDemoed {
		return false
	}

	mutators := &p.arena.mutatorConfig
	car.state.Boost = geom.Minf(100, car.state.Boost+p.BoostAmount())
	p.state.IsActive = false
	p.state.Cooldown = p.cooldownFor(mutators)
	return true
}

// sensor volume: cylinder around the pad center.
const (
	padSensorRadiusSmall = 144.0
	padSensorRadiusBig   = 208.0
	padSensorHeight      = 168.0
)

func (p *BoostPad) sensorContains(pos geom.Vec) bool {
	r := float32(padSensorRadiusSmall)
	if p.Config.IsBig {
		r = padSensorRadiusBig
	}
	d := pos.Sub(p.Config.Pos)
	// pad anchors sit above the floor, so the sensor reaches below them
	if d.Z < -80 || d.Z > padSensorHeight {
		return false
	}
	return d.X*d.X+d.Y*d.Y <= r*r
}

// sortPadConfigs orders a layout by (y, x) ascending; external enumeration
// relies on this order being stable.
func sortPadConfigs(pads []BoostPadConfig) {
	sort.SliceStable(pads, func(i, j int) bool {
		if pads[i].Pos.Y != pads[j].Pos.Y {
			return pads[i].Pos.Y < pads[j].Pos.Y
		}
		return pads[i].Pos.X < pads[j].Pos.X
	})
}

// defaultPadLayout returns the canonical layout for a mode.
func defaultPadLayout(mode GameMode) []BoostPadConfig {
	switch mode {
	case Hoops:
		return hoopsPadLayout()
	case TheVoid, TheVoidWithGround:
		return nil
	default:
		return soccarPadLayout()
	}
}

func soccarPadLayout() []BoostPadConfig {
	big := func(x, y float32) BoostPadConfig {
		return BoostPadConfig{Pos: geom.Vec{X: x, Y: y, Z: 73}, IsBig: true}
	}
	small := func(x, y float32) BoostPadConfig {
		return BoostPadConfig{Pos: geom.Vec{X: x, Y: y, Z: 70}}
	}
	return []BoostPadConfig{
		big(-3584, 0),
		big(3584, 0),
		big(-3072, -4096),
		big(3072, -4096),
		big(-3072, 4096),
		big(3072, 4096),

		small(0, -4240),
		small(-1792, -4184),
		small(1792, -4184),
		small(-940, -3308),
		small(940, -3308),
		small(0, -2816),
		small(-3584, -2484),
		small(3584, -2484),
		small(-1788, -2300),
		small(1788, -2300),
		small(-2048, -1036),
		small(0, -1024),
		small(2048, -1036),
		small(-1024, 0),
		small(1024, 0),
		small(-2048, 1036),
		small(0, 1024),
		small(2048, 1036),
		small(-1788, 2300),
		small(1788, 2300),
		small(-3584, 2484),
		small(3584, 2484),
		small(0, 2816),
		small(-940, 3308),
		small(940, 3308),
		small(-1792, 4184),
		small(1792, 4184),
		small(0, 4240),
	}
}

func hoopsPadLayout() []BoostPadConfig {
	big := func(x, y float32) BoostPadConfig {
		return BoostPadConfig{Pos: geom.Vec{X: x, Y: y, Z: 73}, IsBig: true}
	}
	small := func(x, y float32) BoostPadConfig {
		return BoostPadConfig{Pos: geom.Vec{X: x, Y: y, Z: 70}}
	}
	return []BoostPadConfig{
		big(-2176, -2944),
		big(2176, -2944),
		big(-2176, 2944),
		big(2176, 2944),

		small(0, -2816),
		small(-1280, -2304),
		small(1280, -2304),
		small(-1536, -1024),
		small(1536, -1024),
		small(-512, -512),
		small(512, -512),
		small(-2432, 0),
		small(2432, 0),
		small(-512, 512),
		small(512, 512),
		small(-1536, 1024),
		small(1536, 1024),
		small(-1280, 2304),
		small(1280, 2304),
		small(0, 2816),
	}
}
