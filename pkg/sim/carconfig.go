package sim

import "github.com/pitchsim/pitchsim/pkg/geom"

// WheelPairConfig describes one axle of the suspension model. The connection
// point offset is for the left wheel; the right wheel mirrors Y.
type WheelPairConfig struct {
	WheelRadius           float32
	SuspensionRestLength  float32
	ConnectionPointOffset geom.Vec
}

// CarConfig is a hitbox preset.
type CarConfig struct {
	HitboxSize      geom.Vec
	HitboxPosOffset geom.Vec

	FrontWheels WheelPairConfig
	BackWheels  WheelPairConfig

	DodgeDeadzone float32
}

var (
	CarConfigOctane = CarConfig{
		HitboxSize:      geom.Vec{X: 120.507, Y: 86.6994, Z: 38.6591},
		HitboxPosOffset: geom.Vec{X: 13.8757, Y: 0, Z: 20.755},
		FrontWheels: WheelPairConfig{
			WheelRadius:           12.50,
			SuspensionRestLength:  38.755,
			ConnectionPointOffset: geom.Vec{X: 51.25, Y: 25.90, Z: 20.755},
		},
		BackWheels: WheelPairConfig{
			WheelRadius:           15.00,
			SuspensionRestLength:  37.055,
			ConnectionPointOffset: geom.Vec{X: -33.75, Y: 29.50, Z: 20.755},
		},
		DodgeDeadzone: 0.5,
	}

	CarConfigDominus = CarConfig{
		HitboxSize:      geom.Vec{X: 130.427, Y: 85.7799, Z: 33.8},
		HitboxPosOffset: geom.Vec{X: 9.0, Y: 0, Z: 15.75},
		FrontWheels: WheelPairConfig{
			WheelRadius:           12.00,
			SuspensionRestLength:  33.95,
			ConnectionPointOffset: geom.Vec{X: 50.30, Y: 31.10, Z: 12.20},
		},
		BackWheels: WheelPairConfig{
			WheelRadius:           13.50,
			SuspensionRestLength:  33.85,
			ConnectionPointOffset: geom.Vec{X: -34.75, Y: 33.00, Z: 12.20},
		},
		DodgeDeadzone: 0.5,
	}

	CarConfigPlank = CarConfig{
		HitboxSize:      geom.Vec{X: 131.320, Y: 87.1704, Z: 29.3944},
		HitboxPosOffset: geom.Vec{X: 9.00857, Y: 0, Z: 12.0942},
		FrontWheels: WheelPairConfig{
			WheelRadius:           12.50,
			SuspensionRestLength:  31.92,
			ConnectionPointOffset: geom.Vec{X: 49.97, Y: 27.80, Z: 8.58},
		},
		BackWheels: WheelPairConfig{
			WheelRadius:           15.00,
			SuspensionRestLength:  31.92,
			ConnectionPointOffset: geom.Vec{X: -35.43, Y: 20.28, Z: 8.58},
		},
		DodgeDeadzone: 0.5,
	}

	CarConfigBreakout = CarConfig{
		HitboxSize:      geom.Vec{X: 133.992, Y: 83.021, Z: 32.8},
		HitboxPosOffset: geom.Vec{X: 12.5, Y: 0, Z: 11.75},
		FrontWheels: WheelPairConfig{
			WheelRadius:           13.50,
			SuspensionRestLength:  29.7,
			ConnectionPointOffset: geom.Vec{X: 51.50, Y: 26.67, Z: 9.00},
		},
		BackWheels: WheelPairConfig{
			WheelRadius:           15.00,
			SuspensionRestLength:  29.666,
			ConnectionPointOffset: geom.Vec{X: -35.75, Y: 35.00, Z: 9.00},
		},
		DodgeDeadzone: 0.5,
	}

	CarConfigHybrid = CarConfig{
		HitboxSize:      geom.Vec{X: 127.927, Y: 84.2795, Z: 36.1590},
		HitboxPosOffset: geom.Vec{X: 13.8757, Y: 0, Z: 20.755},
		FrontWheels: WheelPairConfig{
			WheelRadius:           12.50,
			SuspensionRestLength:  38.755,
			ConnectionPointOffset: geom.Vec{X: 51.25, Y: 25.90, Z: 20.755},
		},
		BackWheels: WheelPairConfig{
			WheelRadius:           15.00,
			SuspensionRestLength:  37.055,
			ConnectionPointOffset: geom.Vec{X: -34.00, Y: 29.50, Z: 20.755},
		},
		DodgeDeadzone: 0.5,
	}

	CarConfigMerc = CarConfig{
		HitboxSize:      geom.Vec{X: 120.720, Y: 76.7191, Z: 41.1954},
		HitboxPosOffset: geom.Vec{X: 11.3757, Y: 0, Z: 21.505},
		FrontWheels: WheelPairConfig{
			WheelRadius:           15.00,
			SuspensionRestLength:  40.455,
			ConnectionPointOffset: geom.Vec{X: 51.25, Y: 25.90, Z: 21.755},
		},
		BackWheels: WheelPairConfig{
			WheelRadius:           15.00,
			SuspensionRestLength:  40.255,
			ConnectionPointOffset: geom.Vec{X: -33.75, Y: 29.50, Z: 21.755},
		},
		DodgeDeadzone: 0.5,
	}
)

// wheelConnectionPoint returns the local-space suspension attachment for a
// wheel index in FL, FR, BL, BR order.
func (c CarConfig) wheelConnectionPoint(i int) geom.Vec {
	var pair WheelPairConfig
	if i < 2 {
		pair = c.FrontWheels
	} else {
		pair = c.BackWheels
	}
	p := pair.ConnectionPointOffset
	if i%2 == 1 {
		p.Y = -p.Y
	}
	return p
}

func (c CarConfig) wheelPair(i int) WheelPairConfig {
	if i < 2 {
		return c.FrontWheels
	}
	return c.BackWheels
}
