package sim

import "github.com/pitchsim/pitchsim/pkg/geom"

// CarControls is the per-tick input for one car.
type CarControls struct {
	Throttle float32
	Steer    float32

	Pitch float32
	Yaw   float32
	Roll  float32

	Boost     bool
	Jump      bool
	Handbrake bool
}

// ClampFix clamps all analog inputs into [-1, 1].
func (c CarControls) ClampFix() CarControls {
	c.Throttle = geom.Clamp(c.Throttle, -1, 1)
	c.Steer = geom.Clamp(c.Steer, -1, 1)
	c.Pitch = geom.Clamp(c.Pitch, -1, 1)
	c.Yaw = geom.Clamp(c.Yaw, -1, 1)
	c.Roll = geom.Clamp(c.Roll, -1, 1)
	return c
}
