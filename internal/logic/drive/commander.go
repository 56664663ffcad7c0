package drive

import (
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/hw/motor"
)

// Commander is the single actuation path of the controller: it clamps
// requested wheel velocities to the drive's speed envelope and applies
// them. Clamping is total and silent; there are no error conditions
// beyond what the underlying drive reports.
type Commander struct {
	motors   motor.Drive
	maxSpeed float64
}

func NewCommander(m motor.Drive, maxSpeed float64) *Commander {
	return &Commander{
		motors:   m,
		maxSpeed: maxSpeed,
	}
}

// Apply clamps each wheel independently to [-maxSpeed, +maxSpeed] and
// sets the motor velocities.
func (c *Commander) Apply(left, right float64) error {
	left = clamp(left, -c.maxSpeed, c.maxSpeed)
	right = clamp(right, -c.maxSpeed, c.maxSpeed)
	return c.motors.SetVelocity(left, right)
}

// Halt stops both wheels.
func (c *Commander) Halt() error {
	return c.motors.Stop()
}

// MaxSpeed returns the configured velocity clamp.
func (c *Commander) MaxSpeed() float64 {
	return c.maxSpeed
}

// clamp keeps value inside [lo, hi].
func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
