package motor

import (
	"math"

	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/debug"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/hw/gpio"
)

// pwmCycle is the PWM resolution: duty is expressed in slices of this cycle.
const pwmCycle uint32 = 1024

// Config holds the GPIO wiring for one wheel motor (one H-bridge channel).
type Config struct {
	PWMPin     int // hardware PWM pin for speed
	ForwardPin int // H-bridge direction input A
	ReversePin int // H-bridge direction input B
}

// HBridge drives two DC wheel motors through a dual H-bridge (L298N-style):
// one PWM pin per wheel for speed, two logic pins per wheel for direction.
// Speed is scaled so that |velocity| == maxSpeed gives a 100% duty cycle.
type HBridge struct {
	gpio     gpio.Driver
	left     Config
	right    Config
	maxSpeed float64
}

// NewHBridge creates a differential drive over the given GPIO driver.
// freqHz is the PWM carrier frequency; both wheels start stopped.
func NewHBridge(g gpio.Driver, left, right Config, maxSpeed float64, freqHz int) (*HBridge, error) {
	for _, c := range []Config{left, right} {
		if err := g.SetupPWM(c.PWMPin, freqHz); err != nil {
			return nil, err
		}
		if err := g.SetupPin(c.ForwardPin, gpio.Output); err != nil {
			return nil, err
		}
		if err := g.SetupPin(c.ReversePin, gpio.Output); err != nil {
			return nil, err
		}
	}

	h := &HBridge{gpio: g, left: left, right: right, maxSpeed: maxSpeed}
	if err := h.Stop(); err != nil {
		return nil, err
	}
	return h, nil
}

// SetVelocity applies signed wheel velocities. Magnitudes above maxSpeed
// saturate at full duty; the sign drives the H-bridge direction pins.
func (h *HBridge) SetVelocity(left, right float64) error {
	debug.Motor(left, right)

	if err := h.setWheel(h.left, left); err != nil {
		return err
	}
	return h.setWheel(h.right, right)
}

// Stop cuts PWM on both wheels and releases the direction pins.
func (h *HBridge) Stop() error {
	for _, c := range []Config{h.left, h.right} {
		if err := h.gpio.WritePWM(c.PWMPin, 0, pwmCycle); err != nil {
			return err
		}
		if err := h.gpio.WritePin(c.ForwardPin, gpio.Low); err != nil {
			return err
		}
		if err := h.gpio.WritePin(c.ReversePin, gpio.Low); err != nil {
			return err
		}
	}
	return nil
}

func (h *HBridge) setWheel(c Config, velocity float64) error {
	forward := gpio.Level(velocity > 0)
	reverse := gpio.Level(velocity < 0)

	if err := h.gpio.WritePin(c.ForwardPin, forward); err != nil {
		return err
	}
	if err := h.gpio.WritePin(c.ReversePin, reverse); err != nil {
		return err
	}

	duty := uint32(math.Abs(velocity) / h.maxSpeed * float64(pwmCycle))
	if duty > pwmCycle {
		duty = pwmCycle
	}
	return h.gpio.WritePWM(c.PWMPin, duty, pwmCycle)
}
