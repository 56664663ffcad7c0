package sim

import (
	"errors"
	"math"
	"time"

	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/debug"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/hw/camera"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/hw/lidar"
)

// Scene parameters for the synthetic world.
const (
	frameWidth  = 64
	frameHeight = 48
	scanWidth   = 180

	cameraFOV = 1.0 // radians, horizontal
	lidarFOV  = math.Pi

	wheelBase  = 0.4  // meters between wheels
	speedScale = 0.05 // meters per velocity unit per tick
)

// World is a small synthetic 2D scene: a fire blob, an optional round
// obstacle, and a differential-drive robot pose integrated from wheel
// commands. It stands in for the simulator host in development and
// tests, the way the mock GPIO driver stands in for real pins: it
// implements the world-step, frame-source, range-source, drive, and
// fire-supervisor interfaces the controller is wired to.
type World struct {
	MaxTicks int           // 0 = run forever
	StepWait time.Duration // real-time pacing per tick, 0 in tests

	// Robot pose and current wheel setpoints.
	x, y, heading float64
	leftV, rightV float64

	fireX, fireY float64
	firePresent  bool

	obstacleX, obstacleY, obstacleR float64
	obstaclePresent                 bool

	ticks int
	frame *camera.Frame
	scan  lidar.Scan
}

// NewWorld places the robot at the origin facing +X, with a fire ahead.
func NewWorld() *World {
	return &World{
		fireX:       5.0,
		fireY:       0.5,
		firePresent: true,
		frame:       camera.NewFrame(frameWidth, frameHeight),
		scan:        make(lidar.Scan, scanWidth),
	}
}

// AddObstacle drops a round obstacle into the scene.
func (w *World) AddObstacle(x, y, radius float64) {
	w.obstacleX, w.obstacleY, w.obstacleR = x, y, radius
	w.obstaclePresent = true
}

// PlaceFire moves the fire.
func (w *World) PlaceFire(x, y float64) {
	w.fireX, w.fireY = x, y
	w.firePresent = true
}

// Pose returns the robot's position and heading.
func (w *World) Pose() (x, y, heading float64) {
	return w.x, w.y, w.heading
}

// Step integrates one tick of differential-drive kinematics and renders
// the sensors. Returns false once MaxTicks is exhausted.
func (w *World) Step() bool {
	if w.MaxTicks > 0 && w.ticks >= w.MaxTicks {
		return false
	}
	w.ticks++
	if w.StepWait > 0 {
		time.Sleep(w.StepWait)
	}

	v := (w.leftV + w.rightV) / 2 * speedScale
	omega := (w.rightV - w.leftV) * speedScale / wheelBase
	w.heading += omega
	w.x += v * math.Cos(w.heading)
	w.y += v * math.Sin(w.heading)

	w.render()
	return true
}

// SetVelocity implements motor.Drive.
func (w *World) SetVelocity(left, right float64) error {
	w.leftV, w.rightV = left, right
	return nil
}

// Stop implements motor.Drive.
func (w *World) Stop() error {
	return w.SetVelocity(0, 0)
}

// Frame implements camera.FrameSource.
func (w *World) Frame() *camera.Frame {
	return w.frame
}

// Scan implements lidar.RangeSource.
func (w *World) Scan() lidar.Scan {
	return w.scan
}

// RemoveFire implements mission.FireSupervisor.
func (w *World) RemoveFire() error {
	if !w.firePresent {
		return errors.New("fire node not present in world")
	}
	w.firePresent = false
	debug.Verbose("sim: fire removed from world")
	return nil
}

// render draws the camera frame and the lidar sweep for the current pose.
func (w *World) render() {
	w.frame.Fill(120, 120, 120)

	if w.firePresent {
		dx, dy := w.fireX-w.x, w.fireY-w.y
		dist := math.Hypot(dx, dy)
		bearing := normalizeAngle(math.Atan2(dy, dx) - w.heading)

		if math.Abs(bearing) < cameraFOV/2 && dist > 0.1 {
			// Column from bearing, blob size shrinking with distance.
			cx := int((0.5 - bearing/cameraFOV) * frameWidth)
			half := int(math.Min(20, 8/dist))
			cy := frameHeight / 2
			for x := cx - half; x <= cx+half; x++ {
				for y := cy - half; y <= cy+half; y++ {
					if x >= 0 && x < frameWidth && y >= 0 && y < frameHeight {
						w.frame.SetRGB(x, y, 251, 72, 15)
					}
				}
			}
		}
	}

	for i := 0; i < scanWidth; i++ {
		// Sweep left to right across the lidar field of view.
		angle := lidarFOV/2 - lidarFOV*float64(i)/float64(scanWidth)
		w.scan[i] = w.castRay(w.heading + angle)
	}
}

// castRay returns the distance to the nearest object along the ray, or
// +Inf for no return.
func (w *World) castRay(angle float64) float64 {
	min := math.Inf(1)
	if w.obstaclePresent {
		if d, ok := rayCircle(w.x, w.y, angle, w.obstacleX, w.obstacleY, w.obstacleR); ok && d < min {
			min = d
		}
	}
	if w.firePresent {
		if d, ok := rayCircle(w.x, w.y, angle, w.fireX, w.fireY, 0.2); ok && d < min {
			min = d
		}
	}
	return min
}

// rayCircle intersects a ray from (ox, oy) at the given angle with a
// circle, returning the nearest positive hit distance.
func rayCircle(ox, oy, angle, cx, cy, r float64) (float64, bool) {
	dirX, dirY := math.Cos(angle), math.Sin(angle)
	fx, fy := ox-cx, oy-cy

	b := 2 * (fx*dirX + fy*dirY)
	c := fx*fx + fy*fy - r*r
	disc := b*b - 4*c
	if disc < 0 {
		return 0, false
	}

	sqrtDisc := math.Sqrt(disc)
	t := (-b - sqrtDisc) / 2
	if t < 0 {
		t = (-b + sqrtDisc) / 2
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
