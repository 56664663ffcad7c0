package mission

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/debug"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/hw/camera"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/hw/lidar"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/logic/drive"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/logic/nav"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/logic/ranging"
	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/logic/vision"
)

// World is the simulation-host boundary. Step blocks until the world has
// advanced by one control tick and returns false when the simulation
// ends. The core never advances time itself.
type World interface {
	Step() bool
}

// FireSupervisor removes the fire object from the world once the robot
// has stopped at it. Removal of an already-absent fire must be a no-op.
type FireSupervisor interface {
	RemoveFire() error
}

// Params wires a Runner to its devices and behaviors.
type Params struct {
	World      World
	Camera     camera.FrameSource
	Lidar      lidar.RangeSource
	Detector   *vision.Detector
	Reducer    *ranging.Reducer
	Machine    *nav.Machine
	Commander  *drive.Commander
	Supervisor FireSupervisor
}

// Snapshot is a read-only view of the mission state for telemetry.
// Unbounded marks a tick with no valid forward return; Distance is then
// zero (JSON cannot carry +Inf).
type Snapshot struct {
	Session   string  `json:"session"`
	Tick      uint64  `json:"tick"`
	Mode      string  `json:"mode"`
	Distance  float64 `json:"distance"`
	Unbounded bool    `json:"unbounded"`
	FireFound bool    `json:"fire_found"`
	BlobSize  int     `json:"blob_size"`
	Left      float64 `json:"left"`
	Right     float64 `json:"right"`
}

// Runner owns the per-tick control loop: step the world, read the
// sensors, reduce and detect, tick the state machine, actuate. One tick
// runs to completion before the next begins; there is no internal
// parallelism.
type Runner struct {
	session uuid.UUID
	p       Params

	mu   sync.Mutex
	snap Snapshot
}

func NewRunner(p Params) *Runner {
	r := &Runner{
		session: uuid.New(),
		p:       p,
	}
	r.snap = Snapshot{Session: r.session.String(), Mode: p.Machine.State().String()}
	return r
}

// Session returns the unique identifier of this mission run.
func (r *Runner) Session() uuid.UUID {
	return r.session
}

// Snapshot returns the latest telemetry view. Safe for concurrent use.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Run drives control ticks until the world ends the simulation or ctx is
// cancelled. Reaching the terminal state does not end the loop: the
// machine keeps emitting zero-velocity ticks, as the original controller
// does, until the host stops stepping.
func (r *Runner) Run(ctx context.Context) error {
	debug.Summary("Pioneer Rescue: Precision Mode")
	debug.Info("Mission session %s", r.session)

	var tick uint64
	for r.p.World.Step() {
		select {
		case <-ctx.Done():
			_ = r.p.Commander.Halt()
			return ctx.Err()
		default:
		}

		r.runTick(tick)
		tick++
	}

	debug.Info("Simulation ended after %d ticks", tick)
	return r.p.Commander.Halt()
}

// runTick executes one sense-detect-decide-act cycle.
func (r *Runner) runTick(tick uint64) {
	distance := r.p.Reducer.MinForward(r.p.Lidar.Scan())
	debug.Lidar(distance)

	frame := r.p.Camera.Frame()
	if frame == nil {
		// No image this tick: skip entirely, motors hold their last
		// setpoints and the machine does not transition.
		debug.Verbose("Tick %d: no camera frame, skipping", tick)
		return
	}

	det := r.p.Detector.Detect(frame, distance)
	if det.Found {
		debug.Fire(det.CenterX, det.CenterY, det.Size)
	}

	var offset float64
	if det.Found {
		center := float64(frame.Width) / 2.0
		offset = (det.CenterX - center) / center
	}

	cmd := r.p.Machine.Tick(nav.Input{
		Found:    det.Found,
		Offset:   offset,
		BlobSize: det.Size,
		Distance: distance,
	})
	debug.Tick(tick, r.p.Machine.State().String(), distance, det.Found, det.Size)

	if err := r.p.Commander.Apply(cmd.Left, cmd.Right); err != nil {
		debug.Error(err)
	}

	if cmd.Extinguish {
		if err := r.p.Supervisor.RemoveFire(); err != nil {
			// Fire node already gone or never found: warn, stay stopped.
			debug.Error(err)
		} else {
			debug.Info("Fire extinguished")
		}
	}

	snap := Snapshot{
		Session:   r.session.String(),
		Tick:      tick,
		Mode:      r.p.Machine.State().String(),
		Distance:  distance,
		FireFound: det.Found,
		BlobSize:  det.Size,
		Left:      cmd.Left,
		Right:     cmd.Right,
	}
	if math.IsInf(distance, 1) {
		snap.Distance = 0
		snap.Unbounded = true
	}

	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()
}
