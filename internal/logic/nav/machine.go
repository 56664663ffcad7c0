package nav

import (
	"fmt"

	"github.com/Csrahmoh/Autonomous-Firefighting-Robot-Webots/internal/debug"
)

// State is the navigation mode of the robot.
type State int

const (
	Searching State = iota
	Aligning
	Approaching
	PreAvoid
	Avoiding
	Stopped
)

func (s State) String() string {
	switch s {
	case Searching:
		return "SEARCHING"
	case Aligning:
		return "ALIGNING"
	case Approaching:
		return "APPROACHING"
	case PreAvoid:
		return "PRE_AVOID"
	case Avoiding:
		return "AVOIDING"
	case Stopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config holds the distances, tolerances, and tick timers that drive the
// transitions. DefaultConfig matches the stock robot tuning.
type Config struct {
	MaxSpeed      float64 // forward speed while approaching
	ProximityStop float64 // hard stop: obstacle or fire this close means done
	SafeDistance  float64 // visual stop distance to the fire
	AvoidDistance float64 // obstacle check distance while approaching
	AvoidBlobSize int     // below this pixel count the blob is too small to be the fire at this range
	BlindDistance float64 // keep driving straight when the fire is lost closer than this
	WallAbort     float64 // abort the avoidance run when a wall is this close

	AlignTolerance float64 // |offset| below which alignment is complete
	SteerTolerance float64 // |offset| above which approach steering corrects

	PreAvoidTicks  int // zero-velocity hold before the avoidance turn
	AvoidTurnTicks int // ticks spent turning away from the obstacle
	AvoidSpanTicks int // total avoidance ticks before resuming the search
}

// DefaultConfig returns the stock navigation tuning.
func DefaultConfig() Config {
	return Config{
		MaxSpeed:       3.0,
		ProximityStop:  0.6,
		SafeDistance:   0.8,
		AvoidDistance:  1.2,
		AvoidBlobSize:  50,
		BlindDistance:  0.9,
		WallAbort:      0.5,
		AlignTolerance: 0.15,
		SteerTolerance: 0.2,
		PreAvoidTicks:  6,
		AvoidTurnTicks: 12,
		AvoidSpanTicks: 60,
	}
}

// Input is the sensor summary the machine consumes each tick.
// Offset is the normalized horizontal deviation of the fire centroid from
// the frame center, in [-1, 1]; it is ignored when Found is false.
// Distance is the minimum valid forward range, +Inf when unbounded.
type Input struct {
	Found    bool
	Offset   float64
	BlobSize int
	Distance float64
}

// Command is the per-tick output: wheel velocity setpoints plus the
// one-shot extinguish signal raised on the first tick in Stopped.
type Command struct {
	Left       float64
	Right      float64
	Extinguish bool
}

// Machine is the navigation state machine. It owns the only mutable
// controller state: the current mode and the avoidance tick timer. The
// next mode is a total function of (mode, Input, avoidTimer); nothing
// else influences a transition.
type Machine struct {
	cfg        Config
	state      State
	avoidTimer int

	extinguishSent bool
	lastLeft       float64
	lastRight      float64
}

// NewMachine creates a machine in the Searching state.
func NewMachine(cfg Config) *Machine {
	return &Machine{cfg: cfg, state: Searching}
}

// State returns the current mode.
func (m *Machine) State() State {
	return m.state
}

// Done reports whether the machine reached its terminal state.
func (m *Machine) Done() bool {
	return m.state == Stopped
}

// Tick advances the machine by one control step and returns the wheel
// command for this tick. Pure with respect to the outside world: the
// only side effects are the machine's own mode and timer.
func (m *Machine) Tick(in Input) Command {
	switch m.state {
	case Searching:
		return m.tickSearching(in)
	case Aligning:
		return m.tickAligning(in)
	case Approaching:
		return m.tickApproaching(in)
	case PreAvoid:
		return m.tickPreAvoid()
	case Avoiding:
		return m.tickAvoiding(in)
	case Stopped:
		return m.tickStopped()
	default:
		return m.hold()
	}
}

// tickSearching rotates in place until a fire blob shows up.
func (m *Machine) tickSearching(in Input) Command {
	if in.Found {
		m.transition(Aligning, "fire found, stabilizing")
		return m.emit(0, 0)
	}
	return m.emit(-1.0, 1.0)
}

// tickAligning rotates toward the fire until the centroid is centered.
func (m *Machine) tickAligning(in Input) Command {
	if !in.Found {
		m.transition(Searching, "fire lost while aligning")
		return m.hold()
	}

	if abs(in.Offset) < m.cfg.AlignTolerance {
		m.transition(Approaching, "aligned on fire")
		return m.emit(0, 0)
	}
	if in.Offset < 0 {
		return m.emit(-0.5, 0.5)
	}
	return m.emit(0.5, -0.5)
}

// tickApproaching drives toward the fire. The checks run in a fixed
// priority order every tick; do not reorder them.
func (m *Machine) tickApproaching(in Input) Command {
	// 1. Hard stop: something is right in front of us.
	if in.Distance < m.cfg.ProximityStop {
		debug.Info("GOAL REACHED (proximity stop)")
		m.transition(Stopped, "proximity stop")
		return m.emit(0, 0)
	}

	// 2. A close return with a tiny blob is an obstacle between us and a
	// still-distant fire: detour around it.
	if in.Distance < m.cfg.AvoidDistance && in.BlobSize < m.cfg.AvoidBlobSize {
		debug.Info("Obstacle ahead, starting short avoidance")
		m.transition(PreAvoid, "small obstacle, fire far")
		m.avoidTimer = 0
		return m.emit(0, 0)
	}

	// 3. Visual stop: the fire itself is within the safe distance.
	if in.Distance < m.cfg.SafeDistance {
		debug.Info("GOAL REACHED (visual stop)")
		m.transition(Stopped, "visual stop")
		return m.emit(0, 0)
	}

	// 4. Fire lost: close enough means it fell below the camera's view,
	// so keep driving; otherwise go back to searching.
	if !in.Found {
		if in.Distance < m.cfg.BlindDistance {
			return m.emit(m.cfg.MaxSpeed, m.cfg.MaxSpeed)
		}
		m.transition(Searching, "fire lost while approaching")
		return m.hold()
	}

	// 5. Steer toward the centroid.
	switch {
	case in.Offset < -m.cfg.SteerTolerance:
		return m.emit(m.cfg.MaxSpeed*0.8, m.cfg.MaxSpeed)
	case in.Offset > m.cfg.SteerTolerance:
		return m.emit(m.cfg.MaxSpeed, m.cfg.MaxSpeed*0.8)
	default:
		return m.emit(m.cfg.MaxSpeed, m.cfg.MaxSpeed)
	}
}

// tickPreAvoid holds still for a few ticks so the base settles before
// the avoidance turn.
func (m *Machine) tickPreAvoid() Command {
	m.avoidTimer++
	if m.avoidTimer > m.cfg.PreAvoidTicks-1 {
		m.transition(Avoiding, "stabilized, turning away")
		m.avoidTimer = 0
	}
	return m.emit(0, 0)
}

// tickAvoiding runs the scripted detour: turn away, drive past the
// obstacle, then resume the search. The turn direction is fixed.
func (m *Machine) tickAvoiding(in Input) Command {
	t := m.avoidTimer
	m.avoidTimer++

	if t < m.cfg.AvoidTurnTicks {
		return m.emit(2.0, -2.0)
	}
	if t < m.cfg.AvoidSpanTicks {
		// Wall protection
		if in.Distance < m.cfg.WallAbort {
			m.transition(Searching, "wall too close, avoidance aborted")
			return m.emit(0, 0)
		}
		return m.emit(m.cfg.MaxSpeed, m.cfg.MaxSpeed)
	}

	debug.Info("Avoidance complete")
	m.transition(Searching, "avoidance complete")
	return m.emit(0, 0)
}

// tickStopped keeps the robot stopped forever and raises the extinguish
// signal exactly once.
func (m *Machine) tickStopped() Command {
	cmd := m.emit(0, 0)
	if !m.extinguishSent {
		m.extinguishSent = true
		cmd.Extinguish = true
	}
	return cmd
}

func (m *Machine) transition(to State, reason string) {
	debug.State(m.state.String(), to.String(), reason)
	m.state = to
}

// emit records and returns a wheel command.
func (m *Machine) emit(left, right float64) Command {
	m.lastLeft, m.lastRight = left, right
	return Command{Left: left, Right: right}
}

// hold repeats the previous command on transitions that change mode
// without touching the motors; the new mode takes over next tick.
func (m *Machine) hold() Command {
	return Command{Left: m.lastLeft, Right: m.lastRight}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
