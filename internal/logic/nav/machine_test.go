package nav

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMachine() *Machine {
	return NewMachine(DefaultConfig())
}

// toAligning drives a fresh machine from Searching into Aligning.
func toAligning(t *testing.T, m *Machine) {
	t.Helper()
	cmd := m.Tick(Input{Found: true, Offset: 0.5, BlobSize: 200, Distance: math.Inf(1)})
	require.Equal(t, Aligning, m.State())
	require.Equal(t, Command{Left: 0, Right: 0}, cmd)
}

// toApproaching drives a fresh machine into Approaching via a centered fire.
func toApproaching(t *testing.T, m *Machine) {
	t.Helper()
	toAligning(t, m)
	m.Tick(Input{Found: true, Offset: 0.0, BlobSize: 200, Distance: math.Inf(1)})
	require.Equal(t, Approaching, m.State())
}

func TestSearchingRotatesForever(t *testing.T) {
	m := newMachine()
	for i := 0; i < 200; i++ {
		cmd := m.Tick(Input{Found: false, Distance: math.Inf(1)})
		require.Equal(t, Searching, m.State())
		assert.Equal(t, -1.0, cmd.Left)
		assert.Equal(t, 1.0, cmd.Right)
	}
}

func TestSearchingStopsWhenFireFound(t *testing.T) {
	m := newMachine()
	cmd := m.Tick(Input{Found: true, Offset: -0.8, BlobSize: 30, Distance: math.Inf(1)})
	assert.Equal(t, Aligning, m.State())
	assert.Zero(t, cmd.Left)
	assert.Zero(t, cmd.Right)
}

func TestAligningRotatesTowardFire(t *testing.T) {
	m := newMachine()
	toAligning(t, m)

	// Fire right of center: rotate right, stay aligning.
	cmd := m.Tick(Input{Found: true, Offset: 0.5, BlobSize: 200, Distance: math.Inf(1)})
	assert.Equal(t, Aligning, m.State())
	assert.Equal(t, 0.5, cmd.Left)
	assert.Equal(t, -0.5, cmd.Right)

	// Fire left of center: rotate the other way.
	cmd = m.Tick(Input{Found: true, Offset: -0.5, BlobSize: 200, Distance: math.Inf(1)})
	assert.Equal(t, Aligning, m.State())
	assert.Equal(t, -0.5, cmd.Left)
	assert.Equal(t, 0.5, cmd.Right)
}

func TestAligningConvergesWithinOneTick(t *testing.T) {
	m := newMachine()
	toAligning(t, m)

	cmd := m.Tick(Input{Found: true, Offset: 0.14, BlobSize: 200, Distance: math.Inf(1)})
	assert.Equal(t, Approaching, m.State())
	assert.Zero(t, cmd.Left)
	assert.Zero(t, cmd.Right)
}

func TestAligningReturnsToSearchWhenFireLost(t *testing.T) {
	m := newMachine()
	toAligning(t, m)

	m.Tick(Input{Found: false, Distance: math.Inf(1)})
	assert.Equal(t, Searching, m.State())
}

func TestApproachingProximityStop(t *testing.T) {
	m := newMachine()
	toApproaching(t, m)

	cmd := m.Tick(Input{Found: true, Offset: 0, BlobSize: 200, Distance: 0.5})
	assert.Equal(t, Stopped, m.State())
	assert.Equal(t, Command{Left: 0, Right: 0}, cmd)
}

func TestApproachingProximityOutranksSmallObstacle(t *testing.T) {
	m := newMachine()
	toApproaching(t, m)

	// Both the proximity and the small-obstacle condition hold; the
	// proximity stop must win.
	m.Tick(Input{Found: true, Offset: 0, BlobSize: 20, Distance: 0.5})
	assert.Equal(t, Stopped, m.State())
}

func TestApproachingSmallObstacleStartsAvoidance(t *testing.T) {
	m := newMachine()
	toApproaching(t, m)

	cmd := m.Tick(Input{Found: true, Offset: 0, BlobSize: 20, Distance: 1.0})
	assert.Equal(t, PreAvoid, m.State())
	assert.Equal(t, Command{Left: 0, Right: 0}, cmd)
}

func TestApproachingVisualStop(t *testing.T) {
	m := newMachine()
	toApproaching(t, m)

	cmd := m.Tick(Input{Found: true, Offset: 0, BlobSize: 200, Distance: 0.7})
	assert.Equal(t, Stopped, m.State())
	assert.Zero(t, cmd.Left)
	assert.Zero(t, cmd.Right)
}

func TestApproachingFireLostFarReturnsToSearch(t *testing.T) {
	m := newMachine()
	toApproaching(t, m)

	m.Tick(Input{Found: false, Distance: math.Inf(1)})
	assert.Equal(t, Searching, m.State())
}

func TestApproachingFireLostCloseKeepsDriving(t *testing.T) {
	m := newMachine()
	toApproaching(t, m)

	// Fire dropped below the camera's view but the return is close:
	// keep driving straight at full speed.
	cmd := m.Tick(Input{Found: false, Distance: 0.85})
	assert.Equal(t, Approaching, m.State())
	assert.Equal(t, 3.0, cmd.Left)
	assert.Equal(t, 3.0, cmd.Right)
}

func TestApproachingSteering(t *testing.T) {
	cases := []struct {
		name        string
		offset      float64
		left, right float64
	}{
		{"fire left", -0.5, 2.4, 3.0},
		{"fire right", 0.5, 3.0, 2.4},
		{"fire centered", 0.1, 3.0, 3.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMachine()
			toApproaching(t, m)

			cmd := m.Tick(Input{Found: true, Offset: tc.offset, BlobSize: 200, Distance: 5.0})
			assert.Equal(t, Approaching, m.State())
			assert.InDelta(t, tc.left, cmd.Left, 1e-9)
			assert.InDelta(t, tc.right, cmd.Right, 1e-9)
		})
	}
}

func TestUnboundedDistanceIsNoObstacle(t *testing.T) {
	m := newMachine()
	toApproaching(t, m)

	// No valid lidar return must behave exactly like open space: none of
	// the distance checks trigger at +Inf.
	cmd := m.Tick(Input{Found: true, Offset: 0, BlobSize: 20, Distance: math.Inf(1)})
	assert.Equal(t, Approaching, m.State())
	assert.Equal(t, 3.0, cmd.Left)
	assert.Equal(t, 3.0, cmd.Right)
}

func TestAvoidanceTiming(t *testing.T) {
	m := newMachine()
	toApproaching(t, m)

	// Trigger: small blob with a close return.
	m.Tick(Input{Found: true, Offset: 0, BlobSize: 20, Distance: 1.0})
	require.Equal(t, PreAvoid, m.State())

	open := Input{Found: false, Distance: math.Inf(1)}

	// Exactly 6 zero-velocity ticks in PreAvoid, the last one
	// transitioning into Avoiding.
	for i := 0; i < 6; i++ {
		cmd := m.Tick(open)
		require.Equal(t, Command{Left: 0, Right: 0}, cmd, "pre-avoid tick %d", i)
	}
	require.Equal(t, Avoiding, m.State())

	// Ticks 0-11: turn in place, away from the obstacle.
	for i := 0; i < 12; i++ {
		cmd := m.Tick(open)
		require.Equal(t, Avoiding, m.State())
		require.Equal(t, 2.0, cmd.Left, "turn tick %d", i)
		require.Equal(t, -2.0, cmd.Right, "turn tick %d", i)
	}

	// Ticks 12-59: drive forward.
	for i := 12; i < 60; i++ {
		cmd := m.Tick(open)
		require.Equal(t, Avoiding, m.State())
		require.Equal(t, 3.0, cmd.Left, "forward tick %d", i)
		require.Equal(t, 3.0, cmd.Right, "forward tick %d", i)
	}

	// Tick 60: stop and resume the search.
	cmd := m.Tick(open)
	assert.Equal(t, Searching, m.State())
	assert.Equal(t, Command{Left: 0, Right: 0}, cmd)
}

func TestAvoidanceWallAbort(t *testing.T) {
	m := newMachine()
	toApproaching(t, m)
	m.Tick(Input{Found: true, Offset: 0, BlobSize: 20, Distance: 1.0})
	for m.State() == PreAvoid {
		m.Tick(Input{Found: false, Distance: math.Inf(1)})
	}
	require.Equal(t, Avoiding, m.State())

	// Get past the turn phase.
	for i := 0; i < 12; i++ {
		m.Tick(Input{Found: false, Distance: math.Inf(1)})
	}

	// A wall inside the abort distance stops the run early.
	cmd := m.Tick(Input{Found: false, Distance: 0.4})
	assert.Equal(t, Searching, m.State())
	assert.Equal(t, Command{Left: 0, Right: 0}, cmd)
}

func TestStoppedIsTerminalAndExtinguishesOnce(t *testing.T) {
	m := newMachine()
	toApproaching(t, m)
	m.Tick(Input{Found: true, Offset: 0, BlobSize: 200, Distance: 0.5})
	require.Equal(t, Stopped, m.State())
	require.True(t, m.Done())

	extinguishes := 0
	for i := 0; i < 100; i++ {
		cmd := m.Tick(Input{Found: true, Offset: 0, BlobSize: 200, Distance: 0.5})
		require.Equal(t, Stopped, m.State())
		require.Zero(t, cmd.Left)
		require.Zero(t, cmd.Right)
		if cmd.Extinguish {
			extinguishes++
		}
	}
	assert.Equal(t, 1, extinguishes)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "SEARCHING", Searching.String())
	assert.Equal(t, "ALIGNING", Aligning.String())
	assert.Equal(t, "APPROACHING", Approaching.String())
	assert.Equal(t, "PRE_AVOID", PreAvoid.String())
	assert.Equal(t, "AVOIDING", Avoiding.String())
	assert.Equal(t, "STOPPED", Stopped.String())
}
