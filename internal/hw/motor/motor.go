package motor

// Drive is the actuation sink for a differential drive base.
// Velocities are signed, in the same unit as the configured maximum speed;
// positive values move the wheel forward.
type Drive interface {
	SetVelocity(left, right float64) error
	Stop() error
}

// Mock is a recording Drive for development and tests.
type Mock struct {
	Commands [][2]float64
	StopN    int
}

func (m *Mock) SetVelocity(left, right float64) error {
	m.Commands = append(m.Commands, [2]float64{left, right})
	return nil
}

func (m *Mock) Stop() error {
	m.StopN++
	return m.SetVelocity(0, 0)
}

// Last returns the most recent command, or (0, 0) before any command.
func (m *Mock) Last() (left, right float64) {
	if len(m.Commands) == 0 {
		return 0, 0
	}
	last := m.Commands[len(m.Commands)-1]
	return last[0], last[1]
}
