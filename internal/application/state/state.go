package state

// ActionState is the scheduler's position in the action lifecycle.
type ActionState int

const (
	StateIdle ActionState = iota
	StateActivating
	StateRunning
)

// String returns the string representation of the action state
func (s ActionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateActivating:
		return "Activating"
	case StateRunning:
		return "Running"
	default:
		return "Unknown"
	}
}
