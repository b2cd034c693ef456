package motion

import "github.com/go-gl/mathgl/mgl64"

// Action is a Command after conflict resolution, with its exact start and
// end state precomputed. Only Elapsed changes after creation.
type Action struct {
	// Command is the resolved command; fields cleared by conflict
	// resolution are nil here.
	Command Command

	// Relative magnitudes in the object's local frame
	Forward float64
	Left    float64

	// Absolute world-axis deltas
	TranslateX float64
	TranslateZ float64

	Rotate   float64
	Duration float64
	Height   float64

	Elapsed float64

	StartPos    mgl64.Vec3
	EndPos      mgl64.Vec3
	StartRotate float64
	EndRotate   float64
}

// Done reports whether the action has run its full duration.
func (a *Action) Done() bool {
	return a.Elapsed >= a.Duration
}

// Progress returns elapsed/duration clamped to [0, 1].
func (a *Action) Progress() float64 {
	if a.Duration <= 0 {
		return 1
	}
	p := a.Elapsed / a.Duration
	if p > 1 {
		return 1
	}
	return p
}
