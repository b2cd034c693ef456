package system

import "github.com/younwookim/stepper/internal/domain/motion"

// Frame is the motion one tick contributes to a running action.
type Frame struct {
	// Done means the action reached its duration on this tick. No motion
	// fields are set; the caller snaps to the precomputed end state.
	Done bool

	RelX, RelZ float64 // local-frame translation for TranslateRelative
	AbsX, AbsZ float64 // world-axis translation
	Rotate     float64 // yaw delta
	Y          float64 // absolute height on the arc
}

// Evaluate computes the motion for advancing a from elapsedBefore by dt.
// It does not modify a.
func Evaluate(a *motion.Action, elapsedBefore, dt float64) Frame {
	elapsed := elapsedBefore + dt
	if elapsed >= a.Duration {
		return Frame{Done: true}
	}

	rate := dt / a.Duration
	return Frame{
		RelX:   -a.Left * rate,
		RelZ:   -a.Forward * rate,
		AbsX:   a.TranslateX * rate,
		AbsZ:   a.TranslateZ * rate,
		Rotate: a.Rotate * rate,
		Y:      Arc(a.Height, a.StartPos.Y(), a.Duration, elapsed),
	}
}

// Arc is the closed-form vertical law: a parabola through startY at t=0
// and t=duration with its apex height above startY at duration/2.
func Arc(height, startY, duration, t float64) float64 {
	if duration <= 0 {
		return startY
	}
	half := duration / 2
	curvature := height / (half * half)
	d := t - half
	return height + startY - curvature*d*d
}
