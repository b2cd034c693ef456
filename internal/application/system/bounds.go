package system

import "github.com/younwookim/stepper/internal/domain/motion"

// BoundsEnforcer clamps a live object position into the active bounds.
type BoundsEnforcer struct {
	bounds *motion.Bounds
}

// NewBoundsEnforcer creates an enforcer; nil bounds never clamp.
func NewBoundsEnforcer(b *motion.Bounds) *BoundsEnforcer {
	return &BoundsEnforcer{bounds: b}
}

// SetBounds replaces the active bounds.
func (e *BoundsEnforcer) SetBounds(b *motion.Bounds) {
	e.bounds = b
}

// Bounds returns the active bounds.
func (e *BoundsEnforcer) Bounds() *motion.Bounds {
	return e.bounds
}

// Enforce clamps obj in place and reports whether it had to move it.
func (e *BoundsEnforcer) Enforce(obj motion.Object) bool {
	if e.bounds == nil {
		return false
	}
	pos := obj.Position()
	clamped := e.bounds.Clamp(pos)
	if clamped == pos {
		return false
	}
	obj.SetPosition(clamped)
	return true
}
