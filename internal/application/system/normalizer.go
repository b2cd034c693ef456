package system

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/younwookim/stepper/internal/domain/motion"
)

// Normalizer turns raw commands into fully specified actions.
// Conflicting fields are resolved by fixed precedence, never rejected.
type Normalizer struct {
	gravityAware bool
	logger       *slog.Logger
}

// NewNormalizer creates a normalizer. In gravity-aware mode a command may
// not rotate and move at once.
func NewNormalizer(gravityAware bool, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		gravityAware: gravityAware,
		logger:       logger,
	}
}

// Normalize resolves cmd against obj's current state. It returns false if
// the command carries unusable numbers and was discarded.
func (n *Normalizer) Normalize(cmd motion.Command, obj motion.Object) (*motion.Action, bool) {
	if err := checkCommand(cmd); err != nil {
		n.logger.Warn("discarding command", "err", err)
		return nil, false
	}

	// Rules below replace pointers and never write through them, so the
	// caller's command is left as submitted.
	c := cmd

	// 1. rotation + movement: movement wins
	if n.gravityAware && motion.IsSet(c.Rotate) && c.HasMovement() {
		n.logger.Warn("command both rotates and moves; dropping rotate", "rotate", *c.Rotate)
		c.Rotate = nil
	}

	// 2. backward folds into forward; forward wins
	if motion.IsSet(c.Backward) {
		if motion.IsSet(c.Forward) {
			n.logger.Warn("command sets forward and backward; using forward", "forward", *c.Forward, "backward", *c.Backward)
		} else {
			c.Forward = motion.Float(-*c.Backward)
		}
	}
	c.Backward = nil

	// 3. right folds into left; left wins
	if motion.IsSet(c.Right) {
		if motion.IsSet(c.Left) {
			n.logger.Warn("command sets left and right; using left", "left", *c.Left, "right", *c.Right)
		} else {
			c.Left = motion.Float(-*c.Right)
		}
	}
	c.Right = nil

	// 4. absolute beats relative
	if c.HasAbsolute() && (motion.IsSet(c.Forward) || motion.IsSet(c.Left)) {
		n.logger.Warn("command mixes absolute and relative movement; dropping relative")
		c.Forward = nil
		c.Left = nil
	}

	// 5. moveto beats explicit translation
	if c.MoveTo != nil && (motion.IsSet(c.TranslateX) || motion.IsSet(c.TranslateZ)) {
		n.logger.Warn("command sets moveto and translate; using moveto")
		c.TranslateX = nil
		c.TranslateZ = nil
	}

	pos := obj.Position()
	yaw := obj.RotationY()

	a := &motion.Action{
		Command:     c,
		Forward:     value(c.Forward, 0),
		Left:        value(c.Left, 0),
		TranslateX:  value(c.TranslateX, 0),
		TranslateZ:  value(c.TranslateZ, 0),
		Rotate:      value(c.Rotate, 0),
		Duration:    value(c.Duration, motion.DefaultDuration),
		Height:      value(c.Height, motion.DefaultHeight),
		StartPos:    pos,
		StartRotate: yaw,
	}
	if c.MoveTo != nil {
		a.TranslateX = c.MoveTo.X - pos.X()
		a.TranslateZ = c.MoveTo.Z - pos.Z()
	}
	a.EndRotate = a.StartRotate + a.Rotate
	a.EndPos = endPosition(obj, a)

	return a, true
}

// endPosition runs the action's whole translation once through the
// object's own TranslateRelative, reads the result and puts the object back.
func endPosition(obj motion.Object, a *motion.Action) mgl64.Vec3 {
	saved := obj.Position()
	if a.Forward != 0 || a.Left != 0 {
		obj.TranslateRelative(-a.Left, -a.Forward)
	}
	end := obj.Position()
	obj.SetPosition(saved)

	end[0] += a.TranslateX
	end[2] += a.TranslateZ
	return end
}

func value(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func checkCommand(c motion.Command) error {
	fields := []struct {
		name string
		v    *float64
	}{
		{"forward", c.Forward},
		{"backward", c.Backward},
		{"left", c.Left},
		{"right", c.Right},
		{"translateX", c.TranslateX},
		{"translateZ", c.TranslateZ},
		{"rotate", c.Rotate},
		{"duration", c.Duration},
		{"height", c.Height},
	}
	for _, f := range fields {
		if f.v != nil && !isFinite(*f.v) {
			return fmt.Errorf("%s is not finite", f.name)
		}
	}
	if c.MoveTo != nil && !(isFinite(c.MoveTo.X) && isFinite(c.MoveTo.Y) && isFinite(c.MoveTo.Z)) {
		return fmt.Errorf("moveto is not finite")
	}
	if c.Duration != nil && *c.Duration < 0 {
		return fmt.Errorf("negative duration %v", *c.Duration)
	}
	if c.Height != nil && *c.Height < 0 {
		return fmt.Errorf("negative height %v", *c.Height)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
