package system

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/younwookim/stepper/internal/domain/motion"
)

// PhysicsCoordinator hands an object between host physics and the
// controller around a discrete action.
type PhysicsCoordinator interface {
	// Begin is called when an action activates.
	Begin(obj motion.Object)
	// End is called when an action completes or is aborted.
	End(obj motion.Object)
}

// GravityCoordinator suspends a standing gravity force for the duration of
// each action.
type GravityCoordinator struct {
	force  *motion.Force
	logger *slog.Logger
	warned bool
}

// NewGravityCoordinator creates a coordinator for the given gravity handle.
func NewGravityCoordinator(force *motion.Force, logger *slog.Logger) *GravityCoordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &GravityCoordinator{
		force:  force,
		logger: logger,
	}
}

// Begin removes gravity and zeroes velocity and acceleration.
func (g *GravityCoordinator) Begin(obj motion.Object) {
	d, ok := g.dynamic(obj)
	if !ok {
		return
	}
	d.RemoveForce(g.force)
	d.SetVelocity(mgl64.Vec3{})
	d.SetAcceleration(mgl64.Vec3{})
}

// End zeroes velocity and acceleration and puts gravity back.
func (g *GravityCoordinator) End(obj motion.Object) {
	d, ok := g.dynamic(obj)
	if !ok {
		return
	}
	d.SetVelocity(mgl64.Vec3{})
	d.SetAcceleration(mgl64.Vec3{})
	d.ApplyForce(g.force)
}

// Force returns the gravity handle.
func (g *GravityCoordinator) Force() *motion.Force {
	return g.force
}

func (g *GravityCoordinator) dynamic(obj motion.Object) (motion.Dynamic, bool) {
	d, ok := obj.(motion.Dynamic)
	if !ok && !g.warned {
		g.warned = true
		g.logger.Warn("target has no force set; gravity hand-off skipped")
	}
	return d, ok
}

type nopCoordinator struct{}

func (nopCoordinator) Begin(motion.Object) {}
func (nopCoordinator) End(motion.Object)   {}
