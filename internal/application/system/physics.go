package system

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/younwookim/stepper/internal/domain/entity"
	"github.com/younwookim/stepper/internal/domain/motion"
	"github.com/younwookim/stepper/internal/infrastructure/config"
)

// PhysicsSystem is the host's continuous physics: it integrates applied
// forces into velocity and position and resolves ground contact. While the
// scheduler runs an action it has already taken gravity off the body, so
// this system leaves the body alone apart from the ground check.
type PhysicsSystem struct {
	config  *config.PhysicsConfig
	gravity *motion.Force
}

// NewPhysicsSystem creates a new physics system
func NewPhysicsSystem(cfg *config.PhysicsConfig) *PhysicsSystem {
	return &PhysicsSystem{
		config: cfg,
		gravity: &motion.Force{
			Name:   "gravity",
			Vector: mgl64.Vec3{0, -cfg.Physics.Gravity, 0},
		},
	}
}

// Gravity returns the gravity force handle. The same pointer must be
// applied to bodies and handed to the scheduler.
func (s *PhysicsSystem) Gravity() *motion.Force {
	return s.gravity
}

// Update advances body by dt milliseconds
func (s *PhysicsSystem) Update(body *entity.Body, dt float64) {
	// Store previous ground state
	body.WasOnGround = body.OnGround

	if dt <= 0 {
		return
	}
	secs := dt / 1000

	s.applyForces(body, secs)

	body.Pos = body.Pos.Add(body.Vel.Mul(secs))

	s.resolveGround(body)
}

// applyForces integrates acceleration and applied forces (unit mass)
func (s *PhysicsSystem) applyForces(body *entity.Body, secs float64) {
	accel := body.Acc.Add(body.NetForce())
	body.Vel = body.Vel.Add(accel.Mul(secs))

	// Clamp to max fall speed
	if maxFall := s.config.Physics.MaxFallSpeed; maxFall > 0 && body.Vel.Y() < -maxFall {
		body.Vel[1] = -maxFall
	}
}

// resolveGround keeps the body on or above the ground plane
func (s *PhysicsSystem) resolveGround(body *entity.Body) {
	ground := s.config.Physics.GroundY
	if body.Pos.Y() > ground {
		body.OnGround = false
		return
	}

	body.Pos[1] = ground
	if body.Vel.Y() < 0 {
		body.Vel[1] = 0
	}
	body.OnGround = true
}
