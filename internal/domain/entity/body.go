package entity

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/younwookim/stepper/internal/domain/motion"
)

// Body is a host-side physical body. It satisfies motion.Dynamic so the
// controller can drive it, and it is integrated by PhysicsSystem whenever
// no discrete action has taken over.
//
// Velocity is in units per second, acceleration in units per second².
type Body struct {
	Pos mgl64.Vec3
	Yaw float64 // radians around +Y
	Vel mgl64.Vec3
	Acc mgl64.Vec3

	OnGround    bool
	WasOnGround bool

	forces *orderedmap.OrderedMap[*motion.Force, struct{}]
}

var _ motion.Dynamic = (*Body)(nil)

// NewBody creates a body at rest with an empty force set.
func NewBody(pos mgl64.Vec3, yaw float64) *Body {
	return &Body{
		Pos:    pos,
		Yaw:    yaw,
		forces: orderedmap.NewOrderedMap[*motion.Force, struct{}](),
	}
}

// LocalToWorld rotates a local (dx, 0, dz) offset by yaw.
func LocalToWorld(yaw, dx, dz float64) mgl64.Vec3 {
	return mgl64.Rotate3DY(yaw).Mul3x1(mgl64.Vec3{dx, 0, dz})
}

func (b *Body) Position() mgl64.Vec3         { return b.Pos }
func (b *Body) SetPosition(p mgl64.Vec3)     { b.Pos = p }
func (b *Body) RotationY() float64           { return b.Yaw }
func (b *Body) SetRotationY(yaw float64)     { b.Yaw = yaw }
func (b *Body) Grounded() bool               { return b.OnGround }
func (b *Body) SetVelocity(v mgl64.Vec3)     { b.Vel = v }
func (b *Body) SetAcceleration(a mgl64.Vec3) { b.Acc = a }

// TranslateRelative moves the body in its yaw-rotated local frame.
func (b *Body) TranslateRelative(dx, dz float64) {
	b.Pos = b.Pos.Add(LocalToWorld(b.Yaw, dx, dz))
}

// ApplyForce adds f to the applied-force set. Applying twice is a no-op.
func (b *Body) ApplyForce(f *motion.Force) {
	if f == nil {
		return
	}
	b.forceSet().Set(f, struct{}{})
}

// RemoveForce removes f from the applied-force set.
func (b *Body) RemoveForce(f *motion.Force) {
	b.forceSet().Delete(f)
}

// HasForce reports whether f is currently applied.
func (b *Body) HasForce(f *motion.Force) bool {
	_, ok := b.forceSet().Get(f)
	return ok
}

// Forces returns the applied forces in the order they were applied.
func (b *Body) Forces() []*motion.Force {
	return b.forceSet().Keys()
}

// NetForce sums every applied force.
func (b *Body) NetForce() mgl64.Vec3 {
	var sum mgl64.Vec3
	for _, f := range b.forceSet().Keys() {
		sum = sum.Add(f.Vector)
	}
	return sum
}

func (b *Body) forceSet() *orderedmap.OrderedMap[*motion.Force, struct{}] {
	if b.forces == nil {
		b.forces = orderedmap.NewOrderedMap[*motion.Force, struct{}]()
	}
	return b.forces
}
