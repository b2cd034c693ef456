package motion

import "github.com/go-gl/mathgl/mgl64"

// Object is what the controller needs from a host-owned scene object.
// The host adapts its real object to this interface; the controller never
// allocates or destroys it.
type Object interface {
	Position() mgl64.Vec3
	SetPosition(p mgl64.Vec3)
	RotationY() float64
	SetRotationY(yaw float64)
	// TranslateRelative moves the object by (dx, 0, dz) in its local,
	// yaw-rotated frame.
	TranslateRelative(dx, dz float64)
	Grounded() bool
}

// Dynamic is an Object whose host also integrates forces. Gravity hand-off
// requires it.
type Dynamic interface {
	Object
	ApplyForce(f *Force)
	RemoveForce(f *Force)
	SetVelocity(v mgl64.Vec3)
	SetAcceleration(a mgl64.Vec3)
}

// Force is a handle to a constant force in a host's applied-force set.
// Handles compare by identity.
type Force struct {
	Name   string
	Vector mgl64.Vec3 // units/s² per unit mass
}
