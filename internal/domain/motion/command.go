// Package motion holds the domain types shared by the controller: raw
// commands, normalized actions, movement bounds and the capability
// interfaces a host object must satisfy to be driven.
package motion

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Command defaults
const (
	DefaultDuration = 1000.0 // milliseconds
	DefaultHeight   = 0.5
)

// Command is a raw movement instruction as submitted by a caller.
// Every numeric field is optional; nil means "not given".
type Command struct {
	// Directional (relative, rotation-aware) intents
	Forward  *float64 `json:"forward,omitempty"`
	Backward *float64 `json:"backward,omitempty"`
	Left     *float64 `json:"left,omitempty"`
	Right    *float64 `json:"right,omitempty"`

	// Absolute (world axis) intents
	TranslateX *float64 `json:"translateX,omitempty"`
	TranslateZ *float64 `json:"translateZ,omitempty"`
	MoveTo     *Point   `json:"moveto,omitempty"`

	Rotate   *float64 `json:"rotate,omitempty"`   // radians
	Duration *float64 `json:"duration,omitempty"` // milliseconds
	Height   *float64 `json:"height,omitempty"`   // arc apex above start

	// Transient flags, reported in status snapshots
	Fire    bool `json:"fire,omitempty"`
	FireAlt bool `json:"firealt,omitempty"`
	Jump    bool `json:"jump,omitempty"`
}

// Float returns a pointer to v. Handy for building commands in code.
func Float(v float64) *float64 {
	return &v
}

// IsSet reports whether an optional intent carries a non-zero value.
func IsSet(p *float64) bool {
	return p != nil && *p != 0
}

// HasRelative reports whether any forward/backward/left/right intent is set.
func (c Command) HasRelative() bool {
	return IsSet(c.Forward) || IsSet(c.Backward) || IsSet(c.Left) || IsSet(c.Right)
}

// HasAbsolute reports whether any translateX/translateZ/moveto intent is set.
func (c Command) HasAbsolute() bool {
	return IsSet(c.TranslateX) || IsSet(c.TranslateZ) || c.MoveTo != nil
}

// HasMovement reports whether the command moves the object at all.
func (c Command) HasMovement() bool {
	return c.HasRelative() || c.HasAbsolute()
}

// Point is a moveto target. On the wire it is either an [x, y, z] triple
// or an {"x":..,"y":..,"z":..} object.
type Point struct {
	X, Y, Z float64
}

// Vec returns the point as a vector.
func (p Point) Vec() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// PointFromVec converts a vector to a point.
func PointFromVec(v mgl64.Vec3) Point {
	return Point{X: v[0], Y: v[1], Z: v[2]}
}

// MarshalJSON encodes the point as a triple.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{p.X, p.Y, p.Z})
}

// UnmarshalJSON accepts a triple or an object.
func (p *Point) UnmarshalJSON(data []byte) error {
	var triple []float64
	if err := json.Unmarshal(data, &triple); err == nil {
		if len(triple) != 3 {
			return fmt.Errorf("moveto: expected 3 components, got %d", len(triple))
		}
		p.X, p.Y, p.Z = triple[0], triple[1], triple[2]
		return nil
	}

	var obj struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("moveto: %w", err)
	}
	p.X, p.Y, p.Z = obj.X, obj.Y, obj.Z
	return nil
}
