package config

import "github.com/younwookim/stepper/internal/domain/motion"

// PhysicsConfig is the root config for physics.json / physics.yaml
type PhysicsConfig struct {
	Display DisplayConfig   `json:"display" yaml:"display"`
	Physics PhysicsSettings `json:"physics" yaml:"physics"`
}

type DisplayConfig struct {
	ScreenWidth   int     `json:"screenWidth" yaml:"screenWidth"`
	ScreenHeight  int     `json:"screenHeight" yaml:"screenHeight"`
	Scale         int     `json:"scale" yaml:"scale"`
	Framerate     int     `json:"framerate" yaml:"framerate"`
	PixelsPerUnit float64 `json:"pixelsPerUnit" yaml:"pixelsPerUnit"` // top-down view zoom
}

type PhysicsSettings struct {
	Gravity      float64 `json:"gravity" yaml:"gravity"`           // units/s², positive pulls down
	MaxFallSpeed float64 `json:"maxFallSpeed" yaml:"maxFallSpeed"` // units/s
	GroundY      float64 `json:"groundY" yaml:"groundY"`
}

// ControllerConfig is the root config for controller.json / controller.yaml
type ControllerConfig struct {
	MaxActions     int            `json:"maxActions" yaml:"maxActions"`
	OutputCapacity int            `json:"outputCapacity" yaml:"outputCapacity"`
	MovementBounds *motion.Bounds `json:"movementBounds" yaml:"movementBounds"`
	// GravityAware enables the physics hand-off and the grounded gate
	GravityAware bool           `json:"gravityAware" yaml:"gravityAware"`
	Controls     ControlsConfig `json:"controls" yaml:"controls"`
}

// ControlsConfig configures the demo's key-to-command mapping
type ControlsConfig struct {
	StepDistance    float64 `json:"stepDistance" yaml:"stepDistance"`       // units per key press
	StepDuration    float64 `json:"stepDuration" yaml:"stepDuration"`       // milliseconds
	TurnDegrees     float64 `json:"turnDegrees" yaml:"turnDegrees"`         // per key press
	JumpHeight      float64 `json:"jumpHeight" yaml:"jumpHeight"`           // arc apex for jump presses
	LookSensitivity float64 `json:"lookSensitivity" yaml:"lookSensitivity"` // radians per pixel
}

// Controller defaults
const (
	DefaultMaxActions     = 1024
	DefaultOutputCapacity = 1024
)

// ApplyDefaults fills zero values with the documented defaults.
func (c *ControllerConfig) ApplyDefaults() {
	if c.MaxActions <= 0 {
		c.MaxActions = DefaultMaxActions
	}
	if c.OutputCapacity <= 0 {
		c.OutputCapacity = DefaultOutputCapacity
	}
	if c.Controls.StepDistance == 0 {
		c.Controls.StepDistance = 1
	}
	if c.Controls.StepDuration == 0 {
		c.Controls.StepDuration = motion.DefaultDuration
	}
	if c.Controls.TurnDegrees == 0 {
		c.Controls.TurnDegrees = 90
	}
	if c.Controls.JumpHeight == 0 {
		c.Controls.JumpHeight = 1
	}
	if c.Controls.LookSensitivity == 0 {
		c.Controls.LookSensitivity = 0.005
	}
}
