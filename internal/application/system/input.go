package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/younwookim/stepper/internal/application/output"
	"github.com/younwookim/stepper/internal/domain/motion"
	"github.com/younwookim/stepper/internal/infrastructure/config"
)

// InputSystem maps keyboard and mouse input to controller commands
type InputSystem struct {
	config *config.ControlsConfig

	// right-drag tracking
	dragging     bool
	lastX, lastY int
}

// NewInputSystem creates a new input system
func NewInputSystem(cfg *config.ControlsConfig) *InputSystem {
	return &InputSystem{config: cfg}
}

// InputState holds the current input state. Movement keys are edge
// triggered: one press queues one step.
type InputState struct {
	Forward   bool
	Backward  bool
	Left      bool
	Right     bool
	TurnLeft  bool
	TurnRight bool
	Jump      bool
	Fire      bool
	FireAlt   bool
	Reset     bool
	Look      bool // right button held
	MouseX    int
	MouseY    int
}

// GetInput reads the current input state
func (s *InputSystem) GetInput() InputState {
	mx, my := ebiten.CursorPosition()
	return InputState{
		Forward:   inpututil.IsKeyJustPressed(ebiten.KeyW),
		Backward:  inpututil.IsKeyJustPressed(ebiten.KeyS),
		Left:      inpututil.IsKeyJustPressed(ebiten.KeyA),
		Right:     inpututil.IsKeyJustPressed(ebiten.KeyD),
		TurnLeft:  inpututil.IsKeyJustPressed(ebiten.KeyQ),
		TurnRight: inpututil.IsKeyJustPressed(ebiten.KeyE),
		Jump:      inpututil.IsKeyJustPressed(ebiten.KeySpace),
		Fire:      inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		FireAlt:   inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle),
		Reset:     inpututil.IsKeyJustPressed(ebiten.KeyR),
		Look:      ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight),
		MouseX:    mx,
		MouseY:    my,
	}
}

// Commands turns one frame of input into commands. Turning is queued as
// its own command ahead of any movement, since the gravity-aware
// controller drops rotation from a command that also moves.
func (s *InputSystem) Commands(input InputState) []motion.Command {
	var cmds []motion.Command

	if turn := s.turn(input); turn != 0 {
		cmds = append(cmds, motion.Command{
			Rotate:   motion.Float(turn),
			Duration: motion.Float(s.config.StepDuration),
			Height:   motion.Float(0),
		})
	}

	step := s.config.StepDistance
	cmd := motion.Command{
		Fire:    input.Fire,
		FireAlt: input.FireAlt,
		Jump:    input.Jump,
	}
	moving := false
	if input.Forward {
		cmd.Forward = motion.Float(step)
		moving = true
	}
	if input.Backward {
		cmd.Backward = motion.Float(step)
		moving = true
	}
	if input.Left {
		cmd.Left = motion.Float(step)
		moving = true
	}
	if input.Right {
		cmd.Right = motion.Float(step)
		moving = true
	}

	if !moving && !input.Jump && !input.Fire && !input.FireAlt {
		return cmds
	}

	cmd.Duration = motion.Float(s.config.StepDuration)
	switch {
	case input.Jump:
		cmd.Height = motion.Float(s.config.JumpHeight)
	case !moving:
		// firing in place
		cmd.Height = motion.Float(0)
	}
	return append(cmds, cmd)
}

// turn returns the yaw for this frame in radians. Positive turns left.
func (s *InputSystem) turn(input InputState) float64 {
	rad := s.config.TurnDegrees * math.Pi / 180
	switch {
	case input.TurnLeft && !input.TurnRight:
		return rad
	case input.TurnRight && !input.TurnLeft:
		return -rad
	}
	return 0
}

// LookDelta converts right-drag mouse motion into a rotation delta. The
// first frame of a drag only records the cursor.
func (s *InputSystem) LookDelta(input InputState) (output.RotationDelta, bool) {
	if !input.Look {
		s.dragging = false
		return output.RotationDelta{}, false
	}

	if !s.dragging {
		s.dragging = true
		s.lastX, s.lastY = input.MouseX, input.MouseY
		return output.RotationDelta{}, false
	}

	dx := input.MouseX - s.lastX
	dy := input.MouseY - s.lastY
	s.lastX, s.lastY = input.MouseX, input.MouseY
	if dx == 0 && dy == 0 {
		return output.RotationDelta{}, false
	}

	sens := s.config.LookSensitivity
	return output.RotationDelta{DX: float64(dx) * sens, DY: float64(dy) * sens}, true
}
