package system

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/stepper/internal/domain/motion"
)

func TestNormalizer_Defaults(t *testing.T) {
	n := NewNormalizer(false, discardLogger())
	obj := &plainObject{pos: mgl64.Vec3{1, 2, 3}}

	a, ok := n.Normalize(fwd(1), obj)
	require.True(t, ok)

	assert.Equal(t, motion.DefaultDuration, a.Duration)
	assert.Equal(t, motion.DefaultHeight, a.Height)
	assert.Equal(t, 0.0, a.Rotate)
	assert.Equal(t, 0.0, a.Elapsed)
}

func TestNormalizer_ExplicitZeroHeight(t *testing.T) {
	n := NewNormalizer(false, discardLogger())
	cmd := motion.Command{Forward: motion.Float(1), Height: motion.Float(0)}

	a, ok := n.Normalize(cmd, &plainObject{})
	require.True(t, ok)
	assert.Equal(t, 0.0, a.Height, "explicit zero is distinct from unset")
}

func TestNormalizer_ConflictPrecedence(t *testing.T) {
	tests := []struct {
		name         string
		gravityAware bool
		cmd          motion.Command
		check        func(t *testing.T, a *motion.Action)
	}{
		{
			name: "forward beats backward",
			cmd:  motion.Command{Forward: motion.Float(1), Backward: motion.Float(1)},
			check: func(t *testing.T, a *motion.Action) {
				assert.Equal(t, 1.0, a.Forward)
				require.NotNil(t, a.Command.Forward)
				assert.Equal(t, 1.0, *a.Command.Forward)
				assert.Nil(t, a.Command.Backward)
			},
		},
		{
			name: "backward alone is negative forward",
			cmd:  motion.Command{Backward: motion.Float(2)},
			check: func(t *testing.T, a *motion.Action) {
				assert.Equal(t, -2.0, a.Forward)
				assert.Nil(t, a.Command.Backward)
			},
		},
		{
			name: "left beats right",
			cmd:  motion.Command{Left: motion.Float(3), Right: motion.Float(1)},
			check: func(t *testing.T, a *motion.Action) {
				assert.Equal(t, 3.0, a.Left)
				assert.Nil(t, a.Command.Right)
			},
		},
		{
			name: "right alone is negative left",
			cmd:  motion.Command{Right: motion.Float(1.5)},
			check: func(t *testing.T, a *motion.Action) {
				assert.Equal(t, -1.5, a.Left)
			},
		},
		{
			name: "absolute beats relative",
			cmd:  motion.Command{Forward: motion.Float(1), Left: motion.Float(1), TranslateX: motion.Float(4)},
			check: func(t *testing.T, a *motion.Action) {
				assert.Equal(t, 0.0, a.Forward)
				assert.Equal(t, 0.0, a.Left)
				assert.Equal(t, 4.0, a.TranslateX)
				assert.Nil(t, a.Command.Forward)
				assert.Nil(t, a.Command.Left)
			},
		},
		{
			name: "moveto beats translate",
			cmd:  motion.Command{MoveTo: &motion.Point{X: 5, Y: 9, Z: -5}, TranslateX: motion.Float(1)},
			check: func(t *testing.T, a *motion.Action) {
				require.NotNil(t, a.Command.MoveTo)
				assert.Nil(t, a.Command.TranslateX)
				assert.Equal(t, 5.0, a.TranslateX)
				assert.Equal(t, -5.0, a.TranslateZ)
			},
		},
		{
			name:         "gravity-aware: movement beats rotation",
			gravityAware: true,
			cmd:          motion.Command{Forward: motion.Float(1), Rotate: motion.Float(math.Pi)},
			check: func(t *testing.T, a *motion.Action) {
				assert.Equal(t, 0.0, a.Rotate)
				assert.Nil(t, a.Command.Rotate)
				assert.Equal(t, 1.0, a.Forward)
			},
		},
		{
			name: "simple variant keeps rotate with move",
			cmd:  motion.Command{Forward: motion.Float(1), Rotate: motion.Float(math.Pi)},
			check: func(t *testing.T, a *motion.Action) {
				assert.Equal(t, math.Pi, a.Rotate)
				assert.Equal(t, 1.0, a.Forward)
			},
		},
		{
			name:         "gravity-aware: rotation alone survives",
			gravityAware: true,
			cmd:          motion.Command{Rotate: motion.Float(1)},
			check: func(t *testing.T, a *motion.Action) {
				assert.Equal(t, 1.0, a.Rotate)
				assert.Equal(t, 1.0, a.EndRotate)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(tt.gravityAware, discardLogger())
			a, ok := n.Normalize(tt.cmd, &plainObject{})
			require.True(t, ok)
			tt.check(t, a)
		})
	}
}

func TestNormalizer_ConflictIsLogged(t *testing.T) {
	logger, buf := bufferLogger()
	n := NewNormalizer(false, logger)

	_, ok := n.Normalize(motion.Command{Forward: motion.Float(1), Backward: motion.Float(1)}, &plainObject{})
	require.True(t, ok)
	assert.Contains(t, buf.String(), "forward and backward")
}

func TestNormalizer_DoesNotMutateInput(t *testing.T) {
	n := NewNormalizer(false, discardLogger())
	cmd := motion.Command{Backward: motion.Float(2)}

	_, ok := n.Normalize(cmd, &plainObject{})
	require.True(t, ok)

	require.NotNil(t, cmd.Backward)
	assert.Equal(t, 2.0, *cmd.Backward)
	assert.Nil(t, cmd.Forward)
}

func TestNormalizer_EndPosition(t *testing.T) {
	tests := []struct {
		name    string
		start   mgl64.Vec3
		yaw     float64
		cmd     motion.Command
		wantEnd mgl64.Vec3
	}{
		{
			name:    "forward is -Z",
			cmd:     fwd(2),
			wantEnd: mgl64.Vec3{0, 0, -2},
		},
		{
			name:    "left is -X",
			start:   mgl64.Vec3{1, 0, 1},
			cmd:     motion.Command{Left: motion.Float(1)},
			wantEnd: mgl64.Vec3{0, 0, 1},
		},
		{
			name:    "forward respects yaw",
			yaw:     math.Pi / 2,
			cmd:     fwd(1),
			wantEnd: mgl64.Vec3{-1, 0, 0},
		},
		{
			name:    "translate ignores yaw",
			yaw:     math.Pi / 2,
			cmd:     motion.Command{TranslateX: motion.Float(2), TranslateZ: motion.Float(-1)},
			wantEnd: mgl64.Vec3{2, 0, -1},
		},
		{
			name:    "moveto keeps height",
			start:   mgl64.Vec3{1, 3, 1},
			cmd:     motion.Command{MoveTo: &motion.Point{X: 4, Y: 100, Z: -2}},
			wantEnd: mgl64.Vec3{4, 3, -2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(false, discardLogger())
			obj := &plainObject{pos: tt.start, yaw: tt.yaw}

			a, ok := n.Normalize(tt.cmd, obj)
			require.True(t, ok)

			assert.Equal(t, tt.start, obj.Position(), "object must not visibly move")
			assert.Equal(t, tt.start, a.StartPos)
			assert.InDelta(t, tt.wantEnd.X(), a.EndPos.X(), 1e-9)
			assert.InDelta(t, tt.wantEnd.Y(), a.EndPos.Y(), 1e-9)
			assert.InDelta(t, tt.wantEnd.Z(), a.EndPos.Z(), 1e-9)
			assert.Equal(t, tt.yaw, a.StartRotate)
		})
	}
}

func TestNormalizer_StartPosIsACopy(t *testing.T) {
	n := NewNormalizer(false, discardLogger())
	obj := &plainObject{pos: mgl64.Vec3{1, 1, 1}}

	a, ok := n.Normalize(fwd(1), obj)
	require.True(t, ok)

	obj.pos[0] = 50
	assert.Equal(t, 1.0, a.StartPos.X())
}

func TestNormalizer_Discards(t *testing.T) {
	tests := []struct {
		name string
		cmd  motion.Command
	}{
		{"NaN forward", motion.Command{Forward: motion.Float(math.NaN())}},
		{"infinite rotate", motion.Command{Rotate: motion.Float(math.Inf(1))}},
		{"negative duration", motion.Command{Forward: motion.Float(1), Duration: motion.Float(-5)}},
		{"negative height", motion.Command{Height: motion.Float(-1)}},
		{"NaN moveto", motion.Command{MoveTo: &motion.Point{X: math.NaN()}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := bufferLogger()
			n := NewNormalizer(false, logger)

			a, ok := n.Normalize(tt.cmd, &plainObject{})
			assert.False(t, ok)
			assert.Nil(t, a)
			assert.Contains(t, buf.String(), "discarding command")
		})
	}
}
