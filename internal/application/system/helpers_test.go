package system

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/younwookim/stepper/internal/domain/entity"
	"github.com/younwookim/stepper/internal/domain/motion"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func createTestGravity() *motion.Force {
	return &motion.Force{Name: "gravity", Vector: mgl64.Vec3{0, -20, 0}}
}

// createTestBody returns a grounded body at pos with gravity applied
func createTestBody(pos mgl64.Vec3, gravity *motion.Force) *entity.Body {
	b := entity.NewBody(pos, 0)
	b.OnGround = true
	if gravity != nil {
		b.ApplyForce(gravity)
	}
	return b
}

// plainObject is a minimal host object without a force set
type plainObject struct {
	pos mgl64.Vec3
	yaw float64
}

func (o *plainObject) Position() mgl64.Vec3     { return o.pos }
func (o *plainObject) SetPosition(p mgl64.Vec3) { o.pos = p }
func (o *plainObject) RotationY() float64       { return o.yaw }
func (o *plainObject) SetRotationY(yaw float64) { o.yaw = yaw }
func (o *plainObject) Grounded() bool           { return true }
func (o *plainObject) TranslateRelative(dx, dz float64) {
	o.pos = o.pos.Add(entity.LocalToWorld(o.yaw, dx, dz))
}

func fwd(v float64) motion.Command {
	return motion.Command{Forward: motion.Float(v)}
}
