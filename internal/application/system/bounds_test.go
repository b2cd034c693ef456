package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"

	"github.com/younwookim/stepper/internal/domain/motion"
)

func TestBoundsEnforcer_Enforce(t *testing.T) {
	tests := []struct {
		name    string
		bounds  *motion.Bounds
		pos     mgl64.Vec3
		want    mgl64.Vec3
		clamped bool
	}{
		{
			name:   "nil bounds",
			bounds: nil,
			pos:    mgl64.Vec3{100, -100, 100},
			want:   mgl64.Vec3{100, -100, 100},
		},
		{
			name:   "inside",
			bounds: &motion.Bounds{MinX: motion.Float(-5), MaxX: motion.Float(5)},
			pos:    mgl64.Vec3{4, 0, 0},
			want:   mgl64.Vec3{4, 0, 0},
		},
		{
			name:    "max x",
			bounds:  &motion.Bounds{MaxX: motion.Float(5)},
			pos:     mgl64.Vec3{7, 1, 2},
			want:    mgl64.Vec3{5, 1, 2},
			clamped: true,
		},
		{
			name:    "floor only",
			bounds:  &motion.Bounds{MinY: motion.Float(0)},
			pos:     mgl64.Vec3{-50, -1, 50},
			want:    mgl64.Vec3{-50, 0, 50},
			clamped: true,
		},
		{
			name: "every axis",
			bounds: &motion.Bounds{
				MinX: motion.Float(0), MaxX: motion.Float(1),
				MinY: motion.Float(0), MaxY: motion.Float(1),
				MinZ: motion.Float(0), MaxZ: motion.Float(1),
			},
			pos:     mgl64.Vec3{-1, 2, -3},
			want:    mgl64.Vec3{0, 1, 0},
			clamped: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewBoundsEnforcer(tt.bounds)
			obj := &plainObject{pos: tt.pos}

			assert.Equal(t, tt.clamped, e.Enforce(obj))
			assert.Equal(t, tt.want, obj.pos)
		})
	}
}

func TestBoundsEnforcer_SetBounds(t *testing.T) {
	e := NewBoundsEnforcer(nil)
	assert.Nil(t, e.Bounds())

	b := &motion.Bounds{MaxZ: motion.Float(1)}
	e.SetBounds(b)
	assert.Same(t, b, e.Bounds())

	obj := &plainObject{pos: mgl64.Vec3{0, 0, 3}}
	e.Enforce(obj)
	assert.Equal(t, 1.0, obj.pos.Z())

	e.SetBounds(nil)
	obj.pos = mgl64.Vec3{0, 0, 3}
	assert.False(t, e.Enforce(obj))
}
