package motion

import "github.com/go-gl/mathgl/mgl64"

// Bounds is an axis-aligned box constraining an object's position.
// A nil side is unbounded. A nil *Bounds is unbounded everywhere.
type Bounds struct {
	MinX *float64 `json:"minx" yaml:"minx"`
	MaxX *float64 `json:"maxx" yaml:"maxx"`
	MinY *float64 `json:"miny" yaml:"miny"`
	MaxY *float64 `json:"maxy" yaml:"maxy"`
	MinZ *float64 `json:"minz" yaml:"minz"`
	MaxZ *float64 `json:"maxz" yaml:"maxz"`
}

// Clamp returns p with every axis clamped independently into the box.
func (b *Bounds) Clamp(p mgl64.Vec3) mgl64.Vec3 {
	if b == nil {
		return p
	}
	p[0] = clampAxis(p[0], b.MinX, b.MaxX)
	p[1] = clampAxis(p[1], b.MinY, b.MaxY)
	p[2] = clampAxis(p[2], b.MinZ, b.MaxZ)
	return p
}

// Contains reports whether p lies inside the box (edges included).
func (b *Bounds) Contains(p mgl64.Vec3) bool {
	return b.Clamp(p) == p
}

func clampAxis(v float64, lo, hi *float64) float64 {
	if lo != nil && v < *lo {
		v = *lo
	}
	if hi != nil && v > *hi {
		v = *hi
	}
	return v
}
