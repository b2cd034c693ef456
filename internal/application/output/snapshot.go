// Package output implements the controller's status emitter: per-action
// rotation accumulators, status snapshots and a bounded, pausable channel
// that delivers them to subscribers.
package output

import (
	"fmt"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// RotationDelta is one fine-grained look input, e.g. a mouse move.
type RotationDelta struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
	DZ float64 `json:"dz"`
}

// Accumulator sums rotation deltas for the lifetime of one action.
type Accumulator struct {
	X, Y, Z float64
}

// NewAccumulator returns a zeroed accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add folds d into the accumulator. Screen-space dy pitches around X and
// dx yaws around Y, both inverted; dz rolls as given.
func (a *Accumulator) Add(d RotationDelta) {
	a.X -= d.DY
	a.Y -= d.DX
	a.Z += d.DZ
}

// Snapshot is one status record emitted to subscribers.
type Snapshot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	Forward  bool `json:"forward"`
	Backward bool `json:"backward"`
	Left     bool `json:"left"`
	Right    bool `json:"right"`
	Fire     bool `json:"fire"`
	FireAlt  bool `json:"firealt"`
	Jump     bool `json:"jump"`
}

// Fields returns the snapshot as an ordered key/value map. Key order is
// fixed: accumulators first, then flags.
func (s Snapshot) Fields() *orderedmap.OrderedMap[string, any] {
	m := orderedmap.NewOrderedMap[string, any]()
	m.Set("x", s.X)
	m.Set("y", s.Y)
	m.Set("z", s.Z)
	m.Set("forward", s.Forward)
	m.Set("backward", s.Backward)
	m.Set("left", s.Left)
	m.Set("right", s.Right)
	m.Set("fire", s.Fire)
	m.Set("firealt", s.FireAlt)
	m.Set("jump", s.Jump)
	return m
}

// String renders the snapshot as "[x=.. y=.. ...]".
func (s Snapshot) String() string {
	fields := s.Fields()
	parts := make([]string, 0, fields.Len())
	for _, key := range fields.Keys() {
		v, _ := fields.Get(key)
		parts = append(parts, fmt.Sprintf("%s=%v", key, v))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
