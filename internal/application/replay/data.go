// Package replay records the command stream fed to a scheduler and plays
// it back frame by frame. Replays are JSON, zstd-compressed when the file
// name ends in ".zst".
package replay

import (
	"github.com/younwookim/stepper/internal/application/output"
	"github.com/younwookim/stepper/internal/domain/motion"
)

// Version is written into every replay file
const Version = "1.0"

// EventKind identifies what a recorded event fed to the scheduler
type EventKind string

const (
	EventWrite  EventKind = "write" // Scheduler.Write
	EventRotate EventKind = "rot"   // RotationWriter.Write
	EventReset  EventKind = "reset" // Scheduler.Reset
	EventEnd    EventKind = "end"   // Scheduler.End
)

// Event is one call made between two ticks
type Event struct {
	Kind    EventKind             `json:"k"`
	Command *motion.Command       `json:"cmd,omitempty"`
	Delta   *output.RotationDelta `json:"rot,omitempty"`
}

// FrameInput records everything fed to the scheduler for a single frame
type FrameInput struct {
	F      int     `json:"f"`            // Frame number
	DT     float64 `json:"dt"`           // Tick length in milliseconds
	Events []Event `json:"ev,omitempty"` // Calls made before the tick
}

// StartState is the controlled object's pose when recording began
type StartState struct {
	Pos motion.Point `json:"pos"`
	Yaw float64      `json:"yaw"`
}

// ReplayData contains all data needed to replay a session
type ReplayData struct {
	Version        string         `json:"version"`
	StartTime      string         `json:"startTime"`
	Start          StartState     `json:"start"`
	GravityAware   bool           `json:"gravityAware"`
	MovementBounds *motion.Bounds `json:"movementBounds,omitempty"`
	Frames         []FrameInput   `json:"frames"`
}
