package replay

import (
	"fmt"
	"time"

	"github.com/younwookim/stepper/internal/application/output"
	"github.com/younwookim/stepper/internal/application/system"
	"github.com/younwookim/stepper/internal/domain/motion"
)

// Recorder sits in front of a scheduler and records every call made to it
type Recorder struct {
	s         *system.Scheduler
	data      ReplayData
	pending   []Event
	recording bool
	frame     int
}

// NewRecorder starts recording calls made through it to s. The scheduler's
// target, if any, provides the start pose.
func NewRecorder(s *system.Scheduler) *Recorder {
	var start StartState
	if obj := s.Target(); obj != nil {
		start.Pos = motion.PointFromVec(obj.Position())
		start.Yaw = obj.RotationY()
	}
	return &Recorder{
		s: s,
		data: ReplayData{
			Version:        Version,
			StartTime:      time.Now().Format(time.RFC3339),
			Start:          start,
			GravityAware:   s.GravityAware(),
			MovementBounds: s.MovementBounds(),
			Frames:         make([]FrameInput, 0, 3600), // Pre-allocate for ~1 minute at 60fps
		},
		recording: true,
	}
}

// Scheduler returns the wrapped scheduler
func (r *Recorder) Scheduler() *system.Scheduler {
	return r.s
}

// Write records and forwards cmd
func (r *Recorder) Write(cmd motion.Command) bool {
	r.record(Event{Kind: EventWrite, Command: &cmd})
	return r.s.Write(cmd)
}

// Rotate records and forwards a look delta
func (r *Recorder) Rotate(d output.RotationDelta) bool {
	r.record(Event{Kind: EventRotate, Delta: &d})
	return r.s.RotationWriter().Write(d)
}

// Reset records and forwards a reset
func (r *Recorder) Reset() {
	r.record(Event{Kind: EventReset})
	r.s.Reset()
}

// End records and forwards end of input
func (r *Recorder) End(cmd *motion.Command) {
	ev := Event{Kind: EventEnd}
	if cmd != nil {
		c := *cmd
		ev.Command = &c
	}
	r.record(ev)
	r.s.End(cmd)
}

// Tick advances the scheduler and closes the current frame
func (r *Recorder) Tick(dt float64) {
	r.s.Tick(dt)
	if !r.recording {
		return
	}

	r.data.Frames = append(r.data.Frames, FrameInput{
		F:      r.frame,
		DT:     dt,
		Events: r.pending,
	})
	r.pending = nil
	r.frame++
}

func (r *Recorder) record(ev Event) {
	if r.recording {
		r.pending = append(r.pending, ev)
	}
}

// Save writes the replay data to a file
func (r *Recorder) Save(filename string) error {
	if len(r.data.Frames) == 0 {
		return fmt.Errorf("no frames to save")
	}
	return WriteReplay(filename, r.data)
}

// Stop stops recording. Calls are still forwarded.
func (r *Recorder) Stop() {
	r.recording = false
}

// IsRecording returns whether recording is active
func (r *Recorder) IsRecording() bool {
	return r.recording
}

// FrameCount returns the number of recorded frames
func (r *Recorder) FrameCount() int {
	return len(r.data.Frames)
}

// GetData returns the replay data (for testing)
func (r *Recorder) GetData() ReplayData {
	return r.data
}

// GenerateFilename creates a filename based on current time
func GenerateFilename(compressed bool) string {
	name := fmt.Sprintf("replay_%s.json", time.Now().Format("20060102_150405"))
	if compressed {
		name += compressedExt
	}
	return name
}
