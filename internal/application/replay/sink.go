package replay

import (
	"github.com/younwookim/stepper/internal/application/output"
	"github.com/younwookim/stepper/internal/application/system"
	"github.com/younwookim/stepper/internal/domain/motion"
)

// Sink accepts the calls an Event describes. Recorder is a Sink, and
// Direct adapts a bare scheduler.
type Sink interface {
	Write(cmd motion.Command) bool
	Rotate(d output.RotationDelta) bool
	Reset()
	End(cmd *motion.Command)
}

// Apply feeds ev to sink. Unknown kinds and events missing their payload
// are ignored and reported as not applied.
func Apply(sink Sink, ev Event) bool {
	switch ev.Kind {
	case EventWrite:
		if ev.Command == nil {
			return false
		}
		sink.Write(*ev.Command)
	case EventRotate:
		if ev.Delta == nil {
			return false
		}
		sink.Rotate(*ev.Delta)
	case EventReset:
		sink.Reset()
	case EventEnd:
		sink.End(ev.Command)
	default:
		return false
	}
	return true
}

// Direct returns a Sink that calls s without recording
func Direct(s *system.Scheduler) Sink {
	return directSink{s: s}
}

type directSink struct {
	s *system.Scheduler
}

func (d directSink) Write(cmd motion.Command) bool      { return d.s.Write(cmd) }
func (d directSink) Rotate(r output.RotationDelta) bool { return d.s.RotationWriter().Write(r) }
func (d directSink) Reset()                             { d.s.Reset() }
func (d directSink) End(cmd *motion.Command)            { d.s.End(cmd) }
