package system

import (
	"log/slog"
	"math"

	"github.com/younwookim/stepper/internal/application/output"
	"github.com/younwookim/stepper/internal/application/state"
	"github.com/younwookim/stepper/internal/domain/motion"
)

// DefaultMaxActions is the queue bound used when none is configured.
const DefaultMaxActions = 1024

// dropWarnEvery rate-limits the queue overflow warning.
const dropWarnEvery = 100

// Options configures a Scheduler.
type Options struct {
	MaxActions     int
	MovementBounds *motion.Bounds
	// Gravity selects the gravity-aware variant: actions wait for ground
	// contact, may not rotate while moving, and suspend this force while
	// they run.
	Gravity        *motion.Force
	OutputCapacity int
	Logger         *slog.Logger
}

// Scheduler runs queued commands one at a time against a bound object,
// advancing exactly one frame per Tick. It is not safe for concurrent use;
// the host calls every method from its frame loop.
type Scheduler struct {
	target motion.Object

	queue      []motion.Command
	maxActions int
	dropped    uint64

	current *motion.Action
	accum   *output.Accumulator
	state   state.ActionState

	gravityAware bool
	normalizer   *Normalizer
	coordinator  PhysicsCoordinator
	bounds       *BoundsEnforcer
	out          *output.Channel

	inputEnded bool
	logger     *slog.Logger
}

// NewScheduler creates an idle scheduler with no target.
func NewScheduler(opts Options) *Scheduler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxActions := opts.MaxActions
	if maxActions <= 0 {
		maxActions = DefaultMaxActions
	}

	var coordinator PhysicsCoordinator = nopCoordinator{}
	gravityAware := opts.Gravity != nil
	if gravityAware {
		coordinator = NewGravityCoordinator(opts.Gravity, logger)
	}

	return &Scheduler{
		maxActions:   maxActions,
		state:        state.StateIdle,
		gravityAware: gravityAware,
		normalizer:   NewNormalizer(gravityAware, logger),
		coordinator:  coordinator,
		bounds:       NewBoundsEnforcer(opts.MovementBounds),
		out:          output.NewChannel(opts.OutputCapacity),
		logger:       logger,
	}
}

// Target returns the controlled object, or nil.
func (s *Scheduler) Target() motion.Object {
	return s.target
}

// SetTarget binds obj. A running action on the previous target is aborted
// where it stands and its physics restored.
func (s *Scheduler) SetTarget(obj motion.Object) {
	if s.current != nil && s.target != nil {
		s.abort()
	}
	s.target = obj
}

// Write queues cmd. It returns false if the queue is over capacity or
// input has ended; the newest command is the one dropped.
func (s *Scheduler) Write(cmd motion.Command) bool {
	if s.inputEnded {
		s.logger.Warn("write after end; command ignored")
		return false
	}
	if len(s.queue) > s.maxActions {
		if s.dropped%dropWarnEvery == 0 {
			s.logger.Warn("action queue full; dropping command",
				"max_actions", s.maxActions, "dropped", s.dropped+1)
		}
		s.dropped++
		return false
	}
	s.queue = append(s.queue, cmd)
	return true
}

// End optionally writes a final command and closes input. Once the queue
// has drained and no action is running, the output channel is closed.
func (s *Scheduler) End(cmd *motion.Command) {
	if cmd != nil {
		s.Write(*cmd)
	}
	s.inputEnded = true
	s.maybeCloseOutput()
}

// Tick advances the controller by dt milliseconds.
func (s *Scheduler) Tick(dt float64) {
	if s.target == nil {
		return
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = 0
	}

	if s.current == nil && !s.activate() {
		s.maybeCloseOutput()
		return
	}

	a := s.current
	f := Evaluate(a, a.Elapsed, dt)
	a.Elapsed += dt
	if f.Done {
		s.finish()
		s.maybeCloseOutput()
		return
	}
	s.apply(f)
}

// activate pulls commands off the queue until one normalizes.
func (s *Scheduler) activate() bool {
	for len(s.queue) > 0 {
		if s.gravityAware && !s.target.Grounded() {
			s.state = state.StateIdle
			return false
		}

		cmd := s.queue[0]
		s.queue[0] = motion.Command{}
		s.queue = s.queue[1:]

		s.state = state.StateActivating
		a, ok := s.normalizer.Normalize(cmd, s.target)
		if !ok {
			continue
		}

		s.current = a
		s.accum = output.NewAccumulator()
		s.coordinator.Begin(s.target)
		s.state = state.StateRunning
		return true
	}
	s.state = state.StateIdle
	return false
}

func (s *Scheduler) apply(f Frame) {
	if f.RelX != 0 || f.RelZ != 0 {
		s.target.TranslateRelative(f.RelX, f.RelZ)
	}

	pos := s.target.Position()
	pos[0] += f.AbsX
	pos[1] = f.Y
	pos[2] += f.AbsZ
	s.target.SetPosition(pos)

	if f.Rotate != 0 {
		s.target.SetRotationY(s.target.RotationY() + f.Rotate)
	}
	s.bounds.Enforce(s.target)
}

// finish snaps to the exact end state and hands the object back.
func (s *Scheduler) finish() {
	a := s.current
	s.target.SetPosition(a.EndPos)
	s.target.SetRotationY(a.EndRotate)
	s.bounds.Enforce(s.target)
	s.coordinator.End(s.target)
	s.clearCurrent()
}

// abort tears the current action down without snapping.
func (s *Scheduler) abort() {
	s.coordinator.End(s.target)
	s.clearCurrent()
}

func (s *Scheduler) clearCurrent() {
	s.current = nil
	s.accum = nil
	s.state = state.StateIdle
}

func (s *Scheduler) maybeCloseOutput() {
	if s.inputEnded && s.current == nil && len(s.queue) == 0 {
		s.out.Close()
	}
}

// Reset drops every queued command and aborts the running action, leaving
// the object wherever it currently is.
func (s *Scheduler) Reset() {
	s.queue = nil
	if s.current != nil {
		s.abort()
	}
}

// SetMovementBounds replaces the active bounds, effective from the next
// positional write.
func (s *Scheduler) SetMovementBounds(b *motion.Bounds) {
	s.bounds.SetBounds(b)
}

// MovementBounds returns the active bounds.
func (s *Scheduler) MovementBounds() *motion.Bounds {
	return s.bounds.Bounds()
}

// EmitUpdate pushes one status snapshot to the output channel.
func (s *Scheduler) EmitUpdate() bool {
	var snap output.Snapshot
	if a := s.current; a != nil {
		snap.X, snap.Y, snap.Z = s.accum.X, s.accum.Y, s.accum.Z
		snap.Forward = a.Forward > 0
		snap.Backward = a.Forward < 0
		snap.Left = a.Left > 0
		snap.Right = a.Left < 0
		snap.Fire = a.Command.Fire
		snap.FireAlt = a.Command.FireAlt
		snap.Jump = a.Command.Jump
	}
	return s.out.Push(&snap)
}

// Output returns the status channel.
func (s *Scheduler) Output() *output.Channel {
	return s.out
}

// RotationWriter returns a sink for look deltas.
func (s *Scheduler) RotationWriter() *RotationWriter {
	return &RotationWriter{s: s}
}

// Current returns the running action, or nil.
func (s *Scheduler) Current() *motion.Action {
	return s.current
}

// State returns the lifecycle state.
func (s *Scheduler) State() state.ActionState {
	return s.state
}

// QueueLen returns the number of commands waiting.
func (s *Scheduler) QueueLen() int {
	return len(s.queue)
}

// Dropped returns how many commands were refused for lack of queue space.
func (s *Scheduler) Dropped() uint64 {
	return s.dropped
}

// GravityAware reports whether physics hand-off is enabled.
func (s *Scheduler) GravityAware() bool {
	return s.gravityAware
}

// RotationWriter feeds look deltas into the running action's accumulator.
type RotationWriter struct {
	s *Scheduler
}

// Write accumulates d. It returns false when no action is running.
func (w *RotationWriter) Write(d output.RotationDelta) bool {
	if w.s.accum == nil {
		return false
	}
	w.s.accum.Add(d)
	return true
}
