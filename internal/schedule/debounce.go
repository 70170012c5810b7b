package schedule

import "time"

// State is the debounce machine's position.
type State int

const (
	// StateIdle: nothing pending.
	StateIdle State = iota
	// StateScheduled: a quiet-period timer or frame callback is pending.
	StateScheduled
	// StateFlushed: the last trigger's work has run; the next trigger
	// starts a fresh cycle.
	StateFlushed
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateFlushed:
		return "flushed"
	default:
		return "unknown"
	}
}

// Debounce coalesces repeated trigger firings into one frame-aligned
// execution per quiet cycle. One machine per binding; not shared.
type Debounce struct {
	sched *Scheduler
	key   uint64
	quiet time.Duration
	state State
	timer *Timer
}

// NewDebounce creates a machine with the given quiet period (trailing
// edge; zero skips the timer and goes straight to a frame slot).
func NewDebounce(s *Scheduler, quiet time.Duration) *Debounce {
	return &Debounce{sched: s, key: s.NextKey(), quiet: quiet}
}

// Trigger requests fn to run on a rendering frame after the quiet period.
//
// Rules:
//   - during the quiet period, a fresh trigger restarts it and replaces fn
//   - while a frame callback is pending, a fresh trigger replaces the
//     callback but keeps the slot, so the next frame still fires
func (d *Debounce) Trigger(fn func()) {
	d.state = StateScheduled

	if d.sched.FramePending(d.key) {
		d.sched.RequestFrame(d.key, d.flushFunc(fn))
		return
	}

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.quiet <= 0 {
		d.sched.RequestFrame(d.key, d.flushFunc(fn))
		return
	}
	d.timer = d.sched.After(d.quiet, func() {
		d.timer = nil
		d.sched.RequestFrame(d.key, d.flushFunc(fn))
	})
}

// Cancel drops any pending timer or frame callback and returns to Idle.
func (d *Debounce) Cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.sched.CancelFrame(d.key)
	d.state = StateIdle
}

// State returns the machine's current position.
func (d *Debounce) State() State {
	return d.state
}

func (d *Debounce) flushFunc(fn func()) func() {
	return func() {
		d.state = StateFlushed
		fn()
	}
}
