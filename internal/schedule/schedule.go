package schedule

import (
	"sort"
	"time"
)

// Timer is one pending quiet-period deadline.
type Timer struct {
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

// Stop cancels the timer if it has not fired yet.
func (t *Timer) Stop() {
	t.stopped = true
}

// Scheduler owns frame slots and quiet-period timers. All methods must be
// called from the single driving goroutine.
type Scheduler struct {
	now     time.Time
	timers  []*Timer
	frames  map[uint64]func()
	order   []uint64
	nextKey uint64
}

// NewScheduler creates a scheduler with logical time starting at start.
func NewScheduler(start time.Time) *Scheduler {
	return &Scheduler{now: start, frames: make(map[uint64]func())}
}

// Now returns the current logical time.
func (s *Scheduler) Now() time.Time {
	return s.now
}

// NextKey allocates a fresh frame-slot key. Each debounce machine owns
// one key for its lifetime.
func (s *Scheduler) NextKey() uint64 {
	s.nextKey++
	return s.nextKey
}

// After registers fn to run once d of logical time has elapsed. The
// returned timer can be stopped before it fires.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	t := &Timer{deadline: s.now.Add(d), fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves logical time forward and fires due timers in deadline
// order. Timers scheduled by a firing callback are honored within the
// same advance if they fall due.
func (s *Scheduler) Advance(d time.Duration) {
	s.now = s.now.Add(d)
	for {
		due := s.takeDue()
		if len(due) == 0 {
			return
		}
		for _, t := range due {
			if t.stopped {
				continue
			}
			t.fired = true
			t.fn()
		}
	}
}

func (s *Scheduler) takeDue() []*Timer {
	var due []*Timer
	rest := s.timers[:0]
	for _, t := range s.timers {
		switch {
		case t.stopped || t.fired:
			// drop
		case !t.deadline.After(s.now):
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	s.timers = rest
	sort.SliceStable(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	return due
}

// RequestFrame schedules fn for the next rendering pass. A second request
// with the same key before the pass replaces the callback but keeps the
// slot's position.
func (s *Scheduler) RequestFrame(key uint64, fn func()) {
	if _, pending := s.frames[key]; !pending {
		s.order = append(s.order, key)
	}
	s.frames[key] = fn
}

// CancelFrame drops a pending frame callback.
func (s *Scheduler) CancelFrame(key uint64) {
	if _, pending := s.frames[key]; !pending {
		return
	}
	delete(s.frames, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// FramePending reports whether the key has a callback waiting.
func (s *Scheduler) FramePending(key uint64) bool {
	_, ok := s.frames[key]
	return ok
}

// Frame runs one rendering pass: every pending callback fires once, in
// request order. Callbacks requested during the pass land on the next
// one. Returns the number of callbacks run.
func (s *Scheduler) Frame() int {
	if len(s.order) == 0 {
		return 0
	}
	keys := s.order
	frames := s.frames
	s.order = nil
	s.frames = make(map[uint64]func())

	n := 0
	for _, k := range keys {
		if fn, ok := frames[k]; ok {
			fn()
			n++
		}
	}
	return n
}

// PendingFrames returns the number of waiting frame callbacks.
func (s *Scheduler) PendingFrames() int {
	return len(s.order)
}

// PendingTimers returns the number of live timers.
func (s *Scheduler) PendingTimers() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
