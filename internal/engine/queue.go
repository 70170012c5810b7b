package engine

import (
	"sync"

	"github.com/DeanBeanBEER-WARE/interact/internal/dom"
)

// EventType distinguishes externally submitted trigger events.
type EventType int

const (
	// EventActivate is an activation gesture on an element.
	EventActivate EventType = iota + 1
	// EventHoverEnter is a pointer entering an element.
	EventHoverEnter
	// EventHoverLeave is a pointer leaving an element.
	EventHoverLeave
)

// Event is one externally observed trigger occurrence.
type Event struct {
	Type    EventType
	Element dom.Element
}

// eventQueue is a thread-safe FIFO for trigger events.
//
// Unbounded: host adapters (input handlers, scroll listeners) enqueue
// freely without blocking the UI side. The signal channel is buffered to
// one so repeated enqueues coalesce into a single wakeup of the Run loop.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends an event. Safe from any goroutine. Returns false once
// the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue pops the front event without blocking.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}
	e := q.events[0]
	// Clear the slot so the element reference does not outlive the event.
	q.events[0] = Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Wait returns the wakeup channel for context-aware selects in Run.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending events.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close stops further enqueues and wakes any waiter.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
