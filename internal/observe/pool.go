package observe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DeanBeanBEER-WARE/interact/internal/dom"
)

// Canonical sorts and deduplicates a threshold set. Ratios outside [0, 1]
// are clamped; the result is never empty (a bare watcher still needs one
// crossing point).
func Canonical(thresholds []float64) []float64 {
	if len(thresholds) == 0 {
		return []float64{0}
	}
	out := make([]float64, 0, len(thresholds))
	for _, t := range thresholds {
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		out = append(out, t)
	}
	sort.Float64s(out)
	dedup := out[:1]
	for _, t := range out[1:] {
		if t != dedup[len(dedup)-1] {
			dedup = append(dedup, t)
		}
	}
	return dedup
}

// Signature renders a canonical threshold set as the pool key.
func Signature(thresholds []float64) string {
	canon := Canonical(thresholds)
	parts := make([]string, len(canon))
	for i, t := range canon {
		parts[i] = fmt.Sprintf("%g", t)
	}
	return strings.Join(parts, "|")
}

// Subscriber receives crossing notifications for an element it
// registered interest in.
type Subscriber interface {
	OnCrossing(c dom.Crossing)
}

// Pool holds at most one live watcher per threshold signature.
type Pool struct {
	src      dom.VisibilitySource
	watchers map[string]*Watcher
}

// NewPool creates a pool backed by the host's visibility source.
func NewPool(src dom.VisibilitySource) *Pool {
	return &Pool{src: src, watchers: make(map[string]*Watcher)}
}

// GetOrCreate returns the shared watcher for the canonical form of the
// given thresholds, creating it on first use.
func (p *Pool) GetOrCreate(thresholds []float64) *Watcher {
	key := Signature(thresholds)
	if w, ok := p.watchers[key]; ok {
		return w
	}
	w := &Watcher{
		pool:       p,
		key:        key,
		thresholds: Canonical(thresholds),
		elements:   make(map[string]*entry),
	}
	w.watch = p.src.Watch(w.thresholds, w.dispatch)
	p.watchers[key] = w
	return w
}

// Size returns the number of live watchers. Test hook.
func (p *Pool) Size() int {
	return len(p.watchers)
}

// retire removes an empty watcher and releases its host resources.
func (p *Pool) retire(w *Watcher) {
	delete(p.watchers, w.key)
	w.watch.Close()
}

// Watcher is one shared visibility watcher plus the per-element side
// lists of interested subscribers.
type Watcher struct {
	pool       *Pool
	key        string
	thresholds []float64
	watch      dom.Watch
	elements   map[string]*entry
}

type entry struct {
	el          dom.Element
	subscribers []Subscriber
}

// Key returns the watcher's canonical threshold signature.
func (w *Watcher) Key() string {
	return w.key
}

// Register adds a subscriber to the element's side list, starting host
// observation on the element's first registration.
func (w *Watcher) Register(el dom.Element, s Subscriber) {
	e, ok := w.elements[el.ID()]
	if !ok {
		e = &entry{el: el}
		w.elements[el.ID()] = e
		// First interest in this element: the initial host notification
		// fires into the side list just populated below, so append
		// before observing.
		e.subscribers = append(e.subscribers, s)
		w.watch.Observe(el)
		return
	}
	for _, existing := range e.subscribers {
		if existing == s {
			return
		}
	}
	e.subscribers = append(e.subscribers, s)
}

// Unregister removes a subscriber; the last removal for an element stops
// host observation, and the last element retires the watcher, freeing
// its slot in the pool.
func (w *Watcher) Unregister(el dom.Element, s Subscriber) {
	e, ok := w.elements[el.ID()]
	if !ok {
		return
	}
	for i, existing := range e.subscribers {
		if existing == s {
			e.subscribers = append(e.subscribers[:i], e.subscribers[i+1:]...)
			break
		}
	}
	if len(e.subscribers) > 0 {
		return
	}
	delete(w.elements, el.ID())
	w.watch.Unobserve(el)
	if len(w.elements) == 0 {
		w.pool.retire(w)
	}
}

// Subscribers returns the side-list length for an element. Test hook.
func (w *Watcher) Subscribers(el dom.Element) int {
	e, ok := w.elements[el.ID()]
	if !ok {
		return 0
	}
	return len(e.subscribers)
}

// dispatch fans one crossing out to the element's side list. The list is
// copied first: a subscriber may unregister itself (once semantics)
// while being iterated.
func (w *Watcher) dispatch(c dom.Crossing) {
	e, ok := w.elements[c.Element.ID()]
	if !ok {
		return
	}
	subs := make([]Subscriber, len(e.subscribers))
	copy(subs, e.subscribers)
	for _, s := range subs {
		s.OnCrossing(c)
	}
}
