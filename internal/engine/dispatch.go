package engine

import (
	"github.com/DeanBeanBEER-WARE/interact/internal/dom"
	"github.com/DeanBeanBEER-WARE/interact/internal/observe"
	"github.com/DeanBeanBEER-WARE/interact/internal/rule"
	"github.com/DeanBeanBEER-WARE/interact/internal/schedule"
)

// binding is one live ExpandedRule wired to its trigger source. All of
// its methods run on the event-loop thread.
//
// State machine: rule.LabelApplied is the Inactive/Active toggle for
// activation gestures; onceFired latches after a once rule's first apply
// pass and turns every later request into a no-op.
type binding struct {
	eng     *Engine
	rule    rule.ExpandedRule
	deb     *schedule.Debounce
	trigger dom.Element
	watcher *observe.Watcher

	onceFired bool
}

// activate handles an activation gesture: Inactive applies and moves to
// Active; Active removes and moves back, unless once blocks re-entry.
func (b *binding) activate() {
	if !b.rule.LabelApplied {
		b.rule.LabelApplied = true
		b.request(rule.ActionAdd)
		return
	}
	if b.rule.Once {
		return
	}
	b.rule.LabelApplied = false
	b.request(rule.ActionRemove)
}

// hoverEnter and hoverLeave carry no persisted state; invertOnTrigger
// swaps the enter/leave action mapping.
func (b *binding) hoverEnter() {
	if b.rule.InvertOnTrigger {
		b.request(rule.ActionRemove)
		return
	}
	b.request(rule.ActionAdd)
}

func (b *binding) hoverLeave() {
	if b.rule.InvertOnTrigger {
		b.request(rule.ActionAdd)
		return
	}
	b.request(rule.ActionRemove)
}

// OnCrossing implements observe.Subscriber.
//
// topAddLabels takes precedence over threshold branching: the trigger's
// position relative to the viewport extent is inspected directly, and a
// pass is requested only when the element has fully exited either edge.
// The executor re-inspects each target at mutation time.
func (b *binding) OnCrossing(c dom.Crossing) {
	r := &b.rule

	if len(r.TopAddLabels) > 0 {
		if c.Bounds.Bottom() <= 0 || c.Bounds.Top >= c.Viewport.Height {
			b.request(rule.ActionAdd)
		}
		return
	}

	entry := r.EntryThreshold / 100
	below := false
	if r.ExitThreshold != nil {
		below = c.Ratio < *r.ExitThreshold/100
	}

	if r.InvertOnTrigger {
		switch {
		case c.Ratio >= entry:
			b.request(rule.ActionRemove)
		case below:
			b.request(rule.ActionAdd)
		}
		return
	}
	switch {
	case c.Ratio >= entry:
		b.request(rule.ActionAdd)
	case below:
		b.request(rule.ActionRemove)
	}
}

// request schedules one debounced, frame-aligned mutation pass. A fresh
// request during the quiet period or while a frame slot is pending
// replaces the pending action; the pass that eventually runs carries the
// last requested action.
func (b *binding) request(action rule.Action) {
	if b.onceFired {
		return
	}
	b.deb.Trigger(func() { b.flush(action) })
}

func (b *binding) flush(action rule.Action) {
	b.execute(action)
	if action == rule.ActionAdd && b.rule.Once {
		b.completeOnce()
	}
}

// completeOnce latches the once state and, for visibility rules, drops
// the binding's pool registration so an empty watcher can retire. A
// notification already in flight may still arrive; request ignores it.
func (b *binding) completeOnce() {
	if b.onceFired {
		return
	}
	b.onceFired = true
	if b.watcher != nil {
		b.watcher.Unregister(b.trigger, b)
		b.watcher = nil
	}
}

// thresholds derives the watcher threshold set from the rule's percent
// thresholds. Direction-aware rules also watch the visibility edge so
// full exits on either side are observed.
func (b *binding) thresholds() []float64 {
	r := &b.rule
	ts := []float64{r.EntryThreshold / 100}
	if r.ExitThreshold != nil {
		ts = append(ts, *r.ExitThreshold/100)
	}
	if len(r.TopAddLabels) > 0 {
		ts = append(ts, 0)
	}
	return ts
}
