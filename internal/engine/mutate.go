package engine

import (
	"github.com/DeanBeanBEER-WARE/interact/internal/dom"
	"github.com/DeanBeanBEER-WARE/interact/internal/rule"
)

// execute runs one mutation pass for the binding. It re-queries the
// target sequence, applies index selection, assigns transitions, and
// mutates labels per the action branch. Runs frame-aligned, invoked by
// the debounce machine.
func (b *binding) execute(action rule.Action) {
	r := &b.rule
	targets := selectSequence(b.resolveTargets(), r.StartIndex, r.EndIndex, r.Stride)

	transition := r.Transition
	if action == rule.ActionRemove && r.RemoveTransition != nil {
		transition = *r.RemoveTransition
	}

	viewport := b.eng.doc.Viewport()
	mutated := 0
	for _, el := range targets {
		labels, ok := b.mutateOne(el, action, viewport)
		if !ok {
			continue
		}
		el.SetTransition(transition, r.Easing)
		b.notify(el, action, labels)
		mutated++
	}
	if mutated == 0 {
		b.notify(nil, action, nil)
	}
}

// mutateOne applies one action to one element and reports the labels
// involved. ok is false when the direction-aware branch decided the
// element needs no mutation.
func (b *binding) mutateOne(el dom.Element, action rule.Action, viewport dom.Rect) ([]string, bool) {
	r := &b.rule

	if action == rule.ActionRemove {
		if len(r.TopAddLabels) > 0 {
			for _, l := range r.TopAddLabels {
				el.RemoveLabel(l)
			}
			for _, l := range r.AddLabels {
				el.RemoveLabel(l)
			}
			return append(append([]string(nil), r.TopAddLabels...), r.AddLabels...), true
		}
		for _, l := range r.RemoveLabels {
			el.RemoveLabel(l)
		}
		return r.RemoveLabels, true
	}

	if len(r.TopAddLabels) > 0 {
		box := el.Bounds()
		switch {
		case box.Bottom() <= 0:
			// Fully exited above: the element is in the past.
			for _, l := range r.TopAddLabels {
				el.AddLabel(l)
			}
			for _, l := range r.AddLabels {
				el.RemoveLabel(l)
			}
			return r.TopAddLabels, true
		case box.Top >= viewport.Height:
			// Fully below: not yet reached.
			for _, l := range r.AddLabels {
				el.AddLabel(l)
			}
			for _, l := range r.TopAddLabels {
				el.RemoveLabel(l)
			}
			return r.AddLabels, true
		default:
			return nil, false
		}
	}

	for _, l := range r.AddLabels {
		el.AddLabel(l)
	}
	return r.AddLabels, true
}

// resolveTargets queries the live target sequence, scoped to the rule's
// container. Never cached: the tree may have changed since setup, so the
// sequence and its indices are evaluated fresh on every pass. A rule
// with no target selector falls back to its own trigger element.
func (b *binding) resolveTargets() []dom.Element {
	r := &b.rule
	doc := b.eng.doc

	if r.TargetSelector == "" {
		if b.trigger != nil {
			return []dom.Element{b.trigger}
		}
		return nil
	}

	scope := b.rule.Container
	if scope == nil && r.ContainerSelector != "" {
		if matches := doc.Query(r.ContainerSelector); len(matches) > 0 {
			scope = matches[0]
		}
	}
	if scope != nil {
		return doc.QueryWithin(scope, r.TargetSelector)
	}
	return doc.Query(r.TargetSelector)
}

// selectSequence picks every stride-th element from the 1-based start
// index through end (0 = open-ended) of the freshly-queried sequence.
func selectSequence(els []dom.Element, start, end, stride int) []dom.Element {
	if start < 1 {
		start = 1
	}
	if stride < 1 {
		stride = 1
	}
	last := len(els)
	if end > 0 && end < last {
		last = end
	}
	var out []dom.Element
	for i := start; i <= last; i += stride {
		out = append(out, els[i-1])
	}
	return out
}

// notify fires the rule-level callback, the engine-level callback, and
// every observer, synchronously within the pass. el is nil when the pass
// resolved no targets.
func (b *binding) notify(el dom.Element, action rule.Action, labels []string) {
	if b.rule.OnMutate != nil {
		b.rule.OnMutate(el, action)
	}
	if b.eng.onMutate != nil {
		b.eng.onMutate(el, action)
	}
	if len(b.eng.observers) == 0 {
		return
	}
	m := Mutation{
		Seq:     b.eng.clock.Next(),
		Session: b.eng.session,
		RuleID:  b.rule.ID,
		Element: el,
		Action:  action,
		Labels:  labels,
	}
	for _, obs := range b.eng.observers {
		obs(m)
	}
}
