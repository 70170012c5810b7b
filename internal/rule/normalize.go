package rule

import (
	"strings"
	"time"
)

// Normalize validates and fills defaults for a raw declaration list.
//
// The only fatal condition is a nil list (the top-level argument was not
// an ordered list); everything else degrades per field to the defaults in
// defs and is reported as a Problem, so sibling rules still process.
func Normalize(decls []Declaration, defs Defaults) ([]Rule, []Problem, error) {
	if decls == nil {
		return nil, nil, ErrNotAList
	}

	rules := make([]Rule, 0, len(decls))
	var problems []Problem
	report := func(p Problem) { problems = append(problems, p) }

	for i, d := range decls {
		r := normalizeOne(i, d, defs, report)
		rules = append(rules, r)
	}
	return rules, problems, nil
}

func normalizeOne(i int, d Declaration, defs Defaults, report func(Problem)) Rule {
	r := Rule{
		TriggerSelector:   strings.TrimSpace(d.TriggerSelector),
		ContainerSelector: strings.TrimSpace(d.ContainerSelector),
		TargetSelector:    strings.TrimSpace(d.TargetSelector),
		Once:              d.Once,
		InvertOnTrigger:   d.InvertOnTrigger,
		PairTriggerAttr:   strings.TrimSpace(d.PairTriggerAttr),
		PairContainerAttr: strings.TrimSpace(d.PairContainerAttr),
		OnMutate:          d.OnMutate,
	}

	// Trigger kind. Unknown kinds fall back to visibility so the rest of
	// the rule still gets exercised.
	kind := TriggerKind(strings.TrimSpace(d.Trigger))
	switch {
	case kind == "":
		r.Kind = TriggerVisibility
	case ValidTriggerKinds[kind]:
		r.Kind = kind
	default:
		report(warning(i, "trigger", ErrInvalidTrigger,
			"unknown trigger kind %q, using %q", d.Trigger, TriggerVisibility))
		r.Kind = TriggerVisibility
	}

	// Label lists. Non-sequence values become empty lists.
	r.AddLabels = normalizeLabels(i, "addLabels", d.AddLabels, report)
	r.RemoveLabels = normalizeLabels(i, "removeLabels", d.RemoveLabels, report)
	r.TopAddLabels = normalizeLabels(i, "topAddLabels", d.TopAddLabels, report)

	// A direction-aware label set excludes the plain remove branch and
	// inversion; the direction logic owns both transitions.
	if len(r.TopAddLabels) > 0 && (len(r.RemoveLabels) > 0 || r.InvertOnTrigger) {
		report(warning(i, "topAddLabels", ErrTopAddConflict,
			"topAddLabels is set; ignoring removeLabels and invertOnTrigger"))
		r.RemoveLabels = nil
		r.InvertOnTrigger = false
	}

	// Durations.
	r.Transition = normalizeDuration(i, "transitionMs", d.TransitionMs, defs.Transition, report)
	if d.RemoveTransitionMs != nil {
		if *d.RemoveTransitionMs < 0 {
			report(warning(i, "removeTransitionMs", ErrNegativeDuration,
				"negative duration %v, ignoring", *d.RemoveTransitionMs))
		} else {
			rt := msToDuration(*d.RemoveTransitionMs)
			r.RemoveTransition = &rt
		}
	}
	r.Debounce = normalizeDuration(i, "debounceMs", d.DebounceMs, defs.Debounce, report)

	// Easing.
	switch {
	case d.Easing == "":
		r.Easing = defs.Easing
	case AllowedEasings[d.Easing]:
		r.Easing = d.Easing
	default:
		report(warning(i, "easing", ErrInvalidEasing,
			"easing %q is not allowed, using %q", d.Easing, defs.Easing))
		r.Easing = defs.Easing
	}

	// Thresholds, percent in [0,100].
	r.EntryThreshold = defs.EntryThreshold
	if d.EntryThreshold != nil {
		if *d.EntryThreshold < 0 || *d.EntryThreshold > 100 {
			report(warning(i, "entryThreshold", ErrThresholdRange,
				"threshold %v outside [0,100], using %v", *d.EntryThreshold, defs.EntryThreshold))
		} else {
			r.EntryThreshold = *d.EntryThreshold
		}
	}
	if d.ExitThreshold != nil {
		if *d.ExitThreshold < 0 || *d.ExitThreshold > 100 {
			report(warning(i, "exitThreshold", ErrThresholdRange,
				"threshold %v outside [0,100], ignoring", *d.ExitThreshold))
		} else {
			v := *d.ExitThreshold
			r.ExitThreshold = &v
		}
	}

	// Replication and sequence selection.
	r.RepeatCount = normalizeMin(i, "repeatCount", d.RepeatCount, defs.RepeatCount, 1, ErrInvalidRepeat, report)
	r.StartIndex = normalizeMin(i, "startIndex", d.StartIndex, defs.StartIndex, 1, ErrInvalidIndex, report)
	r.Stride = normalizeMin(i, "stride", d.Stride, defs.Stride, 1, ErrInvalidIndex, report)
	r.EndIndex = 0
	if d.EndIndex != nil {
		if *d.EndIndex < 0 {
			report(warning(i, "endIndex", ErrInvalidIndex,
				"endIndex %d is negative, using 0 (open-ended)", *d.EndIndex))
		} else {
			r.EndIndex = *d.EndIndex
		}
	}

	return r
}

// normalizeLabels coerces a loosely-typed label list: trims entries,
// strips leading selector markers, drops empties. Anything that is not a
// sequence of strings is reported and treated as empty.
func normalizeLabels(i int, field string, v any, report func(Problem)) []string {
	if v == nil {
		return nil
	}

	var raw []string
	switch list := v.(type) {
	case []string:
		raw = list
	case []any:
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				report(warning(i, field, ErrLabelsNotAList,
					"list entry %v is not a string, dropping", item))
				continue
			}
			raw = append(raw, s)
		}
	default:
		report(warning(i, field, ErrLabelsNotAList,
			"expected a list of labels, got %T; using empty list", v))
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		s = strings.TrimLeft(s, ".#")
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeDuration(i int, field string, v *float64, def time.Duration, report func(Problem)) time.Duration {
	if v == nil {
		return def
	}
	if *v < 0 {
		report(warning(i, field, ErrNegativeDuration,
			"negative duration %v, using default %v", *v, def))
		return def
	}
	return msToDuration(*v)
}

func normalizeMin(i int, field string, v *int, def, min int, code string, report func(Problem)) int {
	if v == nil {
		return def
	}
	if *v < min {
		report(warning(i, field, code,
			"%s %d is below %d, using %d", field, *v, min, def))
		return def
	}
	return *v
}

func msToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
