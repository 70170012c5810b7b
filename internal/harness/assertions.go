package harness

import (
	"fmt"
	"slices"
)

// Check runs every assertion against the result, returning one error per
// failed assertion.
func Check(s *Scenario, result *Result) []error {
	var errs []error
	for i, a := range s.Assertions {
		if err := checkOne(&a, result); err != nil {
			errs = append(errs, fmt.Errorf("assertions[%d] (%s): %w", i, a.Type, err))
		}
	}
	return errs
}

func checkOne(a *Assertion, result *Result) error {
	switch a.Type {
	case AssertLabels:
		return checkLabels(a, result)
	case AssertTraceCount:
		n := countMatches(a, result)
		if n != a.Count {
			return fmt.Errorf("expected %d matching trace records, found %d", a.Count, n)
		}
		return nil
	case AssertTraceContains:
		if countMatches(a, result) == 0 {
			return fmt.Errorf("no trace record matches rule=%q element=%q action=%q", a.Rule, a.Element, a.Action)
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func checkLabels(a *Assertion, result *Result) error {
	matches := result.Doc.Query(a.Element)
	if len(matches) == 0 {
		return fmt.Errorf("element %q not found", a.Element)
	}
	el := matches[0]
	for _, l := range a.Has {
		if !el.HasLabel(l) {
			return fmt.Errorf("element %q is missing label %q", a.Element, l)
		}
	}
	for _, l := range a.Missing {
		if el.HasLabel(l) {
			return fmt.Errorf("element %q unexpectedly carries label %q", a.Element, l)
		}
	}
	return nil
}

func countMatches(a *Assertion, result *Result) int {
	n := 0
	for _, ev := range result.Trace {
		if a.Rule != "" && ev.Rule != a.Rule {
			continue
		}
		if a.Element != "" && ev.Element != a.Element {
			continue
		}
		if a.Action != "" && ev.Action != a.Action {
			continue
		}
		if len(a.Labels) > 0 && !slices.Equal(a.Labels, ev.Labels) {
			continue
		}
		n++
	}
	return n
}
