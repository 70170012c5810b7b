package rule

import (
	"fmt"
	"strings"

	"github.com/DeanBeanBEER-WARE/interact/internal/dom"
)

// Expand turns each Rule into 1..N concrete bindings.
//
// A rule declaring both pairing attributes is expanded by attribute
// pairing: elements exposing each attribute are grouped by the
// attribute's string value, and every value present on both sides yields
// the full cross-product of (container, trigger) pairs. Paired bindings
// carry pinned elements, repeatCount 1, and cleared pairing attributes so
// they can never re-expand.
//
// Every other rule is replicated repeatCount times; replica i >= 2
// appends "-i" to each selector unless it already ends in exactly that
// suffix. Each replica is an independent value copy.
func Expand(rules []Rule, doc dom.Document) ([]ExpandedRule, []Problem) {
	var out []ExpandedRule
	var problems []Problem

	for i, r := range rules {
		if r.PairTriggerAttr != "" && r.PairContainerAttr != "" {
			bindings, probs := expandPaired(i, r, doc)
			out = append(out, bindings...)
			problems = append(problems, probs...)
			continue
		}
		out = append(out, replicate(i, r)...)
	}
	return out, problems
}

// expandPaired forms the cross-product of containers and triggers that
// share a pairing value. Values present on only one side produce a
// diagnostic and no binding.
func expandPaired(idx int, r Rule, doc dom.Document) ([]ExpandedRule, []Problem) {
	containers, containerOrder := groupByAttr(doc.QueryAttr(r.PairContainerAttr), r.PairContainerAttr)
	triggers, triggerOrder := groupByAttr(doc.QueryAttr(r.PairTriggerAttr), r.PairTriggerAttr)

	var out []ExpandedRule
	var problems []Problem
	k := 0

	for _, val := range containerOrder {
		ts, ok := triggers[val]
		if !ok {
			problems = append(problems, setupError(idx, r.PairContainerAttr, ErrUnpairedValue,
				"pairing value %q has containers but no triggers", val))
			continue
		}
		for _, c := range containers[val] {
			for _, t := range ts {
				paired := r
				paired.RepeatCount = 1
				paired.PairTriggerAttr = ""
				paired.PairContainerAttr = ""
				out = append(out, ExpandedRule{
					Rule:      paired,
					ID:        bindingID(idx, k),
					Trigger:   t,
					Container: c,
				})
				k++
			}
		}
	}

	for _, val := range triggerOrder {
		if _, ok := containers[val]; !ok {
			problems = append(problems, setupError(idx, r.PairTriggerAttr, ErrUnpairedValue,
				"pairing value %q has triggers but no containers", val))
		}
	}
	return out, problems
}

// replicate produces repeatCount independent copies, suffixing selectors
// for replicas 2..N.
func replicate(idx int, r Rule) []ExpandedRule {
	out := make([]ExpandedRule, 0, r.RepeatCount)
	for rep := 1; rep <= r.RepeatCount; rep++ {
		replica := r
		if rep >= 2 {
			replica.TriggerSelector = suffixSelector(replica.TriggerSelector, rep)
			replica.ContainerSelector = suffixSelector(replica.ContainerSelector, rep)
			replica.TargetSelector = suffixSelector(replica.TargetSelector, rep)
		}
		out = append(out, ExpandedRule{Rule: replica, ID: bindingID(idx, rep-1)})
	}
	return out
}

// suffixSelector appends "-i" unless the selector is empty or already
// ends in exactly that suffix. A different numeric suffix still gets the
// new one appended.
func suffixSelector(s string, i int) string {
	if s == "" {
		return s
	}
	suffix := fmt.Sprintf("-%d", i)
	if strings.HasSuffix(s, suffix) {
		return s
	}
	return s + suffix
}

// groupByAttr groups elements by an attribute's string value, keeping
// first-seen document order of the values.
func groupByAttr(els []dom.Element, attr string) (map[string][]dom.Element, []string) {
	groups := make(map[string][]dom.Element)
	var order []string
	for _, el := range els {
		v, ok := el.Attr(attr)
		if !ok {
			continue
		}
		if _, seen := groups[v]; !seen {
			order = append(order, v)
		}
		groups[v] = append(groups[v], el)
	}
	return groups, order
}

func bindingID(rule, binding int) string {
	return fmt.Sprintf("%d/%d", rule, binding)
}
