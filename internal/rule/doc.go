// Package rule holds the declarative model of the interaction engine:
// raw declarations as authored, the normalizer that fills defaults and
// degrades invalid fields to safe values, and the expander that turns
// attribute-paired and repeated declarations into concrete bindings.
//
// ERROR MODEL:
//
// Only one condition is fatal: the top-level declaration list being
// absent (nil). Every per-field problem - unknown easing, out-of-range
// threshold, malformed label list, invalid repeat count - degrades to a
// documented default and is reported as a coded Problem so sibling rules
// still process. Problems carry the declaration index, the field, and a
// stable code; callers decide whether to log, print, or fail on them.
package rule
