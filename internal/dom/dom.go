package dom

import "time"

// Rect is an axis-aligned box. Element bounds are viewport-relative
// (see package doc); document-space boxes are a host concern.
type Rect struct {
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

// Bottom returns the y coordinate of the lower edge.
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.Left + r.Width
}

// Element is one node of the host tree.
//
// Label mutations must be idempotent: adding a present label or removing
// an absent one is a no-op. The engine relies on this to tolerate late
// visibility notifications after a rule has been retired.
type Element interface {
	// ID returns a stable identity for the element's lifetime. Used as a
	// map key for per-element rule lists.
	ID() string

	// Attr returns the value of a named attribute and whether it is set.
	Attr(name string) (string, bool)

	// HasLabel reports whether the label is currently attached.
	HasLabel(label string) bool

	// AddLabel attaches a label. No-op if already present.
	AddLabel(label string)

	// RemoveLabel detaches a label. No-op if absent.
	RemoveLabel(label string)

	// SetTransition assigns the transition duration and easing the host
	// should use for subsequent label-driven visual changes.
	SetTransition(d time.Duration, easing string)

	// Bounds returns the element's viewport-relative box.
	Bounds() Rect
}

// Document is the queryable element tree plus viewport geometry.
//
// All query methods return matches in document order. Queries are cheap
// enough to re-run at mutation time; the engine never caches result
// sequences because the tree may change between setup and firing.
type Document interface {
	// Query returns all elements matching the selector, document order.
	Query(selector string) []Element

	// QueryWithin returns matches scoped to the given element's subtree,
	// excluding the scope element itself.
	QueryWithin(scope Element, selector string) []Element

	// QueryAttr returns all elements exposing the named attribute,
	// regardless of value. Used for attribute pairing.
	QueryAttr(attr string) []Element

	// Viewport returns the current viewport box, origin (0, 0).
	Viewport() Rect

	// Ready reports whether the document has signalled readiness.
	Ready() bool

	// OnReady registers fn to run once the document becomes ready. If the
	// document is already ready the host may invoke fn synchronously.
	OnReady(fn func())
}

// Crossing is one visibility threshold-crossing notification.
type Crossing struct {
	Element  Element
	Ratio    float64 // overlap ratio with the viewport, in [0, 1]
	Bounds   Rect    // element bounds at notification time, viewport-relative
	Viewport Rect
}

// Watch is one live visibility watcher observing a set of elements for a
// fixed threshold set.
type Watch interface {
	// Observe starts delivering crossings for el. Hosts deliver an
	// initial notification reflecting the element's current ratio.
	Observe(el Element)

	// Unobserve stops delivering crossings for el. A notification already
	// in flight may still be delivered once; receivers must tolerate it.
	Unobserve(el Element)

	// Close releases the watcher. Implies Unobserve for all elements.
	Close()
}

// VisibilitySource creates visibility watchers. Thresholds are overlap
// ratios in [0, 1]; a notification fires whenever an observed element's
// ratio crosses any of them.
type VisibilitySource interface {
	Watch(thresholds []float64, notify func(Crossing)) Watch
}
