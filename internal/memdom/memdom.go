package memdom

import (
	"time"

	"github.com/DeanBeanBEER-WARE/interact/internal/dom"
)

// Node is one element of the in-memory tree. It implements dom.Element.
//
// Boxes are stored in document space; Bounds converts to viewport space
// using the owning document's scroll position. Labels keep insertion
// order so traces and assertions are deterministic.
type Node struct {
	id       string
	tag      string
	attrs    map[string]string
	labels   []string
	box      dom.Rect // document space
	doc      *Doc
	parent   *Node
	children []*Node

	transition time.Duration
	easing     string
}

// NewNode creates a detached node. Attach it with Doc.Append.
func NewNode(id, tag string) *Node {
	return &Node{id: id, tag: tag, attrs: map[string]string{}}
}

// ID implements dom.Element.
func (n *Node) ID() string { return n.id }

// Tag returns the node's tag name.
func (n *Node) Tag() string { return n.tag }

// SetAttr sets an attribute value.
func (n *Node) SetAttr(name, value string) { n.attrs[name] = value }

// Attr implements dom.Element.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// HasLabel implements dom.Element.
func (n *Node) HasLabel(label string) bool {
	for _, l := range n.labels {
		if l == label {
			return true
		}
	}
	return false
}

// AddLabel implements dom.Element. Idempotent.
func (n *Node) AddLabel(label string) {
	if n.HasLabel(label) {
		return
	}
	n.labels = append(n.labels, label)
}

// RemoveLabel implements dom.Element. Idempotent.
func (n *Node) RemoveLabel(label string) {
	for i, l := range n.labels {
		if l == label {
			n.labels = append(n.labels[:i], n.labels[i+1:]...)
			return
		}
	}
}

// Labels returns the current label set in insertion order.
func (n *Node) Labels() []string {
	out := make([]string, len(n.labels))
	copy(out, n.labels)
	return out
}

// SetTransition implements dom.Element.
func (n *Node) SetTransition(d time.Duration, easing string) {
	n.transition = d
	n.easing = easing
}

// Transition returns the last assigned transition duration and easing.
func (n *Node) Transition() (time.Duration, string) {
	return n.transition, n.easing
}

// SetBox positions the node in document space.
func (n *Node) SetBox(top, left, width, height float64) {
	n.box = dom.Rect{Top: top, Left: left, Width: width, Height: height}
}

// Bounds implements dom.Element: the document-space box shifted by the
// current scroll position.
func (n *Node) Bounds() dom.Rect {
	if n.doc == nil {
		return n.box
	}
	b := n.box
	b.Top -= n.doc.scrollY
	return b
}

// Doc is the in-memory document. It implements dom.Document and
// dom.VisibilitySource.
type Doc struct {
	roots    []*Node
	viewport dom.Rect
	scrollY  float64
	ready    bool
	onReady  []func()
	watchers []*watch
}

// NewDoc creates a ready document with the given viewport size.
func NewDoc(width, height float64) *Doc {
	return &Doc{viewport: dom.Rect{Width: width, Height: height}, ready: true}
}

// NewPendingDoc creates a document that has not signalled readiness yet.
// Call SetReady to fire deferred setup callbacks.
func NewPendingDoc(width, height float64) *Doc {
	d := NewDoc(width, height)
	d.ready = false
	return d
}

// Append attaches n (and its subtree) under parent; a nil parent makes n
// a root. Returns n for convenient tree building.
func (d *Doc) Append(parent, n *Node) *Node {
	n.parent = parent
	adopt(d, n)
	if parent == nil {
		d.roots = append(d.roots, n)
	} else {
		parent.children = append(parent.children, n)
	}
	return n
}

func adopt(d *Doc, n *Node) {
	n.doc = d
	for _, c := range n.children {
		adopt(d, c)
	}
}

// Detach removes n from its parent (or the root list). Pending watcher
// observations are kept; stale notifications are harmless because label
// mutations are idempotent.
func (d *Doc) Detach(n *Node) {
	list := &d.roots
	if n.parent != nil {
		list = &n.parent.children
	}
	for i, c := range *list {
		if c == n {
			*list = append((*list)[:i], (*list)[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// walk visits the tree in document order.
func (d *Doc) walk(visit func(*Node)) {
	var rec func(*Node)
	rec = func(n *Node) {
		visit(n)
		for _, c := range n.children {
			rec(c)
		}
	}
	for _, r := range d.roots {
		rec(r)
	}
}

// ByID returns the first node with the given id, or nil.
func (d *Doc) ByID(id string) *Node {
	var found *Node
	d.walk(func(n *Node) {
		if found == nil && n.id == id {
			found = n
		}
	})
	return found
}

// Query implements dom.Document.
func (d *Doc) Query(sel string) []dom.Element {
	parsed := parseSelector(sel)
	var out []dom.Element
	d.walk(func(n *Node) {
		if parsed.matches(n) {
			out = append(out, n)
		}
	})
	return out
}

// QueryWithin implements dom.Document. The scope element itself is
// excluded from the results.
func (d *Doc) QueryWithin(scope dom.Element, sel string) []dom.Element {
	root, ok := scope.(*Node)
	if !ok || root == nil {
		return nil
	}
	parsed := parseSelector(sel)
	var out []dom.Element
	var rec func(*Node)
	rec = func(n *Node) {
		if parsed.matches(n) {
			out = append(out, n)
		}
		for _, c := range n.children {
			rec(c)
		}
	}
	for _, c := range root.children {
		rec(c)
	}
	return out
}

// QueryAttr implements dom.Document.
func (d *Doc) QueryAttr(attr string) []dom.Element {
	var out []dom.Element
	d.walk(func(n *Node) {
		if _, ok := n.attrs[attr]; ok {
			out = append(out, n)
		}
	})
	return out
}

// Viewport implements dom.Document.
func (d *Doc) Viewport() dom.Rect { return d.viewport }

// Ready implements dom.Document.
func (d *Doc) Ready() bool { return d.ready }

// OnReady implements dom.Document. Callbacks run synchronously if the
// document is already ready.
func (d *Doc) OnReady(fn func()) {
	if d.ready {
		fn()
		return
	}
	d.onReady = append(d.onReady, fn)
}

// SetReady marks the document ready and fires deferred callbacks in
// registration order.
func (d *Doc) SetReady() {
	if d.ready {
		return
	}
	d.ready = true
	pending := d.onReady
	d.onReady = nil
	for _, fn := range pending {
		fn()
	}
}

// ScrollY returns the current scroll offset.
func (d *Doc) ScrollY() float64 { return d.scrollY }

// SetScroll moves the viewport and notifies every watcher whose observed
// elements crossed a threshold.
func (d *Doc) SetScroll(y float64) {
	d.scrollY = y
	for _, w := range d.watchers {
		w.scrolled()
	}
}

// ratioOf computes the vertical overlap ratio of a node with the viewport.
func (d *Doc) ratioOf(n *Node) float64 {
	b := n.Bounds()
	if b.Height <= 0 {
		return 0
	}
	top := b.Top
	bottom := b.Bottom()
	visTop := top
	if visTop < 0 {
		visTop = 0
	}
	visBottom := bottom
	if visBottom > d.viewport.Height {
		visBottom = d.viewport.Height
	}
	vis := visBottom - visTop
	if vis < 0 {
		vis = 0
	}
	return vis / b.Height
}

// Watch implements dom.VisibilitySource.
func (d *Doc) Watch(thresholds []float64, notify func(dom.Crossing)) dom.Watch {
	w := &watch{
		doc:        d,
		thresholds: append([]float64(nil), thresholds...),
		notify:     notify,
		observed:   map[string]*observed{},
	}
	d.watchers = append(d.watchers, w)
	return w
}

// Watchers returns the number of live watchers. Test hook.
func (d *Doc) Watchers() int {
	n := 0
	for _, w := range d.watchers {
		if !w.closed {
			n++
		}
	}
	return n
}

type observed struct {
	node  *Node
	ratio float64
}

type watch struct {
	doc        *Doc
	thresholds []float64
	notify     func(dom.Crossing)
	observed   map[string]*observed
	order      []string
	closed     bool
}

// Observe implements dom.Watch. Delivers an initial notification with the
// element's current ratio, matching real intersection watcher behaviour.
func (w *watch) Observe(el dom.Element) {
	n, ok := el.(*Node)
	if !ok || w.closed {
		return
	}
	if _, dup := w.observed[n.id]; dup {
		return
	}
	o := &observed{node: n, ratio: w.doc.ratioOf(n)}
	w.observed[n.id] = o
	w.order = append(w.order, n.id)
	w.fire(o)
}

// Unobserve implements dom.Watch.
func (w *watch) Unobserve(el dom.Element) {
	id := el.ID()
	if _, ok := w.observed[id]; !ok {
		return
	}
	delete(w.observed, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// Close implements dom.Watch.
func (w *watch) Close() {
	w.closed = true
	w.observed = map[string]*observed{}
	w.order = nil
}

// scrolled re-evaluates every observed element and notifies on crossings.
func (w *watch) scrolled() {
	if w.closed {
		return
	}
	for _, id := range append([]string(nil), w.order...) {
		o, ok := w.observed[id]
		if !ok {
			continue
		}
		cur := w.doc.ratioOf(o.node)
		if w.crossed(o.ratio, cur) {
			o.ratio = cur
			w.fire(o)
		} else {
			o.ratio = cur
		}
	}
}

// crossed reports whether any threshold separates the two ratios. A zero
// threshold is the visibility edge: it fires when the element transitions
// between fully hidden and at all visible.
func (w *watch) crossed(prev, cur float64) bool {
	for _, t := range w.thresholds {
		if t == 0 {
			if (prev > 0) != (cur > 0) {
				return true
			}
			continue
		}
		if (prev >= t) != (cur >= t) {
			return true
		}
	}
	return false
}

func (w *watch) fire(o *observed) {
	w.notify(dom.Crossing{
		Element:  o.node,
		Ratio:    o.ratio,
		Bounds:   o.node.Bounds(),
		Viewport: w.doc.viewport,
	})
}
