package observe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeanBeanBEER-WARE/interact/internal/dom"
	"github.com/DeanBeanBEER-WARE/interact/internal/memdom"
)

type recorder struct {
	crossings []dom.Crossing
	onCross   func(dom.Crossing)
}

func (r *recorder) OnCrossing(c dom.Crossing) {
	r.crossings = append(r.crossings, c)
	if r.onCross != nil {
		r.onCross(c)
	}
}

func newTestDoc() (*memdom.Doc, *memdom.Node) {
	d := memdom.NewDoc(800, 600)
	el := memdom.NewNode("box", "div")
	el.SetBox(1000, 0, 800, 200)
	d.Append(nil, el)
	return d, el
}

func TestSignature_SortedAndDeduplicated(t *testing.T) {
	assert.Equal(t, "0.25|0.5", Signature([]float64{0.5, 0.25, 0.5}))
	assert.Equal(t, Signature([]float64{0.5, 0.25}), Signature([]float64{0.25, 0.5, 0.25}))
	assert.Equal(t, "0", Signature(nil))
	// Out-of-range ratios clamp into [0,1].
	assert.Equal(t, "0|1", Signature([]float64{-0.5, 1.7}))
}

func TestPool_SharesWatcherPerSignature(t *testing.T) {
	d, _ := newTestDoc()
	p := NewPool(d)

	w1 := p.GetOrCreate([]float64{0.5, 0.25})
	w2 := p.GetOrCreate([]float64{0.25, 0.5, 0.25})
	w3 := p.GetOrCreate([]float64{0.75})

	assert.Same(t, w1, w2, "identical canonical sets share one watcher")
	assert.NotSame(t, w1, w3)
	assert.Equal(t, 2, p.Size())
	assert.Equal(t, 2, d.Watchers())
}

func TestWatcher_RegisterDeliversInitialCrossing(t *testing.T) {
	d, el := newTestDoc()
	p := NewPool(d)
	rec := &recorder{}

	p.GetOrCreate([]float64{0.5}).Register(el, rec)
	require.Len(t, rec.crossings, 1, "host delivers an initial notification")
	assert.Equal(t, 0.0, rec.crossings[0].Ratio)
}

func TestWatcher_SideListFansOut(t *testing.T) {
	d, el := newTestDoc()
	p := NewPool(d)
	a, b := &recorder{}, &recorder{}

	w := p.GetOrCreate([]float64{0.5})
	w.Register(el, a)
	w.Register(el, b)
	require.Equal(t, 2, w.Subscribers(el))

	// Element 1000..1200, viewport 600: scroll 700 puts it at 300..500,
	// fully visible (ratio 1.0), crossing 0.5 upward.
	d.SetScroll(700)
	assert.Len(t, a.crossings, 2)
	assert.Len(t, b.crossings, 1, "b registered after a's initial notification")
}

func TestWatcher_UnregisterStopsDeliveryAndRetires(t *testing.T) {
	d, el := newTestDoc()
	p := NewPool(d)
	rec := &recorder{}

	w := p.GetOrCreate([]float64{0.5})
	w.Register(el, rec)
	require.Equal(t, 1, p.Size())

	w.Unregister(el, rec)
	assert.Equal(t, 0, w.Subscribers(el))
	assert.Equal(t, 0, p.Size(), "last unregistration frees the watcher slot")
	assert.Equal(t, 0, d.Watchers())

	before := len(rec.crossings)
	d.SetScroll(700)
	assert.Equal(t, before, len(rec.crossings))
}

func TestWatcher_UnregisterKeepsOtherSubscribers(t *testing.T) {
	d, el := newTestDoc()
	p := NewPool(d)
	a, b := &recorder{}, &recorder{}

	w := p.GetOrCreate([]float64{0.5})
	w.Register(el, a)
	w.Register(el, b)
	w.Unregister(el, a)

	require.Equal(t, 1, p.Size())
	d.SetScroll(700)
	assert.Len(t, a.crossings, 1, "only the initial notification")
	assert.Len(t, b.crossings, 1)
}

func TestWatcher_SelfUnregisterDuringDispatch(t *testing.T) {
	d, el := newTestDoc()
	p := NewPool(d)
	w := p.GetOrCreate([]float64{0.5})

	// Unregisters itself on its first at-or-past-threshold crossing,
	// the way a once rule does.
	var once *recorder
	once = &recorder{onCross: func(c dom.Crossing) {
		if c.Ratio >= 0.5 {
			w.Unregister(el, once)
		}
	}}
	other := &recorder{}

	w.Register(el, once)
	w.Register(el, other)

	d.SetScroll(700)
	assert.Len(t, other.crossings, 1, "sibling subscriber still notified")
	assert.Equal(t, 1, w.Subscribers(el))

	d.SetScroll(0)
	assert.Len(t, once.crossings, 2, "initial plus the crossing it unregistered on")
	assert.Len(t, other.crossings, 2)
}

func TestWatcher_DuplicateRegisterIsIgnored(t *testing.T) {
	d, el := newTestDoc()
	p := NewPool(d)
	rec := &recorder{}

	w := p.GetOrCreate([]float64{0.5})
	w.Register(el, rec)
	w.Register(el, rec)
	assert.Equal(t, 1, w.Subscribers(el))
}
