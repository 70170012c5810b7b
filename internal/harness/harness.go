package harness

import (
	"fmt"
	"time"

	"github.com/DeanBeanBEER-WARE/interact/internal/dom"
	"github.com/DeanBeanBEER-WARE/interact/internal/engine"
	"github.com/DeanBeanBEER-WARE/interact/internal/memdom"
	"github.com/DeanBeanBEER-WARE/interact/internal/testutil"
)

// Run executes a scenario: builds the document, constructs the engine
// with a fixed session token and a pinned start time, plays the step
// script, and captures the mutation trace.
//
// Everything runs on the calling goroutine, the way the engine's live
// loop would run it on its own.
func Run(s *Scenario) (*Result, error) {
	doc := BuildDocument(&s.Document)

	result := &Result{Doc: doc}
	eng, err := engine.New(s.Rules, doc,
		engine.WithTokenGenerator(testutil.NewFixedSessionGenerator(s.Session)),
		engine.WithStartTime(time.Unix(0, 0)),
		engine.WithObserver(func(m engine.Mutation) {
			ev := TraceEvent{
				Seq:    m.Seq,
				Rule:   m.RuleID,
				Action: string(m.Action),
				Labels: m.Labels,
			}
			if m.Element != nil {
				ev.Element = m.Element.ID()
			}
			result.Trace = append(result.Trace, ev)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	result.Engine = eng
	result.Session = eng.Session()

	for i, step := range s.Steps {
		if err := runStep(eng, doc, &step); err != nil {
			return nil, fmt.Errorf("scenario %q: steps[%d]: %w", s.Name, i, err)
		}
	}
	result.Problems = eng.Problems()
	return result, nil
}

func runStep(eng *engine.Engine, doc *memdom.Doc, st *Step) error {
	switch {
	case st.Activate != "":
		el, err := single(doc, st.Activate)
		if err != nil {
			return err
		}
		eng.Activate(el)
	case st.HoverEnter != "":
		el, err := single(doc, st.HoverEnter)
		if err != nil {
			return err
		}
		eng.HoverEnter(el)
	case st.HoverLeave != "":
		el, err := single(doc, st.HoverLeave)
		if err != nil {
			return err
		}
		eng.HoverLeave(el)
	case st.Scroll != nil:
		doc.SetScroll(*st.Scroll)
	case st.AdvanceMs != nil:
		eng.Advance(time.Duration(*st.AdvanceMs * float64(time.Millisecond)))
	case st.Frame:
		eng.Frame()
	case st.Ready:
		doc.SetReady()
	}
	return nil
}

func single(doc *memdom.Doc, selector string) (dom.Element, error) {
	matches := doc.Query(selector)
	if len(matches) == 0 {
		return nil, fmt.Errorf("selector %q matched nothing", selector)
	}
	return matches[0], nil
}

// BuildDocument constructs a memdom document from its spec.
func BuildDocument(spec *DocumentSpec) *memdom.Doc {
	var doc *memdom.Doc
	if spec.Pending {
		doc = memdom.NewPendingDoc(spec.Viewport.Width, spec.Viewport.Height)
	} else {
		doc = memdom.NewDoc(spec.Viewport.Width, spec.Viewport.Height)
	}
	var build func(parent *memdom.Node, nodes []NodeSpec)
	build = func(parent *memdom.Node, nodes []NodeSpec) {
		for _, ns := range nodes {
			tag := ns.Tag
			if tag == "" {
				tag = "div"
			}
			n := memdom.NewNode(ns.ID, tag)
			for _, l := range ns.Labels {
				n.AddLabel(l)
			}
			for k, v := range ns.Attrs {
				n.SetAttr(k, v)
			}
			if ns.Box != nil {
				n.SetBox(ns.Box.Top, ns.Box.Left, ns.Box.Width, ns.Box.Height)
			}
			doc.Append(parent, n)
			build(n, ns.Children)
		}
	}
	build(nil, spec.Nodes)
	return doc
}
