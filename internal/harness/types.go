package harness

import (
	"github.com/DeanBeanBEER-WARE/interact/internal/engine"
	"github.com/DeanBeanBEER-WARE/interact/internal/memdom"
	"github.com/DeanBeanBEER-WARE/interact/internal/rule"
)

// Scenario defines a scripted engine run: a document tree, a rule list,
// a step script, and assertions on the resulting trace and label state.
type Scenario struct {
	// Name uniquely identifies this scenario; also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is an optional fixed session token for deterministic
	// golden comparison. Empty defaults to "test-session-default".
	Session string `yaml:"session,omitempty"`

	// Document describes the tree the engine runs against.
	Document DocumentSpec `yaml:"document"`

	// Rules is the raw declaration list handed to the engine.
	Rules []rule.Declaration `yaml:"rules"`

	// Steps is the interaction script, executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state. Optional when the scenario is
	// used purely for golden-trace comparison.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// DocumentSpec describes the in-memory document.
type DocumentSpec struct {
	Viewport SizeSpec   `yaml:"viewport"`
	Pending  bool       `yaml:"pending,omitempty"` // start unready; a "ready" step fires setup
	Nodes    []NodeSpec `yaml:"nodes"`
}

// SizeSpec is a viewport extent.
type SizeSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// NodeSpec describes one node and its subtree.
type NodeSpec struct {
	ID       string            `yaml:"id"`
	Tag      string            `yaml:"tag,omitempty"` // defaults to "div"
	Labels   []string          `yaml:"labels,omitempty"`
	Attrs    map[string]string `yaml:"attrs,omitempty"`
	Box      *BoxSpec          `yaml:"box,omitempty"` // document space
	Children []NodeSpec        `yaml:"children,omitempty"`
}

// BoxSpec is a document-space box.
type BoxSpec struct {
	Top    float64 `yaml:"top"`
	Left   float64 `yaml:"left"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Step is one scripted interaction. Exactly one field may be set.
type Step struct {
	// Activate, HoverEnter, HoverLeave name an element by selector.
	Activate   string `yaml:"activate,omitempty"`
	HoverEnter string `yaml:"hoverEnter,omitempty"`
	HoverLeave string `yaml:"hoverLeave,omitempty"`

	// Scroll moves the viewport to an absolute offset, firing visibility
	// crossings.
	Scroll *float64 `yaml:"scroll,omitempty"`

	// AdvanceMs advances logical time, firing due debounce timers.
	AdvanceMs *float64 `yaml:"advanceMs,omitempty"`

	// Frame runs one rendering pass.
	Frame bool `yaml:"frame,omitempty"`

	// Ready marks a pending document ready, firing deferred setup.
	Ready bool `yaml:"ready,omitempty"`
}

// Assertion validates final label state or the trace.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Element names the asserted element by selector (labels).
	Element string `yaml:"element,omitempty"`

	// Has and Missing are label sets the element must and must not
	// carry (labels).
	Has     []string `yaml:"has,omitempty"`
	Missing []string `yaml:"missing,omitempty"`

	// Rule filters trace records by binding id (trace_count,
	// trace_contains). Empty matches every record.
	Rule string `yaml:"rule,omitempty"`

	// Action filters trace records (trace_count, trace_contains).
	Action string `yaml:"action,omitempty"`

	// Count is the expected number of matching records (trace_count).
	Count int `yaml:"count"`

	// Labels is the expected label list of a matching record
	// (trace_contains).
	Labels []string `yaml:"labels,omitempty"`
}

// Assertion type constants.
const (
	AssertLabels        = "labels"
	AssertTraceCount    = "trace_count"
	AssertTraceContains = "trace_contains"
)

// TraceEvent is one recorded mutation, in execution order.
type TraceEvent struct {
	Seq     int64    `json:"seq"`
	Rule    string   `json:"rule"`
	Element string   `json:"element,omitempty"`
	Action  string   `json:"action"`
	Labels  []string `json:"labels,omitempty"`
}

// Result is the outcome of running a scenario.
type Result struct {
	Session  string
	Trace    []TraceEvent
	Problems []rule.Problem

	// Doc and Engine stay live so callers can assert beyond the script.
	Doc    *memdom.Doc
	Engine *engine.Engine
}
