// Package harness runs scripted engine scenarios for tests and the sim
// command.
//
// A scenario bundles a document tree, a rule declaration list, an
// interaction script, and assertions on the resulting mutation trace and
// label state.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: toggle-panel
//	description: "Activation toggles the panel open label"
//	session: "test-session-0001"
//	document:
//	  viewport: { width: 800, height: 600 }
//	  nodes:
//	    - id: btn
//	      tag: button
//	    - id: panel
//	      labels: [panel]
//	rules:
//	  - trigger: activate
//	    triggerSelector: "#btn"
//	    targetSelector: ".panel"
//	    addLabels: [open]
//	    removeLabels: [open]
//	steps:
//	  - activate: "#btn"
//	  - frame: true
//	assertions:
//	  - type: labels
//	    element: "#panel"
//	    has: [open]
//
// Steps run in order: activate/hoverEnter/hoverLeave submit trigger
// events, scroll moves the viewport (firing visibility crossings),
// advanceMs moves logical time, frame runs one rendering pass, and ready
// marks a pending document ready.
//
// # Assertion Types
//
//   - labels: an element carries (has) and lacks (missing) label sets
//   - trace_count: exactly N trace records match the given filters
//   - trace_contains: at least one trace record matches
//
// # Deterministic Testing
//
// Scenarios run with a fixed session token and a pinned logical start
// time, so the same scenario produces a byte-identical trace on every
// run. Golden files under testdata/golden are the source of truth;
// regenerate with go test ./internal/harness -update.
package harness
