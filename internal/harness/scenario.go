package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so a typo like "assertion:" fails loudly instead of silently
// skipping checks.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML bytes with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Document.Viewport.Width <= 0 || s.Document.Viewport.Height <= 0 {
		return fmt.Errorf("document.viewport must have positive width and height")
	}
	if s.Rules == nil {
		return fmt.Errorf("rules list is required (use an empty list for a rule-free run)")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	seen := map[string]bool{}
	var checkNodes func(path string, nodes []NodeSpec) error
	checkNodes = func(path string, nodes []NodeSpec) error {
		for i, n := range nodes {
			at := fmt.Sprintf("%s[%d]", path, i)
			if n.ID == "" {
				return fmt.Errorf("%s: id is required", at)
			}
			if seen[n.ID] {
				return fmt.Errorf("%s: duplicate node id %q", at, n.ID)
			}
			seen[n.ID] = true
			if err := checkNodes(at+".children", n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := checkNodes("document.nodes", s.Document.Nodes); err != nil {
		return err
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step, s.Document.Pending); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step, pending bool) error {
	set := 0
	if st.Activate != "" {
		set++
	}
	if st.HoverEnter != "" {
		set++
	}
	if st.HoverLeave != "" {
		set++
	}
	if st.Scroll != nil {
		set++
	}
	if st.AdvanceMs != nil {
		set++
	}
	if st.Frame {
		set++
	}
	if st.Ready {
		set++
	}
	if set == 0 {
		return fmt.Errorf("steps[%d]: empty step", index)
	}
	if set > 1 {
		return fmt.Errorf("steps[%d]: exactly one operation per step", index)
	}
	if st.Ready && !pending {
		return fmt.Errorf("steps[%d]: ready step requires document.pending", index)
	}
	if st.AdvanceMs != nil && *st.AdvanceMs < 0 {
		return fmt.Errorf("steps[%d]: advanceMs must be non-negative", index)
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertLabels:
		if a.Element == "" {
			return fmt.Errorf("assertions[%d]: element is required for labels", index)
		}
		if len(a.Has) == 0 && len(a.Missing) == 0 {
			return fmt.Errorf("assertions[%d]: labels needs has or missing", index)
		}
	case AssertTraceCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertTraceContains:
		if a.Rule == "" && a.Element == "" && a.Action == "" {
			return fmt.Errorf("assertions[%d]: trace_contains needs rule, element, or action", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
