package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/toggle-panel.yaml")
	require.NoError(t, err)

	assert.Equal(t, "toggle-panel", s.Name)
	assert.Equal(t, "test-session-0001", s.Session)
	assert.Len(t, s.Document.Nodes, 2)
	assert.Len(t, s.Rules, 1)
	assert.Len(t, s.Steps, 4)
	assert.Len(t, s.Assertions, 3)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does-not-exist.yaml")
	require.Error(t, err)
}

func TestParseScenario_RejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: bad
description: "typo in a field name"
document:
  viewport: { width: 800, height: 600 }
rules: []
steps:
  - frame: true
assertion:
  - type: labels
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertion")
}

func TestParseScenario_Validation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: `
description: d
document: { viewport: { width: 800, height: 600 } }
rules: []
steps: [{ frame: true }]
`,
			want: "name is required",
		},
		{
			name: "missing viewport",
			yaml: `
name: x
description: d
rules: []
steps: [{ frame: true }]
`,
			want: "viewport",
		},
		{
			name: "missing rules",
			yaml: `
name: x
description: d
document: { viewport: { width: 800, height: 600 } }
steps: [{ frame: true }]
`,
			want: "rules list is required",
		},
		{
			name: "empty step",
			yaml: `
name: x
description: d
document: { viewport: { width: 800, height: 600 } }
rules: []
steps: [{}]
`,
			want: "empty step",
		},
		{
			name: "two operations in one step",
			yaml: `
name: x
description: d
document: { viewport: { width: 800, height: 600 } }
rules: []
steps: [{ frame: true, scroll: 10 }]
`,
			want: "exactly one operation",
		},
		{
			name: "ready without pending",
			yaml: `
name: x
description: d
document: { viewport: { width: 800, height: 600 } }
rules: []
steps: [{ ready: true }]
`,
			want: "requires document.pending",
		},
		{
			name: "duplicate node id",
			yaml: `
name: x
description: d
document:
  viewport: { width: 800, height: 600 }
  nodes:
    - id: a
    - id: a
rules: []
steps: [{ frame: true }]
`,
			want: "duplicate node id",
		},
		{
			name: "unknown assertion type",
			yaml: `
name: x
description: d
document: { viewport: { width: 800, height: 600 } }
rules: []
steps: [{ frame: true }]
assertions: [{ type: bogus }]
`,
			want: "unknown assertion type",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
