package rule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }
func n(v int) *int         { return &v }

func TestNormalize_NilListIsFatal(t *testing.T) {
	_, _, err := Normalize(nil, DefaultConfig())
	require.ErrorIs(t, err, ErrNotAList)
}

func TestNormalize_EmptyListIsValid(t *testing.T) {
	rules, problems, err := Normalize([]Declaration{}, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, rules)
	assert.Empty(t, problems)
}

func TestNormalize_FillsDefaults(t *testing.T) {
	rules, problems, err := Normalize([]Declaration{{TargetSelector: ".card"}}, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Empty(t, problems)

	r := rules[0]
	assert.Equal(t, TriggerVisibility, r.Kind)
	assert.Equal(t, 300*time.Millisecond, r.Transition)
	assert.Nil(t, r.RemoveTransition)
	assert.Equal(t, "ease", r.Easing)
	assert.Equal(t, 50.0, r.EntryThreshold)
	assert.Nil(t, r.ExitThreshold)
	assert.Equal(t, time.Duration(0), r.Debounce)
	assert.Equal(t, 1, r.RepeatCount)
	assert.Equal(t, 1, r.StartIndex)
	assert.Equal(t, 0, r.EndIndex)
	assert.Equal(t, 1, r.Stride)
	assert.False(t, r.LabelApplied)
}

func TestNormalize_ThresholdsAlwaysInRange(t *testing.T) {
	decls := []Declaration{
		{EntryThreshold: f(25), ExitThreshold: f(10)},
		{EntryThreshold: f(120)},
		{EntryThreshold: f(-5), ExitThreshold: f(101)},
		{ExitThreshold: f(0)},
		{EntryThreshold: f(100)},
	}
	rules, problems, err := Normalize(decls, DefaultConfig())
	require.NoError(t, err)

	for _, r := range rules {
		assert.GreaterOrEqual(t, r.EntryThreshold, 0.0)
		assert.LessOrEqual(t, r.EntryThreshold, 100.0)
		if r.ExitThreshold != nil {
			assert.GreaterOrEqual(t, *r.ExitThreshold, 0.0)
			assert.LessOrEqual(t, *r.ExitThreshold, 100.0)
		}
	}

	assert.Equal(t, 25.0, rules[0].EntryThreshold)
	require.NotNil(t, rules[0].ExitThreshold)
	assert.Equal(t, 10.0, *rules[0].ExitThreshold)

	// Out-of-range values fall back: entry to the default, exit to absent.
	assert.Equal(t, 50.0, rules[1].EntryThreshold)
	assert.Equal(t, 50.0, rules[2].EntryThreshold)
	assert.Nil(t, rules[2].ExitThreshold)

	require.NotNil(t, rules[3].ExitThreshold)
	assert.Equal(t, 0.0, *rules[3].ExitThreshold)
	assert.Equal(t, 100.0, rules[4].EntryThreshold)

	codes := problemCodes(problems)
	assert.Equal(t, []string{ErrThresholdRange, ErrThresholdRange, ErrThresholdRange}, codes)
}

func TestNormalize_LabelCleaning(t *testing.T) {
	decls := []Declaration{{
		AddLabels:    []any{" .active ", "##bold", "", "  "},
		RemoveLabels: "not-a-list",
		TopAddLabels: []any{nil, "past"},
	}}
	rules, problems, err := Normalize(decls, DefaultConfig())
	require.NoError(t, err)

	r := rules[0]
	assert.Equal(t, []string{"active", "bold"}, r.AddLabels)
	assert.Nil(t, r.RemoveLabels)
	assert.Equal(t, []string{"past"}, r.TopAddLabels)

	codes := problemCodes(problems)
	assert.Contains(t, codes, ErrLabelsNotAList)
}

func TestNormalize_TopAddLabelsConflict(t *testing.T) {
	decls := []Declaration{{
		TopAddLabels:    []string{"past"},
		RemoveLabels:    []string{"gone"},
		InvertOnTrigger: true,
	}}
	rules, problems, err := Normalize(decls, DefaultConfig())
	require.NoError(t, err)

	r := rules[0]
	assert.Equal(t, []string{"past"}, r.TopAddLabels)
	assert.Nil(t, r.RemoveLabels)
	assert.False(t, r.InvertOnTrigger)
	assert.Equal(t, []string{ErrTopAddConflict}, problemCodes(problems))
}

func TestNormalize_InvalidEasingFallsBack(t *testing.T) {
	rules, problems, err := Normalize([]Declaration{{Easing: "bouncy"}}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "ease", rules[0].Easing)
	assert.Equal(t, []string{ErrInvalidEasing}, problemCodes(problems))

	rules, problems, err = Normalize([]Declaration{{Easing: "ease-in-out"}}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "ease-in-out", rules[0].Easing)
	assert.Empty(t, problems)
}

func TestNormalize_InvalidRepeatCountFallsBackToOne(t *testing.T) {
	rules, problems, err := Normalize([]Declaration{{RepeatCount: n(0)}, {RepeatCount: n(3)}}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, rules[0].RepeatCount)
	assert.Equal(t, 3, rules[1].RepeatCount)
	assert.Equal(t, []string{ErrInvalidRepeat}, problemCodes(problems))
}

func TestNormalize_UnknownTriggerKind(t *testing.T) {
	rules, problems, err := Normalize([]Declaration{{Trigger: "doubleclick"}}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, TriggerVisibility, rules[0].Kind)
	assert.Equal(t, []string{ErrInvalidTrigger}, problemCodes(problems))
}

func TestNormalize_SiblingRulesSurviveProblems(t *testing.T) {
	decls := []Declaration{
		{Easing: "bad", EntryThreshold: f(999), RepeatCount: n(-2)},
		{Trigger: "hover", AddLabels: []string{"lit"}},
	}
	rules, problems, err := Normalize(decls, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.NotEmpty(t, problems)

	assert.Equal(t, TriggerHover, rules[1].Kind)
	assert.Equal(t, []string{"lit"}, rules[1].AddLabels)
	for _, p := range problems {
		assert.Equal(t, 0, p.Rule, "all problems belong to the first declaration")
	}
}

func TestNormalize_DurationConversion(t *testing.T) {
	decls := []Declaration{{
		TransitionMs:       f(150),
		RemoveTransitionMs: f(75),
		DebounceMs:         f(20),
	}}
	rules, _, err := Normalize(decls, DefaultConfig())
	require.NoError(t, err)

	r := rules[0]
	assert.Equal(t, 150*time.Millisecond, r.Transition)
	require.NotNil(t, r.RemoveTransition)
	assert.Equal(t, 75*time.Millisecond, *r.RemoveTransition)
	assert.Equal(t, 20*time.Millisecond, r.Debounce)
}

func problemCodes(problems []Problem) []string {
	if len(problems) == 0 {
		return nil
	}
	out := make([]string, len(problems))
	for i, p := range problems {
		out[i] = p.Code
	}
	return out
}
