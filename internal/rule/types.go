package rule

import (
	"time"

	"github.com/DeanBeanBEER-WARE/interact/internal/dom"
)

// TriggerKind selects which interaction starts a rule.
type TriggerKind string

const (
	// TriggerActivate fires on an activation gesture (click, tap, key
	// activation). Toggle semantics: first firing applies, the next
	// removes, unless Once blocks re-entry.
	TriggerActivate TriggerKind = "activate"

	// TriggerHover fires on pointer enter/leave. No persisted state.
	TriggerHover TriggerKind = "hover"

	// TriggerVisibility fires on viewport threshold crossings, delivered
	// through the shared observer pool.
	TriggerVisibility TriggerKind = "visibility"
)

// ValidTriggerKinds defines the allowed trigger kinds.
var ValidTriggerKinds = map[TriggerKind]bool{
	TriggerActivate:   true,
	TriggerHover:      true,
	TriggerVisibility: true,
}

// Action is the direction of a label mutation pass.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// MutateFunc is the post-mutation callback contract. It fires once per
// mutated element, synchronously within the mutation pass; el is nil when
// a pass resolved no targets.
type MutateFunc func(el dom.Element, action Action)

// Declaration is one raw rule as authored. Zero values mean "use the
// default"; label list fields are loosely typed so a malformed value can
// degrade to an empty list instead of failing the whole load.
type Declaration struct {
	Trigger           string `yaml:"trigger" json:"trigger"`
	TriggerSelector   string `yaml:"triggerSelector" json:"triggerSelector"`
	ContainerSelector string `yaml:"containerSelector" json:"containerSelector"`
	TargetSelector    string `yaml:"targetSelector" json:"targetSelector"`

	// Label lists: expected to be sequences of strings. Anything else is
	// reported and treated as empty.
	AddLabels    any `yaml:"addLabels" json:"addLabels"`
	RemoveLabels any `yaml:"removeLabels" json:"removeLabels"`
	TopAddLabels any `yaml:"topAddLabels" json:"topAddLabels"`

	TransitionMs       *float64 `yaml:"transitionMs" json:"transitionMs"`
	RemoveTransitionMs *float64 `yaml:"removeTransitionMs" json:"removeTransitionMs"`
	Easing             string   `yaml:"easing" json:"easing"`

	EntryThreshold *float64 `yaml:"entryThreshold" json:"entryThreshold"`
	ExitThreshold  *float64 `yaml:"exitThreshold" json:"exitThreshold"`

	Once            bool     `yaml:"once" json:"once"`
	DebounceMs      *float64 `yaml:"debounceMs" json:"debounceMs"`
	InvertOnTrigger bool     `yaml:"invertOnTrigger" json:"invertOnTrigger"`

	RepeatCount       *int   `yaml:"repeatCount" json:"repeatCount"`
	PairTriggerAttr   string `yaml:"pairTriggerAttr" json:"pairTriggerAttr"`
	PairContainerAttr string `yaml:"pairContainerAttr" json:"pairContainerAttr"`

	StartIndex *int `yaml:"startIndex" json:"startIndex"`
	EndIndex   *int `yaml:"endIndex" json:"endIndex"`
	Stride     *int `yaml:"stride" json:"stride"`

	// OnMutate is set programmatically, never from a rule file.
	OnMutate MutateFunc `yaml:"-" json:"-"`
}

// Rule is a fully-populated declaration after normalization.
//
// INVARIANTS (enforced by Normalize):
//   - EntryThreshold and, when present, ExitThreshold lie in [0, 100]
//   - a non-empty TopAddLabels forces RemoveLabels empty and
//     InvertOnTrigger false
//   - RepeatCount, StartIndex, Stride >= 1; EndIndex >= 0 (0 = open)
type Rule struct {
	Kind              TriggerKind
	TriggerSelector   string
	ContainerSelector string
	TargetSelector    string

	AddLabels    []string
	RemoveLabels []string
	TopAddLabels []string

	Transition       time.Duration
	RemoveTransition *time.Duration
	Easing           string

	EntryThreshold float64  // percent
	ExitThreshold  *float64 // percent, nil = no exit branch

	Once            bool
	Debounce        time.Duration
	InvertOnTrigger bool

	RepeatCount       int
	PairTriggerAttr   string
	PairContainerAttr string

	StartIndex int
	EndIndex   int // 0 = open-ended
	Stride     int

	OnMutate MutateFunc

	// LabelApplied is the dispatcher's per-binding toggle state. It is
	// the only field mutated after expansion.
	LabelApplied bool
}

// ExpandedRule is one Rule bound to exactly one concrete trigger and
// container reference. Attribute-paired rules carry pinned elements;
// replicated rules resolve their selectors at dispatch/mutation time.
type ExpandedRule struct {
	Rule

	// ID identifies the binding for logs, traces, and journal records.
	// Deterministic: "<declaration-index>/<binding-index>".
	ID string

	// Trigger and Container are non-nil only for attribute-paired
	// bindings.
	Trigger   dom.Element
	Container dom.Element
}

// Defaults is the explicit configuration the normalizer fills missing
// fields from. There is no process-wide default state; callers pass a
// Defaults value (usually DefaultConfig) at construction.
type Defaults struct {
	Transition     time.Duration
	Easing         string
	EntryThreshold float64 // percent
	Debounce       time.Duration
	RepeatCount    int
	StartIndex     int
	Stride         int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Defaults {
	return Defaults{
		Transition:     300 * time.Millisecond,
		Easing:         "ease",
		EntryThreshold: 50,
		Debounce:       0,
		RepeatCount:    1,
		StartIndex:     1,
		Stride:         1,
	}
}

// AllowedEasings is the validated easing set. Unknown easings fall back
// to the configured default with a diagnostic.
var AllowedEasings = map[string]bool{
	"linear":      true,
	"ease":        true,
	"ease-in":     true,
	"ease-out":    true,
	"ease-in-out": true,
}
