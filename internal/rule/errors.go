package rule

import (
	"errors"
	"fmt"
)

// ErrNotAList is the single fatal normalization error: the top-level
// declaration argument was absent rather than an (empty or non-empty)
// ordered list.
var ErrNotAList = errors.New("rule declarations must be an ordered list")

// Problem severity levels. Warnings degraded to a safe default; errors
// dropped a binding (the sibling rules are unaffected either way).
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic codes (E200-E299).
const (
	ErrInvalidTrigger    = "E200" // unknown trigger kind
	ErrInvalidEasing     = "E201" // easing not in the allowed set
	ErrThresholdRange    = "E202" // threshold outside [0,100]
	ErrLabelsNotAList    = "E203" // label list field is not a sequence
	ErrTopAddConflict    = "E204" // topAddLabels vs removeLabels/invertOnTrigger
	ErrInvalidRepeat     = "E205" // repeat count < 1
	ErrInvalidIndex      = "E206" // startIndex/endIndex/stride out of range
	ErrNegativeDuration  = "E207" // negative duration value
	ErrUnresolvedTrigger = "E210" // trigger selector matched nothing
	ErrUnpairedValue     = "E211" // pairing value present on one side only
)

// Problem is one non-fatal diagnostic produced while normalizing,
// expanding, or binding a declaration.
type Problem struct {
	Rule     int      `json:"rule"` // declaration index, 0-based
	Field    string   `json:"field"`
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Error implements the error interface.
func (p Problem) Error() string {
	return fmt.Sprintf("[%s] rule %d: %s: %s", p.Code, p.Rule, p.Field, p.Message)
}

func warning(rule int, field, code, format string, args ...any) Problem {
	return Problem{Rule: rule, Field: field, Code: code, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

func setupError(rule int, field, code, format string, args ...any) Problem {
	return Problem{Rule: rule, Field: field, Code: code, Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}
