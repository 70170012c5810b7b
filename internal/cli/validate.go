package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DeanBeanBEER-WARE/interact/internal/rule"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool           `json:"valid"`
	Rules    int            `json:"rules"`
	Problems []rule.Problem `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <rules-file>",
		Short: "Normalize a rule file and report diagnostics",
		Long: `Load a rule file (YAML, JSON, or CUE), run normalization, and print
every diagnostic with its code, severity, and affected field.

Diagnostics never abort normalization; each problem degrades one field
of one rule to its default. Only a top-level value that is not a list
is fatal.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	decls, err := LoadDeclarations(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Loaded %d declaration(s) from %s", len(decls), path)

	rules, problems, err := rule.Normalize(decls, rule.DefaultConfig())
	if err != nil {
		_ = formatter.Error(ErrCodeNotAList, err.Error(), nil)
		return WrapExitError(ExitCommandError, "normalization failed", err)
	}

	if len(problems) > 0 {
		return outputProblems(formatter, len(rules), problems)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Rules: len(rules)})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d rule(s) valid\n", len(rules))
	return nil
}

func outputLoadError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	if le, ok := err.(*LoadError); ok {
		code = le.Code
	}
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, "load failed", err)
}

func outputProblems(formatter *OutputFormatter, ruleCount int, problems []rule.Problem) error {
	if formatter.Format == "json" {
		result := ValidationResult{Valid: false, Rules: ruleCount, Problems: problems}
		_ = formatter.Success(result)
		return NewExitError(ExitFailure, fmt.Sprintf("validation reported %d problem(s)", len(problems)))
	}

	fmt.Fprintf(formatter.Writer, "✗ %d problem(s) in %d rule(s)\n\n", len(problems), ruleCount)
	for _, p := range problems {
		fmt.Fprintf(formatter.Writer, "  rule %d, %s\n", p.Rule, p.Field)
		fmt.Fprintf(formatter.Writer, "    %s [%s]: %s\n\n", p.Severity, p.Code, p.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation reported %d problem(s)", len(problems)))
}
