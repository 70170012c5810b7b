package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DeanBeanBEER-WARE/interact/internal/harness"
	"github.com/DeanBeanBEER-WARE/interact/internal/memdom"
	"github.com/DeanBeanBEER-WARE/interact/internal/rule"
)

// ExpandOptions holds flags for the expand command.
type ExpandOptions struct {
	*RootOptions
	Scenario string
}

// BindingView is the serializable form of one expanded binding.
type BindingView struct {
	ID                string `json:"id"`
	Trigger           string `json:"trigger"`
	TriggerSelector   string `json:"triggerSelector,omitempty"`
	TriggerElement    string `json:"triggerElement,omitempty"`
	ContainerSelector string `json:"containerSelector,omitempty"`
	ContainerElement  string `json:"containerElement,omitempty"`
	TargetSelector    string `json:"targetSelector,omitempty"`
	Once              bool   `json:"once,omitempty"`
}

// ExpandResult holds the expand command's output payload.
type ExpandResult struct {
	Bindings []BindingView  `json:"bindings"`
	Problems []rule.Problem `json:"problems,omitempty"`
}

// NewExpandCommand creates the expand command.
func NewExpandCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExpandOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "expand <rules-file>",
		Short: "Show the concrete bindings a rule file expands to",
		Long: `Load a rule file, normalize it, and print the bindings produced by
attribute pairing and repeatCount replication.

Attribute pairing scans a document for the pairing attributes; pass
--scenario to expand against a scenario file's document tree instead of
an empty one.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "scenario file supplying the document tree")
	return cmd
}

func runExpand(opts *ExpandOptions, path string, cmd *cobra.Command) error {
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

	doc := memdom.NewDoc(800, 600)
	if opts.Scenario != "" {
		scenario, err := harness.LoadScenario(opts.Scenario)
		if err != nil {
			_ = formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "load scenario", err)
		}
		doc = harness.BuildDocument(&scenario.Document)
	}

	rules, problems, err := rule.Normalize(decls, rule.DefaultConfig())
	if err != nil {
		_ = formatter.Error(ErrCodeNotAList, err.Error(), nil)
		return WrapExitError(ExitCommandError, "normalization failed", err)
	}
	expanded, expandProblems := rule.Expand(rules, doc)
	problems = append(problems, expandProblems...)

	result := ExpandResult{Problems: problems}
	for _, er := range expanded {
		view := BindingView{
			ID:                er.ID,
			Trigger:           string(er.Kind),
			TriggerSelector:   er.TriggerSelector,
			ContainerSelector: er.ContainerSelector,
			TargetSelector:    er.TargetSelector,
			Once:              er.Once,
		}
		if er.Trigger != nil {
			view.TriggerElement = er.Trigger.ID()
		}
		if er.Container != nil {
			view.ContainerElement = er.Container.ID()
		}
		result.Bindings = append(result.Bindings, view)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%d binding(s) from %d rule(s)\n", len(result.Bindings), len(rules))
	for _, b := range result.Bindings {
		fmt.Fprintf(formatter.Writer, "  %-6s %-10s", b.ID, b.Trigger)
		if b.TriggerElement != "" {
			fmt.Fprintf(formatter.Writer, " trigger=#%s", b.TriggerElement)
		} else if b.TriggerSelector != "" {
			fmt.Fprintf(formatter.Writer, " trigger=%s", b.TriggerSelector)
		}
		if b.ContainerElement != "" {
			fmt.Fprintf(formatter.Writer, " container=#%s", b.ContainerElement)
		} else if b.ContainerSelector != "" {
			fmt.Fprintf(formatter.Writer, " container=%s", b.ContainerSelector)
		}
		if b.TargetSelector != "" {
			fmt.Fprintf(formatter.Writer, " target=%s", b.TargetSelector)
		}
		if b.Once {
			fmt.Fprint(formatter.Writer, " once")
		}
		fmt.Fprintln(formatter.Writer)
	}
	if len(problems) > 0 {
		fmt.Fprintf(formatter.Writer, "\n%d problem(s):\n", len(problems))
		for _, p := range problems {
			fmt.Fprintf(formatter.Writer, "  %s\n", p.Error())
		}
	}
	return nil
}
