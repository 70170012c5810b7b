package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DeanBeanBEER-WARE/interact/internal/harness"
	"github.com/DeanBeanBEER-WARE/interact/internal/journal"
)

// SimOptions holds flags for the sim command.
type SimOptions struct {
	*RootOptions
	Journal string
}

// SimResult holds the sim command's output payload.
type SimResult struct {
	Scenario   string               `json:"scenario"`
	Session    string               `json:"session"`
	Trace      []harness.TraceEvent `json:"trace"`
	Assertions int                  `json:"assertions"`
	Failures   []string             `json:"failures,omitempty"`
}

// NewSimCommand creates the sim command.
func NewSimCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sim <scenario-file>",
		Short: "Run a scripted scenario and print its mutation trace",
		Long: `Run a scenario file against the in-memory document: build the tree,
construct the engine, play the step script, and print every mutation in
execution order. Scenario assertions are checked afterwards; any failure
exits non-zero.

With --journal, the trace is also recorded to a SQLite database keyed by
the scenario's session token.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSim(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to a SQLite mutation journal")
	return cmd
}

func runSim(opts *SimOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load scenario", err)
	}
	formatter.VerboseLog("Running scenario %q: %s", scenario.Name, scenario.Description)

	result, err := harness.Run(scenario)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "run scenario", err)
	}

	if opts.Journal != "" {
		if err := recordTrace(cmd, opts.Journal, result); err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "write journal", err)
		}
		formatter.VerboseLog("Recorded %d mutation(s) to %s", len(result.Trace), opts.Journal)
	}

	var failures []string
	for _, err := range harness.Check(scenario, result) {
		failures = append(failures, err.Error())
	}

	sim := SimResult{
		Scenario:   scenario.Name,
		Session:    result.Session,
		Trace:      result.Trace,
		Assertions: len(scenario.Assertions),
		Failures:   failures,
	}
	if formatter.Format == "json" {
		_ = formatter.Success(sim)
	} else {
		printSimText(formatter, &sim)
	}

	if len(failures) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d assertion(s) failed", len(failures)))
	}
	return nil
}

func recordTrace(cmd *cobra.Command, path string, result *harness.Result) error {
	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Error("closing journal", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	for _, ev := range result.Trace {
		entry := journal.Entry{
			Session:   result.Session,
			Seq:       ev.Seq,
			RuleID:    ev.Rule,
			ElementID: ev.Element,
			Action:    ev.Action,
			Labels:    ev.Labels,
		}
		if err := j.RecordEntry(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func printSimText(formatter *OutputFormatter, sim *SimResult) {
	fmt.Fprintf(formatter.Writer, "scenario %s (session %s)\n", sim.Scenario, sim.Session)
	if len(sim.Trace) == 0 {
		fmt.Fprintln(formatter.Writer, "  no mutations")
	}
	for _, ev := range sim.Trace {
		target := ev.Element
		if target == "" {
			target = "(no targets)"
		}
		fmt.Fprintf(formatter.Writer, "  %3d  %-6s %-6s %s", ev.Seq, ev.Rule, ev.Action, target)
		if len(ev.Labels) > 0 {
			fmt.Fprintf(formatter.Writer, " [%s]", strings.Join(ev.Labels, " "))
		}
		fmt.Fprintln(formatter.Writer)
	}

	if len(sim.Failures) > 0 {
		fmt.Fprintf(formatter.Writer, "\n✗ %d of %d assertion(s) failed\n", len(sim.Failures), sim.Assertions)
		for _, f := range sim.Failures {
			fmt.Fprintf(formatter.Writer, "  %s\n", f)
		}
		return
	}
	if sim.Assertions > 0 {
		fmt.Fprintf(formatter.Writer, "\n✓ %d assertion(s) passed\n", sim.Assertions)
	}
}
