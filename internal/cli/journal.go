package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DeanBeanBEER-WARE/interact/internal/journal"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Database string
	Session  string
	Action   string // optional - filter to one action
}

// JournalResult holds the journal command's output payload.
type JournalResult struct {
	Sessions []string        `json:"sessions,omitempty"`
	Session  string          `json:"session,omitempty"`
	Entries  []journal.Entry `json:"entries,omitempty"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect a recorded mutation journal",
		Long: `Read a SQLite mutation journal written by "sim --journal".

Without --session, lists the recorded session tokens, most recent
first. With --session, prints that session's mutations in seq order.

Examples:
  interact journal --db ./interact.db
  interact journal --db ./interact.db --session sim-session-0001
  interact journal --db ./interact.db --session sim-session-0001 --action remove`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite mutation journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session token to inspect")
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter entries to one action (add|remove)")

	return cmd
}

func runJournal(opts *JournalOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	j, err := journal.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Error("closing journal", "error", closeErr)
		}
	}()

	ctx := cmd.Context()

	if opts.Session == "" {
		sessions, err := j.Sessions(ctx)
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "list sessions", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(JournalResult{Sessions: sessions})
		}
		if len(sessions) == 0 {
			fmt.Fprintln(formatter.Writer, "no sessions recorded")
			return nil
		}
		for _, s := range sessions {
			fmt.Fprintln(formatter.Writer, s)
		}
		return nil
	}

	entries, err := j.Entries(ctx, opts.Session)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "read session", err)
	}
	if opts.Action != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Action == opts.Action {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if formatter.Format == "json" {
		return formatter.Success(JournalResult{Session: opts.Session, Entries: entries})
	}

	fmt.Fprintf(formatter.Writer, "session %s: %d mutation(s)\n", opts.Session, len(entries))
	for _, e := range entries {
		target := e.ElementID
		if target == "" {
			target = "(no targets)"
		}
		fmt.Fprintf(formatter.Writer, "  %3d  %-6s %-6s %s", e.Seq, e.RuleID, e.Action, target)
		if len(e.Labels) > 0 {
			fmt.Fprintf(formatter.Writer, " [%s]", strings.Join(e.Labels, " "))
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}
