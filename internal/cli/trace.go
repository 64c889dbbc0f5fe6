package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/lateinit/internal/ir"
	"github.com/roach88/lateinit/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - show one run instead of listing
}

// RunTrace is one stored run with its events.
type RunTrace struct {
	Run    ir.RunRecord     `json:"run"`
	Events []ir.EventRecord `json:"events"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect stored scenario runs",
		Long: `Inspect the SQLite run log written by run and test with --db.

Without --run, lists every stored run in the order it was written.
With --run, prints that run's trace event by event.

Examples:
  lateinit trace --db ./runs.db
  lateinit trace --db ./runs.db --run 0192f5c4-...
  lateinit trace --db ./runs.db --run 0192f5c4-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to print")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Open would create an empty log; a missing file is a usage error
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.Database))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		return listRuns(ctx, st, formatter)
	}
	return showRun(ctx, st, opts.RunID, formatter)
}

func listRuns(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	runs, err := st.ReadRuns(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(runs)
	}

	w := formatter.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return nil
	}
	fmt.Fprintf(w, "Runs (%d):\n", len(runs))
	for _, run := range runs {
		fmt.Fprintf(w, "  %s %s %s (%d events)\n", passMark(run.Pass), run.ID, run.Scenario, run.Events)
	}
	return nil
}

func showRun(ctx context.Context, st *store.Store, runID string, formatter *OutputFormatter) error {
	run, err := st.ReadRun(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	events, err := st.ReadEvents(ctx, runID)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	if formatter.Format == "json" {
		return formatter.Run(run.ID, RunTrace{Run: run, Events: events}, nil)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Trace for Run: %s\n", run.ID)
	fmt.Fprintf(w, "Scenario: %s\n", run.Scenario)
	fmt.Fprintf(w, "Status: %s\n\n", passMark(run.Pass))
	for _, ev := range events {
		line := fmt.Sprintf("  [%d] %s %s %s", ev.Seq, ev.Op, ev.Target, ev.Outcome)
		if ev.Value != "" {
			line += " " + ev.Value
		}
		fmt.Fprintln(w, line)
	}
	formatter.VerboseLog("%d event(s)", len(events))
	return nil
}

func passMark(pass bool) string {
	if pass {
		return "✓"
	}
	return "✗"
}
