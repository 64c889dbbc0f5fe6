package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/lateinit/internal/harness"
	"github.com/roach88/lateinit/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	SpecsDir string
	Database string

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to harness.UUIDRunIDs.
	RunIDs harness.RunIDGenerator
}

// RunOutput is the JSON payload of the run command.
type RunOutput struct {
	Scenario string               `json:"scenario"`
	RunID    string               `json:"run_id"`
	Pass     bool                 `json:"pass"`
	Trace    []harness.TraceEvent `json:"trace"`
	Errors   []string             `json:"errors,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run a single scenario and print its trace",
		Long: `Run one conformance scenario against live guarded instances.

Spec paths in the scenario resolve against --specs, or against the
scenario's own directory when --specs is not given. With --db the run
and its trace are appended to a SQLite run log.

Example:
  lateinit run ./scenarios/readonly_basic.yaml --specs ./specs
  lateinit run ./scenarios/readonly_basic.yaml --specs ./specs --db ./runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SpecsDir, "specs", "", "directory spec paths are relative to")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run log (optional)")

	return cmd
}

func runScenarioFile(opts *RunOptions, scenarioFile string, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	basePath := opts.SpecsDir
	if basePath == "" {
		basePath = filepath.Dir(scenarioFile)
	}
	scenario, err := harness.LoadScenarioWithBasePath(scenarioFile, basePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	hopts := harness.Options{Logger: logger, RunIDs: opts.RunIDs}
	if hopts.RunIDs == nil {
		hopts.RunIDs = harness.UUIDRunIDs{}
	}

	if opts.Database != "" {
		logger.Debug("opening run log", "path", opts.Database)
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		hopts.Store = st
	}

	result, err := harness.RunWithOptions(context.Background(), scenario, hopts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	out := RunOutput{
		Scenario: scenario.Name,
		RunID:    result.RunID,
		Pass:     result.Pass,
		Trace:    result.Trace,
		Errors:   result.Errors,
	}
	if opts.Format == "json" {
		if err := outputRunJSON(cmd, out); err != nil {
			return err
		}
	} else {
		outputRunText(cmd, out)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

func outputRunJSON(cmd *cobra.Command, out RunOutput) error {
	formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	var failure *CLIError
	if !out.Pass {
		failure = &CLIError{
			Code:    ErrCodeScenarioFailed,
			Message: fmt.Sprintf("scenario %s failed", out.Scenario),
			Details: out.Errors,
		}
	}
	return formatter.Run(out.RunID, out, failure)
}

func outputRunText(cmd *cobra.Command, out RunOutput) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Scenario: %s\n", out.Scenario)
	fmt.Fprintf(w, "Run: %s\n\n", out.RunID)
	for _, ev := range out.Trace {
		fmt.Fprintf(w, "  %s\n", ev)
	}
	fmt.Fprintln(w)

	if out.Pass {
		fmt.Fprintln(w, "✓ Passed")
		return
	}
	fmt.Fprintln(w, "✗ Failed")
	for _, e := range out.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}
