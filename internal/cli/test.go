package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/lateinit/internal/harness"
	"github.com/roach88/lateinit/internal/store"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update   bool   // regenerate golden files
	Filter   string // scenario filter (glob pattern)
	Database string // optional run log

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to harness.UUIDRunIDs.
	RunIDs harness.RunIDGenerator
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	RunID  string   `json:"run_id,omitempty"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <specs-dir> <scenarios-dir>",
		Short: "Run conformance harness",
		Long: `Run conformance scenarios against the class declarations.

Executes every scenario file, checking step expectations and assertions.
When <scenarios-dir>/golden/<name>.golden exists, the trace must match it.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  lateinit test ./specs ./scenarios
  lateinit test ./specs ./scenarios --filter "readonly_*"
  lateinit test ./specs ./scenarios --update
  lateinit test ./specs ./scenarios --db ./runs.db --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run log (optional)")

	return cmd
}

// scenarioRunner carries what every scenario in one test invocation shares.
type scenarioRunner struct {
	opts     *TestOptions
	specsDir string
	hopts    harness.Options
	w        *bytes.Buffer
}

func runTests(opts *TestOptions, specsDir, scenariosDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(specsDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("specs directory not found: %s", specsDir))
	}
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{
				Scenarios: []ScenarioResult{},
				Total:     0,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	r := &scenarioRunner{
		opts:     opts,
		specsDir: specsDir,
		hopts: harness.Options{
			Logger: newLogger(opts.RootOptions, cmd.ErrOrStderr()),
			RunIDs: opts.RunIDs,
		},
		w: &bytes.Buffer{},
	}
	if r.hopts.RunIDs == nil {
		r.hopts.RunIDs = harness.UUIDRunIDs{}
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		r.hopts.Store = st
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, scenarioFile := range scenarioFiles {
		scenResult := r.run(scenarioFile)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}

	// Per-scenario lines were buffered so JSON output stays a single document
	if _, err := r.w.WriteTo(cmd.OutOrStdout()); err != nil {
		return err
	}
	return outputTestText(cmd, result)
}

// findScenarioFiles finds all YAML scenario files in a directory.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			base := filepath.Base(path)
			name := strings.TrimSuffix(base, ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// run executes a single scenario and returns the result.
func (r *scenarioRunner) run(scenarioFile string) ScenarioResult {
	name := filepath.Base(scenarioFile)

	scenario, err := harness.LoadScenarioWithBasePath(scenarioFile, r.specsDir)
	if err != nil {
		return r.fail(name, "", fmt.Sprintf("failed to load scenario: %v", err))
	}
	name = scenario.Name

	result, err := harness.RunWithOptions(context.Background(), scenario, r.hopts)
	if err != nil {
		return r.fail(name, "", fmt.Sprintf("execution failed: %v", err))
	}

	snapshot := harness.Snapshot(scenario.Name, scenario.RunID, result.Trace)
	goldenPath := goldenFilePath(scenarioFile)

	if r.opts.Update {
		if err := writeGoldenFile(goldenPath, snapshot); err != nil {
			return r.fail(name, result.RunID, fmt.Sprintf("failed to update golden file: %v", err))
		}
		r.hopts.Logger.Debug("golden updated", slog.String("path", goldenPath))
		if !result.Pass {
			return r.fail(name, result.RunID, result.Errors...)
		}
		fmt.Fprintf(r.w, "✓ %s (golden updated)\n", name)
		return ScenarioResult{Name: name, RunID: result.RunID, Pass: true}
	}

	// Without a golden file only expectations and assertions are checked
	golden, err := os.ReadFile(goldenPath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return r.fail(name, result.RunID, fmt.Sprintf("golden comparison failed: %v", err))
	case !bytes.Equal(golden, snapshot):
		return r.fail(name, result.RunID, "trace does not match golden file (run with --update to regenerate)")
	}

	if !result.Pass {
		return r.fail(name, result.RunID, result.Errors...)
	}

	fmt.Fprintf(r.w, "✓ %s\n", name)
	return ScenarioResult{Name: name, RunID: result.RunID, Pass: true}
}

// fail records a failed scenario in the text log and returns its result.
func (r *scenarioRunner) fail(name, runID string, errs ...string) ScenarioResult {
	fmt.Fprintf(r.w, "✗ %s\n", name)
	for _, e := range errs {
		fmt.Fprintf(r.w, "  %s\n", e)
	}
	return ScenarioResult{Name: name, RunID: runID, Pass: false, Errors: errs}
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// writeGoldenFile writes a trace snapshot, creating the golden directory.
func writeGoldenFile(goldenPath string, snapshot []byte) error {
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(goldenPath, snapshot, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	if result.Failed == 0 {
		return formatter.encode(CLIResponse{Status: "ok", Data: result})
	}

	msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	if err := formatter.Failure(CLIError{Code: ErrCodeScenarioFailed, Message: msg}, result); err != nil {
		return err
	}
	// Test failures = exit code 1
	return NewExitError(ExitFailure, msg)
}

// outputTestText outputs the test result as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
