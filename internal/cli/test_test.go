package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lateinit/internal/store"
	"github.com/roach88/lateinit/internal/testutil"
)

func newTestOptions(format string) *TestOptions {
	return &TestOptions{
		RootOptions: &RootOptions{Format: format},
		RunIDs:      testutil.NewFixedRunID("test-run"),
	}
}

func runTestDirs(opts *TestOptions, specs, scenarios string) (string, error) {
	return capture(func(cmd *cobra.Command) error {
		return runTests(opts, specs, scenarios, cmd)
	})
}

func TestTestCommand_AllPass(t *testing.T) {
	out, err := runTestDirs(newTestOptions("text"), specsDir, scenariosDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ mutable_basic\n")
	assert.Contains(t, out, "✓ readonly_basic\n")
	assert.Contains(t, out, "Test Summary: 2 passed, 0 failed, 2 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommand_Filter(t *testing.T) {
	opts := newTestOptions("text")
	opts.Filter = "readonly_*"

	out, err := runTestDirs(opts, specsDir, scenariosDir)
	require.NoError(t, err)
	assert.NotContains(t, out, "mutable_basic")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommand_Failure(t *testing.T) {
	out, err := runTestDirs(newTestOptions("text"), specsDir, failingDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ wrong_outcome\n")
	assert.Contains(t, out, "expected outcome ok, got already_initialized")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommand_JSON(t *testing.T) {
	out, err := runTestDirs(newTestOptions("json"), specsDir, failingDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Error  *CLIError  `json:"error"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeScenarioFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "wrong_outcome", resp.Data.Scenarios[0].Name)
	assert.Equal(t, "test-run", resp.Data.Scenarios[0].RunID)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Errors)
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	dir := copyTree(t, scenariosDir)
	golden := filepath.Join(dir, "golden", "readonly_basic.golden")
	require.NoError(t, os.WriteFile(golden, []byte("scenario: readonly_basic\n1 new d ok class=D\n"), 0644))

	out, err := runTestDirs(newTestOptions("text"), specsDir, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ readonly_basic")
	assert.Contains(t, out, "trace does not match golden file")
	assert.Contains(t, out, "✓ mutable_basic")
}

func TestTestCommand_Update(t *testing.T) {
	dir := copyTree(t, scenariosDir)
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "golden")))

	opts := newTestOptions("text")
	opts.Update = true
	out, err := runTestDirs(opts, specsDir, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ readonly_basic (golden updated)")

	got, err := os.ReadFile(filepath.Join(dir, "golden", "readonly_basic.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(scenariosDir, "golden", "readonly_basic.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	assert.FileExists(t, filepath.Join(dir, "golden", "mutable_basic.golden"))

	// Regenerated goldens pass on the next run
	out, err = runTestDirs(newTestOptions("text"), specsDir, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2 passed, 0 failed")
}

func TestTestCommand_Persists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	opts := newTestOptions("text")
	opts.Database = dbPath
	opts.Filter = "mutable_*"

	_, err := runTestDirs(opts, specsDir, scenariosDir)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ReadRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "mutable_basic", runs[0].Scenario)
	assert.Equal(t, 5, runs[0].Events)
}

func TestTestCommand_NoScenarios(t *testing.T) {
	out, err := runTestDirs(newTestOptions("text"), specsDir, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)

	out, err = runTestDirs(newTestOptions("json"), specsDir, t.TempDir())
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestTestCommand_MissingDirs(t *testing.T) {
	_, err := runTestDirs(newTestOptions("text"), filepath.Join("testdata", "nope"), scenariosDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "specs directory not found")

	_, err = runTestDirs(newTestOptions("text"), specsDir, filepath.Join("testdata", "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommand_Args(t *testing.T) {
	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), specsDir)
	assert.Error(t, err)
}

func TestFindScenarioFiles(t *testing.T) {
	files, err := findScenarioFiles(scenariosDir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(scenariosDir, "mutable_basic.yaml"),
		filepath.Join(scenariosDir, "readonly_basic.yaml"),
	}, files)

	_, err = findScenarioFiles(scenariosDir, "[")
	assert.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("a", "b", "golden", "readonly_basic.golden"),
		goldenFilePath(filepath.Join("a", "b", "readonly_basic.yaml")))
}
