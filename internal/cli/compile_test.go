package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lateinit/internal/compiler"
	"github.com/roach88/lateinit/internal/ir"
)

func TestCompileValidSpecs(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), specsDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled 2 class(es), 2 property(ies)")
	assert.Contains(t, out, "  C: p(mutable)")
	assert.Contains(t, out, "  D: q(readonly, ignore_initial_undefined)")
}

func TestCompileValidSpecsJSON(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), specsDir)
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ir.IRVersion, resp.Data.IRVersion)
	require.Len(t, resp.Data.Classes, 2)
	assert.Equal(t, "Readonly property that skips the first undefined write", resp.Data.Classes[1].Purpose)
}

func TestCompileOutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "compiled.json")

	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), specsDir, "--output", outputFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote IR to "+outputFile)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, ir.IRVersion, result.IRVersion)
	assert.Len(t, result.Classes, 2)
}

func TestCompileMissingDirectory(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), filepath.Join("testdata", "nope"))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestCompileInvalidMode(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), filepath.Join("testdata", "invalid", "bad_mode"))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "✗ Compilation failed")
	assert.Contains(t, out, "E103: class.C: property p: invalid mode \"frozen\"")
}

func TestCompileInvalidNamesJSON(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), filepath.Join("testdata", "invalid", "bad_names"))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Error  *CLIError  `json:"error"`
		Data   []CLIError `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, compiler.ErrClassNameInvalid, resp.Error.Code)
	assert.Equal(t, compiler.ErrInvalidPropertyName, resp.Data[1].Code)
}

func TestCalculateStats(t *testing.T) {
	stats := calculateStats(&CompilationResult{Classes: []ir.ClassSpec{
		{Name: "C", Properties: []ir.PropertySpec{{Name: "p", Mode: ir.ModeMutable}}},
		{Name: "D", Properties: []ir.PropertySpec{
			{Name: "q", Mode: ir.ModeReadonly},
			{Name: "r", Mode: ir.ModeReadonly},
		}},
	}})

	assert.Equal(t, CompilationStats{ClassCount: 2, PropertyCount: 3, ReadonlyCount: 2}, stats)
}
