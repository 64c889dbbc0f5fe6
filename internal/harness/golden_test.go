package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Testdata(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestAssertGolden_FromResult(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/readonly_basic.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	AssertGolden(t, "readonly_basic", result)
}

func TestSnapshot(t *testing.T) {
	got := string(Snapshot("s", "", sampleTrace[:3]))
	want := strings.Join([]string{
		"scenario: s",
		"1 new d ok class=D",
		"2 read d.q not_initialized",
		`3 write d.q ok "x"`,
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestSnapshot_RunID(t *testing.T) {
	got := string(Snapshot("s", "run-1", nil))
	assert.Equal(t, "scenario: s\nrun_id: run-1\n", got)
}
