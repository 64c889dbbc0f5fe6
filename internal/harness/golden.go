package harness

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a trace as golden-file text: a header naming the
// scenario (and its pinned run id, if any) followed by one line per event.
//
//	scenario: readonly_basic
//	1 new d ok class=D
//	2 write d.q ok "x"
//	3 write d.q already_initialized "y"
func Snapshot(scenarioName, runID string, trace []TraceEvent) []byte {
	var b strings.Builder
	b.WriteString("scenario: " + scenarioName + "\n")
	if runID != "" {
		b.WriteString("run_id: " + runID + "\n")
	}
	for _, ev := range trace {
		b.WriteString(ev.String())
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	g := newGoldie(t)
	g.Assert(t, scenario.Name, Snapshot(scenario.Name, scenario.RunID, result.Trace))
	return nil
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := newGoldie(t)
	g.Assert(t, scenarioName, Snapshot(scenarioName, "", result.Trace))
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}
