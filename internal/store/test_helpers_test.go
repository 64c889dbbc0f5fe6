package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/lateinit/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEvent creates a trace event with minimal fields.
func createTestEvent(runID string, seq int64, op, target, outcome string) ir.EventRecord {
	return ir.EventRecord{
		RunID:   runID,
		Seq:     seq,
		Op:      op,
		Target:  target,
		Outcome: outcome,
	}
}
