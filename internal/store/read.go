package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/lateinit/internal/ir"
)

// ErrRunNotFound is returned by ReadRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns a single run record.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.RunRecord, error) {
	var run ir.RunRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, scenario, pass, events
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.Scenario, &run.Pass, &run.Events)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.RunRecord{}, fmt.Errorf("read run %q: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return ir.RunRecord{}, fmt.Errorf("read run %q: %w", id, err)
	}
	return run, nil
}

// ReadRuns returns all runs in insertion order.
// Returns an empty slice (not nil) if the store has no runs.
func (s *Store) ReadRuns(ctx context.Context) ([]ir.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario, pass, events
		FROM runs
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.RunRecord{}
	for rows.Next() {
		var run ir.RunRecord
		if err := rows.Scan(&run.ID, &run.Scenario, &run.Pass, &run.Events); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadEvents returns the events of a run ordered by seq.
// Returns an empty slice (not nil) if the run has no events.
func (s *Store) ReadEvents(ctx context.Context, runID string) ([]ir.EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, op, target, outcome, value
		FROM events
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []ir.EventRecord{}
	for rows.Next() {
		var ev ir.EventRecord
		if err := rows.Scan(&ev.RunID, &ev.Seq, &ev.Op, &ev.Target, &ev.Outcome, &ev.Value); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
