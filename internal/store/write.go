package store

import (
	"context"
	"fmt"

	"github.com/roach88/lateinit/internal/ir"
)

// WriteRun inserts or refreshes a run record.
// A run written again with the same id keeps its events and takes the new
// scenario name, verdict and event count.
func (s *Store) WriteRun(ctx context.Context, run ir.RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("write run: id is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, pass, events)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			scenario = excluded.scenario,
			pass = excluded.pass,
			events = excluded.events
	`, run.ID, run.Scenario, run.Pass, run.Events)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteEvent inserts one trace event.
// Uses ON CONFLICT DO NOTHING for idempotency - a duplicate (run_id, seq) is
// silently ignored. The run must already exist (foreign key constraint).
func (s *Store) WriteEvent(ctx context.Context, ev ir.EventRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (run_id, seq, op, target, outcome, value)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`, ev.RunID, ev.Seq, ev.Op, ev.Target, ev.Outcome, ev.Value)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// WriteTrace writes a run and all of its events in one transaction.
func (s *Store) WriteTrace(ctx context.Context, run ir.RunRecord, events []ir.EventRecord) (err error) {
	if run.ID == "" {
		return fmt.Errorf("write trace: run id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write trace: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, pass, events)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			scenario = excluded.scenario,
			pass = excluded.pass,
			events = excluded.events
	`, run.ID, run.Scenario, run.Pass, run.Events); err != nil {
		return fmt.Errorf("write trace: run: %w", err)
	}

	for _, ev := range events {
		if ev.RunID != run.ID {
			err = fmt.Errorf("write trace: event seq %d belongs to run %q, not %q", ev.Seq, ev.RunID, run.ID)
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO events (run_id, seq, op, target, outcome, value)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, seq) DO NOTHING
		`, ev.RunID, ev.Seq, ev.Op, ev.Target, ev.Outcome, ev.Value); err != nil {
			return fmt.Errorf("write trace: event seq %d: %w", ev.Seq, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("write trace: commit: %w", err)
	}
	return nil
}
