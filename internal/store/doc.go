// Package store provides SQLite-backed storage for conformance run logs.
//
// The store is an append-only log with:
//   - Runs: one record per scenario execution (id, scenario, pass, event count)
//   - Events: the trace of a run, one row per step
//
// # Critical Patterns
//
// Idempotency:
//   - UNIQUE(run_id, seq) on events; rewriting the same run is a no-op
//   - Runs are upserted so a re-run with a pinned id refreshes its verdict
//
// Logical Time:
//   - Events are ordered by seq (logical clock), NEVER timestamps
//   - All event queries use ORDER BY seq ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Events must reference an existing run
//
// The store never holds guarded property values themselves, only their
// rendered form as it appeared in a trace.
package store
