package store

import (
	"context"
	"fmt"
)

// WriteRun inserts a run and its trace in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - a run id that already
// exists is silently ignored, trace included. Returns whether the run was
// inserted.
func (s *Store) WriteRun(ctx context.Context, run Run) (inserted bool, err error) {
	if run.ID == "" {
		return false, fmt.Errorf("write run: id is required")
	}
	if run.Scenario == "" {
		return false, fmt.Errorf("write run %s: scenario is required", run.ID)
	}

	failuresJSON, err := marshalFailures(run.Failures)
	if err != nil {
		return false, fmt.Errorf("write run %s: %w", run.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write run %s: begin tx: %w", run.ID, err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, scenario, phase, pass, outcome, error_code, error, failures, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Scenario,
		run.Phase,
		boolToInt(run.Pass),
		run.Outcome,
		run.ErrorCode,
		run.Error,
		failuresJSON,
		string(run.Snapshot),
	)
	if err != nil {
		return false, fmt.Errorf("write run %s: %w", run.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write run %s: rows affected: %w", run.ID, err)
	}
	if n == 0 {
		return false, nil
	}

	for _, e := range run.Trace {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO trace_events (run_id, seq, event)
			VALUES (?, ?, ?)
		`, run.ID, e.Seq, e.Name); err != nil {
			return false, fmt.Errorf("write run %s: trace event %d: %w", run.ID, e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write run %s: commit: %w", run.ID, err)
	}
	return true, nil
}
