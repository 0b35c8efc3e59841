package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/intercept/internal/querysql"
)

var runColumns = []string{"seq", "id", "scenario", "phase", "pass", "outcome", "error_code", "error", "failures", "snapshot"}

// ReadRun retrieves a single run by ID, including its trace.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+strings.Join(runColumns, ", ")+` FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		return Run{}, err
	}

	run.Trace, err = s.ReadTrace(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// ReadRuns returns runs matching filter ordered by seq ASC, id ASC.
// Traces are not loaded; use ReadTrace or ReadRun.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query, args, err := querysql.Compile(filter.query())
	if err != nil {
		return nil, fmt.Errorf("compile run filter: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	// Compiled queries return newest first.
	slices.Reverse(runs)
	return runs, nil
}

// ReadTrace returns the trace of a run ordered by seq ASC.
// Returns an empty slice (not nil) for a run with no events or an unknown id.
func (s *Store) ReadTrace(ctx context.Context, runID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, event
		FROM trace_events
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query trace: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.Name); err != nil {
			return nil, fmt.Errorf("scan trace event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trace: %w", err)
	}
	return events, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun scans one row selected with runColumns. sql.ErrNoRows is returned
// unwrapped so callers can compare it directly.
func scanRun(row rowScanner) (Run, error) {
	var (
		run          Run
		pass         int
		failuresJSON string
		snapshot     string
	)
	err := row.Scan(
		&run.Seq, &run.ID, &run.Scenario, &run.Phase, &pass,
		&run.Outcome, &run.ErrorCode, &run.Error, &failuresJSON, &snapshot,
	)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.Pass = pass != 0
	run.Snapshot = []byte(snapshot)
	run.Failures, err = unmarshalFailures(failuresJSON)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	return run, nil
}
