package store

import "github.com/roach88/intercept/internal/querysql"

// Run is one recorded scenario execution.
type Run struct {
	// ID is the run id (UUIDv7 for CLI runs).
	ID string

	Scenario string
	Phase    string

	// Pass reports whether every assertion held.
	Pass bool

	// Outcome is "void", "value" or "failure".
	Outcome   string
	ErrorCode string
	Error     string

	// Failures are assertion failure messages. Empty (not nil) on read.
	Failures []string

	// Snapshot is the run's canonical JSON snapshot.
	Snapshot []byte

	// Trace is written with the run. ReadRun fills it; ReadRuns does not.
	Trace []Event

	// Seq is the logical insertion order assigned by the store.
	Seq int64
}

// Event is one trace entry of a run.
type Event struct {
	Seq  int64
	Name string
}

// RunFilter narrows ReadRuns. Zero values match everything.
type RunFilter struct {
	Scenario string

	// Event keeps runs whose trace contains this event.
	Event string

	// FailedOnly keeps runs where an assertion failed.
	FailedOnly bool

	// Limit caps the number of runs returned, keeping the most recent.
	Limit int
}

// query builds the runs query selected by f.
func (f RunFilter) query() querysql.Select {
	var preds []querysql.Predicate
	if f.Scenario != "" {
		preds = append(preds, querysql.Equals{Column: "scenario", Value: f.Scenario})
	}
	if f.Event != "" {
		preds = append(preds, querysql.HasEvent{Event: f.Event})
	}
	if f.FailedOnly {
		preds = append(preds, querysql.Equals{Column: "pass", Value: false})
	}
	return querysql.Select{
		Columns: runColumns,
		Filter:  querysql.And{Predicates: preds},
		Limit:   f.Limit,
	}
}
