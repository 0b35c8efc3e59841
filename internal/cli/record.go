package cli

import (
	"context"
	"fmt"

	"github.com/roach88/intercept/internal/harness"
	"github.com/roach88/intercept/internal/store"
)

// recorder writes scenario results to the run store. A nil recorder
// records nothing.
type recorder struct {
	st  *store.Store
	ids store.RunIDGenerator
}

// openRecorder opens the store at path. An empty path disables recording.
func openRecorder(path string, ids store.RunIDGenerator) (*recorder, error) {
	if path == "" {
		return nil, nil
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = store.UUIDv7Generator{}
	}
	return &recorder{st: st, ids: ids}, nil
}

func (r *recorder) Close() error {
	if r == nil {
		return nil
	}
	return r.st.Close()
}

// record stores one run and returns its id. The id is generated here, not
// taken from the result: results carry a fixed id so snapshots stay
// deterministic.
func (r *recorder) record(ctx context.Context, scenario *harness.Scenario, result *harness.Result) (string, error) {
	if r == nil {
		return "", nil
	}

	snapshot, err := harness.Snapshot(scenario.Name, result)
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", scenario.Name, err)
	}
	phase, err := scenario.PhaseOf()
	if err != nil {
		return "", err
	}

	run := store.Run{
		ID:        r.ids.Generate(),
		Scenario:  scenario.Name,
		Phase:     phase.String(),
		Pass:      result.Pass,
		Outcome:   result.Outcome,
		ErrorCode: result.ErrorCode,
		Error:     result.Error,
		Failures:  result.Errors,
		Snapshot:  snapshot,
		Trace:     make([]store.Event, len(result.Trace)),
	}
	for i, e := range result.Trace {
		run.Trace[i] = store.Event{Seq: e.Seq, Name: e.Event}
	}

	if _, err := r.st.WriteRun(ctx, run); err != nil {
		return "", err
	}
	return run.ID, nil
}
