package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/intercept/internal/ir"
)

// Snapshot renders the parts of a result that golden files pin down:
// scenario identity, trace and outcome. The encoding is canonical JSON, so
// identical runs produce byte-identical snapshots.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make([]any, len(result.Trace))
	for i, e := range result.Trace {
		trace[i] = map[string]any{"seq": e.Seq, "event": e.Event}
	}

	outcome := map[string]any{"kind": result.Outcome}
	if result.Value != nil {
		outcome["value"] = snapshotValue(result.Value)
	}
	if result.ErrorCode != "" {
		outcome["error_code"] = result.ErrorCode
	}
	if result.Error != "" {
		outcome["error"] = result.Error
	}

	snapshot := map[string]any{
		"scenario_name": scenarioName,
		"run_id":        result.RunID,
		"trace":         trace,
		"outcome":       outcome,
	}
	if result.Arguments != nil {
		args := make([]any, len(result.Arguments))
		for i, a := range result.Arguments {
			args[i] = snapshotValue(a)
		}
		snapshot["arguments"] = args
	}
	return ir.MarshalCanonical(snapshot)
}

// snapshotValue keeps values canonical JSON can encode and renders the rest
// by type name.
func snapshotValue(v any) any {
	if _, err := ir.MarshalCanonical(v); err != nil {
		return "<" + ir.TypeNameOf(v) + ">"
	}
	return v
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(t.Context(), scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
