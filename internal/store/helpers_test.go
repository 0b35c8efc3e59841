package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temp directory for testing.
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

// createTestRun creates a passing run with a two-event trace.
func createTestRun(id, scenario string) Run {
	return Run{
		ID:       id,
		Scenario: scenario,
		Phase:    "test_method",
		Pass:     true,
		Outcome:  "void",
		Snapshot: []byte(`{"scenario_name":"` + scenario + `"}`),
		Trace: []Event{
			{Seq: 1, Name: "before:foo"},
			{Seq: 2, Name: "test"},
		},
	}
}
