package store

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestWriteRun_ReadRun(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	run := createTestRun("run-1", "onion_order")
	run.Pass = false
	run.Outcome = "failure"
	run.ErrorCode = "NEVER_INVOKED"
	run.Error = "test_method: chain of interceptors never invoked the underlying operation: [foo]"
	run.Failures = []string{"Assertion failed: trace_equals"}

	inserted, err := s.WriteRun(ctx, run)
	if err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	if !inserted {
		t.Fatal("WriteRun() inserted = false for a new run")
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if got.Seq == 0 {
		t.Error("Seq not assigned")
	}
	got.Seq = 0
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("ReadRun() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	run := createTestRun("run-1", "a")
	if _, err := s.WriteRun(ctx, run); err != nil {
		t.Fatalf("first WriteRun() failed: %v", err)
	}

	changed := run
	changed.Scenario = "b"
	changed.Trace = []Event{{Seq: 1, Name: "other"}}
	inserted, err := s.WriteRun(ctx, changed)
	if err != nil {
		t.Fatalf("second WriteRun() failed: %v", err)
	}
	if inserted {
		t.Error("duplicate run id was inserted")
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if got.Scenario != "a" {
		t.Errorf("Scenario = %q, want original %q", got.Scenario, "a")
	}
	if len(got.Trace) != 2 {
		t.Errorf("trace has %d events, want the original 2", len(got.Trace))
	}
}

func TestWriteRun_Validation(t *testing.T) {
	s := createTestStore(t)

	if _, err := s.WriteRun(t.Context(), Run{Scenario: "x"}); err == nil {
		t.Error("expected error for missing id")
	}
	if _, err := s.WriteRun(t.Context(), Run{ID: "r"}); err == nil {
		t.Error("expected error for missing scenario")
	}
}

func TestWriteRun_DuplicateTraceSeqRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	run := createTestRun("run-1", "a")
	run.Trace = []Event{{Seq: 1, Name: "x"}, {Seq: 1, Name: "y"}}
	if _, err := s.WriteRun(ctx, run); err == nil {
		t.Fatal("expected error for duplicate trace seq")
	}

	_, err := s.ReadRun(ctx, "run-1")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ReadRun() error = %v, want sql.ErrNoRows after rollback", err)
	}
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(t.Context(), "missing")
	if err != sql.ErrNoRows {
		t.Errorf("ReadRun() error = %v, want sql.ErrNoRows", err)
	}
}

func TestReadRun_EmptyCollections(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	run := createTestRun("run-1", "a")
	run.Trace = nil
	if _, err := s.WriteRun(ctx, run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if got.Trace == nil || len(got.Trace) != 0 {
		t.Errorf("Trace = %#v, want empty non-nil slice", got.Trace)
	}
	if got.Failures == nil || len(got.Failures) != 0 {
		t.Errorf("Failures = %#v, want empty non-nil slice", got.Failures)
	}
}

func TestReadRuns_OrderAndFilters(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	runs := []Run{
		createTestRun("r1", "onion"),
		createTestRun("r2", "skip"),
		createTestRun("r3", "onion"),
	}
	runs[1].Pass = false
	runs[1].Trace = []Event{{Seq: 1, Name: "skip:foo"}}
	for _, r := range runs {
		if _, err := s.WriteRun(ctx, r); err != nil {
			t.Fatalf("WriteRun(%s) failed: %v", r.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter RunFilter
		want   []string
	}{
		{"all", RunFilter{}, []string{"r1", "r2", "r3"}},
		{"by scenario", RunFilter{Scenario: "onion"}, []string{"r1", "r3"}},
		{"by event", RunFilter{Event: "skip:foo"}, []string{"r2"}},
		{"failed only", RunFilter{FailedOnly: true}, []string{"r2"}},
		{"limit keeps newest", RunFilter{Limit: 2}, []string{"r2", "r3"}},
		{"combined", RunFilter{Scenario: "onion", Event: "test", Limit: 1}, []string{"r3"}},
		{"no match", RunFilter{Scenario: "ghost"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ReadRuns(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ReadRuns() failed: %v", err)
			}
			ids := []string{}
			for _, r := range got {
				ids = append(ids, r.ID)
				if r.Trace != nil {
					t.Errorf("ReadRuns() loaded trace for %s", r.ID)
				}
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("ReadRuns() ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadRuns_InvalidFilter(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRuns(t.Context(), RunFilter{Limit: -1})
	if err == nil {
		t.Fatal("ReadRuns() with negative limit should fail")
	}
	if !strings.Contains(err.Error(), "compile run filter") {
		t.Errorf("error = %v, want compile run filter", err)
	}
}

func TestReadTrace_Ordered(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	run := createTestRun("run-1", "a")
	run.Trace = []Event{{Seq: 3, Name: "c"}, {Seq: 1, Name: "a"}, {Seq: 2, Name: "b"}}
	if _, err := s.WriteRun(ctx, run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	got, err := s.ReadTrace(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadTrace() failed: %v", err)
	}
	want := []Event{{Seq: 1, Name: "a"}, {Seq: 2, Name: "b"}, {Seq: 3, Name: "c"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadTrace() mismatch (-want +got):\n%s", diff)
	}

	empty, err := s.ReadTrace(ctx, "unknown")
	if err != nil {
		t.Fatalf("ReadTrace(unknown) failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ReadTrace(unknown) = %#v, want empty slice", empty)
	}
}

func TestFailuresRoundTrip_SpecialCharacters(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	run := createTestRun("run-1", "a")
	run.Failures = []string{"expected <a> & \"b\"", "line\nbreak"}
	if _, err := s.WriteRun(ctx, run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	var raw string
	if err := s.db.QueryRow("SELECT failures FROM runs WHERE id = ?", "run-1").Scan(&raw); err != nil {
		t.Fatalf("query failures: %v", err)
	}
	if strings.Contains(raw, `\u003c`) {
		t.Errorf("failures stored with HTML escaping: %s", raw)
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if diff := cmp.Diff(run.Failures, got.Failures); diff != "" {
		t.Errorf("Failures mismatch (-want +got):\n%s", diff)
	}
}

func TestUUIDv7Generator(t *testing.T) {
	var gen RunIDGenerator = UUIDv7Generator{}

	first := gen.Generate()
	parsed, err := uuid.Parse(first)
	if err != nil {
		t.Fatalf("Generate() returned invalid UUID %q: %v", first, err)
	}
	if parsed.Version() != uuid.Version(7) {
		t.Errorf("version = %d, want 7", parsed.Version())
	}

	seen := map[string]bool{first: true}
	for i := 0; i < 100; i++ {
		id := gen.Generate()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
