package harness

import (
	"fmt"
	"reflect"
)

// TraceEvent is one entry of a scenario trace.
type TraceEvent struct {
	Seq   int64  `json:"seq"`
	Event string `json:"event"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates all assertions held.
	Pass bool `json:"pass"`

	RunID string `json:"run_id"`

	// Trace contains events in the order they were recorded.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Outcome is "void", "value" or "failure".
	Outcome string `json:"outcome"`

	// Value is the phase value for value-returning phases.
	Value any `json:"value,omitempty"`

	// ErrorCode is the engine code of the failure, if any.
	ErrorCode string `json:"error_code,omitempty"`

	// Error is the failure message, if any.
	Error string `json:"error,omitempty"`

	// Arguments are the values the callable received. Nil when it never ran.
	Arguments []any `json:"arguments,omitempty"`

	// err is the failure itself, for assertions that need errors.As.
	err error
}

// NewResult creates a new passing result.
func NewResult(runID string) *Result {
	return &Result{
		Pass:   true,
		RunID:  runID,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Events returns the trace event names in order.
func (r *Result) Events() []string {
	names := make([]string, len(r.Trace))
	for i, e := range r.Trace {
		names[i] = e.Event
	}
	return names
}

// Err returns the phase failure, or nil.
func (r *Result) Err() error { return r.err }

var namedTypes = map[string]reflect.Type{
	"string":         reflect.TypeFor[string](),
	"bool":           reflect.TypeFor[bool](),
	"int":            reflect.TypeFor[int](),
	"int8":           reflect.TypeFor[int8](),
	"int16":          reflect.TypeFor[int16](),
	"int32":          reflect.TypeFor[int32](),
	"int64":          reflect.TypeFor[int64](),
	"uint":           reflect.TypeFor[uint](),
	"uint8":          reflect.TypeFor[uint8](),
	"uint16":         reflect.TypeFor[uint16](),
	"uint32":         reflect.TypeFor[uint32](),
	"uint64":         reflect.TypeFor[uint64](),
	"float32":        reflect.TypeFor[float32](),
	"float64":        reflect.TypeFor[float64](),
	"any":            reflect.TypeFor[any](),
	"error":          reflect.TypeFor[error](),
	"[]string":       reflect.TypeFor[[]string](),
	"[]int":          reflect.TypeFor[[]int](),
	"[]any":          reflect.TypeFor[[]any](),
	"map[string]any": reflect.TypeFor[map[string]any](),
}

// TypeOf maps a scenario type name to a Go type.
func TypeOf(name string) (reflect.Type, error) {
	t, ok := namedTypes[name]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	return t, nil
}
