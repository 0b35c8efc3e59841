package harness

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/intercept/internal/fault"
	"github.com/roach88/intercept/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Diff     string   // cmp.Diff output, when available
	Trace    []string // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Diff != "" {
		fmt.Fprintf(&buf, "  Diff (-want +got):\n%s", e.Diff)
	}

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, event)
	}

	return buf.String()
}

func assertTraceEquals(result *Result, a Assertion) error {
	got := result.Events()
	if diff := cmp.Diff(a.Events, got); diff != "" {
		return &AssertionError{
			Type:     AssertTraceEquals,
			Expected: fmt.Sprintf("%q", a.Events),
			Actual:   fmt.Sprintf("%q", got),
			Diff:     diff,
			Trace:    got,
		}
	}
	return nil
}

func assertTraceContains(result *Result, a Assertion) error {
	got := result.Events()
	if !slices.Contains(got, a.Event) {
		return &AssertionError{
			Type:     AssertTraceContains,
			Expected: fmt.Sprintf("event %q in trace", a.Event),
			Actual:   "not found in trace",
			Trace:    got,
		}
	}
	return nil
}

func assertTraceAbsent(result *Result, a Assertion) error {
	got := result.Events()
	if i := slices.Index(got, a.Event); i >= 0 {
		return &AssertionError{
			Type:     AssertTraceAbsent,
			Expected: fmt.Sprintf("event %q absent from trace", a.Event),
			Actual:   fmt.Sprintf("found at position %d", i+1),
			Trace:    got,
		}
	}
	return nil
}

// assertErrorCode checks the failure classification. "none" expects success;
// "panic" expects a recovered panic anywhere in the chain; anything else
// must equal the engine error code.
func assertErrorCode(result *Result, a Assertion) error {
	var ok bool
	actual := result.ErrorCode
	switch a.Code {
	case CodeNone:
		ok = result.err == nil
		if !ok {
			actual = result.Error
		}
	case CodePanic:
		ok = fault.IsPanic(result.err)
	default:
		ok = result.ErrorCode == a.Code
	}
	if actual == "" {
		actual = CodeNone
		if result.err != nil {
			actual = fmt.Sprintf("uncoded failure: %s", result.Error)
		}
	}

	if !ok {
		return &AssertionError{
			Type:     AssertErrorCode,
			Expected: a.Code,
			Actual:   actual,
			Trace:    result.Events(),
		}
	}
	if a.Contains != "" && !strings.Contains(result.Error, a.Contains) {
		return &AssertionError{
			Type:     AssertErrorCode,
			Expected: fmt.Sprintf("message containing %q", a.Contains),
			Actual:   result.Error,
			Trace:    result.Events(),
		}
	}
	return nil
}

func assertResultEquals(result *Result, a Assertion) error {
	if !valuesEqual(a.Value, result.Value) {
		return &AssertionError{
			Type:     AssertResultEquals,
			Expected: fmt.Sprintf("%v", a.Value),
			Actual:   fmt.Sprintf("%v (outcome %s)", result.Value, result.Outcome),
			Trace:    result.Events(),
		}
	}
	return nil
}

func assertArgumentsEqual(result *Result, a Assertion) error {
	if result.Arguments == nil {
		return &AssertionError{
			Type:     AssertArgumentsEqual,
			Expected: fmt.Sprintf("%v", a.Values),
			Actual:   "callable never ran",
			Trace:    result.Events(),
		}
	}
	if !valuesEqual(a.Values, result.Arguments) {
		return &AssertionError{
			Type:     AssertArgumentsEqual,
			Expected: fmt.Sprintf("%v", a.Values),
			Actual:   fmt.Sprintf("%v", result.Arguments),
			Trace:    result.Events(),
		}
	}
	return nil
}

// valuesEqual compares values by their canonical JSON form, so numbers of
// different Go types with the same value are equal.
func valuesEqual(expected, actual any) bool {
	want, err := ir.MarshalCanonical(expected)
	if err != nil {
		return false
	}
	got, err := ir.MarshalCanonical(actual)
	if err != nil {
		return false
	}
	return bytes.Equal(want, got)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceEquals:
			err = assertTraceEquals(result, assertion)
		case AssertTraceContains:
			err = assertTraceContains(result, assertion)
		case AssertTraceAbsent:
			err = assertTraceAbsent(result, assertion)
		case AssertErrorCode:
			err = assertErrorCode(result, assertion)
		case AssertResultEquals:
			err = assertResultEquals(result, assertion)
		case AssertArgumentsEqual:
			err = assertArgumentsEqual(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
