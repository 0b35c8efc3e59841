// Package fault classifies failures raised while running user code.
//
// Most failures are recoverable: they are reported with context and the
// phase is marked failed. A small set of conditions is unrecoverable and
// must never be wrapped or converted; they propagate as-is (errors) or are
// re-panicked (panics).
package fault

import (
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
)

// ErrUnrecoverable marks an error that must propagate unwrapped.
// Wrap it with %w to mark a custom error as unrecoverable.
var ErrUnrecoverable = errors.New("unrecoverable failure")

// Unrecoverable may be implemented by error or panic values to opt out of
// wrapping.
type Unrecoverable interface {
	Unrecoverable() bool
}

// Coded is implemented by failures that carry a stable code. Policy.WithCodes
// matches against it.
type Coded interface {
	FaultCode() string
}

// Classifier reports whether a failure value (error or recovered panic value)
// is unrecoverable.
type Classifier func(v any) bool

// Policy decides which failures are unrecoverable.
//
// The zero value is usable and equivalent to DefaultPolicy.
// Policy is immutable; With and WithCodes return extended copies.
type Policy struct {
	classifiers []Classifier
}

// DefaultPolicy treats ErrUnrecoverable and Unrecoverable values as fatal.
func DefaultPolicy() Policy {
	return Policy{}
}

// With returns a copy of p that additionally consults the given classifiers.
func (p Policy) With(classifiers ...Classifier) Policy {
	return Policy{classifiers: append(slices.Clone(p.classifiers), classifiers...)}
}

// WithCodes returns a copy of p that treats Coded failures with any of the
// given codes as fatal.
func (p Policy) WithCodes(codes ...string) Policy {
	if len(codes) == 0 {
		return p
	}
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return p.With(func(v any) bool {
		var c Coded
		switch val := v.(type) {
		case error:
			if !errors.As(val, &c) {
				return false
			}
		case Coded:
			c = val
		default:
			return false
		}
		_, ok := set[c.FaultCode()]
		return ok
	})
}

// IsFatal reports whether v must propagate without being wrapped.
func (p Policy) IsFatal(v any) bool {
	if v == nil {
		return false
	}
	if err, ok := v.(error); ok {
		if errors.Is(err, ErrUnrecoverable) {
			return true
		}
		var u Unrecoverable
		if errors.As(err, &u) && u.Unrecoverable() {
			return true
		}
	} else if u, ok := v.(Unrecoverable); ok && u.Unrecoverable() {
		return true
	}
	for _, c := range p.classifiers {
		if c(v) {
			return true
		}
	}
	return false
}

// Capture converts a panic into a *PanicError stored in *errp.
// Fatal panic values are re-panicked unchanged.
//
// Must be deferred directly:
//
//	defer policy.Capture(&err)
func (p Policy) Capture(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if p.IsFatal(r) {
		panic(r)
	}
	*errp = &PanicError{Value: r, Stack: debug.Stack()}
}

// PanicError is a recovered panic converted to an error.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsPanic reports whether err is or wraps a recovered panic.
func IsPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}
