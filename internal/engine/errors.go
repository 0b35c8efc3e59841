package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/intercept/internal/ir"
)

// ResolutionErrorCode categorizes argument resolution failures.
type ResolutionErrorCode string

const (
	// ErrCodeNoResolver indicates no registered resolver supports a parameter.
	ErrCodeNoResolver ResolutionErrorCode = "NO_RESOLVER"

	// ErrCodeAmbiguousResolvers indicates more than one resolver supports a
	// parameter.
	ErrCodeAmbiguousResolvers ResolutionErrorCode = "AMBIGUOUS_RESOLVERS"

	// ErrCodeTypeMismatch indicates a resolved value is not assignable to the
	// declared parameter type.
	ErrCodeTypeMismatch ResolutionErrorCode = "TYPE_MISMATCH"

	// ErrCodeResolutionFailed indicates a resolver itself failed.
	ErrCodeResolutionFailed ResolutionErrorCode = "RESOLUTION_FAILED"
)

// ResolutionError reports why a parameter could not be resolved.
//
// It carries enough context (parameter, callable, resolver identities) to
// diagnose the failure without re-running.
type ResolutionError struct {
	Code ResolutionErrorCode

	Message string

	// Parameter is the parameter being resolved.
	Parameter ir.Parameter

	// Executable owns the parameter.
	Executable *ir.Executable

	// Resolvers names the resolvers involved: every supporting resolver for
	// ErrCodeAmbiguousResolvers, the producing resolver otherwise.
	Resolvers []string

	// ValueType is the runtime type of the rejected value, or "nil"
	// (ErrCodeTypeMismatch only).
	ValueType string

	// Cause is the resolver's own failure (ErrCodeResolutionFailed only).
	Cause error
}

func (e *ResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ResolutionError) Unwrap() error { return e.Cause }

// FaultCode exposes Code to fault.Policy.WithCodes.
func (e *ResolutionError) FaultCode() string { return string(e.Code) }

func describe(exec *ir.Executable) string {
	return fmt.Sprintf("%s [%s]", exec.Kind.Label(), exec.Signature())
}

func newNoResolverError(p ir.Parameter, exec *ir.Executable) *ResolutionError {
	return &ResolutionError{
		Code:       ErrCodeNoResolver,
		Message:    fmt.Sprintf("no parameter resolver registered for parameter [%s] in %s", p, describe(exec)),
		Parameter:  p,
		Executable: exec,
	}
}

func newAmbiguousError(p ir.Parameter, exec *ir.Executable, resolvers []string) *ResolutionError {
	return &ResolutionError{
		Code: ErrCodeAmbiguousResolvers,
		Message: fmt.Sprintf("discovered multiple competing parameter resolvers for parameter [%s] in %s: %s",
			p, describe(exec), strings.Join(resolvers, ", ")),
		Parameter:  p,
		Executable: exec,
		Resolvers:  resolvers,
	}
}

func newTypeMismatchError(p ir.Parameter, exec *ir.Executable, resolver string, v any) *ResolutionError {
	var msg string
	if v == nil {
		msg = fmt.Sprintf("parameter resolver [%s] resolved a nil value for parameter [%s] in %s, but a non-nillable value of type [%s] is required",
			resolver, p, describe(exec), p.Type)
	} else {
		msg = fmt.Sprintf("parameter resolver [%s] resolved a value of type [%s] for parameter [%s] in %s, but a value assignment compatible with [%s] is required",
			resolver, ir.TypeNameOf(v), p, describe(exec), p.Type)
	}
	return &ResolutionError{
		Code:       ErrCodeTypeMismatch,
		Message:    msg,
		Parameter:  p,
		Executable: exec,
		Resolvers:  []string{resolver},
		ValueType:  ir.TypeNameOf(v),
	}
}

func newResolutionFailure(p ir.Parameter, exec *ir.Executable, resolver string, cause error) *ResolutionError {
	return &ResolutionError{
		Code:       ErrCodeResolutionFailed,
		Message:    fmt.Sprintf("failed to resolve parameter [%s] in %s", p, describe(exec)),
		Parameter:  p,
		Executable: exec,
		Resolvers:  []string{resolver},
		Cause:      cause,
	}
}

func isResolutionCode(err error, code ResolutionErrorCode) bool {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsNoResolverFound reports whether err is a missing-resolver failure.
func IsNoResolverFound(err error) bool { return isResolutionCode(err, ErrCodeNoResolver) }

// IsAmbiguousResolvers reports whether err is a competing-resolvers failure.
func IsAmbiguousResolvers(err error) bool { return isResolutionCode(err, ErrCodeAmbiguousResolvers) }

// IsTypeMismatch reports whether err is a resolved-value type mismatch.
func IsTypeMismatch(err error) bool { return isResolutionCode(err, ErrCodeTypeMismatch) }

// IsParameterResolutionFailure reports whether err wraps a resolver failure.
func IsParameterResolutionFailure(err error) bool {
	return isResolutionCode(err, ErrCodeResolutionFailed)
}

// IntegrityCode categorizes chain integrity violations.
type IntegrityCode string

const (
	// ErrCodeNeverInvoked indicates the chain returned without reaching the
	// underlying operation.
	ErrCodeNeverInvoked IntegrityCode = "NEVER_INVOKED"

	// ErrCodeInvokedMoreThanOnce indicates the underlying operation was
	// reached a second time.
	ErrCodeInvokedMoreThanOnce IntegrityCode = "INVOKED_MORE_THAN_ONCE"
)

// ChainIntegrityError reports an interceptor chain that did not reach the
// underlying operation exactly once. It is never swallowed: once recorded it
// replaces whatever the chain returned.
type ChainIntegrityError struct {
	Code IntegrityCode

	Phase ir.Phase

	// Interceptors names every participating interceptor, outermost first.
	Interceptors []string

	// Cause is the error the chain returned, if any.
	Cause error
}

func (e *ChainIntegrityError) Error() string {
	what := "never invoked the underlying operation"
	if e.Code == ErrCodeInvokedMoreThanOnce {
		what = "invoked the underlying operation more than once"
	}
	msg := fmt.Sprintf("%s: chain of interceptors %s: [%s]", e.Phase, what, strings.Join(e.Interceptors, ", "))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ChainIntegrityError) Unwrap() error { return e.Cause }

// FaultCode exposes Code to fault.Policy.WithCodes.
func (e *ChainIntegrityError) FaultCode() string { return string(e.Code) }

// IsChainIntegrityViolation reports whether err is any chain integrity
// violation.
func IsChainIntegrityViolation(err error) bool {
	var ce *ChainIntegrityError
	return errors.As(err, &ce)
}

// IsNeverInvoked reports whether err is a never-invoked violation.
func IsNeverInvoked(err error) bool {
	var ce *ChainIntegrityError
	return errors.As(err, &ce) && ce.Code == ErrCodeNeverInvoked
}

// IsInvokedMoreThanOnce reports whether err is a multiply-invoked violation.
func IsInvokedMoreThanOnce(err error) bool {
	var ce *ChainIntegrityError
	return errors.As(err, &ce) && ce.Code == ErrCodeInvokedMoreThanOnce
}

// Code returns the stable code of an engine error, or "" when err carries
// none. Used by reporting and scenario assertions.
func Code(err error) string {
	var re *ResolutionError
	if errors.As(err, &re) {
		return string(re.Code)
	}
	var ce *ChainIntegrityError
	if errors.As(err, &ce) {
		return string(ce.Code)
	}
	return ""
}
