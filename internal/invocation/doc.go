// Package invocation defines the one-shot operations that the interceptor
// chain decorates.
//
// Two kinds exist:
//
//   - Invocation: an opaque unit of work with only Proceed. Used for
//     dynamically generated tests.
//   - ReflectiveInvocation: additionally exposes read-only descriptor
//     accessors (target type, bound target, executable, arguments). Used for
//     constructors, lifecycle methods, and test methods.
//
// Base invocations recover panics raised by the user callable and return
// them as *fault.PanicError, unless the configured fault.Policy classifies
// the panic value as unrecoverable.
package invocation
