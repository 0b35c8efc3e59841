// Package engine runs phase invocations through interceptor chains and
// resolves the arguments of reflective callables.
//
// The package has two cooperating parts:
//
// Chain builds an onion of decorated invocations from an ordered interceptor
// list. The first registered interceptor is outermost. The base invocation
// must be reached exactly once; a chain that never reaches it, or reaches it
// twice, fails with a *ChainIntegrityError.
//
// ArgumentResolver fills the argument vector of an ir.Executable. Every
// parameter must be supported by exactly one resolver and the produced value
// must be assignable to the declared type. Failures are *ResolutionError.
//
// Invoker combines both: it resolves arguments, builds the base invocation
// for the phase and runs it through the registry's interceptors.
//
// CONCURRENCY:
// Chain, ArgumentResolver and Invoker hold no per-call state and are safe for
// concurrent use. Interceptor and resolver slices are read, never mutated.
package engine
