// Package extension defines the two pluggable protocols consumed by the
// engine: interceptors, which wrap a phase's invocation, and parameter
// resolvers, which supply argument values.
//
// Go has no default interface methods. Implementations either embed
// PassThrough and override the phases they care about, or fill the optional
// hooks of InterceptorFuncs.
//
// Extension identity in diagnostics comes from Name() when the extension
// implements Named, and from its dynamic type otherwise.
package extension
