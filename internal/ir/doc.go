// Package ir provides the foundational descriptor types for the interceptor
// pipeline.
//
// This package contains type definitions and reflection helpers only. All
// other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Executable and Parameter are immutable after construction
//   - Parameter order is declaration order; Index is the ordinal in the
//     underlying func signature (receiver excluded)
//   - Canonical JSON is the only serialization used for golden traces
package ir
