// Package store provides SQLite-backed durable storage for scenario runs.
//
// The store keeps an append-only history of:
//   - Runs: one row per executed scenario, with its outcome and the
//     canonical JSON snapshot used for golden comparison
//   - Trace events: the interceptor and body events recorded during a run
//
// # Ordering
//
// Runs are ordered by their logical insertion seq, never by timestamps.
// Trace events are ordered by the seq stamped when they were recorded. All
// queries include an explicit ORDER BY so identical histories read back
// identically.
//
// # Idempotency
//
// Writing a run whose id already exists is a no-op, so re-recording the
// same run (e.g. after a retry) never duplicates rows.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
