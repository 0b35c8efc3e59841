// Package harness runs declarative scenarios through the interceptor and
// argument resolution engines.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: onion_order
//	description: "Interceptors nest in registration order"
//	phase: test_method
//	interceptors:
//	  - { name: foo, behavior: wrap }
//	  - { name: bar, behavior: skip }
//	parameters:
//	  - { name: greeting, type: string }
//	resolvers:
//	  - { name: greeter, kind: type, type: string, value: hello }
//	body:
//	  event: test
//	  outcome: success
//	assertions:
//	  - type: trace_equals
//	    events: ["before:foo", "skip:bar", "after:foo"]
//	  - type: error_code
//	    code: NEVER_INVOKED
//
// # Interceptor Behaviors
//
//   - wrap: records before:<name>, proceeds, records after:<name>
//   - skip: records skip:<name> and never proceeds
//   - twice: like wrap, but proceeds two times
//   - fail-before: records fail:<name> and returns an error
//   - swallow: like wrap, but drops the failure
//   - transform: like wrap, but replaces the result with value
//
// # Assertion Types
//
//   - trace_equals: the trace is exactly the given events
//   - trace_contains / trace_absent: an event does or does not appear
//   - error_code: the outcome carries an engine code, "panic" or "none"
//   - result_equals: the phase value
//   - arguments_equal: the resolved arguments the callable received
//
// # Deterministic Testing
//
// Trace events are stamped by a logical clock (testutil.DeterministicClock)
// and run ids come from the scenario (testutil.FixedRunIDGenerator), so the
// same scenario always yields a byte-identical Snapshot for golden file
// comparison.
package harness
