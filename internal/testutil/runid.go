package testutil

import "fmt"

// FixedRunIDGenerator generates the same run id every time.
//
// This enables deterministic scenario execution and golden snapshot
// comparison: the same scenario with the same FixedRunIDGenerator produces
// byte-identical snapshots.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a new fixed run id generator.
//
// The id is typically set in the scenario YAML:
//
//	run_id: "test-run-00000000-0000-0000-0000-000000000001"
//
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run id.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}

// SequentialRunIDGenerator generates "<prefix>-1", "<prefix>-2", ... so a
// test that records several runs gets distinct, predictable ids.
type SequentialRunIDGenerator struct {
	prefix string
	clock  *DeterministicClock
}

// NewSequentialRunIDGenerator creates a generator whose first id is
// "<prefix>-1".
func NewSequentialRunIDGenerator(prefix string) *SequentialRunIDGenerator {
	return &SequentialRunIDGenerator{prefix: prefix, clock: NewDeterministicClock()}
}

// Generate returns the next id in the sequence.
func (g *SequentialRunIDGenerator) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.clock.Next())
}
