package ir

import (
	"fmt"
	"strings"
)

// Phase identifies one lifecycle point in a test's life.
type Phase int

const (
	PhaseConstructor Phase = iota + 1
	PhaseBeforeAll
	PhaseBeforeEach
	PhaseTestMethod
	PhaseTestFactory
	PhaseTestTemplate
	PhaseDynamicTest
	PhaseAfterEach
	PhaseAfterAll
)

var phaseNames = map[Phase]string{
	PhaseConstructor:  "constructor",
	PhaseBeforeAll:    "before_all",
	PhaseBeforeEach:   "before_each",
	PhaseTestMethod:   "test_method",
	PhaseTestFactory:  "test_factory",
	PhaseTestTemplate: "test_template",
	PhaseDynamicTest:  "dynamic_test",
	PhaseAfterEach:    "after_each",
	PhaseAfterAll:     "after_all",
}

// Phases lists every phase in lifecycle order.
func Phases() []Phase {
	return []Phase{
		PhaseConstructor,
		PhaseBeforeAll,
		PhaseBeforeEach,
		PhaseTestMethod,
		PhaseTestFactory,
		PhaseTestTemplate,
		PhaseDynamicTest,
		PhaseAfterEach,
		PhaseAfterAll,
	}
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Reflective reports whether invocations for this phase carry an
// Executable descriptor. Only dynamic tests are opaque units of work.
func (p Phase) Reflective() bool {
	return p != PhaseDynamicTest
}

// ReturnsValue reports whether proceed() yields a meaningful value in this
// phase. All other phases are void.
func (p Phase) ReturnsValue() bool {
	return p == PhaseConstructor || p == PhaseTestFactory
}

// ParsePhase converts a phase name (e.g. "before_each") to a Phase.
func ParsePhase(name string) (Phase, error) {
	phases := Phases()
	names := make([]string, len(phases))
	for i, p := range phases {
		if p.String() == name {
			return p, nil
		}
		names[i] = p.String()
	}
	return 0, fmt.Errorf("unknown phase %q (want one of %s)", name, strings.Join(names, ", "))
}
