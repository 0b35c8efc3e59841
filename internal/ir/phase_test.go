package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePhase_RoundTrip(t *testing.T) {
	for _, p := range Phases() {
		t.Run(p.String(), func(t *testing.T) {
			got, err := ParsePhase(p.String())
			require.NoError(t, err)
			assert.Equal(t, p, got)
		})
	}
}

func TestParsePhase_Unknown(t *testing.T) {
	_, err := ParsePhase("before_lunch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before_lunch")
	assert.Contains(t, err.Error(), "want one of constructor, before_all, before_each")
}

func TestPhase_Categories(t *testing.T) {
	assert.False(t, PhaseDynamicTest.Reflective())
	assert.True(t, PhaseTestMethod.Reflective())

	assert.True(t, PhaseConstructor.ReturnsValue())
	assert.True(t, PhaseTestFactory.ReturnsValue())
	assert.False(t, PhaseBeforeEach.ReturnsValue())
	assert.False(t, PhaseDynamicTest.ReturnsValue())
}

func TestPhase_StringUnknown(t *testing.T) {
	assert.Equal(t, "phase(42)", Phase(42).String())
}
