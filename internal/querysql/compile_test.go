package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_NoFilter(t *testing.T) {
	sql, params, err := Compile(Select{Columns: []string{"id", "scenario"}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, scenario FROM runs ORDER BY seq DESC, id COLLATE BINARY DESC", sql)
	assert.Empty(t, params)
}

func TestCompile_Equals(t *testing.T) {
	sql, params, err := Compile(Select{
		Columns: []string{"id"},
		Filter:  Equals{Column: "scenario", Value: "onion_order"},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE scenario = ?")
	assert.NotContains(t, sql, "onion_order", "values must be parameters")
	assert.Equal(t, []any{"onion_order"}, params)
}

func TestCompile_PointerPredicates(t *testing.T) {
	sql, params, err := Compile(Select{
		Columns: []string{"id"},
		Filter: &And{Predicates: []Predicate{
			&Equals{Column: "pass", Value: false},
			&HasEvent{Event: "skip:auth"},
		}},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE pass = ? AND id IN (SELECT run_id FROM trace_events WHERE event = ?)")
	assert.Equal(t, []any{int64(0), "skip:auth"}, params)
}

func TestCompile_AndKeepsParameterOrder(t *testing.T) {
	sql, params, err := Compile(Select{
		Columns: []string{"id"},
		Filter: And{Predicates: []Predicate{
			Equals{Column: "scenario", Value: "a"},
			And{Predicates: []Predicate{
				Equals{Column: "phase", Value: "test_method"},
				Equals{Column: "pass", Value: true},
			}},
		}},
		Limit: 5,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id FROM runs WHERE scenario = ? AND phase = ? AND pass = ? ORDER BY seq DESC, id COLLATE BINARY DESC LIMIT ?",
		sql)
	assert.Equal(t, []any{"a", "test_method", int64(1), 5}, params)
}

func TestCompile_EmptyAndMatchesAll(t *testing.T) {
	sql, params, err := Compile(Select{
		Columns: []string{"id"},
		Filter:  And{Predicates: []Predicate{And{}}},
	})
	require.NoError(t, err)
	assert.NotContains(t, sql, "WHERE")
	assert.Empty(t, params)
}

func TestCompile_AlwaysOrdered(t *testing.T) {
	queries := []Select{
		{Columns: []string{"id"}},
		{Columns: []string{"id"}, Filter: HasEvent{Event: "test"}},
		{Columns: []string{"id"}, Limit: 1},
	}
	for _, q := range queries {
		sql, _, err := Compile(q)
		require.NoError(t, err)
		assert.Contains(t, sql, "ORDER BY seq DESC, id COLLATE BINARY DESC")
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		q    Select
		want string
	}{
		{"no columns", Select{}, "at least one column"},
		{"unknown column", Select{Columns: []string{"id; DROP TABLE runs"}}, "unknown column"},
		{"unknown filter column", Select{Columns: []string{"id"}, Filter: Equals{Column: "nope", Value: "x"}}, "unknown column"},
		{"nil value", Select{Columns: []string{"id"}, Filter: Equals{Column: "error", Value: nil}}, "nil never equals"},
		{"float value", Select{Columns: []string{"id"}, Filter: Equals{Column: "seq", Value: 1.5}}, "unsupported value type float64"},
		{"empty event", Select{Columns: []string{"id"}, Filter: HasEvent{}}, "event must not be empty"},
		{"negative limit", Select{Columns: []string{"id"}, Limit: -1}, "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Compile(tt.q)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
