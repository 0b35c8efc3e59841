// Package querysql compiles filters over recorded scenario runs to
// parameterized SQLite queries.
//
// A query is a Select over the runs table with an optional Predicate tree:
//
//	Select{
//	  Columns: []string{"id", "scenario"},
//	  Filter: And{Predicates: []Predicate{
//	    Equals{Column: "scenario", Value: "onion_order"},
//	    HasEvent{Event: "skip:auth"},
//	  }},
//	  Limit: 10,
//	}
//
// compiles to
//
//	SELECT id, scenario FROM runs
//	WHERE scenario = ? AND id IN (SELECT run_id FROM trace_events WHERE event = ?)
//	ORDER BY seq DESC, id COLLATE BINARY DESC LIMIT ?
//
// Predicate is a sealed interface: only the types in this package implement
// it, so Compile can switch over them exhaustively.
//
// Every compiled query carries an ORDER BY with a unique tiebreaker, and
// every value is bound as a parameter. Column names are checked against the
// runs schema before they reach the SQL text.
package querysql
