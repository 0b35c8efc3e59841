package querysql

// Predicate is a filter condition on stored runs.
type Predicate interface {
	predicateNode()
}

// Select reads rows of the runs table.
//
// Rows come newest first (seq descending) so that Limit keeps the most
// recent runs.
type Select struct {
	Columns []string  // selected columns, in order; empty is an error
	Filter  Predicate // nil matches every run
	Limit   int       // 0 means no limit
}

// Equals matches runs whose column equals Value.
// Value must be a string, an integer or a bool.
type Equals struct {
	Column string
	Value  any
}

func (Equals) predicateNode() {}

// HasEvent matches runs whose trace contains Event.
type HasEvent struct {
	Event string
}

func (HasEvent) predicateNode() {}

// And matches runs satisfying every predicate. An empty And matches all.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Columns of the runs table.
var runColumns = map[string]bool{
	"seq":        true,
	"id":         true,
	"scenario":   true,
	"phase":      true,
	"pass":       true,
	"outcome":    true,
	"error_code": true,
	"error":      true,
	"failures":   true,
	"snapshot":   true,
}
