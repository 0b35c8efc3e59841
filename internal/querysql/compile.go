package querysql

import (
	"errors"
	"fmt"
	"strings"
)

// stableOrder is the ORDER BY of every query. seq is unique; id breaks ties
// should two rows ever share one.
const stableOrder = "seq DESC, id COLLATE BINARY DESC"

// Compile converts q to parameterized SQL.
// Values are never interpolated into the returned text.
func Compile(q Select) (string, []any, error) {
	if len(q.Columns) == 0 {
		return "", nil, errors.New("select requires at least one column")
	}
	for _, col := range q.Columns {
		if !runColumns[col] {
			return "", nil, fmt.Errorf("unknown column %q", col)
		}
	}
	if q.Limit < 0 {
		return "", nil, fmt.Errorf("limit must not be negative, got %d", q.Limit)
	}

	var (
		buf    strings.Builder
		params []any
	)
	fmt.Fprintf(&buf, "SELECT %s FROM runs", strings.Join(q.Columns, ", "))

	if q.Filter != nil {
		where, whereParams, err := compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		if where != "" {
			buf.WriteString(" WHERE ")
			buf.WriteString(where)
			params = whereParams
		}
	}

	buf.WriteString(" ORDER BY ")
	buf.WriteString(stableOrder)

	if q.Limit > 0 {
		buf.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	}
	return buf.String(), params, nil
}

// compilePredicate returns the WHERE fragment for p, or "" when p matches
// everything.
func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case Equals:
		return compileEquals(pred)
	case *Equals:
		return compileEquals(*pred)
	case HasEvent:
		return compileHasEvent(pred)
	case *HasEvent:
		return compileHasEvent(*pred)
	case And:
		return compileAnd(pred)
	case *And:
		return compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileEquals(eq Equals) (string, []any, error) {
	if !runColumns[eq.Column] {
		return "", nil, fmt.Errorf("unknown column %q", eq.Column)
	}
	param, err := toParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("column %s: %w", eq.Column, err)
	}
	return eq.Column + " = ?", []any{param}, nil
}

func compileHasEvent(he HasEvent) (string, []any, error) {
	if he.Event == "" {
		return "", nil, errors.New("event must not be empty")
	}
	return "id IN (SELECT run_id FROM trace_events WHERE event = ?)", []any{he.Event}, nil
}

func compileAnd(and And) (string, []any, error) {
	var (
		parts  []string
		params []any
	)
	for _, p := range and.Predicates {
		sql, ps, err := compilePredicate(p)
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	return strings.Join(parts, " AND "), params, nil
}

// toParam converts v to a driver parameter. Bools are stored as 0/1.
func toParam(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case nil:
		return nil, errors.New("nil never equals anything")
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
