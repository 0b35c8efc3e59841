package ir

import (
	"fmt"
	"reflect"
)

// Nillable reports whether a nil value may be supplied for type t.
// Value types (numbers, bools, strings, structs, arrays) are not nillable.
func Nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

// IsAssignable reports whether v may be passed for a parameter declared as t.
//
// Rules:
//   - nil is accepted only for nillable types
//   - a value whose type is assignable to t is accepted
//   - a value of the same basic kind (bool, number, string) that converts to
//     t is accepted, e.g. an int for a named int type. Distinct composite
//     types are never converted, even when their underlying types match.
//   - a numeric value is accepted when converting to t is a widening
//     conversion (e.g. int32 -> int64, uint8 -> int16, int -> float64)
func IsAssignable(v any, t reflect.Type) bool {
	if v == nil {
		return Nillable(t)
	}
	vt := reflect.TypeOf(v)
	if vt.AssignableTo(t) {
		return true
	}
	if vt.Kind() == t.Kind() && basic(t.Kind()) && vt.ConvertibleTo(t) {
		return true
	}
	return widens(vt.Kind(), t.Kind())
}

// ValueFor converts v into a reflect.Value of type t suitable for a call.
// It returns an error if v is not assignable per IsAssignable.
func ValueFor(t reflect.Type, v any) (reflect.Value, error) {
	if !IsAssignable(v, t) {
		return reflect.Value{}, fmt.Errorf("value of type %s is not assignable to %s", TypeNameOf(v), typeName(t))
	}
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	return rv.Convert(t), nil
}

// TypeNameOf returns the runtime type name of v, or "nil".
func TypeNameOf(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

func basic(k reflect.Kind) bool {
	if k == reflect.Bool || k == reflect.String {
		return true
	}
	c, _ := numeric(k)
	return c != numNone
}

type numClass int

const (
	numNone numClass = iota
	numSigned
	numUnsigned
	numFloat
)

func numeric(k reflect.Kind) (numClass, int) {
	switch k {
	case reflect.Int8:
		return numSigned, 8
	case reflect.Int16:
		return numSigned, 16
	case reflect.Int32:
		return numSigned, 32
	case reflect.Int64, reflect.Int:
		return numSigned, 64
	case reflect.Uint8:
		return numUnsigned, 8
	case reflect.Uint16:
		return numUnsigned, 16
	case reflect.Uint32:
		return numUnsigned, 32
	case reflect.Uint64, reflect.Uint, reflect.Uintptr:
		return numUnsigned, 64
	case reflect.Float32:
		return numFloat, 32
	case reflect.Float64:
		return numFloat, 64
	default:
		return numNone, 0
	}
}

// widens reports whether converting from src to dst never loses range.
func widens(src, dst reflect.Kind) bool {
	sc, sb := numeric(src)
	dc, db := numeric(dst)
	if sc == numNone || dc == numNone {
		return false
	}
	switch {
	case dc == numFloat:
		return sc != numFloat || db >= sb
	case sc == numFloat:
		return false
	case sc == dc:
		return db >= sb
	case sc == numUnsigned && dc == numSigned:
		return db > sb
	default:
		return false
	}
}
