package ir

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// ExecutableKind distinguishes methods from constructors.
type ExecutableKind int

const (
	// KindMethod is a function or method (bound or static).
	KindMethod ExecutableKind = iota
	// KindConstructor is a function producing a new instance of DeclaringType.
	KindConstructor
)

// Label returns "method" or "constructor" for use in diagnostics.
func (k ExecutableKind) Label() string {
	if k == KindConstructor {
		return "constructor"
	}
	return "method"
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Parameter describes one declared parameter of an Executable.
type Parameter struct {
	// Index is the ordinal of the parameter in declaration order.
	Index int

	// Name is the declared name, or "argN" when none was supplied.
	Name string

	// Type is the declared parameter type.
	Type reflect.Type
}

// String renders the parameter as "<type> <name>".
func (p Parameter) String() string {
	return fmt.Sprintf("%s %s", typeName(p.Type), p.Name)
}

// Executable is the read-only metadata for a reflective callable: its
// declaring type, signature, and the func value that performs the call.
//
// INVARIANTS:
//   - Params is in declaration order and never mutated after construction
//   - For methods with a receiver, the receiver is NOT part of Params
type Executable struct {
	Name          string
	Kind          ExecutableKind
	DeclaringType reflect.Type
	Params        []Parameter
	Results       []reflect.Type

	fn       reflect.Value
	receiver bool
}

// MethodOf describes the method named name on receiverType.
//
// The receiver is supplied at invocation time as the bound target.
// paramNames optionally names the parameters; missing names default to argN.
func MethodOf(receiverType reflect.Type, name string, paramNames ...string) (*Executable, error) {
	if receiverType == nil {
		return nil, errors.New("receiver type must not be nil")
	}
	m, ok := receiverType.MethodByName(name)
	if !ok {
		return nil, fmt.Errorf("type %s has no method %q", typeName(receiverType), name)
	}
	ft := m.Func.Type()
	return &Executable{
		Name:          name,
		Kind:          KindMethod,
		DeclaringType: receiverType,
		Params:        params(ft, 1, paramNames),
		Results:       results(ft),
		fn:            m.Func,
		receiver:      true,
	}, nil
}

// FunctionOf describes a static function declared on declaringType.
// Static functions are invoked without a bound target.
func FunctionOf(declaringType reflect.Type, fn any, paramNames ...string) (*Executable, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("expected func, got %T", fn)
	}
	return &Executable{
		Name:          funcName(v),
		Kind:          KindMethod,
		DeclaringType: declaringType,
		Params:        params(v.Type(), 0, paramNames),
		Results:       results(v.Type()),
		fn:            v,
	}, nil
}

// ConstructorOf describes a constructor function. The function must return
// exactly one value, or one value followed by an error. The first result
// type becomes the DeclaringType.
func ConstructorOf(fn any, paramNames ...string) (*Executable, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("expected func, got %T", fn)
	}
	ft := v.Type()
	switch {
	case ft.NumOut() == 1 && ft.Out(0) != errorType:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return nil, fmt.Errorf("constructor %s must return (T) or (T, error)", funcName(v))
	}
	return &Executable{
		Name:          funcName(v),
		Kind:          KindConstructor,
		DeclaringType: ft.Out(0),
		Params:        params(ft, 0, paramNames),
		Results:       results(ft),
		fn:            v,
	}, nil
}

// Bind describes fn as a method named name on receiverType. fn's first
// parameter receives the bound target and is excluded from Params. Unlike
// MethodOf, fn need not be declared on the type, so funcs built at runtime
// (reflect.MakeFunc) can be described.
func Bind(receiverType reflect.Type, name string, fn any, paramNames ...string) (*Executable, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("expected func, got %T", fn)
	}
	ft := v.Type()
	if ft.NumIn() == 0 || !receiverType.AssignableTo(ft.In(0)) {
		return nil, fmt.Errorf("func %s does not accept a %s receiver", ft, typeName(receiverType))
	}
	return &Executable{
		Name:          name,
		Kind:          KindMethod,
		DeclaringType: receiverType,
		Params:        params(ft, 1, paramNames),
		Results:       results(ft),
		fn:            v,
		receiver:      true,
	}, nil
}

// WithName returns a copy of e reporting the given name.
func (e *Executable) WithName(name string) *Executable {
	c := *e
	c.Name = name
	return &c
}

// Func returns the underlying func value.
func (e *Executable) Func() reflect.Value {
	return e.fn
}

// HasReceiver reports whether the func expects a bound receiver as its
// first argument.
func (e *Executable) HasReceiver() bool {
	return e.receiver
}

// ReturnsError reports whether the last result is an error.
func (e *Executable) ReturnsError() bool {
	n := len(e.Results)
	return n > 0 && e.Results[n-1] == errorType
}

// ParamTypes returns the declared parameter types in order.
func (e *Executable) ParamTypes() []reflect.Type {
	types := make([]reflect.Type, len(e.Params))
	for i, p := range e.Params {
		types[i] = p.Type
	}
	return types
}

// Signature renders a Go-like signature, e.g.
// "method (*pkg.Suite) TestAdd(int, string) error".
func (e *Executable) Signature() string {
	var buf strings.Builder
	if e.receiver {
		fmt.Fprintf(&buf, "(%s) ", typeName(e.DeclaringType))
	} else if e.DeclaringType != nil && e.Kind == KindMethod {
		fmt.Fprintf(&buf, "%s.", typeName(e.DeclaringType))
	}
	buf.WriteString(e.Name)
	buf.WriteByte('(')
	for i, t := range e.ParamTypes() {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(typeName(t))
	}
	buf.WriteByte(')')
	switch len(e.Results) {
	case 0:
	case 1:
		fmt.Fprintf(&buf, " %s", typeName(e.Results[0]))
	default:
		names := make([]string, len(e.Results))
		for i, r := range e.Results {
			names[i] = typeName(r)
		}
		fmt.Fprintf(&buf, " (%s)", strings.Join(names, ", "))
	}
	return buf.String()
}

func (e *Executable) String() string {
	return e.Kind.Label() + " " + e.Signature()
}

func params(ft reflect.Type, offset int, names []string) []Parameter {
	n := ft.NumIn() - offset
	if n < 0 {
		n = 0
	}
	ps := make([]Parameter, n)
	for i := range ps {
		name := fmt.Sprintf("arg%d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		ps[i] = Parameter{Index: i, Name: name, Type: ft.In(i + offset)}
	}
	return ps
}

func results(ft reflect.Type) []reflect.Type {
	out := make([]reflect.Type, ft.NumOut())
	for i := range out {
		out[i] = ft.Out(i)
	}
	return out
}

func funcName(v reflect.Value) string {
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "func"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
