package harness

import (
	"reflect"
	"slices"

	"github.com/roach88/intercept/internal/ir"
	"github.com/roach88/intercept/internal/testutil"
)

// Suite is the instance scenario callables are bound to. It records the
// trace shared by the body and the interceptors.
type Suite struct {
	clock *testutil.DeterministicClock
	trace []TraceEvent

	// Product is the value a constructor scenario's body declared.
	Product any

	args []any
	ran  bool
}

func newSuite() *Suite {
	return &Suite{clock: testutil.NewDeterministicClock()}
}

// Record appends an event to the trace.
func (s *Suite) Record(event string) {
	s.trace = append(s.trace, TraceEvent{Seq: s.clock.Next(), Event: event})
}

// Trace returns a copy of the recorded events.
func (s *Suite) Trace() []TraceEvent {
	return slices.Clone(s.trace)
}

var (
	suiteType = reflect.TypeFor[*Suite]()
	anyType   = reflect.TypeFor[any]()
	errType   = reflect.TypeFor[error]()
)

// errBody is the failure a "fail" body returns.
type errBody struct{ msg string }

func (e *errBody) Error() string { return e.msg }

// body builds the behavior shared by every callable shape: record the event,
// capture the arguments, then succeed, fail or panic.
func (s *Suite) body(spec BodySpec, args []any) (any, error) {
	s.ran = true
	s.args = slices.Clone(args)
	event := spec.Event
	if event == "" {
		event = "test"
	}
	s.Record(event)

	switch spec.Outcome {
	case OutcomeFail:
		return nil, &errBody{msg: spec.Message}
	case OutcomePanic:
		panic(spec.Message)
	default:
		return spec.Value, nil
	}
}

// callable synthesizes the executable for phase from the declared
// parameters.
//
// Constructors are func(params...) (*Suite, error). Everything else is a
// method on *Suite: func(*Suite, params...) (any, error).
func (s *Suite) callable(name string, phase ir.Phase, params []ParameterSpec, spec BodySpec) (*ir.Executable, error) {
	in := make([]reflect.Type, 0, len(params)+1)
	names := make([]string, len(params))
	for i, p := range params {
		t, err := TypeOf(p.Type)
		if err != nil {
			return nil, err
		}
		in = append(in, t)
		names[i] = p.Name
	}

	if phase == ir.PhaseConstructor {
		ft := reflect.FuncOf(in, []reflect.Type{suiteType, errType}, false)
		fn := reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
			v, err := s.body(spec, interfaces(args))
			s.Product = v
			return []reflect.Value{reflect.ValueOf(s), errorValue(err)}
		})
		exec, err := ir.ConstructorOf(fn.Interface(), names...)
		if err != nil {
			return nil, err
		}
		return exec.WithName(name), nil
	}

	ft := reflect.FuncOf(append([]reflect.Type{suiteType}, in...), []reflect.Type{anyType, errType}, false)
	fn := reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
		v, err := s.body(spec, interfaces(args[1:]))
		return []reflect.Value{anyValue(v), errorValue(err)}
	})
	return ir.Bind(suiteType, name, fn.Interface(), names...)
}

// dynamic returns the body of a dynamic test.
func (s *Suite) dynamic(spec BodySpec) func() error {
	return func() error {
		_, err := s.body(spec, nil)
		return err
	}
}

func interfaces(args []reflect.Value) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a.Interface()
	}
	return out
}

func anyValue(v any) reflect.Value {
	if v == nil {
		return reflect.Zero(anyType)
	}
	rv := reflect.New(anyType).Elem()
	rv.Set(reflect.ValueOf(v))
	return rv
}

func errorValue(err error) reflect.Value {
	if err == nil {
		return reflect.Zero(errType)
	}
	rv := reflect.New(errType).Elem()
	rv.Set(reflect.ValueOf(err))
	return rv
}

// convert coerces a decoded YAML value to t where Go permits the
// conversion. Values that cannot be converted are returned unchanged so the
// engine's type check reports them.
func convert(v any, t reflect.Type) any {
	if v == nil {
		if ir.Nillable(t) {
			return nil
		}
		return reflect.Zero(t).Interface()
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return v
	}
	if t.Kind() == reflect.Slice && rv.Kind() == reflect.Slice {
		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem := convert(rv.Index(i).Interface(), t.Elem())
			if elem == nil || !reflect.TypeOf(elem).AssignableTo(t.Elem()) {
				return v
			}
			out.Index(i).Set(reflect.ValueOf(elem))
		}
		return out.Interface()
	}
	if isNumber(rv.Kind()) && isNumber(t.Kind()) {
		return rv.Convert(t).Interface()
	}
	return v
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
