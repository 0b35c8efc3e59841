package invocation

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/roach88/intercept/internal/fault"
	"github.com/roach88/intercept/internal/ir"
)

// Invocation is a one-shot operation. Proceed performs it and returns its
// value (nil for void operations) or its failure.
type Invocation interface {
	Proceed() (any, error)
}

// ReflectiveInvocation is an Invocation with descriptor accessors.
//
// Decorators must forward every accessor to the invocation they wrap so that
// outer layers observe the original call.
type ReflectiveInvocation interface {
	Invocation

	// TargetType is the runtime type of the bound target, or the declaring
	// type when there is no target.
	TargetType() reflect.Type

	// Target returns the bound receiver. ok is false for static functions
	// and constructors.
	Target() (target any, ok bool)

	// Executable describes the callable being invoked.
	Executable() *ir.Executable

	// Arguments returns a copy of the argument vector. Mutating the copy
	// does not affect the call.
	Arguments() []any
}

// Func is the generic invocation kind: an opaque unit of work.
type Func func() (any, error)

// Proceed calls f.
func (f Func) Proceed() (any, error) {
	return f()
}

// Unit wraps a void unit of work, such as a dynamic test body. Panics raised
// by fn are converted per policy.
func Unit(fn func() error, policy fault.Policy) Func {
	return func() (_ any, err error) {
		defer policy.Capture(&err)
		return nil, fn()
	}
}

// MethodInvocation invokes a method or static function.
type MethodInvocation struct {
	exec   *ir.Executable
	target any
	args   []any
	policy fault.Policy
}

// NewMethod creates a method invocation. target is required when the
// executable has a receiver and ignored otherwise.
func NewMethod(exec *ir.Executable, target any, args []any, policy fault.Policy) (*MethodInvocation, error) {
	if err := checkArity(exec, args); err != nil {
		return nil, err
	}
	if exec.HasReceiver() {
		if target == nil {
			return nil, fmt.Errorf("%s requires a bound target", exec)
		}
	} else {
		target = nil
	}
	return &MethodInvocation{exec: exec, target: target, args: slices.Clone(args), policy: policy}, nil
}

// TargetType implements ReflectiveInvocation.
func (m *MethodInvocation) TargetType() reflect.Type {
	if m.target != nil {
		return reflect.TypeOf(m.target)
	}
	return m.exec.DeclaringType
}

// Target implements ReflectiveInvocation.
func (m *MethodInvocation) Target() (any, bool) {
	return m.target, m.exec.HasReceiver()
}

// Executable implements ReflectiveInvocation.
func (m *MethodInvocation) Executable() *ir.Executable { return m.exec }

// Arguments implements ReflectiveInvocation.
func (m *MethodInvocation) Arguments() []any { return slices.Clone(m.args) }

// Proceed calls the method with the bound target and arguments.
func (m *MethodInvocation) Proceed() (any, error) {
	return call(m.exec, m.target, m.args, m.policy)
}

// ConstructorInvocation invokes a constructor function.
type ConstructorInvocation struct {
	exec   *ir.Executable
	args   []any
	policy fault.Policy
}

// NewConstructor creates a constructor invocation.
func NewConstructor(exec *ir.Executable, args []any, policy fault.Policy) (*ConstructorInvocation, error) {
	if exec.Kind != ir.KindConstructor {
		return nil, fmt.Errorf("%s is not a constructor", exec)
	}
	if err := checkArity(exec, args); err != nil {
		return nil, err
	}
	return &ConstructorInvocation{exec: exec, args: slices.Clone(args), policy: policy}, nil
}

// TargetType implements ReflectiveInvocation.
func (c *ConstructorInvocation) TargetType() reflect.Type { return c.exec.DeclaringType }

// Target implements ReflectiveInvocation. Constructors have no target.
func (c *ConstructorInvocation) Target() (any, bool) { return nil, false }

// Executable implements ReflectiveInvocation.
func (c *ConstructorInvocation) Executable() *ir.Executable { return c.exec }

// Arguments implements ReflectiveInvocation.
func (c *ConstructorInvocation) Arguments() []any { return slices.Clone(c.args) }

// Proceed calls the constructor and returns the new instance.
func (c *ConstructorInvocation) Proceed() (any, error) {
	return call(c.exec, nil, c.args, c.policy)
}

func checkArity(exec *ir.Executable, args []any) error {
	if exec == nil {
		return fmt.Errorf("executable must not be nil")
	}
	if len(args) != len(exec.Params) {
		return fmt.Errorf("%s expects %d arguments, got %d", exec, len(exec.Params), len(args))
	}
	return nil
}

// call performs the reflective call. A trailing error result is returned as
// the failure with its identity preserved. Remaining results become the
// value: nil for none, the value itself for one, []any for several.
func call(exec *ir.Executable, target any, args []any, policy fault.Policy) (_ any, err error) {
	in := make([]reflect.Value, 0, len(args)+1)
	if exec.HasReceiver() {
		in = append(in, reflect.ValueOf(target))
	}
	for i, p := range exec.Params {
		v, convErr := ir.ValueFor(p.Type, args[i])
		if convErr != nil {
			return nil, fmt.Errorf("argument %d (%s) of %s: %w", i, p, exec, convErr)
		}
		in = append(in, v)
	}

	defer policy.Capture(&err)

	fn := exec.Func()
	var out []reflect.Value
	if fn.Type().IsVariadic() {
		out = fn.CallSlice(in)
	} else {
		out = fn.Call(in)
	}

	if exec.ReturnsError() {
		last := out[len(out)-1]
		out = out[:len(out)-1]
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		// A typed nil result is reported as nil.
		if ir.Nillable(out[0].Type()) && out[0].IsNil() {
			return nil, nil
		}
		return out[0].Interface(), nil
	default:
		values := make([]any, len(out))
		for i, o := range out {
			values[i] = o.Interface()
		}
		return values, nil
	}
}
