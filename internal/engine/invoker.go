package engine

import (
	"context"
	"fmt"
	"reflect"

	"github.com/roach88/intercept/internal/extension"
	"github.com/roach88/intercept/internal/invocation"
	"github.com/roach88/intercept/internal/ir"
)

// Invoker resolves arguments for reflective callables and runs them through
// the interceptors supplied by a registry.
//
// Each entry point fixes what the phase result is: constructors return the
// new instance, factories return their product, lifecycle methods and
// dynamic tests return only a failure.
type Invoker struct {
	settings
	chain    *Chain
	resolver *ArgumentResolver
}

// NewInvoker creates an Invoker. The options apply to both its Chain and its
// ArgumentResolver.
func NewInvoker(opts ...Option) *Invoker {
	s := newSettings(opts)
	return &Invoker{
		settings: s,
		chain:    &Chain{settings: s},
		resolver: &ArgumentResolver{settings: s},
	}
}

// InvokeConstructor resolves the constructor's parameters and runs it
// through the registry's constructor interceptors. outer, when non-nil, is
// the enclosing instance passed as parameter 0.
func (iv *Invoker) InvokeConstructor(ctx context.Context, exec *ir.Executable, outer any, reg extension.Registry) (any, error) {
	args, err := iv.resolver.Resolve(ctx, exec, nil, outer, resolversOf(reg))
	if err != nil {
		return nil, err
	}
	inv, err := invocation.NewConstructor(exec, args, iv.policy)
	if err != nil {
		return nil, err
	}
	v, err := iv.chain.Run(ctx, CallConstructor, inv, interceptorsOf(reg))
	if err != nil {
		return nil, err
	}
	if isNil(v) {
		return nil, fmt.Errorf("%s produced no instance", exec)
	}
	return v, nil
}

// InvokeMethod resolves the method's parameters and runs it through the
// interceptors selected by call. target is the bound receiver, nil for
// static functions. Use CallNone to skip interception.
func (iv *Invoker) InvokeMethod(ctx context.Context, exec *ir.Executable, target any, reg extension.Registry, call InterceptorCall) (any, error) {
	args, err := iv.resolver.Resolve(ctx, exec, target, nil, resolversOf(reg))
	if err != nil {
		return nil, err
	}
	inv, err := invocation.NewMethod(exec, target, args, iv.policy)
	if err != nil {
		return nil, err
	}
	return iv.chain.Run(ctx, call, inv, interceptorsOf(reg))
}

// InvokeFactory runs a test factory method and returns its product, which
// must not be nil.
func (iv *Invoker) InvokeFactory(ctx context.Context, exec *ir.Executable, target any, reg extension.Registry) (any, error) {
	v, err := iv.InvokeMethod(ctx, exec, target, reg, CallTestFactory)
	if err != nil {
		return nil, err
	}
	if isNil(v) {
		return nil, fmt.Errorf("test factory %s returned nil", exec)
	}
	return v, nil
}

// InvokeDynamic runs the body of a dynamically generated test through the
// registry's dynamic-test interceptors. name identifies the test in every
// PhaseContext.
func (iv *Invoker) InvokeDynamic(ctx context.Context, name string, fn func() error, reg extension.Registry) error {
	ctx = WithTestID(ctx, name)
	_, err := iv.chain.Run(ctx, CallDynamicTest, invocation.Unit(fn, iv.policy), interceptorsOf(reg))
	return err
}

// Invoke runs exec for phase and reports the outcome. It dispatches to the
// entry point matching the phase; target is ignored for constructors.
// Dynamic tests are not reflective and must use InvokeDynamic.
func (iv *Invoker) Invoke(ctx context.Context, phase ir.Phase, exec *ir.Executable, target any, reg extension.Registry) Outcome {
	var (
		v   any
		err error
	)
	switch phase {
	case ir.PhaseConstructor:
		v, err = iv.InvokeConstructor(ctx, exec, nil, reg)
	case ir.PhaseTestFactory:
		v, err = iv.InvokeFactory(ctx, exec, target, reg)
	case ir.PhaseDynamicTest:
		err = fmt.Errorf("%s phase requires InvokeDynamic", phase)
	default:
		v, err = iv.InvokeMethod(ctx, exec, target, reg, CallFor(phase))
	}
	return Observe(phase, v, err)
}

func interceptorsOf(reg extension.Registry) []extension.Interceptor {
	if reg == nil {
		return nil
	}
	return reg.Interceptors()
}

func resolversOf(reg extension.Registry) []extension.ParameterResolver {
	if reg == nil {
		return nil
	}
	return reg.Resolvers()
}

// OutcomeKind discriminates phase results.
type OutcomeKind int

const (
	OutcomeVoid OutcomeKind = iota
	OutcomeValue
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeVoid:
		return "void"
	case OutcomeValue:
		return "value"
	case OutcomeFailure:
		return "failure"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of one phase: nothing, a value, or a failure.
type Outcome struct {
	Kind  OutcomeKind
	Value any
	Err   error
}

// Observe classifies a phase result. Void phases discard v.
func Observe(phase ir.Phase, v any, err error) Outcome {
	switch {
	case err != nil:
		return Outcome{Kind: OutcomeFailure, Err: err}
	case phase.ReturnsValue():
		return Outcome{Kind: OutcomeValue, Value: v}
	default:
		return Outcome{Kind: OutcomeVoid}
	}
}

// Failed reports whether the phase failed.
func (o Outcome) Failed() bool { return o.Kind == OutcomeFailure }

// isNil reports whether v is nil or a nil value of a nillable type.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return ir.Nillable(rv.Type()) && rv.IsNil()
}
