package extension

import (
	"context"
	"reflect"

	"github.com/roach88/intercept/internal/ir"
)

// ParameterContext describes one parameter being resolved.
type ParameterContext struct {
	Parameter  ir.Parameter
	Executable *ir.Executable

	// Target is the bound receiver of the executable, if any.
	Target    any
	HasTarget bool
}

// Index returns the parameter's ordinal.
func (pc ParameterContext) Index() int { return pc.Parameter.Index }

// Type returns the parameter's declared type.
func (pc ParameterContext) Type() reflect.Type { return pc.Parameter.Type }

// ParameterResolver supplies values for declared parameters.
//
// For each parameter the engine requires exactly one registered resolver to
// report support. ResolveParameter is only called on that resolver.
type ParameterResolver interface {
	SupportsParameter(ctx context.Context, pc ParameterContext) bool
	ResolveParameter(ctx context.Context, pc ParameterContext) (any, error)
}

// ResolverFunc builds a ParameterResolver from two functions.
type ResolverFunc struct {
	ID       string
	Supports func(ctx context.Context, pc ParameterContext) bool
	Resolve  func(ctx context.Context, pc ParameterContext) (any, error)
}

var _ ParameterResolver = (*ResolverFunc)(nil)

// Name implements Named.
func (r *ResolverFunc) Name() string { return r.ID }

func (r *ResolverFunc) SupportsParameter(ctx context.Context, pc ParameterContext) bool {
	return r.Supports != nil && r.Supports(ctx, pc)
}

func (r *ResolverFunc) ResolveParameter(ctx context.Context, pc ParameterContext) (any, error) {
	return r.Resolve(ctx, pc)
}

// ForType returns a resolver that supports exactly the parameters declared
// as T and produces values with fn.
func ForType[T any](name string, fn func(ctx context.Context, pc ParameterContext) (T, error)) ParameterResolver {
	want := reflect.TypeFor[T]()
	return &ResolverFunc{
		ID: name,
		Supports: func(_ context.Context, pc ParameterContext) bool {
			return pc.Type() == want
		},
		Resolve: func(ctx context.Context, pc ParameterContext) (any, error) {
			return fn(ctx, pc)
		},
	}
}

// Value returns a resolver that supplies v for every parameter declared as T.
func Value[T any](name string, v T) ParameterResolver {
	return ForType(name, func(context.Context, ParameterContext) (T, error) {
		return v, nil
	})
}
