package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/intercept/internal/extension"
	"github.com/roach88/intercept/internal/ir"
)

// ArgumentResolver computes argument vectors from registered resolvers.
type ArgumentResolver struct {
	settings
}

// NewArgumentResolver creates an ArgumentResolver.
func NewArgumentResolver(opts ...Option) *ArgumentResolver {
	return &ArgumentResolver{settings: newSettings(opts)}
}

// Resolve returns one value per declared parameter of exec, in declaration
// order.
//
// target is the bound receiver, or nil. outer, when non-nil, is an enclosing
// instance supplied out of band: it fills parameter 0, which is not offered
// to resolvers.
//
// Each remaining parameter must be supported by exactly one resolver;
// resolvers are consulted in registration order. Resolver failures are
// wrapped as ErrCodeResolutionFailed unless they are already a
// *ResolutionError or the failure policy classifies them as fatal.
func (r *ArgumentResolver) Resolve(ctx context.Context, exec *ir.Executable, target any, outer any, resolvers []extension.ParameterResolver) ([]any, error) {
	if exec == nil {
		return nil, errors.New("executable must not be nil")
	}
	args := make([]any, len(exec.Params))
	start := 0
	if outer != nil {
		if len(exec.Params) == 0 {
			return nil, fmt.Errorf("%s declares no parameter for the enclosing instance", exec)
		}
		if !ir.IsAssignable(outer, exec.Params[0].Type) {
			return nil, fmt.Errorf("enclosing instance of type %s is not assignable to parameter [%s] of %s",
				ir.TypeNameOf(outer), exec.Params[0], exec)
		}
		args[0] = outer
		start = 1
	}

	for _, p := range exec.Params[start:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pc := extension.ParameterContext{
			Parameter:  p,
			Executable: exec,
			Target:     target,
			HasTarget:  target != nil,
		}
		v, err := r.resolveParameter(ctx, pc, resolvers)
		if err != nil {
			return nil, err
		}
		args[p.Index] = v
	}
	return args, nil
}

func (r *ArgumentResolver) resolveParameter(ctx context.Context, pc extension.ParameterContext, resolvers []extension.ParameterResolver) (any, error) {
	p, exec := pc.Parameter, pc.Executable

	var matches []extension.ParameterResolver
	for _, res := range resolvers {
		ok, err := r.supports(ctx, res, pc)
		if err != nil {
			return nil, r.wrap(pc, res, err)
		}
		if ok {
			matches = append(matches, res)
		}
	}

	switch len(matches) {
	case 0:
		return nil, newNoResolverError(p, exec)
	case 1:
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = extension.NameOf(m)
		}
		return nil, newAmbiguousError(p, exec, names)
	}

	res := matches[0]
	name := extension.NameOf(res)
	v, err := r.produce(ctx, res, pc)
	if err != nil {
		return nil, r.wrap(pc, res, err)
	}
	if !ir.IsAssignable(v, p.Type) {
		return nil, newTypeMismatchError(p, exec, name, v)
	}
	if v != nil {
		rv, err := ir.ValueFor(p.Type, v)
		if err != nil {
			return nil, newTypeMismatchError(p, exec, name, v)
		}
		v = rv.Interface()
	}

	r.logger.Debug("parameter resolved",
		"resolver", name,
		"parameter", p.String(),
		"index", p.Index,
		"executable", exec.String(),
	)
	return v, nil
}

func (r *ArgumentResolver) supports(ctx context.Context, res extension.ParameterResolver, pc extension.ParameterContext) (ok bool, err error) {
	defer r.policy.Capture(&err)
	return res.SupportsParameter(ctx, pc), nil
}

func (r *ArgumentResolver) produce(ctx context.Context, res extension.ParameterResolver, pc extension.ParameterContext) (_ any, err error) {
	defer r.policy.Capture(&err)
	return res.ResolveParameter(ctx, pc)
}

// wrap classifies a resolver failure.
func (r *ArgumentResolver) wrap(pc extension.ParameterContext, res extension.ParameterResolver, err error) error {
	var re *ResolutionError
	if errors.As(err, &re) || r.policy.IsFatal(err) {
		return err
	}
	return newResolutionFailure(pc.Parameter, pc.Executable, extension.NameOf(res), err)
}
