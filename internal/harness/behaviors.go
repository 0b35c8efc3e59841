package harness

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/roach88/intercept/internal/extension"
	"github.com/roach88/intercept/internal/invocation"
)

// buildInterceptor returns an interceptor implementing spec's behavior for
// every phase. Events are recorded on s.
func buildInterceptor(spec InterceptorSpec, s *Suite) extension.Interceptor {
	name := spec.Name
	var around extension.Hook

	switch spec.Behavior {
	case BehaviorWrap:
		around = func(_ context.Context, inv invocation.Invocation, _ extension.PhaseContext) (any, error) {
			s.Record("before:" + name)
			v, err := inv.Proceed()
			s.Record("after:" + name)
			return v, err
		}
	case BehaviorSkip:
		around = func(context.Context, invocation.Invocation, extension.PhaseContext) (any, error) {
			s.Record("skip:" + name)
			return nil, nil
		}
	case BehaviorTwice:
		around = func(_ context.Context, inv invocation.Invocation, _ extension.PhaseContext) (any, error) {
			s.Record("before:" + name)
			_, _ = inv.Proceed()
			v, err := inv.Proceed()
			s.Record("after:" + name)
			return v, err
		}
	case BehaviorFailBefore:
		around = func(context.Context, invocation.Invocation, extension.PhaseContext) (any, error) {
			s.Record("fail:" + name)
			return nil, errors.New(spec.Message)
		}
	case BehaviorSwallow:
		around = func(_ context.Context, inv invocation.Invocation, _ extension.PhaseContext) (any, error) {
			s.Record("before:" + name)
			v, err := inv.Proceed()
			if err != nil {
				s.Record("swallowed:" + name)
			}
			s.Record("after:" + name)
			return v, nil
		}
	case BehaviorTransform:
		around = func(_ context.Context, inv invocation.Invocation, _ extension.PhaseContext) (any, error) {
			s.Record("before:" + name)
			_, err := inv.Proceed()
			s.Record("after:" + name)
			if err != nil {
				return nil, err
			}
			return spec.Value, nil
		}
	}

	return &extension.InterceptorFuncs{ID: name, Around: around}
}

// buildResolver returns a resolver implementing spec.
func buildResolver(spec ResolverSpec) (extension.ParameterResolver, error) {
	var want reflect.Type
	if spec.Type != "" {
		t, err := TypeOf(spec.Type)
		if err != nil {
			return nil, err
		}
		want = t
	}

	supports := func(_ context.Context, pc extension.ParameterContext) bool {
		switch {
		case spec.Parameter != "":
			return pc.Parameter.Name == spec.Parameter
		case want != nil:
			return pc.Type() == want
		default:
			return true
		}
	}

	var resolve func(context.Context, extension.ParameterContext) (any, error)
	switch spec.Kind {
	case ResolverType:
		resolve = func(_ context.Context, pc extension.ParameterContext) (any, error) {
			return convert(spec.Value, pc.Type()), nil
		}
	case ResolverValue:
		resolve = func(context.Context, extension.ParameterContext) (any, error) {
			return spec.Value, nil
		}
	case ResolverFail:
		resolve = func(_ context.Context, pc extension.ParameterContext) (any, error) {
			msg := spec.Message
			if msg == "" {
				msg = fmt.Sprintf("%s cannot resolve %s", spec.Name, pc.Parameter)
			}
			return nil, errors.New(msg)
		}
	case ResolverNull:
		resolve = func(context.Context, extension.ParameterContext) (any, error) {
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("unknown resolver kind %q", spec.Kind)
	}

	return &extension.ResolverFunc{ID: spec.Name, Supports: supports, Resolve: resolve}, nil
}
