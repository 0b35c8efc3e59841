package engine

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/intercept/internal/extension"
	"github.com/roach88/intercept/internal/fault"
	"github.com/roach88/intercept/internal/invocation"
	"github.com/roach88/intercept/internal/ir"
)

var errBoom = errors.New("boom")

// recorder collects trace events. Safe for concurrent use.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// subject is the class under test for engine tests.
type subject struct {
	rec   *recorder
	outer *outerSuite
}

type outerSuite struct{ name string }

func newSubject(rec *recorder) *subject { return &subject{rec: rec} }

func newNestedSubject(outer *outerSuite, rec *recorder) *subject {
	return &subject{rec: rec, outer: outer}
}

func (s *subject) Test() { s.rec.add("test") }

func (s *subject) Fail() error {
	s.rec.add("test")
	return errBoom
}

func (s *subject) Greet(name string, times int64) string {
	return name + ":" + string(rune('0'+times))
}

func (s *subject) Products() []string { return []string{"a", "b"} }

func (s *subject) NoProducts() []string { return nil }

func (s *subject) Explode() { panic("exploded") }

func methodOf(t *testing.T, name string, paramNames ...string) *ir.Executable {
	t.Helper()
	exec, err := ir.MethodOf(reflect.TypeOf(&subject{}), name, paramNames...)
	require.NoError(t, err)
	return exec
}

func testInvocation(t *testing.T, s *subject, name string) *invocation.MethodInvocation {
	t.Helper()
	inv, err := invocation.NewMethod(methodOf(t, name), s, nil, fault.DefaultPolicy())
	require.NoError(t, err)
	return inv
}

// wrap records before/after events around proceed.
func wrap(name string, rec *recorder) extension.Interceptor {
	return &extension.InterceptorFuncs{
		ID: name,
		Around: func(_ context.Context, inv invocation.Invocation, _ extension.PhaseContext) (any, error) {
			rec.add("before:" + name)
			v, err := inv.Proceed()
			rec.add("after:" + name)
			return v, err
		},
	}
}

// skip records an event and never proceeds.
func skip(name string, rec *recorder) extension.Interceptor {
	return &extension.InterceptorFuncs{
		ID: name,
		Around: func(context.Context, invocation.Invocation, extension.PhaseContext) (any, error) {
			rec.add("skip:" + name)
			return nil, nil
		},
	}
}

// twice proceeds two times and returns the second result.
func twice(name string) extension.Interceptor {
	return &extension.InterceptorFuncs{
		ID: name,
		Around: func(_ context.Context, inv invocation.Invocation, _ extension.PhaseContext) (any, error) {
			if _, err := inv.Proceed(); err != nil {
				return nil, err
			}
			return inv.Proceed()
		},
	}
}

func resolver(name string, supports func(extension.ParameterContext) bool, value any, err error) *extension.ResolverFunc {
	return &extension.ResolverFunc{
		ID: name,
		Supports: func(_ context.Context, pc extension.ParameterContext) bool {
			return supports(pc)
		},
		Resolve: func(context.Context, extension.ParameterContext) (any, error) {
			return value, err
		},
	}
}

func ofType[T any]() func(extension.ParameterContext) bool {
	want := reflect.TypeFor[T]()
	return func(pc extension.ParameterContext) bool { return pc.Type() == want }
}

func always(extension.ParameterContext) bool { return true }
