package extension

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/intercept/internal/invocation"
	"github.com/roach88/intercept/internal/ir"
)

// PhaseContext describes what is being invoked, separately from the
// invocation itself. Interceptors may inspect it to decide how to behave
// without unwrapping the chain.
type PhaseContext struct {
	Phase ir.Phase

	// TestID identifies the test or container being executed.
	TestID string

	// Executable is nil for dynamic tests.
	Executable *ir.Executable

	Target    any
	HasTarget bool

	// Arguments is a read-only snapshot of the argument vector.
	Arguments []any
}

// Interceptor wraps phase invocations. Every method must call
// inv.Proceed() exactly once; the engine reports a chain integrity violation
// otherwise.
//
// Void phases ignore the returned value. The value returned from
// InterceptConstructor and InterceptTestFactory becomes the phase result.
type Interceptor interface {
	InterceptConstructor(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error)
	InterceptBeforeAll(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error)
	InterceptBeforeEach(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error)
	InterceptTestMethod(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error)
	InterceptTestFactory(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error)
	InterceptTestTemplate(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error)
	InterceptDynamicTest(ctx context.Context, inv invocation.Invocation, pc PhaseContext) (any, error)
	InterceptAfterEach(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error)
	InterceptAfterAll(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error)
}

// Named is implemented by extensions that provide a stable identity for
// diagnostics.
type Named interface {
	Name() string
}

// NameOf returns the diagnostic identity of an extension.
func NameOf(ext any) string {
	if n, ok := ext.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%T", ext)
}

// NamesOf returns the identities of all interceptors, in order.
func NamesOf(interceptors []Interceptor) []string {
	names := make([]string, len(interceptors))
	for i, ic := range interceptors {
		names[i] = NameOf(ic)
	}
	return names
}

// PassThrough implements every phase by proceeding unchanged. Embed it to
// override only selected phases.
type PassThrough struct{}

var _ Interceptor = PassThrough{}

func (PassThrough) InterceptConstructor(_ context.Context, inv invocation.ReflectiveInvocation, _ PhaseContext) (any, error) {
	return inv.Proceed()
}

func (PassThrough) InterceptBeforeAll(_ context.Context, inv invocation.ReflectiveInvocation, _ PhaseContext) (any, error) {
	return inv.Proceed()
}

func (PassThrough) InterceptBeforeEach(_ context.Context, inv invocation.ReflectiveInvocation, _ PhaseContext) (any, error) {
	return inv.Proceed()
}

func (PassThrough) InterceptTestMethod(_ context.Context, inv invocation.ReflectiveInvocation, _ PhaseContext) (any, error) {
	return inv.Proceed()
}

func (PassThrough) InterceptTestFactory(_ context.Context, inv invocation.ReflectiveInvocation, _ PhaseContext) (any, error) {
	return inv.Proceed()
}

func (PassThrough) InterceptTestTemplate(_ context.Context, inv invocation.ReflectiveInvocation, _ PhaseContext) (any, error) {
	return inv.Proceed()
}

func (PassThrough) InterceptDynamicTest(_ context.Context, inv invocation.Invocation, _ PhaseContext) (any, error) {
	return inv.Proceed()
}

func (PassThrough) InterceptAfterEach(_ context.Context, inv invocation.ReflectiveInvocation, _ PhaseContext) (any, error) {
	return inv.Proceed()
}

func (PassThrough) InterceptAfterAll(_ context.Context, inv invocation.ReflectiveInvocation, _ PhaseContext) (any, error) {
	return inv.Proceed()
}

// ReflectiveHook intercepts a reflective phase.
type ReflectiveHook func(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error)

// Hook intercepts any phase through the generic Invocation view.
type Hook func(ctx context.Context, inv invocation.Invocation, pc PhaseContext) (any, error)

// InterceptorFuncs builds an Interceptor from optional per-phase hooks.
//
// Resolution order for a phase: the phase-specific hook, then Around, then
// pass-through.
type InterceptorFuncs struct {
	ID string

	Constructor  ReflectiveHook
	BeforeAll    ReflectiveHook
	BeforeEach   ReflectiveHook
	TestMethod   ReflectiveHook
	TestFactory  ReflectiveHook
	TestTemplate ReflectiveHook
	DynamicTest  Hook
	AfterEach    ReflectiveHook
	AfterAll     ReflectiveHook

	// Around applies to every phase without a specific hook.
	Around Hook
}

var _ Interceptor = (*InterceptorFuncs)(nil)

// Name implements Named.
func (f *InterceptorFuncs) Name() string { return f.ID }

func (f *InterceptorFuncs) reflective(h ReflectiveHook, ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error) {
	switch {
	case h != nil:
		return h(ctx, inv, pc)
	case f.Around != nil:
		return f.Around(ctx, inv, pc)
	default:
		return inv.Proceed()
	}
}

func (f *InterceptorFuncs) InterceptConstructor(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error) {
	return f.reflective(f.Constructor, ctx, inv, pc)
}

func (f *InterceptorFuncs) InterceptBeforeAll(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error) {
	return f.reflective(f.BeforeAll, ctx, inv, pc)
}

func (f *InterceptorFuncs) InterceptBeforeEach(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error) {
	return f.reflective(f.BeforeEach, ctx, inv, pc)
}

func (f *InterceptorFuncs) InterceptTestMethod(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error) {
	return f.reflective(f.TestMethod, ctx, inv, pc)
}

func (f *InterceptorFuncs) InterceptTestFactory(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error) {
	return f.reflective(f.TestFactory, ctx, inv, pc)
}

func (f *InterceptorFuncs) InterceptTestTemplate(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error) {
	return f.reflective(f.TestTemplate, ctx, inv, pc)
}

func (f *InterceptorFuncs) InterceptDynamicTest(ctx context.Context, inv invocation.Invocation, pc PhaseContext) (any, error) {
	switch {
	case f.DynamicTest != nil:
		return f.DynamicTest(ctx, inv, pc)
	case f.Around != nil:
		return f.Around(ctx, inv, pc)
	default:
		return inv.Proceed()
	}
}

func (f *InterceptorFuncs) InterceptAfterEach(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error) {
	return f.reflective(f.AfterEach, ctx, inv, pc)
}

func (f *InterceptorFuncs) InterceptAfterAll(ctx context.Context, inv invocation.ReflectiveInvocation, pc PhaseContext) (any, error) {
	return f.reflective(f.AfterAll, ctx, inv, pc)
}

// NewPhaseContext describes inv for the given phase. Descriptor fields are
// filled when inv is a ReflectiveInvocation; Arguments is a copy.
func NewPhaseContext(phase ir.Phase, testID string, inv invocation.Invocation) PhaseContext {
	pc := PhaseContext{Phase: phase, TestID: testID}
	if ri, ok := inv.(invocation.ReflectiveInvocation); ok {
		pc.Executable = ri.Executable()
		pc.Target, pc.HasTarget = ri.Target()
		pc.Arguments = slices.Clone(ri.Arguments())
	}
	return pc
}
