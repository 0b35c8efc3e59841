package engine

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/roach88/intercept/internal/extension"
	"github.com/roach88/intercept/internal/invocation"
	"github.com/roach88/intercept/internal/ir"
)

// InterceptorCall selects the interceptor method used for a phase.
// CallNone runs the base invocation without decoration.
type InterceptorCall int

const (
	CallNone InterceptorCall = iota
	CallConstructor
	CallBeforeAll
	CallBeforeEach
	CallTestMethod
	CallTestFactory
	CallTestTemplate
	CallDynamicTest
	CallAfterEach
	CallAfterAll
)

// CallFor returns the interceptor call for a phase.
func CallFor(p ir.Phase) InterceptorCall {
	switch p {
	case ir.PhaseConstructor:
		return CallConstructor
	case ir.PhaseBeforeAll:
		return CallBeforeAll
	case ir.PhaseBeforeEach:
		return CallBeforeEach
	case ir.PhaseTestMethod:
		return CallTestMethod
	case ir.PhaseTestFactory:
		return CallTestFactory
	case ir.PhaseTestTemplate:
		return CallTestTemplate
	case ir.PhaseDynamicTest:
		return CallDynamicTest
	case ir.PhaseAfterEach:
		return CallAfterEach
	case ir.PhaseAfterAll:
		return CallAfterAll
	default:
		return CallNone
	}
}

// Phase returns the phase served by c. CallNone has no phase and returns 0.
func (c InterceptorCall) Phase() ir.Phase {
	switch c {
	case CallConstructor:
		return ir.PhaseConstructor
	case CallBeforeAll:
		return ir.PhaseBeforeAll
	case CallBeforeEach:
		return ir.PhaseBeforeEach
	case CallTestMethod:
		return ir.PhaseTestMethod
	case CallTestFactory:
		return ir.PhaseTestFactory
	case CallTestTemplate:
		return ir.PhaseTestTemplate
	case CallDynamicTest:
		return ir.PhaseDynamicTest
	case CallAfterEach:
		return ir.PhaseAfterEach
	case CallAfterAll:
		return ir.PhaseAfterAll
	default:
		return 0
	}
}

func (c InterceptorCall) String() string {
	if c == CallNone {
		return "none"
	}
	return c.Phase().String()
}

// intercept dispatches to the interceptor method for c. Every call other than
// CallDynamicTest requires inv to be reflective; Run checks this up front.
func (c InterceptorCall) intercept(ctx context.Context, ic extension.Interceptor, inv invocation.Invocation, pc extension.PhaseContext) (any, error) {
	if c == CallDynamicTest {
		return ic.InterceptDynamicTest(ctx, inv, pc)
	}
	ri := inv.(invocation.ReflectiveInvocation)
	switch c {
	case CallConstructor:
		return ic.InterceptConstructor(ctx, ri, pc)
	case CallBeforeAll:
		return ic.InterceptBeforeAll(ctx, ri, pc)
	case CallBeforeEach:
		return ic.InterceptBeforeEach(ctx, ri, pc)
	case CallTestMethod:
		return ic.InterceptTestMethod(ctx, ri, pc)
	case CallTestFactory:
		return ic.InterceptTestFactory(ctx, ri, pc)
	case CallTestTemplate:
		return ic.InterceptTestTemplate(ctx, ri, pc)
	case CallAfterEach:
		return ic.InterceptAfterEach(ctx, ri, pc)
	case CallAfterAll:
		return ic.InterceptAfterAll(ctx, ri, pc)
	default:
		return nil, fmt.Errorf("no interceptor method for %s", c)
	}
}

type testIDKey struct{}

// WithTestID attaches the identity of the test being executed to ctx.
// Chain copies it into every PhaseContext.
func WithTestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, testIDKey{}, id)
}

// TestIDFrom returns the test identity attached by WithTestID.
func TestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(testIDKey{}).(string)
	return id
}

// Chain runs invocations through ordered interceptors.
type Chain struct {
	settings
}

// NewChain creates a Chain.
func NewChain(opts ...Option) *Chain {
	return &Chain{settings: newSettings(opts)}
}

// Run executes base through interceptors using the interceptor method
// selected by call.
//
// The first interceptor is outermost: for [A, B, C] the order is
// A-before, B-before, C-before, base, C-after, B-after, A-after.
//
// With CallNone or no interceptors, base.Proceed() is called directly.
// Otherwise the base must be reached exactly once; a violation is returned as
// a *ChainIntegrityError and takes precedence over the chain's own result.
// Failures from base propagate with identity preserved. Panics raised by an
// interceptor are returned as *fault.PanicError unless the failure policy
// classifies them as fatal.
func (c *Chain) Run(ctx context.Context, call InterceptorCall, base invocation.Invocation, interceptors []extension.Interceptor) (any, error) {
	if call == CallNone || len(interceptors) == 0 {
		return base.Proceed()
	}
	if _, ok := base.(invocation.ReflectiveInvocation); !ok && call != CallDynamicTest {
		return nil, fmt.Errorf("%s interceptors require a reflective invocation, got %T", call, base)
	}

	phase := call.Phase()
	pc := extension.NewPhaseContext(phase, TestIDFrom(ctx), base)
	names := extension.NamesOf(interceptors)

	guard := &validatingInvocation{base: base, phase: phase, names: names}
	current := forward(base, guard.Proceed)
	for i := len(interceptors) - 1; i >= 0; i-- {
		current = c.decorate(ctx, call, interceptors[i], current, pc)
	}

	c.logger.Debug("interceptor chain starting",
		"phase", phase.String(),
		"test_id", pc.TestID,
		"interceptors", names,
	)

	value, err := current.Proceed()

	if violation := guard.check(err); violation != nil {
		c.logger.Error("interceptor chain integrity violated",
			"phase", phase.String(),
			"test_id", pc.TestID,
			"code", string(violation.Code),
			"interceptors", names,
		)
		return nil, violation
	}

	c.logger.Debug("interceptor chain completed",
		"phase", phase.String(),
		"test_id", pc.TestID,
		"failed", err != nil,
	)
	return value, err
}

// decorate returns an invocation whose Proceed runs ic around next.
func (c *Chain) decorate(ctx context.Context, call InterceptorCall, ic extension.Interceptor, next invocation.Invocation, pc extension.PhaseContext) invocation.Invocation {
	return forward(next, func() (_ any, err error) {
		defer c.policy.Capture(&err)
		return call.intercept(ctx, ic, next, pc)
	})
}

// forward wraps proceed so that the result keeps next's descriptor. When next
// is reflective, every accessor is delegated to it unchanged.
func forward(next invocation.Invocation, proceed invocation.Func) invocation.Invocation {
	if ri, ok := next.(invocation.ReflectiveInvocation); ok {
		return &reflectiveLayer{ReflectiveInvocation: ri, proceed: proceed}
	}
	return proceed
}

type reflectiveLayer struct {
	invocation.ReflectiveInvocation
	proceed invocation.Func
}

func (l *reflectiveLayer) Proceed() (any, error) {
	return l.proceed()
}

// validatingInvocation counts how often the base is reached. Only the first
// reach is forwarded.
type validatingInvocation struct {
	base  invocation.Invocation
	phase ir.Phase
	names []string
	calls atomic.Int32
}

func (v *validatingInvocation) Proceed() (any, error) {
	if !v.calls.CompareAndSwap(0, 1) {
		v.calls.Add(1)
		return nil, v.violation(ErrCodeInvokedMoreThanOnce, nil)
	}
	return v.base.Proceed()
}

// check returns the violation recorded for the completed chain, if any.
// err is what the outermost invocation returned.
func (v *validatingInvocation) check(err error) *ChainIntegrityError {
	switch n := v.calls.Load(); {
	case n == 0:
		return v.violation(ErrCodeNeverInvoked, err)
	case n > 1:
		return v.violation(ErrCodeInvokedMoreThanOnce, err)
	default:
		return nil
	}
}

func (v *validatingInvocation) violation(code IntegrityCode, cause error) *ChainIntegrityError {
	if IsChainIntegrityViolation(cause) {
		cause = nil
	}
	return &ChainIntegrityError{
		Code:         code,
		Phase:        v.phase,
		Interceptors: v.names,
		Cause:        cause,
	}
}
