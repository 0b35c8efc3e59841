package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/intercept/internal/engine"
	"github.com/roach88/intercept/internal/extension"
	"github.com/roach88/intercept/internal/testutil"
)

// Harness executes one scenario through the engine.
type Harness struct {
	invoker *engine.Invoker
	suite   *Suite
	runGen  *testutil.FixedRunIDGenerator
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Synthesize the callable from the declared parameters and body
//  2. Build interceptors and resolvers in declaration order
//  3. Resolve arguments and run the phase through the interceptor chain
//  4. Record the outcome and evaluate assertions
//
// Engine logs are discarded unless opts supply a logger. A non-nil error
// means the scenario could not be executed; assertion failures are reported
// in Result.Errors.
func Run(ctx context.Context, scenario *Scenario, opts ...engine.Option) (*Result, error) {
	phase, err := scenario.PhaseOf()
	if err != nil {
		return nil, err
	}

	// Suppress logs by default; caller options come last and win.
	opts = append([]engine.Option{engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)

	h := &Harness{
		invoker: engine.NewInvoker(opts...),
		suite:   newSuite(),
		runGen:  testutil.NewFixedRunIDGenerator(scenario.RunID),
	}

	reg, err := h.registry(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to build extensions: %w", err)
	}

	ctx = engine.WithTestID(ctx, scenario.Name)
	var outcome engine.Outcome
	if !phase.Reflective() {
		err := h.invoker.InvokeDynamic(ctx, scenario.Name, h.suite.dynamic(scenario.Body), reg)
		outcome = engine.Observe(phase, nil, err)
	} else {
		exec, err := h.suite.callable(scenario.Name, phase, scenario.Parameters, scenario.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to build callable: %w", err)
		}
		outcome = h.invoker.Invoke(ctx, phase, exec, h.suite, reg)
	}

	result := h.record(outcome)
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) registry(scenario *Scenario) (*extension.List, error) {
	interceptors := make([]extension.Interceptor, len(scenario.Interceptors))
	for i, spec := range scenario.Interceptors {
		interceptors[i] = buildInterceptor(spec, h.suite)
	}
	resolvers := make([]extension.ParameterResolver, len(scenario.Resolvers))
	for i, spec := range scenario.Resolvers {
		r, err := buildResolver(spec)
		if err != nil {
			return nil, fmt.Errorf("resolvers[%d]: %w", i, err)
		}
		resolvers[i] = r
	}
	return extension.NewList(interceptors, resolvers), nil
}

func (h *Harness) record(outcome engine.Outcome) *Result {
	result := NewResult(h.runGen.Generate())
	result.Trace = h.suite.Trace()
	result.Outcome = outcome.Kind.String()

	switch outcome.Kind {
	case engine.OutcomeFailure:
		result.err = outcome.Err
		result.ErrorCode = engine.Code(outcome.Err)
		result.Error = outcome.Err.Error()
	case engine.OutcomeValue:
		if s, ok := outcome.Value.(*Suite); ok {
			result.Value = s.Product
		} else {
			result.Value = outcome.Value
		}
	}

	if h.suite.ran {
		result.Arguments = h.suite.args
		if result.Arguments == nil {
			result.Arguments = []any{}
		}
	}
	return result
}
