package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/intercept/internal/ir"
)

// Scenario defines one phase execution to check.
// A scenario declares the interceptors and resolvers registered for the
// phase, the parameters and behavior of the callable, and assertions on the
// resulting trace and outcome.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Phase is the lifecycle phase to execute (e.g. "test_method").
	// Defaults to "test_method".
	Phase string `yaml:"phase,omitempty"`

	// Interceptors are registered in this order; the first is outermost.
	Interceptors []InterceptorSpec `yaml:"interceptors,omitempty"`

	// Resolvers are consulted in this order.
	Resolvers []ResolverSpec `yaml:"resolvers,omitempty"`

	// Parameters declares the callable's parameters in order.
	Parameters []ParameterSpec `yaml:"parameters,omitempty"`

	// Body describes what the callable does when reached.
	Body BodySpec `yaml:"body,omitempty"`

	Assertions []Assertion `yaml:"assertions"`

	// RunID is an optional fixed run id for deterministic output.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// InterceptorSpec declares an interceptor by behavior.
type InterceptorSpec struct {
	Name string `yaml:"name"`

	// Behavior is one of the Behavior* constants.
	Behavior string `yaml:"behavior"`

	// Value replaces the result (transform only).
	Value any `yaml:"value,omitempty"`

	// Message is the returned error text (fail-before only).
	Message string `yaml:"message,omitempty"`
}

// Interceptor behaviors.
const (
	BehaviorWrap       = "wrap"        // before, proceed, after
	BehaviorSkip       = "skip"        // never proceeds
	BehaviorTwice      = "twice"       // proceeds two times
	BehaviorFailBefore = "fail-before" // returns an error without proceeding
	BehaviorSwallow    = "swallow"     // proceeds and drops the failure
	BehaviorTransform  = "transform"   // proceeds and replaces the result
)

// ResolverSpec declares a parameter resolver.
//
// A resolver supports the parameter named Parameter when set, otherwise
// every parameter whose declared type is Type, otherwise every parameter.
type ResolverSpec struct {
	Name string `yaml:"name"`

	// Kind is one of the Resolver* constants.
	Kind string `yaml:"kind"`

	Type      string `yaml:"type,omitempty"`
	Parameter string `yaml:"parameter,omitempty"`

	Value any `yaml:"value,omitempty"`

	// Message is the returned error text (fail only).
	Message string `yaml:"message,omitempty"`
}

// Resolver kinds.
const (
	ResolverType  = "type"  // Value converted to the declared type
	ResolverValue = "value" // Value as decoded, unconverted
	ResolverFail  = "fail"  // returns an error
	ResolverNull  = "null"  // returns nil
)

// ParameterSpec declares one parameter of the callable.
type ParameterSpec struct {
	Name string `yaml:"name"`

	// Type is a type name understood by TypeOf (e.g. "string", "[]int").
	Type string `yaml:"type"`
}

// BodySpec describes the callable's behavior.
type BodySpec struct {
	// Event is recorded in the trace when the body runs. Default: "test".
	Event string `yaml:"event,omitempty"`

	// Outcome is one of the Outcome* constants. Default: "success".
	Outcome string `yaml:"outcome,omitempty"`

	// Value is returned on success.
	Value any `yaml:"value,omitempty"`

	// Message is the failure or panic text.
	Message string `yaml:"message,omitempty"`
}

// Body outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFail    = "fail"
	OutcomePanic   = "panic"
)

// Assertion validates the trace or the outcome.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_equals": trace is exactly Events
	// - "trace_contains": Event appears in the trace
	// - "trace_absent": Event does not appear in the trace
	// - "error_code": outcome carries Code ("none" for success, "panic" for
	//   a recovered panic); Contains optionally matches the message
	// - "result_equals": phase value equals Value
	// - "arguments_equal": callable received Values
	Type string `yaml:"type"`

	Events []string `yaml:"events,omitempty"`

	Event string `yaml:"event,omitempty"`

	Code     string `yaml:"code,omitempty"`
	Contains string `yaml:"contains,omitempty"`

	Value any `yaml:"value,omitempty"`

	Values []any `yaml:"values,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceEquals    = "trace_equals"
	AssertTraceContains  = "trace_contains"
	AssertTraceAbsent    = "trace_absent"
	AssertErrorCode      = "error_code"
	AssertResultEquals   = "result_equals"
	AssertArgumentsEqual = "arguments_equal"
)

// Special error_code values.
const (
	CodeNone  = "none"
	CodePanic = "panic"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// PhaseOf returns the scenario's phase, applying the default.
func (s *Scenario) PhaseOf() (ir.Phase, error) {
	if s.Phase == "" {
		return ir.PhaseTestMethod, nil
	}
	return ir.ParsePhase(s.Phase)
}

// validateScenario checks required fields and cross-references.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	phase, err := s.PhaseOf()
	if err != nil {
		return err
	}
	if !phase.Reflective() && len(s.Parameters) > 0 {
		return fmt.Errorf("%s bodies take no parameters", phase)
	}

	seen := make(map[string]bool)
	for i, ic := range s.Interceptors {
		if ic.Name == "" {
			return fmt.Errorf("interceptors[%d]: name is required", i)
		}
		if seen[ic.Name] {
			return fmt.Errorf("interceptors[%d]: duplicate name %q", i, ic.Name)
		}
		seen[ic.Name] = true
		switch ic.Behavior {
		case BehaviorWrap, BehaviorSkip, BehaviorTwice, BehaviorSwallow, BehaviorTransform:
		case BehaviorFailBefore:
			if ic.Message == "" {
				return fmt.Errorf("interceptors[%d]: message is required for %s", i, ic.Behavior)
			}
		default:
			return fmt.Errorf("interceptors[%d]: unknown behavior %q", i, ic.Behavior)
		}
	}

	params := make(map[string]bool)
	for i, p := range s.Parameters {
		if p.Name == "" {
			return fmt.Errorf("parameters[%d]: name is required", i)
		}
		if params[p.Name] {
			return fmt.Errorf("parameters[%d]: duplicate name %q", i, p.Name)
		}
		params[p.Name] = true
		if _, err := TypeOf(p.Type); err != nil {
			return fmt.Errorf("parameters[%d]: %w", i, err)
		}
	}

	for i, r := range s.Resolvers {
		if r.Name == "" {
			return fmt.Errorf("resolvers[%d]: name is required", i)
		}
		switch r.Kind {
		case ResolverType, ResolverValue, ResolverFail, ResolverNull:
		default:
			return fmt.Errorf("resolvers[%d]: unknown kind %q", i, r.Kind)
		}
		if r.Type != "" {
			if _, err := TypeOf(r.Type); err != nil {
				return fmt.Errorf("resolvers[%d]: %w", i, err)
			}
		}
		if r.Parameter != "" && !params[r.Parameter] {
			return fmt.Errorf("resolvers[%d]: unknown parameter %q", i, r.Parameter)
		}
	}

	switch s.Body.Outcome {
	case "", OutcomeSuccess, OutcomeFail, OutcomePanic:
	default:
		return fmt.Errorf("body: unknown outcome %q", s.Body.Outcome)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("at least one assertion is required")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceEquals:
		if a.Events == nil {
			return fmt.Errorf("assertions[%d]: events is required for trace_equals", index)
		}
	case AssertTraceContains, AssertTraceAbsent:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for %s", index, a.Type)
		}
	case AssertErrorCode:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error_code", index)
		}
	case AssertResultEquals:
	case AssertArgumentsEqual:
		if a.Values == nil {
			return fmt.Errorf("assertions[%d]: values is required for arguments_equal", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
