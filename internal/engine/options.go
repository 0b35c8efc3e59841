package engine

import (
	"log/slog"

	"github.com/roach88/intercept/internal/fault"
)

type settings struct {
	logger *slog.Logger
	policy fault.Policy
}

// Option configures a Chain, ArgumentResolver or Invoker.
type Option func(*settings)

// WithLogger sets the diagnostic logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFailurePolicy replaces the fatal-failure policy.
// Default: fault.DefaultPolicy().
func WithFailurePolicy(p fault.Policy) Option {
	return func(s *settings) {
		s.policy = p
	}
}

// WithFatal adds classifiers for failures that must propagate unwrapped.
func WithFatal(classifiers ...fault.Classifier) Option {
	return func(s *settings) {
		s.policy = s.policy.With(classifiers...)
	}
}

// WithFatalCodes treats failures carrying any of the given codes as fatal.
func WithFatalCodes(codes ...string) Option {
	return func(s *settings) {
		s.policy = s.policy.WithCodes(codes...)
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		logger: slog.Default(),
		policy: fault.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
