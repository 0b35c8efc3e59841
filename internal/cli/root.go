package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/roach88/intercept/internal/config"
	"github.com/roach88/intercept/internal/engine"
)

// RootOptions holds global flags for all commands, plus the config and
// logger resolved from them before any subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the intercept CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "intercept",
		Short: "Run interceptor chain scenarios",
		Long: `intercept drives an interceptor chain and parameter resolution engine
from YAML scenario files. Each scenario declares interceptors by behavior,
parameter resolvers, and the body of one lifecycle phase, then asserts on
the recorded trace and outcome.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default ./"+config.FileName+" if present)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// resolve loads the config and builds the logger. An explicit --format
// wins over the config file.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.Config = cfg

	if !cmd.Flags().Changed("format") {
		o.Format = cfg.Format
	}
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	level := cfg.Level()
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = newLogger(cmd, level)
	return nil
}

// newLogger returns a slog logger backed by charmbracelet/log on stderr.
func newLogger(cmd *cobra.Command, level slog.Level) *slog.Logger {
	handler := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix: "intercept",
		Level:  log.Level(level),
	})
	return slog.New(handler)
}

// engineOptions returns the options every command passes to the engine.
func (o *RootOptions) engineOptions() []engine.Option {
	var opts []engine.Option
	if o.Config != nil {
		opts = append(opts, o.Config.EngineOptions()...)
	}
	if o.Logger != nil {
		opts = append(opts, engine.WithLogger(o.Logger))
	}
	return opts
}

// cfg returns the resolved config, or the defaults when a command runs
// without the root (as in tests).
func (o *RootOptions) cfg() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
