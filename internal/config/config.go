package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/intercept/internal/engine"
)

// FileName is the config file looked up in the working directory when no
// path is given.
const FileName = "intercept.cue"

//go:embed schema.cue
var schema []byte

// Config is the decoded configuration.
type Config struct {
	LogLevel   string   `json:"log_level"`
	Format     string   `json:"format"`
	DB         string   `json:"db"`
	GoldenDir  string   `json:"golden_dir"`
	Parallel   int      `json:"parallel"`
	FatalCodes []string `json:"fatal_codes"`

	// Source is the file the config was read from, empty for defaults.
	Source string `json:"-"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		Format:     "text",
		GoldenDir:  "golden",
		Parallel:   1,
		FatalCodes: []string{},
	}
}

// Error is a config validation failure with its CUE location.
type Error struct {
	// Path is the field path, e.g. "parallel". Empty for syntax errors.
	Path    string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	var prefix string
	if e.Pos.IsValid() {
		prefix = fmt.Sprintf("%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	}
	if e.Path != "" {
		return fmt.Sprintf("%s%s: %s", prefix, e.Path, e.Message)
	}
	return prefix + e.Message
}

// Load reads the config at path. An empty path looks for FileName in the
// working directory and falls back to Default when it does not exist; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	cfg.Source = path
	return cfg, nil
}

// Parse compiles data, unifies it with the schema and decodes the result.
// filename is used in error positions.
func Parse(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema, cue.Filename("schema.cue"))
	if err := schemaValue.Err(); err != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", err)
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if err := userValue.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schemaValue.LookupPath(cue.ParsePath("#Config")).Unify(userValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, formatCUEError(err)
	}
	if cfg.FatalCodes == nil {
		cfg.FatalCodes = []string{}
	}
	return &cfg, nil
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EngineOptions returns the engine options the config implies.
func (c *Config) EngineOptions() []engine.Option {
	if len(c.FatalCodes) == 0 {
		return nil
	}
	return []engine.Option{engine.WithFatalCodes(c.FatalCodes...)}
}

// formatCUEError converts the first CUE error into an *Error carrying its
// field path and position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	format, args := first.Msg()
	e := &Error{
		Path:    strings.Join(first.Path(), "."),
		Message: fmt.Sprintf(format, args...),
	}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}
