package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/intercept/internal/harness"
)

// ValidationError is one scenario file that failed to load.
type ValidationError struct {
	File    string `json:"file"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate scenario files without running them",
		Long: `Strictly parse and validate scenario files without running them.

<path> may be one scenario file or a directory searched recursively.
Unknown fields, unknown behaviors and resolver kinds, undeclared parameter
references and malformed assertions are all reported.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	files, err := validationTargets(path, opts.cfg().GoldenDir)
	if err != nil {
		code := ErrCodeScanError
		if os.IsNotExist(err) {
			code = ErrCodeNotFound
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}
	if len(files) == 0 {
		_ = formatter.Error(ErrCodeNoFiles, fmt.Sprintf("no scenario files found in %s", path), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("no scenario files found in %s", path))
	}

	result := ValidationResult{Valid: true, Files: len(files)}
	names := make(map[string]string)
	for _, file := range files {
		formatter.VerboseLog("validating %s", file)
		scenario, err := harness.LoadScenario(file)
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{
				File:    file,
				Code:    ErrCodeInvalidScenario,
				Message: err.Error(),
			})
			continue
		}
		if prev, ok := names[scenario.Name]; ok {
			result.Errors = append(result.Errors, ValidationError{
				File:    file,
				Code:    ErrCodeInvalidScenario,
				Message: fmt.Sprintf("scenario name %q already used by %s", scenario.Name, prev),
			})
			continue
		}
		names[scenario.Name] = file
	}
	result.Valid = len(result.Errors) == 0

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeInvalidScenario,
				Message: fmt.Sprintf("%d invalid scenario file(s)", len(result.Errors)),
				Details: result.Errors,
			}
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, e := range result.Errors {
			fmt.Fprintln(w, failLine(e.File))
			fmt.Fprintf(w, "  %s\n", e.Message)
		}
		if result.Valid {
			fmt.Fprintln(w, passLine(fmt.Sprintf("%d scenario file(s) valid", result.Files)))
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid scenario file(s)", len(result.Errors)))
	}
	return nil
}

// validationTargets returns path itself for a file, or every scenario file
// beneath a directory.
func validationTargets(path, goldenDir string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	return findScenarioFiles(path, filepath.Join(path, goldenDir), "")
}
