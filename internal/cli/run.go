package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/intercept/internal/harness"
	"github.com/roach88/intercept/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string

	// RunIDs allows overriding the stored run id generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	RunIDs store.RunIDGenerator
}

// RunOutput is the JSON payload of the run command.
type RunOutput struct {
	Scenario string          `json:"scenario"`
	Phase    string          `json:"phase"`
	StoredAs string          `json:"stored_as,omitempty"`
	Result   *harness.Result `json:"result"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run one scenario and print its trace",
		Long: `Run a single scenario through the engine and print the recorded
trace, the phase outcome and any failed assertions.

Exit codes:
  0 - All assertions held
  1 - One or more assertions failed
  2 - Command error (unreadable or invalid scenario, database error)

Examples:
  intercept run scenarios/onion_order.yaml
  intercept run scenarios/onion_order.yaml --db runs.db
  intercept run scenarios/onion_order.yaml -v --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runScenarioFile(ctx context.Context, opts *RunOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeInvalidScenario, err.Error(), map[string]string{"file": path})
		}
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	rec, err := openRecorder(databasePath(opts.Database, opts.cfg().DB), opts.RunIDs)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer rec.Close()

	formatter.VerboseLog("running scenario %s from %s", scenario.Name, path)
	result, err := harness.Run(ctx, scenario, opts.engineOptions()...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	storedAs, err := rec.record(ctx, scenario, result)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}

	phase, _ := scenario.PhaseOf()
	out := RunOutput{
		Scenario: scenario.Name,
		Phase:    phase.String(),
		StoredAs: storedAs,
		Result:   result,
	}

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: out, RunID: storedAs}
		if !result.Pass {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeScenarioFailed,
				Message: fmt.Sprintf("%d assertion(s) failed", len(result.Errors)),
			}
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
	} else {
		writeRunText(cmd.OutOrStdout(), scenario, out)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

func writeRunText(w io.Writer, scenario *harness.Scenario, out RunOutput) {
	fmt.Fprintln(w, titleStyle.Render(scenario.Name))
	if scenario.Description != "" {
		fmt.Fprintln(w, mutedStyle.Render(scenario.Description))
	}
	fmt.Fprintf(w, "phase: %s\n", out.Phase)
	if out.StoredAs != "" {
		fmt.Fprintf(w, "run:   %s\n", out.StoredAs)
	}

	fmt.Fprintln(w, "trace:")
	writeTrace(w, out.Result.Trace)

	result := out.Result
	switch {
	case result.ErrorCode != "":
		fmt.Fprintf(w, "outcome: %s [%s] %s\n", result.Outcome, result.ErrorCode, result.Error)
	case result.Error != "":
		fmt.Fprintf(w, "outcome: %s %s\n", result.Outcome, result.Error)
	case result.Value != nil:
		fmt.Fprintf(w, "outcome: %s %v\n", result.Outcome, result.Value)
	default:
		fmt.Fprintf(w, "outcome: %s\n", result.Outcome)
	}

	if result.Pass {
		fmt.Fprintln(w, passLine("passed"))
		return
	}
	fmt.Fprintln(w, failLine("failed"))
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

func writeTrace(w io.Writer, trace []harness.TraceEvent) {
	if len(trace) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  (empty)"))
		return
	}
	for _, e := range trace {
		fmt.Fprintf(w, "  [%d] %s\n", e.Seq, e.Event)
	}
}

// databasePath prefers the flag over the config file.
func databasePath(flag, configured string) string {
	if flag != "" {
		return flag
	}
	return configured
}
