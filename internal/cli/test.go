package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/intercept/internal/harness"
	"github.com/roach88/intercept/internal/store"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update   bool   // regenerate golden files
	Filter   string // scenario filter (glob pattern)
	Parallel int    // scenarios run concurrently; 0 uses the config value
	Database string

	// RunIDs allows overriding the stored run id generator (for testing).
	RunIDs store.RunIDGenerator
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name     string   `json:"name"`
	File     string   `json:"file"`
	Pass     bool     `json:"pass"`
	Golden   string   `json:"golden,omitempty"` // "match", "updated", "mismatch" or "" when absent
	StoredAs string   `json:"stored_as,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// Golden comparison states.
const (
	goldenMatch    = "match"
	goldenUpdated  = "updated"
	goldenMismatch = "mismatch"
)

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run every scenario in a directory",
		Long: `Run all scenario files in a directory and compare each run's snapshot
against <scenarios-dir>/<golden_dir>/<name>.golden when that file exists.

A scenario passes when all of its assertions hold and its snapshot matches
the golden file. Scenarios without a golden file are checked by assertions
only.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  intercept test ./scenarios
  intercept test ./scenarios --filter "onion*"
  intercept test ./scenarios --update
  intercept test ./scenarios --parallel 8 --db runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 0, "number of scenarios to run concurrently (default from config)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record runs in this SQLite database")

	return cmd
}

func runTests(ctx context.Context, opts *TestOptions, dir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := requireDir(dir, "scenarios directory"); err != nil {
		return err
	}

	cfg := opts.cfg()
	goldenDir := filepath.Join(dir, cfg.GoldenDir)

	scenarioFiles, err := findScenarioFiles(dir, goldenDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	rec, err := openRecorder(databasePath(opts.Database, cfg.DB), opts.RunIDs)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer rec.Close()

	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = cfg.Parallel
	}

	// Each goroutine owns one slot, so results keep file order.
	results := make([]ScenarioResult, len(scenarioFiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, file := range scenarioFiles {
		g.Go(func() error {
			results[i] = runOne(gctx, opts, rec, file, goldenDir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	result := TestResult{Scenarios: results, Total: len(results)}
	for _, r := range results {
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	return outputTestText(cmd, result)
}

// runOne loads, runs, compares and records a single scenario.
func runOne(ctx context.Context, opts *TestOptions, rec *recorder, file, goldenDir string) ScenarioResult {
	sr := ScenarioResult{Name: scenarioFileName(file), File: file}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return sr
	}
	sr.Name = scenario.Name

	result, err := harness.Run(ctx, scenario, opts.engineOptions()...)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return sr
	}
	sr.Errors = append(sr.Errors, result.Errors...)

	goldenPath := filepath.Join(goldenDir, scenarioFileName(file)+".golden")
	state, err := checkGolden(scenario, result, goldenPath, opts.Update)
	sr.Golden = state
	if err != nil {
		sr.Errors = append(sr.Errors, err.Error())
	}

	sr.StoredAs, err = rec.record(ctx, scenario, result)
	if err != nil {
		sr.Errors = append(sr.Errors, fmt.Sprintf("failed to record run: %v", err))
	}

	sr.Pass = len(sr.Errors) == 0
	return sr
}

// checkGolden compares the result's snapshot with goldenPath, or rewrites
// the file when update is set. A missing golden file is not an error.
func checkGolden(scenario *harness.Scenario, result *harness.Result, goldenPath string, update bool) (string, error) {
	current, err := harness.Snapshot(scenario.Name, result)
	if err != nil {
		return "", fmt.Errorf("failed to snapshot result: %w", err)
	}

	if update {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
			return "", fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(goldenPath, current, 0o644); err != nil {
			return "", fmt.Errorf("failed to write golden file: %w", err)
		}
		return goldenUpdated, nil
	}

	golden, err := os.ReadFile(goldenPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(golden, current) {
		return goldenMismatch, fmt.Errorf("snapshot does not match %s (run with --update to regenerate)", goldenPath)
	}
	return goldenMatch, nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeScenarioFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	if err := formatter.Respond(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	for _, r := range result.Scenarios {
		writeScenarioLine(w, r)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, passLine("All scenarios passed"))
	return nil
}

func writeScenarioLine(w io.Writer, r ScenarioResult) {
	label := r.Name
	if r.Golden == goldenUpdated {
		label += " (golden updated)"
	}
	if r.Pass {
		fmt.Fprintln(w, passLine(label))
		return
	}
	fmt.Fprintln(w, failLine(label))
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}
