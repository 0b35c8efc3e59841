package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/intercept/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Scenario string
	Event    string
	Failed   bool
	Limit    int
}

// TraceRun is one stored run as printed by the trace command.
type TraceRun struct {
	ID        string       `json:"id"`
	Scenario  string       `json:"scenario"`
	Phase     string       `json:"phase"`
	Pass      bool         `json:"pass"`
	Outcome   string       `json:"outcome"`
	ErrorCode string       `json:"error_code,omitempty"`
	Error     string       `json:"error,omitempty"`
	Failures  []string     `json:"failures,omitempty"`
	Trace     []TraceEvent `json:"trace"`
}

// TraceEvent is one recorded trace entry.
type TraceEvent struct {
	Seq   int64  `json:"seq"`
	Event string `json:"event"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Runs []TraceRun `json:"runs"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show recorded scenario runs",
		Long: `Show runs recorded by 'run --db' or 'test --db', oldest first, with the
interceptor and body events of each.

Examples:
  intercept trace --db runs.db
  intercept trace --db runs.db --run 0193a0c4-...
  intercept trace --db runs.db --scenario onion_order --limit 5
  intercept trace --db runs.db --event skip:auth --failed --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run by id")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "only runs of this scenario")
	cmd.Flags().StringVar(&opts.Event, "event", "", "only runs whose trace contains this event")
	cmd.Flags().BoolVar(&opts.Failed, "failed", false, "only runs with failed assertions")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show at most this many of the most recent runs")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	path := databasePath(opts.Database, opts.cfg().DB)
	if path == "" {
		return NewExitError(ExitCommandError, "no database: pass --db or set db in the config file")
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := loadRuns(ctx, st, opts)
	if errors.Is(err, sql.ErrNoRows) {
		msg := fmt.Sprintf("no run with id %s", opts.RunID)
		_ = formatter.Error(ErrCodeRunNotFound, msg, nil)
		return NewExitError(ExitFailure, msg)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}

	result := TraceResult{Runs: make([]TraceRun, len(runs))}
	for i, r := range runs {
		result.Runs[i] = toTraceRun(r)
	}

	if opts.Format == "json" {
		return formatter.Respond(CLIResponse{Status: "ok", Data: result})
	}
	writeTraceText(cmd.OutOrStdout(), result)
	return nil
}

// loadRuns reads the selected runs with their traces.
func loadRuns(ctx context.Context, st *store.Store, opts *TraceOptions) ([]store.Run, error) {
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if err != nil {
			return nil, err
		}
		return []store.Run{run}, nil
	}

	runs, err := st.ReadRuns(ctx, store.RunFilter{
		Scenario:   opts.Scenario,
		Event:      opts.Event,
		FailedOnly: opts.Failed,
		Limit:      opts.Limit,
	})
	if err != nil {
		return nil, err
	}
	for i := range runs {
		runs[i].Trace, err = st.ReadTrace(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func toTraceRun(r store.Run) TraceRun {
	tr := TraceRun{
		ID:        r.ID,
		Scenario:  r.Scenario,
		Phase:     r.Phase,
		Pass:      r.Pass,
		Outcome:   r.Outcome,
		ErrorCode: r.ErrorCode,
		Error:     r.Error,
		Failures:  r.Failures,
		Trace:     make([]TraceEvent, len(r.Trace)),
	}
	for i, e := range r.Trace {
		tr.Trace[i] = TraceEvent{Seq: e.Seq, Event: e.Name}
	}
	return tr
}

func writeTraceText(w io.Writer, result TraceResult) {
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return
	}
	for i, r := range result.Runs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		header := fmt.Sprintf("%s  %s (%s)", r.ID, r.Scenario, r.Phase)
		if r.Pass {
			fmt.Fprintln(w, passLine(header))
		} else {
			fmt.Fprintln(w, failLine(header))
		}
		for _, e := range r.Trace {
			fmt.Fprintf(w, "  [%d] %s\n", e.Seq, e.Event)
		}
		if r.ErrorCode != "" {
			fmt.Fprintf(w, "  outcome: %s [%s] %s\n", r.Outcome, r.ErrorCode, r.Error)
		} else {
			fmt.Fprintf(w, "  outcome: %s\n", r.Outcome)
		}
		for _, f := range r.Failures {
			fmt.Fprintln(w, mutedStyle.Render("  "+f))
		}
	}
}
