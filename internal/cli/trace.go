package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harlowe/gaugeline/internal/store"
	"github.com/harlowe/gaugeline/internal/timeline"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Run      string
	Verify   bool
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show a stored run's resolved timeline",
		Long: `Show the resolved timeline of a previously persisted run.

Reconstructs the event log, modifier intervals, and burst windows from the
database in their original committed order. With --verify the canonical log
hash is recomputed and checked against the stored hash, catching any
tampering with the rows.

Examples:
  gaugeline trace --db ./runs.db --run 0190b5f2-...
  gaugeline trace --db ./runs.db --run 0190b5f2-... --verify --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Run, "run", "", "run token to trace (required)")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "recompute and check the log hash")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	record, err := st.ReadRun(ctx, opts.Run)
	if err != nil {
		code := ErrCodeDatabase
		if errors.Is(err, store.ErrRunNotFound) {
			code = ErrCodeNotFound
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	if opts.Verify {
		if err := st.VerifyRun(ctx, opts.Run); err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitFailure, "hash verification failed", err)
		}
		formatter.VerboseLog("Hash verified: %s", record.LogHash)
	}

	if opts.Format == "json" {
		return formatter.Success(traceData(record))
	}
	renderTraceText(cmd.OutOrStdout(), record)
	return nil
}

// traceJSON is the JSON payload of the trace command.
type traceJSON struct {
	RunToken  string             `json:"run_token"`
	Name      string             `json:"name,omitempty"`
	CreatedAt string             `json:"created_at"`
	Events    []timeline.Event   `json:"events"`
	Intervals []intervalJSON     `json:"intervals,omitempty"`
	Windows   []map[string]int   `json:"windows,omitempty"`
	Summary   map[string]any     `json:"summary"`
}

type intervalJSON struct {
	Source    string  `json:"source"`
	Name      string  `json:"name"`
	Scope     string  `json:"scope"`
	Target    string  `json:"target,omitempty"`
	Start     int     `json:"start"`
	End       int     `json:"end"`
	Magnitude float64 `json:"magnitude"`
}

func traceData(record *store.RunRecord) traceJSON {
	data := traceJSON{
		RunToken:  record.RunToken,
		Name:      record.Name,
		CreatedAt: record.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Events:    record.Events,
		Summary: map[string]any{
			"final_frame":        record.FinalFrame,
			"final_gauge_points": record.FinalGaugePoints,
			"log_hash":           record.LogHash,
		},
	}
	for _, iv := range record.Intervals {
		data.Intervals = append(data.Intervals, intervalJSON{
			Source: iv.Source, Name: iv.Name, Scope: string(iv.Scope),
			Target: iv.Target, Start: iv.Start, End: iv.End, Magnitude: iv.Magnitude,
		})
	}
	for _, w := range record.Windows {
		data.Windows = append(data.Windows, map[string]int{"start": w.Start, "end": w.End})
	}
	return data
}

func renderTraceText(w io.Writer, record *store.RunRecord) {
	fmt.Fprintf(w, "run %s", record.RunToken)
	if record.Name != "" {
		fmt.Fprintf(w, " (%s)", record.Name)
	}
	fmt.Fprintf(w, " stored %s\n\n", record.CreatedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(w, "%8s  %-10s  %-28s  %9s  %s\n", "FRAME", "KIND", "NAME", "GAUGE", "NOTES")
	for _, ev := range record.Events {
		notes := ""
		for i, n := range ev.Annotations {
			if i > 0 {
				notes += "; "
			}
			notes += n
		}
		fmt.Fprintf(w, "%8d  %-10s  %-28s  %9.3f  %s\n",
			ev.Frame, string(ev.Kind), clip(ev.Name, 28), ev.Gauge(), notes)
	}

	for _, iv := range record.Intervals {
		fmt.Fprintf(w, "\ninterval %s [%s] frames %d-%d magnitude %+.1f",
			iv.Name, string(iv.Scope), iv.Start, iv.End, iv.Magnitude)
		if iv.Target != "" {
			fmt.Fprintf(w, " on %s", iv.Target)
		}
	}
	if len(record.Intervals) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\nfinal: frame %d, gauge %.3f, hash %s\n",
		record.FinalFrame, timeline.PointsToUnits(record.FinalGaugePoints), record.LogHash)
}
