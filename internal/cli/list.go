package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harlowe/gaugeline/internal/store"
	"github.com/harlowe/gaugeline/internal/timeline"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs",
		Long: `List every run persisted to the database, newest first.

Example:
  gaugeline list --db ./runs.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, database, cmd)
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// runListJSON is one row of the list command's JSON payload.
type runListJSON struct {
	RunToken   string  `json:"run_token"`
	Name       string  `json:"name,omitempty"`
	CreatedAt  string  `json:"created_at"`
	FinalFrame int     `json:"final_frame"`
	FinalGauge float64 `json:"final_gauge"`
	LogHash    string  `json:"log_hash"`
}

func runList(opts *RootOptions, database string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	summaries, err := st.ListRuns(context.Background())
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		rows := make([]runListJSON, len(summaries))
		for i, sum := range summaries {
			rows[i] = runListJSON{
				RunToken:   sum.RunToken,
				Name:       sum.Name,
				CreatedAt:  sum.CreatedAt.Format("2006-01-02T15:04:05Z"),
				FinalFrame: sum.FinalFrame,
				FinalGauge: timeline.PointsToUnits(sum.FinalGaugePoints),
				LogHash:    sum.LogHash,
			}
		}
		return formatter.Success(rows)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no stored runs")
		return nil
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-36s  %-20s  %-19s  %8s  %7s\n",
		"RUN", "NAME", "STORED", "FRAMES", "GAUGE")
	for _, sum := range summaries {
		fmt.Fprintf(out, "%-36s  %-20s  %-19s  %8d  %7.3f\n",
			sum.RunToken, clip(sum.Name, 20),
			sum.CreatedAt.Format("2006-01-02 15:04:05"),
			sum.FinalFrame, timeline.PointsToUnits(sum.FinalGaugePoints))
	}
	return nil
}
