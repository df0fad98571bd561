package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harlowe/gaugeline/internal/engine"
	"github.com/harlowe/gaugeline/internal/store"
	"github.com/harlowe/gaugeline/internal/timeline"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config   string
	Catalog  string
	Database string
	Name     string

	// RunGenerator allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunGenerator engine.RunTokenGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Resolve a script into a frame-exact event log",
		Long: `Resolve an authored action script into a frame-exact event log.

Loads the configuration and modifier catalog, converts every row of the
script to a committed frame, and prints the resolved timeline. With --db
the completed run is also persisted for later trace queries.

Examples:
  gaugeline run ./opener.yaml
  gaugeline run ./opener.yaml --config ./sim.yaml --catalog ./modifiers.cue
  gaugeline run ./opener.yaml --db ./runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "path to config YAML (defaults apply when omitted)")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "path to modifier catalog (CUE file or directory)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for persisting the run")
	cmd.Flags().StringVar(&opts.Name, "name", "", "run name for storage (defaults to the script name)")

	return cmd
}

func runConvert(opts *RunOptions, scriptPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	inputs, errs := LoadInputs(opts.Config, opts.Catalog, scriptPath)
	if len(errs) > 0 {
		_ = formatter.Error(inputCode(errs[0]), "failed to load inputs", errorStrings(errs))
		return WrapExitError(ExitCommandError, "failed to load inputs", errs[0])
	}
	formatter.VerboseLog("Loaded %d rows, %d catalog entries",
		len(inputs.Script.Rows), len(inputs.Catalog.Entries))

	var engineOpts []engine.Option
	if opts.RunGenerator != nil {
		engineOpts = append(engineOpts, engine.WithRunTokenGenerator(opts.RunGenerator))
	}
	eng, err := engine.New(inputs.Config, inputs.Catalog, engineOpts...)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to build engine", err)
	}

	result, err := eng.Convert(inputs.Script.Rows)
	if err != nil {
		_ = formatter.Error(ErrCodeSimulation, err.Error(), nil)
		return WrapExitError(ExitFailure, "conversion aborted", err)
	}
	slog.Info("script resolved",
		"run", result.RunToken,
		"events", len(result.Events),
		"final_frame", result.FinalFrame,
	)

	if opts.Database != "" {
		name := opts.Name
		if name == "" {
			name = inputs.Script.Name
		}
		if err := persistRun(opts.Database, name, result); err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to persist run", err)
		}
		formatter.VerboseLog("Persisted run %s to %s", result.RunToken, opts.Database)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	renderRunText(cmd.OutOrStdout(), result)
	return nil
}

func persistRun(path, name string, result *engine.Result) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.WriteRun(context.Background(), name, result)
}

// renderRunText prints the resolved timeline as a fixed-width table followed
// by the run summary.
func renderRunText(w io.Writer, result *engine.Result) {
	fmt.Fprintf(w, "run %s\n\n", result.RunToken)
	fmt.Fprintf(w, "%8s  %8s  %-10s  %-28s  %9s  %s\n",
		"FRAME", "TIME", "KIND", "NAME", "GAUGE", "NOTES")
	for _, ev := range result.Events {
		fmt.Fprintf(w, "%8d  %7.2fs  %-10s  %-28s  %9.3f  %s\n",
			ev.Frame, ev.Seconds(), string(ev.Kind), clip(ev.Name, 28),
			ev.Gauge(), strings.Join(ev.Annotations, "; "))
	}

	if len(result.Windows) > 0 {
		fmt.Fprintln(w)
		for _, win := range result.Windows {
			fmt.Fprintf(w, "window: frames %d-%d (%.2fs-%.2fs)\n",
				win.Start, win.End,
				timeline.FrameToSeconds(win.Start), timeline.FrameToSeconds(win.End))
		}
	}

	fmt.Fprintf(w, "\nfinal: frame %d, gauge %.3f, hash %s\n",
		result.FinalFrame, result.FinalGauge(), result.LogHash)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func inputCode(err error) string {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ErrCodeGeneric
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
