package cli

import (
	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := struct {
		Config  string
		Catalog string
	}{}

	cmd := &cobra.Command{
		Use:   "validate <script.yaml>",
		Short: "Check inputs without running the simulation",
		Long: `Check a script, configuration, and catalog without running the simulation.

Parses all three artifacts and reports every problem found, so a single
invocation surfaces the full list of fixes needed. Nothing is resolved or
persisted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, opts.Config, opts.Catalog, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "path to config YAML")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "path to modifier catalog (CUE file or directory)")

	return cmd
}

func runValidate(opts *RootOptions, configPath, catalogPath, scriptPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	inputs, errs := LoadInputs(configPath, catalogPath, scriptPath)
	if len(errs) > 0 {
		messages := errorStrings(errs)
		if formatter.Format == "json" {
			_ = formatter.Success(ValidationResult{Valid: false, Errors: messages})
		} else {
			for _, msg := range messages {
				formatter.VerboseLog("problem: %s", msg)
			}
			_ = formatter.Error(inputCode(errs[0]), "validation failed", messages)
		}
		return NewExitError(ExitFailure, errs[0].Error())
	}

	formatter.VerboseLog("Validated %d rows against %d catalog entries",
		len(inputs.Script.Rows), len(inputs.Catalog.Entries))

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	return formatter.Success("✓ All inputs valid")
}
