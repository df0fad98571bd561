package cli

import (
	"fmt"

	"github.com/harlowe/gaugeline/internal/catalog"
	"github.com/harlowe/gaugeline/internal/config"
	"github.com/harlowe/gaugeline/internal/timeline"
)

// Inputs are the three loaded artifacts a simulation needs. The catalog is
// optional: without one, actions never spawn modifiers but the run still
// resolves.
type Inputs struct {
	Config  config.Config
	Catalog *catalog.Catalog
	Script  *timeline.Script
}

// InputError tags a load failure with the artifact that caused it and the
// unified CLI error code.
type InputError struct {
	Code    string // ErrCodeConfig, ErrCodeCatalog, ErrCodeScript
	Source  string // "config", "catalog", "script"
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Source, e.Message)
}

// LoadInputs loads configuration, catalog, and script. Empty config and
// catalog paths fall back to defaults / an empty catalog; the script path is
// mandatory. Validation problems are collected, not fail-fast, so a single
// invocation reports everything wrong with the inputs.
func LoadInputs(configPath, catalogPath, scriptPath string) (*Inputs, []error) {
	var errs []error
	in := &Inputs{Catalog: &catalog.Catalog{}}

	cfg, err := config.Load(configPath)
	if err != nil {
		errs = append(errs, &InputError{Code: ErrCodeConfig, Source: "config", Message: err.Error()})
	} else {
		for _, verr := range cfg.Validate() {
			errs = append(errs, &InputError{Code: ErrCodeConfig, Source: "config", Message: verr.Error()})
		}
	}
	in.Config = cfg

	if catalogPath != "" {
		cat, err := catalog.LoadCatalog(catalogPath)
		if err != nil {
			errs = append(errs, &InputError{Code: ErrCodeCatalog, Source: "catalog", Message: err.Error()})
		} else {
			in.Catalog = cat
		}
	}

	script, err := timeline.LoadScript(scriptPath)
	if err != nil {
		errs = append(errs, &InputError{Code: ErrCodeScript, Source: "script", Message: err.Error()})
	} else {
		in.Script = script
	}

	return in, errs
}
