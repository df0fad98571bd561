package harness

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/cuecontext"

	"github.com/harlowe/gaugeline/internal/catalog"
	"github.com/harlowe/gaugeline/internal/config"
	"github.com/harlowe/gaugeline/internal/engine"
)

// defaultRunToken keeps scenario output deterministic when no explicit token
// is given, so golden fixtures never churn on a token change.
const defaultRunToken = "scenario-run"

// Run executes a scenario and returns the resolved run.
//
// When the scenario declares expect_error, the conversion must abort with
// that failure code; Run then returns (nil, nil). Any other outcome - a
// clean run, or a different code - is an error.
func Run(scenario *Scenario) (*engine.Result, error) {
	cfg, err := scenarioConfig(scenario)
	if err != nil {
		return nil, err
	}
	cat, err := scenarioCatalog(scenario)
	if err != nil {
		return nil, err
	}

	token := scenario.RunToken
	if token == "" {
		token = defaultRunToken
	}
	eng, err := engine.New(cfg, cat,
		engine.WithRunTokenGenerator(engine.NewFixedGenerator(token)))
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	result, err := eng.Convert(scenario.Rows)

	if scenario.ExpectError != "" {
		if err == nil {
			return nil, fmt.Errorf("scenario %q: expected %s failure, run succeeded",
				scenario.Name, scenario.ExpectError)
		}
		var se *engine.SimError
		if !errors.As(err, &se) || string(se.Code) != scenario.ExpectError {
			return nil, fmt.Errorf("scenario %q: expected %s failure, got: %w",
				scenario.Name, scenario.ExpectError, err)
		}
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}
	if errs := CheckAssertions(result, scenario.Assertions); len(errs) > 0 {
		return result, fmt.Errorf("scenario %q: %w", scenario.Name, errors.Join(errs...))
	}
	return result, nil
}

// scenarioConfig decodes the scenario's config overrides over the defaults.
func scenarioConfig(scenario *Scenario) (config.Config, error) {
	cfg := config.Default()
	if !scenario.Config.IsZero() {
		if err := scenario.Config.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("scenario %q: config: %w", scenario.Name, err)
		}
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return cfg, fmt.Errorf("scenario %q: config: %w", scenario.Name, errs[0])
	}
	return cfg, nil
}

// scenarioCatalog compiles the scenario's inline CUE catalog.
func scenarioCatalog(scenario *Scenario) (*catalog.Catalog, error) {
	if scenario.Catalog == "" {
		return &catalog.Catalog{}, nil
	}
	value := cuecontext.New().CompileString(scenario.Catalog)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("scenario %q: catalog: %w", scenario.Name, err)
	}
	cat, err := catalog.CompileCatalog(value)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: catalog: %w", scenario.Name, err)
	}
	return cat, nil
}
