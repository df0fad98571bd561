package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/harlowe/gaugeline/internal/timeline"
)

// Scenario defines a conformance test scenario. A scenario is
// self-contained: configuration overrides, the modifier catalog, and the row
// script all live inline, so the file fully determines the resolved log.
type Scenario struct {
	// Name uniquely identifies this scenario; it doubles as the golden
	// fixture name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config holds configuration overrides, decoded over the defaults.
	Config yaml.Node `yaml:"config,omitempty"`

	// Catalog is inline CUE source for the modifier catalog. Empty means
	// no catalog: actions never spawn modifiers.
	Catalog string `yaml:"catalog,omitempty"`

	// Rows is the authored script.
	Rows []timeline.Row `yaml:"rows"`

	// Assertions validate the resolved log and run summary.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// ExpectError names the failure code the conversion must abort with
	// (e.g. "ZERO_RATE"). Mutually exclusive with assertions.
	ExpectError string `yaml:"expect_error,omitempty"`

	// RunToken is an optional fixed run token for deterministic golden
	// comparison. Defaults to "scenario-run".
	RunToken string `yaml:"run_token,omitempty"`
}

// Assertion validates one property of a resolved run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "log_contains": an event with the given name (and optional kind,
	//   frame, annotation) appears in the log
	// - "log_order": events with these names appear in this relative order
	// - "log_count": events with the given name appear exactly Count times
	// - "final_gauge": the closing gauge level in units
	// - "window_active": whether the given frame lies inside a burst window
	Type string `yaml:"type"`

	// Name is the event name (log_contains, log_count).
	Name string `yaml:"name,omitempty"`

	// Kind restricts log_contains to an event kind.
	Kind string `yaml:"kind,omitempty"`

	// Frame is the expected commit frame (log_contains, pointer so zero is
	// expressible) or the probed frame (window_active).
	Frame *int `yaml:"frame,omitempty"`

	// Annotation must appear on the matched event (log_contains).
	Annotation string `yaml:"annotation,omitempty"`

	// Names is the expected order (log_order).
	Names []string `yaml:"names,omitempty"`

	// Count is the expected number of occurrences (log_count).
	Count int `yaml:"count,omitempty"`

	// Gauge is the expected closing level in units (final_gauge).
	Gauge float64 `yaml:"gauge,omitempty"`

	// Active is the expected window state (window_active).
	Active bool `yaml:"active,omitempty"`
}

// Assertion type constants.
const (
	AssertLogContains  = "log_contains"
	AssertLogOrder     = "log_order"
	AssertLogCount     = "log_count"
	AssertFinalGauge   = "final_gauge"
	AssertWindowActive = "window_active"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected to catch typos, and required fields are validated.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML from memory.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Rows) == 0 {
		return fmt.Errorf("rows list is required and must be non-empty")
	}

	if s.ExpectError != "" {
		if len(s.Assertions) > 0 {
			return fmt.Errorf("expect_error and assertions are mutually exclusive")
		}
		return nil
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertLogContains:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for log_contains", index)
		}
	case AssertLogOrder:
		if len(a.Names) < 2 {
			return fmt.Errorf("assertions[%d]: at least two names are required for log_order", index)
		}
	case AssertLogCount:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for log_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for log_count", index)
		}
	case AssertFinalGauge:
		if a.Gauge < 0 {
			return fmt.Errorf("assertions[%d]: gauge must be non-negative for final_gauge", index)
		}
	case AssertWindowActive:
		if a.Frame == nil {
			return fmt.Errorf("assertions[%d]: frame is required for window_active", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
