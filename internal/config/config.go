package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/harlowe/gaugeline/internal/timeline"
)

// Config holds every recognized engine option. It is built once, validated,
// and passed to the engine read-only; there is no ambient global state.
//
// Precedence: defaults < YAML file < environment variables.
type Config struct {
	// CapUnits is the gauge ceiling in whole units. May be fractional.
	CapUnits float64 `yaml:"cap_units" env:"GAUGELINE_CAP_UNITS"`

	// BattleSeconds is the run duration in seconds. Open intervals and
	// windows are closed at the corresponding frame.
	BattleSeconds float64 `yaml:"battle_seconds" env:"GAUGELINE_BATTLE_SECONDS"`

	// BaseRate is each participant's unmodified accrual in points per
	// frame.
	BaseRate float64 `yaml:"base_rate" env:"GAUGELINE_BASE_RATE"`

	// Participants names the active squad. Targeted intervals attach to
	// these names; the count feeds the accrual formula.
	Participants []string `yaml:"participants"`

	// Amplifier scales every accrual term by AmplifierPct percent when
	// enabled.
	Amplifier    bool    `yaml:"amplifier" env:"GAUGELINE_AMPLIFIER"`
	AmplifierPct float64 `yaml:"amplifier_pct" env:"GAUGELINE_AMPLIFIER_PCT"`

	// Directives enables inline [gen ...] modifiers in action names.
	Directives bool `yaml:"directives" env:"GAUGELINE_DIRECTIVES"`

	// SignForward makes a positive label offset always mean later in real
	// time. CountdownTimes marks scripts authored against a countdown
	// display, where a positive offset means earlier. SignForward wins
	// when both are set.
	SignForward    bool `yaml:"sign_forward"`
	CountdownTimes bool `yaml:"countdown_times"`

	// DurationAlt selects the long duration variant per catalog entry ID.
	DurationAlt map[string]bool `yaml:"duration_alt"`

	// Levels are the integer stacking-level selectors, keyed by catalog
	// level key. They resolve per-level magnitudes and gate one-time
	// grants (level >= 1 activates the grant).
	Levels map[string]int `yaml:"levels"`

	// ConsumeBeforeAccrue flips the within-commit ordering so a row's
	// cost is subtracted before accrual instead of after. Off by default;
	// kept switchable until the modeled system's behavior is confirmed.
	ConsumeBeforeAccrue bool `yaml:"consume_before_accrue"`

	// MaxResolveSteps bounds the scheduler's re-estimate loop per row.
	MaxResolveSteps int `yaml:"max_resolve_steps" env:"GAUGELINE_MAX_RESOLVE_STEPS"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		CapUnits:        10,
		BattleSeconds:   180,
		BaseRate:        100,
		Participants:    []string{"slot1", "slot2", "slot3", "slot4", "slot5"},
		AmplifierPct:    20,
		MaxResolveSteps: 100,
	}
}

// Load reads a YAML config file over the defaults, then applies environment
// overrides. An empty path skips the file and still honors the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("apply environment: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration, collecting all problems rather than
// stopping at the first.
func (c Config) Validate() []error {
	var errs []error
	if c.CapUnits <= 0 {
		errs = append(errs, fmt.Errorf("cap_units must be positive, got %g", c.CapUnits))
	}
	if c.BattleSeconds <= 0 {
		errs = append(errs, fmt.Errorf("battle_seconds must be positive, got %g", c.BattleSeconds))
	}
	if c.BaseRate < 0 {
		errs = append(errs, fmt.Errorf("base_rate must be non-negative, got %g", c.BaseRate))
	}
	if len(c.Participants) == 0 {
		errs = append(errs, fmt.Errorf("at least one participant is required"))
	}
	seen := make(map[string]bool, len(c.Participants))
	for _, p := range c.Participants {
		if p == "" {
			errs = append(errs, fmt.Errorf("participant names must be non-empty"))
			continue
		}
		if seen[p] {
			errs = append(errs, fmt.Errorf("duplicate participant %q", p))
		}
		seen[p] = true
	}
	if c.Amplifier && c.AmplifierPct <= 0 {
		errs = append(errs, fmt.Errorf("amplifier enabled but amplifier_pct is %g", c.AmplifierPct))
	}
	if c.MaxResolveSteps <= 0 {
		errs = append(errs, fmt.Errorf("max_resolve_steps must be positive, got %d", c.MaxResolveSteps))
	}
	for key, level := range c.Levels {
		if level < 0 {
			errs = append(errs, fmt.Errorf("level %q must be non-negative, got %d", key, level))
		}
	}
	return errs
}

// CeilingPoints is the gauge ceiling in points.
func (c Config) CeilingPoints() int64 {
	return timeline.UnitsToPoints(c.CapUnits)
}

// BattleFrames is the run length in frames.
func (c Config) BattleFrames() int {
	return timeline.SecondsToFrame(c.BattleSeconds)
}

// Level returns the stacking level for a catalog level key, zero when unset.
func (c Config) Level(key string) int {
	return c.Levels[key]
}

// AltDuration reports whether the long duration variant is selected for a
// catalog entry.
func (c Config) AltDuration(id string) bool {
	return c.DurationAlt[id]
}
