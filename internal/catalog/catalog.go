package catalog

import (
	"fmt"
	"regexp"

	"github.com/harlowe/gaugeline/internal/timeline"
)

// ScopeKind says who an entry's accrual modifier applies to.
type ScopeKind string

const (
	// ScopeTargeted modifies a single participant's accrual. The
	// participant is the actor of the row that triggered the entry.
	ScopeTargeted ScopeKind = "targeted"

	// ScopeSquad modifies every active participant's accrual.
	ScopeSquad ScopeKind = "squad"

	// ScopePool adds a flat pool-wide term, counted once rather than per
	// participant.
	ScopePool ScopeKind = "pool"
)

// ValidScope reports whether k is a recognized scope kind.
func ValidScope(k ScopeKind) bool {
	switch k {
	case ScopeTargeted, ScopeSquad, ScopePool:
		return true
	}
	return false
}

// Magnitude is an entry's accrual modifier in points per frame. It is either
// a direct value (PerLevel zero) or a base-plus-per-level formula resolved
// against a configured stacking level.
type Magnitude struct {
	Base     float64
	PerLevel float64
}

// At resolves the magnitude for a stacking level. Direct magnitudes ignore
// the level.
func (m Magnitude) At(level int) float64 {
	return m.Base + m.PerLevel*float64(level)
}

// Duration is an entry's interval length in frames. Entries may list a
// second variant selected by a per-entry configuration flag.
type Duration struct {
	Frames    int
	AltFrames int
}

// Select picks the duration variant. The alternate applies only when the
// flag is set and the entry actually lists one.
func (d Duration) Select(alt bool) int {
	if alt && d.AltFrames > 0 {
		return d.AltFrames
	}
	return d.Frames
}

// Entry is one static modifier definition. Entries are read-only after
// loading; the engine synthesizes transient entries for inline directives
// but never mutates catalog ones.
type Entry struct {
	// ID is the stable identifier used by configuration selectors
	// (duration variants, stacking levels) and stored runs.
	ID string

	// Name is the display name used on buff transition events.
	Name string

	Scope     ScopeKind
	Magnitude Magnitude
	Duration  Duration

	// Offset delays the interval start relative to the triggering row's
	// commit frame.
	Offset int

	// Include and Exclude are the detection patterns for action names.
	// Entries without an Include are never matched by name (grants).
	Include *regexp.Regexp
	Exclude *regexp.Regexp

	// Grant marks a one-time pre-run interval, created at frame zero when
	// the entry's stacking level selector is at least one.
	Grant bool

	// LevelKey names the configuration stacking-level selector feeding
	// the magnitude formula and gating grants. Defaults to ID.
	LevelKey string
}

// DurationSeconds is a loader convenience: catalog files author durations in
// seconds, intervals run in frames.
func DurationSeconds(s float64) int {
	return timeline.SecondsToFrame(s)
}

// Catalog is an ordered list of entries. Order matters: name matching is
// first-match-wins, so more specific patterns belong earlier.
type Catalog struct {
	Entries []Entry
}

// Validate checks every entry for structural problems, collecting all
// errors rather than stopping at the first.
func (c *Catalog) Validate() []error {
	var errs []error
	seen := make(map[string]bool, len(c.Entries))
	for i, e := range c.Entries {
		if e.ID == "" {
			errs = append(errs, fmt.Errorf("entry %d: missing id", i))
			continue
		}
		if seen[e.ID] {
			errs = append(errs, fmt.Errorf("entry %q: duplicate id", e.ID))
		}
		seen[e.ID] = true
		if !ValidScope(e.Scope) {
			errs = append(errs, fmt.Errorf("entry %q: invalid scope %q", e.ID, e.Scope))
		}
		if e.Duration.Frames <= 0 {
			errs = append(errs, fmt.Errorf("entry %q: non-positive duration", e.ID))
		}
		if !e.Grant && e.Include == nil {
			errs = append(errs, fmt.Errorf("entry %q: no include pattern and not a grant", e.ID))
		}
	}
	return errs
}

// Grants returns the entries that seed one-time pre-run intervals, in
// catalog order.
func (c *Catalog) Grants() []Entry {
	var grants []Entry
	for _, e := range c.Entries {
		if e.Grant {
			grants = append(grants, e)
		}
	}
	return grants
}
