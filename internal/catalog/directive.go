package catalog

import (
	"regexp"
	"strconv"
)

// Inline gauge directives let an author declare an ad-hoc accrual modifier
// directly in an action name, without touching the catalog:
//
//	"Overdrive [gen +120 10s squad]"
//	"Leech [gen -40 5s pool]"
//	"Focus [gen +80 8s]"          // scope defaults to self
//
// Magnitude is in points per frame, duration in seconds, scope one of
// self/squad/pool. The capability is gated by configuration; when disabled
// the bracketed text is treated as part of the name.
var directivePattern = regexp.MustCompile(
	`\[gen\s+([+-]?\d+(?:\.\d+)?)\s+(\d+(?:\.\d+)?)s(?:\s+(self|squad|pool))?\]`,
)

// ParseDirective extracts an inline directive from an action name and
// synthesizes a transient catalog entry for it.
//
// A malformed directive is a silent no-op: missing or non-positive duration
// returns no entry and no error, matching how hand-written scripts are
// tolerated elsewhere. The returned entry carries no detection patterns; it
// is consumed directly by interval creation, never matched by name.
func ParseDirective(name string) (Entry, bool) {
	m := directivePattern.FindStringSubmatch(name)
	if m == nil {
		return Entry{}, false
	}

	magnitude, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Entry{}, false
	}
	seconds, err := strconv.ParseFloat(m[2], 64)
	if err != nil || seconds <= 0 {
		return Entry{}, false
	}

	scope := ScopeTargeted
	switch m[3] {
	case "squad":
		scope = ScopeSquad
	case "pool":
		scope = ScopePool
	}

	return Entry{
		ID:        "directive",
		Name:      m[0],
		Scope:     scope,
		Magnitude: Magnitude{Base: magnitude},
		Duration:  Duration{Frames: DurationSeconds(seconds)},
	}, true
}
