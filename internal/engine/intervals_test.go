package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harlowe/gaugeline/internal/catalog"
)

func squadEntry(id string, magnitude float64, durationFrames int) catalog.Entry {
	return catalog.Entry{
		ID:        id,
		Name:      id,
		Scope:     catalog.ScopeSquad,
		Magnitude: catalog.Magnitude{Base: magnitude},
		Duration:  catalog.Duration{Frames: durationFrames},
		LevelKey:  id,
	}
}

func TestCreate_BasicInterval(t *testing.T) {
	set := newIntervalSet()
	entry := squadEntry("overclock", 120, 300)
	entry.Offset = 6

	iv := set.Create(entry, "", 100, testConfig())
	require.NotNil(t, iv)
	assert.Equal(t, 106, iv.Start)
	assert.Equal(t, 406, iv.End)
	assert.Equal(t, 120.0, iv.Magnitude)
	assert.False(t, iv.Active)
}

func TestCreate_NonPositiveDurationIsNoOp(t *testing.T) {
	set := newIntervalSet()
	iv := set.Create(squadEntry("x", 10, 0), "", 0, testConfig())
	assert.Nil(t, iv)
	assert.Empty(t, set.intervals)
}

func TestCreate_LevelAndVariantSelection(t *testing.T) {
	cfg := testConfig()
	cfg.Levels = map[string]int{"fieldkit": 3}
	cfg.DurationAlt = map[string]bool{"fieldkit": true}

	entry := catalog.Entry{
		ID:        "fieldkit",
		Name:      "Field Kit",
		Scope:     catalog.ScopePool,
		Magnitude: catalog.Magnitude{Base: 30, PerLevel: 15},
		Duration:  catalog.Duration{Frames: 60, AltFrames: 90},
		LevelKey:  "fieldkit",
	}

	set := newIntervalSet()
	iv := set.Create(entry, "ignored", 0, cfg)
	require.NotNil(t, iv)
	assert.Equal(t, 75.0, iv.Magnitude, "base 30 + 15 per level at level 3")
	assert.Equal(t, 90, iv.End-iv.Start, "long variant selected")
	assert.Empty(t, iv.Target, "non-targeted scope drops the target")
}

func TestCreate_SameScopeOverrideTruncates(t *testing.T) {
	cfg := testConfig()
	set := newIntervalSet()

	a := set.Create(squadEntry("a", 100, 500), "", 0, cfg)
	require.NotNil(t, a)
	a.Active = true // start committed
	assert.Equal(t, 500, a.End)

	b := set.Create(squadEntry("b", 100, 200), "", 300, cfg)
	require.NotNil(t, b)

	assert.Equal(t, 300, a.End, "older interval truncated to new start")
	assert.Equal(t, 500, b.End)

	// A's end commits at 300 and A is never reopened.
	tr, ok := set.NextTransition(1000)
	require.True(t, ok)
	assert.Same(t, a, tr.interval)
	assert.Equal(t, transitionEnd, tr.kind)
	assert.Equal(t, 300, tr.frame)
	tr.commit()
	assert.False(t, a.Active)

	tr, ok = set.NextTransition(1000)
	require.True(t, ok)
	assert.Same(t, b, tr.interval, "A produces no further transitions")
}

func TestCreate_DifferentScopeKeysDoNotConflict(t *testing.T) {
	cfg := testConfig()
	set := newIntervalSet()

	entry := squadEntry("t", 50, 400)
	entry.Scope = catalog.ScopeTargeted

	a := set.Create(entry, "alice", 0, cfg)
	b := set.Create(entry, "bob", 100, cfg)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, 400, a.End, "different targets never truncate each other")
}

func TestCreate_PendingIntervalTruncatedToNothingIsInert(t *testing.T) {
	cfg := testConfig()
	set := newIntervalSet()

	// Pending interval starting at 200; an override lands at 150, before
	// the start ever commits.
	entry := squadEntry("late", 80, 100)
	entry.Offset = 200
	a := set.Create(entry, "", 0, cfg)
	require.Equal(t, 200, a.Start)

	set.Create(squadEntry("winner", 80, 100), "", 150, cfg)
	assert.Equal(t, 150, a.End)
	assert.True(t, a.truncated())

	// Only the winner's transitions remain.
	tr, ok := set.NextTransition(10_000)
	require.True(t, ok)
	assert.Equal(t, "winner", tr.interval.Source)
}

func TestNextTransition_EndBeforeStartAtSameFrame(t *testing.T) {
	cfg := testConfig()
	set := newIntervalSet()

	ending := set.Create(squadEntry("fading", 10, 100), "", 0, cfg)
	ending.Active = true // ends at 100
	set.Create(squadEntry("rising", 10, 100), "", 100, cfg)

	tr, ok := set.NextTransition(100)
	require.True(t, ok)
	assert.Equal(t, transitionEnd, tr.kind)
	assert.Same(t, ending, tr.interval)
}

func TestNextTransition_RespectsLimit(t *testing.T) {
	cfg := testConfig()
	set := newIntervalSet()
	set.Create(squadEntry("future", 10, 100), "", 500, cfg)

	_, ok := set.NextTransition(499)
	assert.False(t, ok)

	tr, ok := set.NextTransition(500)
	require.True(t, ok)
	assert.Equal(t, 500, tr.frame)
}

func TestSums_OnlyActiveIntervalsCount(t *testing.T) {
	set := newIntervalSet()
	set.intervals = []*Interval{
		{Scope: catalog.ScopeTargeted, Target: "a", Magnitude: 40, Active: true},
		{Scope: catalog.ScopeTargeted, Target: "a", Magnitude: 25, Active: true},
		{Scope: catalog.ScopeTargeted, Target: "b", Magnitude: 99, Active: false},
		{Scope: catalog.ScopeSquad, Magnitude: 10, Active: true},
		{Scope: catalog.ScopePool, Magnitude: 7, Active: true},
	}

	assert.Equal(t, 65.0, set.TargetedSum("a"))
	assert.Zero(t, set.TargetedSum("b"))
	assert.Equal(t, 10.0, set.SquadSum())
	assert.Equal(t, 7.0, set.PoolSum())
	assert.Equal(t, 2, set.ActiveTargetedCount())
}
