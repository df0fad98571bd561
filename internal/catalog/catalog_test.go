package catalog

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMagnitudeAt(t *testing.T) {
	direct := Magnitude{Base: 120}
	assert.Equal(t, 120.0, direct.At(0))
	assert.Equal(t, 120.0, direct.At(7), "direct magnitudes ignore the level")

	formula := Magnitude{Base: 30, PerLevel: 15}
	assert.Equal(t, 30.0, formula.At(0))
	assert.Equal(t, 60.0, formula.At(2))
}

func TestDurationSelect(t *testing.T) {
	d := Duration{Frames: 300, AltFrames: 450}
	assert.Equal(t, 300, d.Select(false))
	assert.Equal(t, 450, d.Select(true))

	single := Duration{Frames: 300}
	assert.Equal(t, 300, single.Select(true), "flag without a variant is inert")
}

func TestValidScope(t *testing.T) {
	assert.True(t, ValidScope(ScopeTargeted))
	assert.True(t, ValidScope(ScopeSquad))
	assert.True(t, ValidScope(ScopePool))
	assert.False(t, ValidScope("global"))
	assert.False(t, ValidScope(""))
}

func TestCatalogValidate(t *testing.T) {
	ok := Entry{
		ID:       "overclock",
		Scope:    ScopeSquad,
		Duration: Duration{Frames: 300},
		Include:  regexp.MustCompile("x"),
	}

	t.Run("clean catalog", func(t *testing.T) {
		cat := &Catalog{Entries: []Entry{ok}}
		assert.Empty(t, cat.Validate())
	})

	t.Run("collects every problem", func(t *testing.T) {
		cat := &Catalog{Entries: []Entry{
			ok,
			{ID: "overclock", Scope: "global", Duration: Duration{Frames: 300}, Include: ok.Include},
			{ID: "patternless", Scope: ScopePool, Duration: Duration{}},
			{Scope: ScopeSquad},
		}}
		errs := cat.Validate()
		assert.Len(t, errs, 5) // duplicate, scope, duration+pattern, missing id
	})

	t.Run("grants need no pattern", func(t *testing.T) {
		cat := &Catalog{Entries: []Entry{{
			ID:       "fieldkit",
			Scope:    ScopePool,
			Duration: Duration{Frames: 9000},
			Grant:    true,
		}}}
		assert.Empty(t, cat.Validate())
	})
}

func TestCatalogGrants(t *testing.T) {
	cat := &Catalog{Entries: []Entry{
		{ID: "a", Grant: true},
		{ID: "b"},
		{ID: "c", Grant: true},
	}}
	grants := cat.Grants()
	assert.Len(t, grants, 2)
	assert.Equal(t, "a", grants[0].ID)
	assert.Equal(t, "c", grants[1].ID)
}
