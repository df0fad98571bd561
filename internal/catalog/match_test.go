package catalog

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_FirstMatchWins(t *testing.T) {
	cat := &Catalog{Entries: []Entry{
		{ID: "burst-cry", Include: regexp.MustCompile(`(?i)battle\s*cry.*burst`)},
		{ID: "cry", Include: regexp.MustCompile(`(?i)battle\s*cry`)},
	}}

	entry, ok := cat.Match("Battle Cry (Burst)")
	require.True(t, ok)
	assert.Equal(t, "burst-cry", entry.ID, "more specific pattern listed first wins")

	entry, ok = cat.Match("battle cry")
	require.True(t, ok)
	assert.Equal(t, "cry", entry.ID)
}

func TestMatch_ExcludeOverridesInclude(t *testing.T) {
	cat := &Catalog{Entries: []Entry{{
		ID:      "cover",
		Include: regexp.MustCompile(`(?i)cover`),
		Exclude: regexp.MustCompile(`(?i)take\s+cover`),
	}}}

	_, ok := cat.Match("Covering Fire")
	assert.True(t, ok)

	_, ok = cat.Match("Take Cover")
	assert.False(t, ok, "excluded name falls through without trying later entries")
}

func TestMatch_SkipsGrantOnlyEntries(t *testing.T) {
	cat := &Catalog{Entries: []Entry{
		{ID: "fieldkit", Grant: true},
		{ID: "kit", Include: regexp.MustCompile(`(?i)kit`)},
	}}

	entry, ok := cat.Match("Field Kit Toss")
	require.True(t, ok)
	assert.Equal(t, "kit", entry.ID)
}

func TestMatch_NoMatch(t *testing.T) {
	cat := &Catalog{Entries: []Entry{
		{ID: "cry", Include: regexp.MustCompile(`(?i)battle\s*cry`)},
	}}
	_, ok := cat.Match("Reload")
	assert.False(t, ok)
}
