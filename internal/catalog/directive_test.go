package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		ok        bool
		scope     ScopeKind
		magnitude float64
		frames    int
	}{
		{
			name:      "full form",
			input:     "Overdrive [gen +120 10s squad]",
			ok:        true,
			scope:     ScopeSquad,
			magnitude: 120,
			frames:    300,
		},
		{
			name:      "negative magnitude pool",
			input:     "Leech [gen -40 5s pool]",
			ok:        true,
			scope:     ScopePool,
			magnitude: -40,
			frames:    150,
		},
		{
			name:      "scope defaults to self",
			input:     "Focus [gen +80 8s]",
			ok:        true,
			scope:     ScopeTargeted,
			magnitude: 80,
			frames:    240,
		},
		{
			name:      "explicit self",
			input:     "Focus [gen 80 8s self]",
			ok:        true,
			scope:     ScopeTargeted,
			magnitude: 80,
			frames:    240,
		},
		{
			name:      "fractional magnitude and duration",
			input:     "Trickle [gen +0.5 1.5s]",
			ok:        true,
			scope:     ScopeTargeted,
			magnitude: 0.5,
			frames:    45,
		},
		{name: "plain name", input: "Reload"},
		{name: "zero duration", input: "Dud [gen +100 0s]"},
		{name: "missing duration", input: "Dud [gen +100]"},
		{name: "unknown scope", input: "Dud [gen +100 5s raid]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := ParseDirective(tt.input)
			if !tt.ok {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, "directive", entry.ID)
			assert.Equal(t, tt.scope, entry.Scope)
			assert.Equal(t, tt.magnitude, entry.Magnitude.Base)
			assert.Equal(t, tt.frames, entry.Duration.Frames)
			assert.Nil(t, entry.Include, "transient entries are never name-matched")
		})
	}
}
