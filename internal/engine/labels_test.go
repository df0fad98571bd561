package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harlowe/gaugeline/internal/config"
)

func TestLabels_PublishAndResolve(t *testing.T) {
	l := newLabels()

	_, ok := l.Resolve("open")
	assert.False(t, ok)

	l.Publish("open", 240)
	frame, ok := l.Resolve("open")
	assert.True(t, ok)
	assert.Equal(t, 240, frame)

	// Re-publish moves the label.
	l.Publish("open", 300)
	frame, _ = l.Resolve("open")
	assert.Equal(t, 300, frame)

	// Empty names are ignored.
	l.Publish("", 999)
	_, ok = l.Resolve("")
	assert.False(t, ok)
}

func TestEffectiveOffset_SignPolicy(t *testing.T) {
	tests := []struct {
		name        string
		signForward bool
		countdown   bool
		offset      int
		want        int
	}{
		{"default keeps sign", false, false, 30, 30},
		{"default keeps negative", false, false, -30, -30},
		{"countdown inverts", false, true, 30, -30},
		{"countdown inverts negative", false, true, -30, 30},
		{"sign-forward wins over countdown", true, true, 30, 30},
		{"sign-forward alone", true, false, -30, -30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.SignForward = tt.signForward
			cfg.CountdownTimes = tt.countdown
			assert.Equal(t, tt.want, effectiveOffset(tt.offset, cfg))
		})
	}
}
