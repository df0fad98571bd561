package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecondsToFrame_RoundsToNearest(t *testing.T) {
	tests := []struct {
		seconds float64
		frame   int
	}{
		{0, 0},
		{1, 30},
		{0.4, 12},
		{100.016, 3000},  // rounds down
		{100.017, 3001},  // rounds up
		{180, 5400},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.frame, SecondsToFrame(tt.seconds), "seconds=%g", tt.seconds)
	}
}

func TestFrameToSeconds_Inverse(t *testing.T) {
	assert.InDelta(t, 2.5, FrameToSeconds(75), 1e-12)
	assert.Equal(t, 0.0, FrameToSeconds(0))
}

func TestUnitsToPoints(t *testing.T) {
	assert.Equal(t, int64(300_000), UnitsToPoints(1))
	assert.Equal(t, int64(3_150_000), UnitsToPoints(10.5))
	assert.Equal(t, int64(0), UnitsToPoints(0))
	assert.Equal(t, int64(150_000), UnitsToPoints(0.5))
}

func TestPointsToUnits(t *testing.T) {
	assert.Equal(t, 1.0, PointsToUnits(300_000))
	assert.InDelta(t, 0.2, PointsToUnits(60_000), 1e-12)
}

func TestAnchorValidate(t *testing.T) {
	tests := []struct {
		name   string
		anchor Anchor
		ok     bool
	}{
		{"frame", Anchor{Kind: AnchorFrame, Frame: 30}, true},
		{"frame zero", Anchor{Kind: AnchorFrame}, true},
		{"negative frame", Anchor{Kind: AnchorFrame, Frame: -1}, false},
		{"label", Anchor{Kind: AnchorLabel, Label: "open"}, true},
		{"label no name", Anchor{Kind: AnchorLabel}, false},
		{"gauge", Anchor{Kind: AnchorGauge, Gauge: 1.5}, true},
		{"negative gauge", Anchor{Kind: AnchorGauge, Gauge: -0.1}, false},
		{"none", Anchor{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.anchor.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestAnchorKindString(t *testing.T) {
	assert.Equal(t, "frame", AnchorFrame.String())
	assert.Equal(t, "label", AnchorLabel.String())
	assert.Equal(t, "gauge", AnchorGauge.String())
	assert.Equal(t, "none", AnchorNone.String())
}

func TestEventUnitViews(t *testing.T) {
	ev := Event{Frame: 90, GaugePoints: 450_000, OverflowPoints: 30_000}
	assert.InDelta(t, 1.5, ev.Gauge(), 1e-12)
	assert.InDelta(t, 0.1, ev.Overflow(), 1e-12)
	assert.InDelta(t, 3.0, ev.Seconds(), 1e-12)
}

func TestPointUnitIsExactInFloat(t *testing.T) {
	// Round-tripping whole tenths of a unit through float64 must be exact,
	// or script costs would drift.
	for i := int64(0); i <= 105; i++ {
		points := i * PointUnit / 10
		require.Equal(t, points, UnitsToPoints(PointsToUnits(points)))
	}
}
