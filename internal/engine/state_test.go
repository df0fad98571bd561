package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harlowe/gaugeline/internal/catalog"
	"github.com/harlowe/gaugeline/internal/config"
)

func testConfig(participants ...string) config.Config {
	cfg := config.Default()
	if len(participants) > 0 {
		cfg.Participants = participants
	}
	return cfg
}

func TestAdvance_ConstantRateAccrual(t *testing.T) {
	s := newState(testConfig())
	s.rate = 250

	overflow := s.advance(100)
	assert.Zero(t, overflow)
	assert.Equal(t, 100, s.Frame())
	assert.Equal(t, int64(25_000), s.Points())

	overflow = s.advance(160)
	assert.Zero(t, overflow)
	assert.Equal(t, int64(25_000+60*250), s.Points())
}

func TestAdvance_ClampsAtCeilingAndRecordsOverflow(t *testing.T) {
	cfg := testConfig()
	cfg.CapUnits = 1 // ceiling 300,000 points
	s := newState(cfg)
	s.rate = 100_000

	overflow := s.advance(4)
	assert.Equal(t, int64(100_000), overflow, "unclamped 400,000 minus ceiling 300,000")
	assert.Equal(t, int64(300_000), s.Points(), "stored level equals ceiling exactly")
}

func TestAdvance_BackwardTargetIsNoOp(t *testing.T) {
	s := newState(testConfig())
	s.rate = 100
	s.advance(50)

	overflow := s.advance(30)
	assert.Zero(t, overflow)
	assert.Equal(t, 50, s.Frame())
	assert.Equal(t, int64(5000), s.Points())
}

func TestConsume_FloorsAtZero(t *testing.T) {
	s := newState(testConfig())
	s.rate = 100
	s.advance(10) // 1000 points

	s.consume(400)
	assert.Equal(t, int64(600), s.Points())

	s.consume(10_000)
	assert.Zero(t, s.Points())
}

// Frame-by-frame clamp sequence: ceiling 10.5 units, accumulator 3,140,000
// at frame 3000, then per-frame rates 4000/3000/2000/2000/2000/2000, then a
// cost-5 consumption at frame 3007.
func TestAdvance_ClampSequenceWithConsumption(t *testing.T) {
	cfg := testConfig()
	cfg.CapUnits = 10.5
	s := newState(cfg)
	s.frame = 3000
	s.points = 3_140_000

	steps := []struct {
		rate int
		want int64
	}{
		{4000, 3_144_000},
		{3000, 3_147_000},
		{2000, 3_149_000},
		{2000, 3_150_000}, // clamped
		{2000, 3_150_000},
		{2000, 3_150_000},
	}
	for i, step := range steps {
		s.rate = step.rate
		s.advance(3001 + i)
		require.Equal(t, step.want, s.Points(), "frame %d", 3001+i)
	}

	s.rate = 2000
	s.advance(3007)
	s.consume(5 * 300_000)
	assert.Equal(t, int64(1_650_000), s.Points())
}

func TestRecomputeRate_Formula(t *testing.T) {
	cfg := testConfig("a", "b")
	set := newIntervalSet()
	set.intervals = []*Interval{
		{Scope: catalog.ScopeTargeted, Target: "a", Magnitude: 50, Active: true},
		{Scope: catalog.ScopeSquad, Magnitude: 20, Active: true},
		{Scope: catalog.ScopePool, Magnitude: 33.4, Active: true},
		{Scope: catalog.ScopeSquad, Magnitude: 999, Active: false}, // pending, ignored
	}

	s := newState(cfg)
	require.NoError(t, s.recomputeRate(set, cfg))
	// a: round(100+50+20)=170, b: round(100+20)=120, pool: round(33.4)=33
	assert.Equal(t, 323, s.Rate())
}

func TestRecomputeRate_AmplifierScalesEveryTerm(t *testing.T) {
	cfg := testConfig("a", "b")
	cfg.Amplifier = true
	cfg.AmplifierPct = 20
	set := newIntervalSet()
	set.intervals = []*Interval{
		{Scope: catalog.ScopeTargeted, Target: "a", Magnitude: 50, Active: true},
		{Scope: catalog.ScopeSquad, Magnitude: 20, Active: true},
		{Scope: catalog.ScopePool, Magnitude: 33.4, Active: true},
	}

	s := newState(cfg)
	require.NoError(t, s.recomputeRate(set, cfg))
	// round(170*1.2)=204, round(120*1.2)=144, round(33*1.2)=40
	assert.Equal(t, 388, s.Rate())
}

func TestRecomputeRate_TooManyTargetedBuffs(t *testing.T) {
	cfg := testConfig("only")
	set := newIntervalSet()
	set.intervals = []*Interval{
		{Scope: catalog.ScopeTargeted, Target: "only", Magnitude: 10, Active: true},
		{Scope: catalog.ScopeTargeted, Target: "ghost", Magnitude: 10, Active: true},
	}

	s := newState(cfg)
	err := s.recomputeRate(set, cfg)
	require.Error(t, err)
	assert.True(t, IsBuffOverflowError(err))
}

func TestFramesUntil_RoundsUp(t *testing.T) {
	s := newState(testConfig())
	s.rate = 400
	s.points = 1000

	assert.Equal(t, 0, s.framesUntil(1000))
	assert.Equal(t, 1, s.framesUntil(1001))
	assert.Equal(t, 1, s.framesUntil(1400))
	assert.Equal(t, 2, s.framesUntil(1401))
}
