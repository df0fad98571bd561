package engine

import (
	"math"

	"github.com/harlowe/gaugeline/internal/config"
)

// State is the single source of truth for the simulation: current frame,
// gauge accumulator, accrual rate, and participant count. One instance lives
// for one conversion run.
//
// Only the scheduler's commit step mutates State; every other component
// reads it. This whole package is single-threaded by design: each scheduling
// decision depends on the immediately preceding committed state, so the
// simulation boundary stays strictly sequential even if callers parallelize
// around it.
type State struct {
	frame   int
	points  int64
	ceiling int64
	rate    int
}

func newState(cfg config.Config) *State {
	return &State{ceiling: cfg.CeilingPoints()}
}

// Frame is the current committed frame.
func (s *State) Frame() int { return s.frame }

// Points is the gauge accumulator in points.
func (s *State) Points() int64 { return s.points }

// Rate is the accrual rate in points per frame.
func (s *State) Rate() int { return s.rate }

// advance accrues gauge up to the target frame at the current rate, clamping
// at the ceiling, and returns the clamped excess in points. The rate is NOT
// recomputed here; callers toggle intervals first and then call
// recomputeRate, so accrual up to the target always uses the rate that was
// in force before the commit.
func (s *State) advance(target int) (overflow int64) {
	if target <= s.frame {
		s.frame = max(s.frame, target)
		return 0
	}
	s.points += int64(target-s.frame) * int64(s.rate)
	if s.points > s.ceiling {
		overflow = s.points - s.ceiling
		s.points = s.ceiling
	}
	s.frame = target
	return overflow
}

// consume subtracts a committed cost from the accumulator, flooring at zero.
// Called strictly after advance within the same commit unless the
// consume-before-accrue override is set.
func (s *State) consume(points int64) {
	s.points -= points
	if s.points < 0 {
		s.points = 0
	}
}

// recomputeRate derives the accrual rate from the active interval set.
//
// Per active participant: base rate plus the participant's targeted
// magnitudes plus all squad-scope magnitudes, rounded to the nearest point,
// then scaled by the amplifier percentage when enabled (and rounded again).
// Pool-scope magnitudes are added once, not per participant, rounded and
// scaled the same way.
//
// Fails when individually-targeted active intervals outnumber participants.
func (s *State) recomputeRate(set *IntervalSet, cfg config.Config) error {
	participants := cfg.Participants
	if targeted := set.ActiveTargetedCount(); targeted > len(participants) {
		return newSimError(ErrCodeBuffOverflow, -1, s.frame,
			"too many simultaneous individual buffs: %d active for %d participants",
			targeted, len(participants))
	}

	amplify := func(r int) int {
		if !cfg.Amplifier {
			return r
		}
		return int(math.Round(float64(r) * (1 + cfg.AmplifierPct/100)))
	}

	squad := set.SquadSum()
	rate := 0
	for _, p := range participants {
		per := int(math.Round(cfg.BaseRate + set.TargetedSum(p) + squad))
		rate += amplify(per)
	}
	rate += amplify(int(math.Round(set.PoolSum())))

	s.rate = rate
	return nil
}

// framesUntil returns how many frames of accrual at the current rate are
// needed to reach the target point level, rounded up. The caller guarantees
// a positive rate.
func (s *State) framesUntil(target int64) int {
	deficit := target - s.points
	if deficit <= 0 {
		return 0
	}
	r := int64(s.rate)
	return int((deficit + r - 1) / r)
}
