package engine

import (
	"github.com/harlowe/gaugeline/internal/catalog"
	"github.com/harlowe/gaugeline/internal/config"
)

// Interval is one time-bounded accrual modifier. Intervals mutate through
// exactly two transitions (start, end) plus override-truncation of End by a
// later same-scope interval; nothing else touches them after creation.
type Interval struct {
	// Source is the catalog entry ID, or "directive" for inline commands.
	Source string `json:"source"`

	// Name is the display name used on transition events.
	Name string `json:"name"`

	Scope catalog.ScopeKind `json:"scope"`

	// Target is the owning participant for targeted scope, empty
	// otherwise. Scope identity for override purposes is (Scope, Target).
	Target string `json:"target,omitempty"`

	// Start and End are frames. End may be truncated before the start
	// transition commits; it is never revisited after the end transition.
	Start int `json:"start"`
	End   int `json:"end"`

	// Magnitude is the accrual modifier in points per frame, already
	// resolved against the configured stacking level.
	Magnitude float64 `json:"magnitude"`

	// Active is set by the start transition and cleared by the end
	// transition.
	Active bool `json:"active"`

	// done marks a committed end transition. A done interval is inert:
	// it is never reactivated, even if a later interval would otherwise
	// conflict with it.
	done bool
}

// truncated reports whether override-truncation squeezed the interval to
// nothing before its start committed. Such intervals never transition.
func (iv *Interval) truncated() bool {
	return !iv.Active && !iv.done && iv.End <= iv.Start
}

// IntervalSet owns every interval created during a run, in creation order.
// Creation order is the tie-break for same-frame transitions, which keeps
// the merge deterministic.
type IntervalSet struct {
	intervals []*Interval
}

func newIntervalSet() *IntervalSet {
	return &IntervalSet{}
}

// Create builds an interval from a catalog entry anchored at the committing
// frame. Start is offset by the entry's frame offset; the duration variant
// and stacking level come from configuration.
//
// Same-scope override: any pending-or-active interval for the same
// (scope, target) whose End exceeds the new Start is truncated to the new
// Start. Last writer wins; nothing stacks, and a truncated interval is
// never reopened.
//
// A non-positive resolved duration creates nothing.
func (s *IntervalSet) Create(entry catalog.Entry, target string, frame int, cfg config.Config) *Interval {
	duration := entry.Duration.Select(cfg.AltDuration(entry.ID))
	if duration <= 0 {
		return nil
	}
	if entry.Scope != catalog.ScopeTargeted {
		target = ""
	}

	start := frame + entry.Offset
	if start < 0 {
		start = 0
	}

	for _, iv := range s.intervals {
		if iv.done || iv.Scope != entry.Scope || iv.Target != target {
			continue
		}
		if iv.End > start {
			iv.End = start
		}
	}

	iv := &Interval{
		Source:    entry.ID,
		Name:      entry.Name,
		Scope:     entry.Scope,
		Target:    target,
		Start:     start,
		End:       start + duration,
		Magnitude: entry.Magnitude.At(cfg.Level(entry.LevelKey)),
	}
	s.intervals = append(s.intervals, iv)
	return iv
}

// transitionKind distinguishes the two interval transitions.
type transitionKind int

const (
	transitionStart transitionKind = iota
	transitionEnd
)

// transition is one pending interval state change the scheduler must merge
// into the event order.
type transition struct {
	interval *Interval
	kind     transitionKind
	frame    int
}

// NextTransition returns the earliest uncommitted transition whose frame is
// at or before the limit. Ends sort before starts at the same frame, so a
// fading modifier never contributes to the frame it fades on twice; creation
// order breaks remaining ties.
func (s *IntervalSet) NextTransition(limit int) (transition, bool) {
	var best transition
	found := false

	consider := func(c transition) {
		if c.frame > limit {
			return
		}
		if !found || c.frame < best.frame ||
			(c.frame == best.frame && c.kind == transitionEnd && best.kind == transitionStart) {
			best = c
			found = true
		}
	}

	for _, iv := range s.intervals {
		switch {
		case iv.done || iv.truncated():
			continue
		case iv.Active:
			consider(transition{interval: iv, kind: transitionEnd, frame: iv.End})
		default:
			consider(transition{interval: iv, kind: transitionStart, frame: iv.Start})
		}
	}
	return best, found
}

// commit applies the transition to its interval. The scheduler has already
// advanced the state to the transition frame.
func (t transition) commit() {
	switch t.kind {
	case transitionStart:
		t.interval.Active = true
	case transitionEnd:
		t.interval.Active = false
		t.interval.done = true
	}
}

// ActiveTargetedCount counts active individually-targeted intervals; the
// rate recompute checks it against the participant count.
func (s *IntervalSet) ActiveTargetedCount() int {
	n := 0
	for _, iv := range s.intervals {
		if iv.Active && iv.Scope == catalog.ScopeTargeted {
			n++
		}
	}
	return n
}

// TargetedSum sums active targeted magnitudes owned by a participant.
func (s *IntervalSet) TargetedSum(participant string) float64 {
	sum := 0.0
	for _, iv := range s.intervals {
		if iv.Active && iv.Scope == catalog.ScopeTargeted && iv.Target == participant {
			sum += iv.Magnitude
		}
	}
	return sum
}

// SquadSum sums active squad-scope magnitudes.
func (s *IntervalSet) SquadSum() float64 {
	sum := 0.0
	for _, iv := range s.intervals {
		if iv.Active && iv.Scope == catalog.ScopeSquad {
			sum += iv.Magnitude
		}
	}
	return sum
}

// PoolSum sums active pool-scope magnitudes.
func (s *IntervalSet) PoolSum() float64 {
	sum := 0.0
	for _, iv := range s.intervals {
		if iv.Active && iv.Scope == catalog.ScopePool {
			sum += iv.Magnitude
		}
	}
	return sum
}

// Snapshot copies the interval collection for the run's audit trail.
func (s *IntervalSet) Snapshot() []Interval {
	out := make([]Interval, len(s.intervals))
	for i, iv := range s.intervals {
		out[i] = *iv
	}
	return out
}
