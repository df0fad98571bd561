package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/harlowe/gaugeline/internal/catalog"
	"github.com/harlowe/gaugeline/internal/config"
	"github.com/harlowe/gaugeline/internal/timeline"
)

// Engine converts an ordered row sequence into a fully frame-resolved event
// log. It merges two event sources in strict chronological order: the rows
// themselves and the start/end transitions of the gauge-modifier intervals
// the rows spawn.
//
// One Convert call is one run. The engine is synchronous and single-
// threaded: every scheduling decision reads the state the previous commit
// left behind, so there are no suspension points and the only mid-run abort
// is the per-row step bound.
type Engine struct {
	cfg      config.Config
	cat      *catalog.Catalog
	runGen   RunTokenGenerator
	maxSteps int

	windowStart *regexp.Regexp
	windowEnd   *regexp.Regexp

	// Per-run state, reset by Convert.
	state     *State
	intervals *IntervalSet
	labels    *Labels
	events    []timeline.Event
}

// Option configures an Engine.
type Option func(*Engine)

// WithRunTokenGenerator overrides the run token source (tests).
func WithRunTokenGenerator(g RunTokenGenerator) Option {
	return func(e *Engine) { e.runGen = g }
}

// WithMaxSteps overrides the per-row transition/re-estimate bound taken
// from configuration.
func WithMaxSteps(n int) Option {
	return func(e *Engine) { e.maxSteps = n }
}

// WithWindowPatterns overrides the burst-window marker patterns.
func WithWindowPatterns(start, end *regexp.Regexp) Option {
	return func(e *Engine) {
		e.windowStart = start
		e.windowEnd = end
	}
}

// New creates an engine over a validated configuration and a read-only
// catalog.
func New(cfg config.Config, cat *catalog.Catalog, opts ...Option) (*Engine, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", errs[0])
	}
	if cat == nil {
		cat = &catalog.Catalog{}
	}

	e := &Engine{
		cfg:      cfg,
		cat:      cat,
		runGen:   UUIDv7Generator{},
		maxSteps: cfg.MaxResolveSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Result is one completed conversion run: the resolved log, the interval
// audit trail, detected burst windows, and the run summary.
type Result struct {
	RunToken string `json:"run_token"`

	Events    []timeline.Event `json:"events"`
	Intervals []Interval       `json:"intervals"`
	Windows   []Window         `json:"windows"`

	FinalFrame       int     `json:"final_frame"`
	FinalGaugePoints int64   `json:"final_gauge_points"`
	ElapsedSeconds   float64 `json:"elapsed_seconds"`

	// LogHash is the canonical-JSON content hash of the event log.
	// Re-running the same rows and catalog yields the same hash.
	LogHash string `json:"log_hash"`
}

// FinalGauge is the run's closing gauge level in units.
func (r *Result) FinalGauge() float64 {
	return timeline.PointsToUnits(r.FinalGaugePoints)
}

// Convert resolves every row in order and returns the completed run.
// Aborting failures carry the offending row index; recoverable anomalies
// become event annotations and the run continues.
func (e *Engine) Convert(rows []timeline.Row) (*Result, error) {
	e.state = newState(e.cfg)
	e.intervals = newIntervalSet()
	e.labels = newLabels()
	e.events = nil

	// One-time grants enter the interval set before any row is
	// processed, gated by their stacking-level selectors.
	for _, entry := range e.cat.Grants() {
		if e.cfg.Level(entry.LevelKey) < 1 {
			continue
		}
		e.intervals.Create(entry, "", 0, e.cfg)
	}
	if err := e.state.recomputeRate(e.intervals, e.cfg); err != nil {
		return nil, err
	}

	for i, row := range rows {
		if err := e.resolveRow(i, row); err != nil {
			return nil, err
		}
	}

	endFrame := e.cfg.BattleFrames()
	if err := e.drainTransitions(endFrame); err != nil {
		return nil, err
	}
	e.state.advance(max(endFrame, e.state.Frame()))

	tracker := NewWindowTracker(e.windowStart, e.windowEnd)
	windows := tracker.Scan(e.events, e.state.Frame())

	hash, err := timeline.LogHash(e.events)
	if err != nil {
		return nil, fmt.Errorf("hash resolved log: %w", err)
	}

	result := &Result{
		RunToken:         e.runGen.Generate(),
		Events:           e.events,
		Intervals:        e.intervals.Snapshot(),
		Windows:          windows,
		FinalFrame:       e.state.Frame(),
		FinalGaugePoints: e.state.Points(),
		ElapsedSeconds:   timeline.FrameToSeconds(e.state.Frame()),
		LogHash:          hash,
	}

	slog.Debug("run converted",
		"run", result.RunToken,
		"events", len(result.Events),
		"intervals", len(result.Intervals),
		"final_frame", result.FinalFrame,
		"final_gauge", result.FinalGauge(),
	)
	return result, nil
}

// resolveRow merges one row into the committed order.
//
// The loop estimates the row's candidate frame from its anchor, commits any
// pending interval transition due at or before that frame, and re-estimates:
// a gauge-target estimate depends on the rate, and every committed
// transition can change the rate. A transition tied with the candidate
// frame commits before the row. The loop is bounded; exceeding the bound is
// the unresolvable-timing-loop failure.
func (e *Engine) resolveRow(idx int, row timeline.Row) error {
	if err := row.Anchor.Validate(); err != nil {
		return newSimError(ErrCodeNoAnchor, idx, e.state.Frame(), "%v", err)
	}

	var candidate int
	var notes []string
	for step := 0; ; step++ {
		if step > e.maxSteps {
			return newSimError(ErrCodeTimingLoop, idx, e.state.Frame(),
				"unresolvable timing loop: row did not converge within %d steps", e.maxSteps)
		}

		var err error
		candidate, notes, err = e.estimateFrame(idx, row)
		if err != nil {
			return err
		}

		tr, ok := e.intervals.NextTransition(candidate)
		if !ok {
			break
		}
		if err := e.commitTransition(idx, tr); err != nil {
			return err
		}
	}

	return e.commitRow(idx, row, candidate, notes)
}

// estimateFrame applies the anchor policies, in priority order: absolute
// frame, label reference with signed offset, gauge target.
func (e *Engine) estimateFrame(idx int, row timeline.Row) (int, []string, error) {
	anchor := row.Anchor
	switch anchor.Kind {
	case timeline.AnchorFrame:
		return anchor.Frame, nil, nil

	case timeline.AnchorLabel:
		frame, ok := e.labels.Resolve(anchor.Label)
		if !ok {
			if anchor.Offset != 0 {
				return 0, nil, newSimError(ErrCodeForwardLabel, idx, e.state.Frame(),
					"unresolved forward label %q with offset %d", anchor.Label, anchor.Offset)
			}
			return 0, []string{timeline.NoteLabelUnresolved}, nil
		}
		frame += effectiveOffset(anchor.Offset, e.cfg)
		if frame < 0 {
			frame = 0
		}
		return frame, nil, nil

	case timeline.AnchorGauge:
		target := timeline.UnitsToPoints(anchor.Gauge)
		if e.state.Points() >= target {
			if anchor.Implicit {
				return e.state.Frame(), nil, nil
			}
			return e.state.Frame(), []string{timeline.NoteAlreadySatisfied}, nil
		}
		if e.state.Rate() <= 0 {
			return 0, nil, newSimError(ErrCodeZeroRate, idx, e.state.Frame(),
				"zero accrual rate while solving for gauge level %g", anchor.Gauge)
		}
		return e.state.Frame() + e.state.framesUntil(target), nil, nil

	default:
		return 0, nil, newSimError(ErrCodeNoAnchor, idx, e.state.Frame(),
			"row has no resolvable anchor")
	}
}

// commitTransition advances the state to the transition frame with the old
// rate in force, toggles the interval, recomputes the rate, and appends the
// synthesized buff event. Rate failures surface with the row being resolved.
func (e *Engine) commitTransition(idx int, tr transition) error {
	overflow := e.state.advance(tr.frame)
	tr.commit()
	if err := e.state.recomputeRate(e.intervals, e.cfg); err != nil {
		var se *SimError
		if errors.As(err, &se) {
			se.Row = idx
		}
		return err
	}

	kind := timeline.EventBuffStart
	if tr.kind == transitionEnd {
		kind = timeline.EventBuffEnd
	}
	e.events = append(e.events, timeline.Event{
		Frame:          e.state.Frame(),
		Kind:           kind,
		Name:           tr.interval.Name,
		Row:            -1,
		GaugePoints:    e.state.Points(),
		OverflowPoints: overflow,
		Rate:           e.state.Rate(),
		Participants:   len(e.cfg.Participants),
	})

	slog.Debug("transition committed",
		"frame", e.state.Frame(),
		"kind", kind,
		"buff", tr.interval.Name,
		"rate", e.state.Rate(),
	)
	return nil
}

// commitRow finalizes the row at its candidate frame: accrue, consume,
// recompute, append. A candidate behind the current frame clamps forward
// with a "reordered" annotation rather than failing.
func (e *Engine) commitRow(idx int, row timeline.Row, candidate int, notes []string) error {
	if candidate < e.state.Frame() {
		candidate = e.state.Frame()
		notes = append(notes, timeline.NoteReordered)
	}

	cost := timeline.UnitsToPoints(row.Cost)
	var overflow int64
	if e.cfg.ConsumeBeforeAccrue {
		e.state.consume(cost)
		overflow = e.state.advance(candidate)
	} else {
		overflow = e.state.advance(candidate)
		e.state.consume(cost)
	}
	if err := e.state.recomputeRate(e.intervals, e.cfg); err != nil {
		var se *SimError
		if errors.As(err, &se) {
			se.Row = idx
		}
		return err
	}

	e.labels.Publish(row.Publish, e.state.Frame())
	e.spawnIntervals(row)

	annotations := append(notes, row.Notes...)
	e.events = append(e.events, timeline.Event{
		Frame:          e.state.Frame(),
		Kind:           timeline.EventAction,
		Name:           row.Name,
		Row:            idx,
		CostPoints:     cost,
		GaugePoints:    e.state.Points(),
		OverflowPoints: overflow,
		Rate:           e.state.Rate(),
		Participants:   len(e.cfg.Participants),
		Annotations:    annotations,
	})

	slog.Debug("row committed",
		"row", idx,
		"frame", e.state.Frame(),
		"name", row.Name,
		"gauge", timeline.PointsToUnits(e.state.Points()),
	)
	return nil
}

// spawnIntervals creates the intervals a committed row triggers: a catalog
// match on the action name, plus an inline directive when the capability is
// enabled. Their start transitions merge into later rows' resolution.
func (e *Engine) spawnIntervals(row timeline.Row) {
	target := row.Actor
	if target == "" && len(e.cfg.Participants) > 0 {
		target = e.cfg.Participants[0]
	}

	if entry, ok := e.cat.Match(row.Name); ok {
		e.intervals.Create(entry, target, e.state.Frame(), e.cfg)
	}
	if e.cfg.Directives {
		if entry, ok := catalog.ParseDirective(row.Name); ok {
			e.intervals.Create(entry, target, e.state.Frame(), e.cfg)
		}
	}
}

// drainTransitions commits every remaining transition up to the battle end
// frame, so the log and the interval audit cover the whole run.
func (e *Engine) drainTransitions(endFrame int) error {
	for {
		tr, ok := e.intervals.NextTransition(endFrame)
		if !ok {
			return nil
		}
		if err := e.commitTransition(-1, tr); err != nil {
			return err
		}
	}
}
