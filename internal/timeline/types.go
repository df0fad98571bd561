package timeline

import (
	"fmt"
	"math"
)

// PointUnit is the number of gauge points in one whole gauge unit.
// All accrual arithmetic is integer math on points; units exist only
// at the presentation boundary.
const PointUnit = 300_000

// FramesPerSecond fixes the time-to-frame conversion for the whole run.
const FramesPerSecond = 30

// SecondsToFrame converts a wall-clock offset in seconds to a frame number,
// rounding to the nearest frame.
func SecondsToFrame(seconds float64) int {
	return int(math.Round(seconds * FramesPerSecond))
}

// FrameToSeconds converts a frame number back to seconds.
func FrameToSeconds(frame int) float64 {
	return float64(frame) / FramesPerSecond
}

// AnchorKind identifies which timing rule fixes a row's commit frame.
type AnchorKind int

const (
	// AnchorNone means the row carries no usable anchor. Rows with
	// AnchorNone abort the run; the parser is expected to synthesize
	// an implicit gauge anchor instead of handing these over.
	AnchorNone AnchorKind = iota

	// AnchorFrame pins the row to an absolute frame (or a time in
	// seconds converted through FramesPerSecond).
	AnchorFrame

	// AnchorLabel pins the row relative to a previously published label,
	// with a signed frame offset.
	AnchorLabel

	// AnchorGauge resolves the row to the first frame at which the gauge
	// reaches a target level.
	AnchorGauge
)

// String returns the anchor kind name used in diagnostics and stored runs.
func (k AnchorKind) String() string {
	switch k {
	case AnchorFrame:
		return "frame"
	case AnchorLabel:
		return "label"
	case AnchorGauge:
		return "gauge"
	default:
		return "none"
	}
}

// Anchor is a row's single timing rule. Exactly one kind is set before the
// row enters the scheduler; the parser applies the priority order
// frame > label > gauge when raw text could imply more than one.
type Anchor struct {
	Kind AnchorKind

	// Frame is the absolute frame for AnchorFrame.
	Frame int

	// Label names the published label for AnchorLabel.
	Label string
	// Offset is the signed frame offset for AnchorLabel. Its effective
	// direction is governed by the sign policy in the configuration.
	Offset int

	// Gauge is the target level in whole units for AnchorGauge.
	Gauge float64

	// Implicit marks anchors synthesized by the parser rather than written
	// by the author. Implicit anchors never produce "already satisfied"
	// annotations.
	Implicit bool
}

// Validate checks internal consistency of the anchor.
func (a Anchor) Validate() error {
	switch a.Kind {
	case AnchorFrame:
		if a.Frame < 0 {
			return fmt.Errorf("frame anchor must be non-negative, got %d", a.Frame)
		}
	case AnchorLabel:
		if a.Label == "" {
			return fmt.Errorf("label anchor requires a label name")
		}
	case AnchorGauge:
		if a.Gauge < 0 {
			return fmt.Errorf("gauge anchor must be non-negative, got %g", a.Gauge)
		}
	case AnchorNone:
		return fmt.Errorf("row has no resolvable anchor")
	default:
		return fmt.Errorf("unknown anchor kind %d", a.Kind)
	}
	return nil
}

// Row is one user-authored action, as emitted by the external parser.
// Rows are immutable once handed to the engine.
type Row struct {
	// Anchor fixes the row's commit frame. Exactly one kind.
	Anchor Anchor

	// Name is the action name. It may embed an inline gauge directive
	// when the directive capability is enabled.
	Name string

	// Cost is the gauge cost in whole units, consumed at commit.
	Cost float64

	// Publish, when non-empty, registers a label at the row's resolved
	// frame for later label anchors to reference.
	Publish string

	// Actor names the participant performing the action. Targeted catalog
	// entries attach their interval to this participant. Empty means the
	// first configured participant.
	Actor string

	// Notes carries free-form annotations from the author; they are copied
	// onto the resolved event untouched.
	Notes []string
}

// EventKind distinguishes committed rows from synthesized buff transitions.
type EventKind string

const (
	EventAction    EventKind = "action"
	EventBuffStart EventKind = "buff_start"
	EventBuffEnd   EventKind = "buff_end"
)

// Annotations attached to events by the scheduler. Recoverable anomalies
// only; aborting failures never produce an event.
const (
	NoteReordered        = "reordered"
	NoteAlreadySatisfied = "already satisfied"
	NoteLabelUnresolved  = "label not yet resolved"
)

// Event is one committed entry of the resolved log. Events are append-only
// and never mutated after creation. Gauge state is stored in integer points
// so the canonical serialization stays float-free.
type Event struct {
	// Frame is the committed frame. Across the log, frames are
	// non-decreasing.
	Frame int `json:"frame"`

	// Kind is "action" for committed rows, "buff_start"/"buff_end" for
	// interval transitions.
	Kind EventKind `json:"kind"`

	// Name is the action name or the modifier display name.
	Name string `json:"name"`

	// Row indexes the input row that produced this event, -1 for
	// synthesized transitions. Events reference rows by index, never by
	// pointer.
	Row int `json:"row"`

	// CostPoints is the gauge cost consumed at commit, in points.
	CostPoints int64 `json:"cost_points"`

	// GaugePoints is the accumulator value after this commit.
	GaugePoints int64 `json:"gauge_points"`

	// OverflowPoints is the accrual lost to the ceiling during this
	// commit, in points.
	OverflowPoints int64 `json:"overflow_points"`

	// Rate is the accrual rate in points per frame after this commit.
	Rate int `json:"rate"`

	// Participants is the active participant count at commit.
	Participants int `json:"participants"`

	// Annotations holds scheduler notes plus the row's own notes.
	Annotations []string `json:"annotations,omitempty"`
}

// Gauge returns the post-commit gauge level in whole units.
func (e Event) Gauge() float64 {
	return float64(e.GaugePoints) / PointUnit
}

// Overflow returns the overflow recorded on this commit in whole units.
func (e Event) Overflow() float64 {
	return float64(e.OverflowPoints) / PointUnit
}

// Seconds returns the event's wall-clock time.
func (e Event) Seconds() float64 {
	return FrameToSeconds(e.Frame)
}

// UnitsToPoints converts whole gauge units to points, rounding to the
// nearest point. Unit quantities in scripts and catalogs may be fractional
// (a ceiling of 10.5 units is 3,150,000 points).
func UnitsToPoints(units float64) int64 {
	return int64(math.Round(units * PointUnit))
}

// PointsToUnits converts points back to whole units.
func PointsToUnits(points int64) float64 {
	return float64(points) / PointUnit
}
