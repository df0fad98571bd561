package engine

import (
	"regexp"

	"github.com/harlowe/gaugeline/internal/timeline"
)

// Burst windows are the paired start/end markers in a resolved log. The
// tracker is independent of the scheduler: it runs one forward scan over the
// committed stream after the fact and answers interval-membership queries
// for the formatter.

var (
	defaultWindowStart = regexp.MustCompile(`(?i)\bfull\s*burst\b`)
	defaultWindowEnd   = regexp.MustCompile(`(?i)\bburst\s*(end|over)\b`)
)

// Window is one detected marker pair, in frames.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports membership with half-open semantics: a frame is inside
// [start, end).
func (w Window) Contains(frame int) bool {
	return frame >= w.Start && frame < w.End
}

// WindowTracker detects windows by name pattern and answers ActiveAt
// queries. Build it with NewWindowTracker, feed it a resolved log with Scan.
type WindowTracker struct {
	start   *regexp.Regexp
	end     *regexp.Regexp
	windows []Window
}

// NewWindowTracker builds a tracker with the given marker patterns. Nil
// patterns fall back to the defaults.
func NewWindowTracker(start, end *regexp.Regexp) *WindowTracker {
	if start == nil {
		start = defaultWindowStart
	}
	if end == nil {
		end = defaultWindowEnd
	}
	return &WindowTracker{start: start, end: end}
}

// Scan walks the resolved log once, in order. A start marker opens a window
// if none is open; an end marker closes the most recently opened window;
// an end marker with nothing open is ignored. A window still open when the
// scan finishes is extended to the supplied end frame.
//
// Only action events are markers; synthesized buff transitions are skipped.
func (w *WindowTracker) Scan(events []timeline.Event, endFrame int) []Window {
	w.windows = w.windows[:0]
	var open []int // indexes into w.windows

	for _, ev := range events {
		if ev.Kind != timeline.EventAction {
			continue
		}
		// End first: a name matching both patterns closes rather than
		// opens, and stray ends stay harmless.
		if w.end.MatchString(ev.Name) {
			if n := len(open); n > 0 {
				w.windows[open[n-1]].End = ev.Frame
				open = open[:n-1]
			}
			continue
		}
		if w.start.MatchString(ev.Name) && len(open) == 0 {
			w.windows = append(w.windows, Window{Start: ev.Frame, End: -1})
			open = append(open, len(w.windows)-1)
		}
	}

	for _, idx := range open {
		w.windows[idx].End = endFrame
	}
	return w.windows
}

// Windows returns the detected windows from the last scan.
func (w *WindowTracker) Windows() []Window {
	return w.windows
}

// ActiveAt reports window membership with half-open semantics: a frame is
// inside [start, end).
func (w *WindowTracker) ActiveAt(frame int) bool {
	for _, win := range w.windows {
		if win.Contains(frame) {
			return true
		}
	}
	return false
}
