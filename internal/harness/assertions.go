package harness

import (
	"fmt"
	"math"
	"slices"

	"github.com/harlowe/gaugeline/internal/engine"
	"github.com/harlowe/gaugeline/internal/timeline"
)

// gaugeTolerance absorbs unit/point rounding when comparing closing levels.
const gaugeTolerance = 1e-9

// CheckAssertions evaluates every assertion against a resolved run,
// collecting all failures rather than stopping at the first.
func CheckAssertions(result *engine.Result, assertions []Assertion) []error {
	var errs []error
	for i, a := range assertions {
		if err := checkAssertion(result, &a); err != nil {
			errs = append(errs, fmt.Errorf("assertions[%d] (%s): %w", i, a.Type, err))
		}
	}
	return errs
}

func checkAssertion(result *engine.Result, a *Assertion) error {
	switch a.Type {
	case AssertLogContains:
		return checkLogContains(result.Events, a)
	case AssertLogOrder:
		return checkLogOrder(result.Events, a.Names)
	case AssertLogCount:
		return checkLogCount(result.Events, a.Name, a.Count)
	case AssertFinalGauge:
		if diff := math.Abs(result.FinalGauge() - a.Gauge); diff > gaugeTolerance {
			return fmt.Errorf("final gauge is %g, expected %g", result.FinalGauge(), a.Gauge)
		}
		return nil
	case AssertWindowActive:
		return checkWindowActive(result.Windows, *a.Frame, a.Active)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// checkLogContains looks for an event matching every specified field. The
// match is a conjunction: name always, kind/frame/annotation only when set.
func checkLogContains(events []timeline.Event, a *Assertion) error {
	for _, ev := range events {
		if ev.Name != a.Name {
			continue
		}
		if a.Kind != "" && string(ev.Kind) != a.Kind {
			continue
		}
		if a.Frame != nil && ev.Frame != *a.Frame {
			continue
		}
		if a.Annotation != "" && !slices.Contains(ev.Annotations, a.Annotation) {
			continue
		}
		return nil
	}
	desc := fmt.Sprintf("no event named %q", a.Name)
	if a.Kind != "" {
		desc += fmt.Sprintf(" of kind %q", a.Kind)
	}
	if a.Frame != nil {
		desc += fmt.Sprintf(" at frame %d", *a.Frame)
	}
	if a.Annotation != "" {
		desc += fmt.Sprintf(" annotated %q", a.Annotation)
	}
	return fmt.Errorf("%s", desc)
}

// checkLogOrder verifies the names appear in the log in the given relative
// order. Other events may interleave freely.
func checkLogOrder(events []timeline.Event, names []string) error {
	next := 0
	for _, ev := range events {
		if next < len(names) && ev.Name == names[next] {
			next++
		}
	}
	if next < len(names) {
		return fmt.Errorf("event %q not found in order (matched %d of %d)",
			names[next], next, len(names))
	}
	return nil
}

func checkLogCount(events []timeline.Event, name string, count int) error {
	found := 0
	for _, ev := range events {
		if ev.Name == name {
			found++
		}
	}
	if found != count {
		return fmt.Errorf("event %q appears %d times, expected %d", name, found, count)
	}
	return nil
}

func checkWindowActive(windows []engine.Window, frame int, active bool) error {
	inside := false
	for _, w := range windows {
		if w.Contains(frame) {
			inside = true
			break
		}
	}
	if inside != active {
		return fmt.Errorf("frame %d window state is %v, expected %v", frame, inside, active)
	}
	return nil
}
