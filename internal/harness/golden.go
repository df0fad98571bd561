package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/harlowe/gaugeline/internal/engine"
	"github.com/harlowe/gaugeline/internal/timeline"
)

// snapshotMap converts a resolved run to the map form used for canonical
// serialization. Only float-free, order-stable fields go in: the snapshot
// must serialize byte-identically on every platform.
func snapshotMap(scenarioName string, result *engine.Result) map[string]any {
	events := make([]any, len(result.Events))
	for i, ev := range result.Events {
		m := map[string]any{
			"frame":        ev.Frame,
			"kind":         string(ev.Kind),
			"name":         ev.Name,
			"row":          ev.Row,
			"cost":         ev.CostPoints,
			"gauge":        ev.GaugePoints,
			"overflow":     ev.OverflowPoints,
			"rate":         ev.Rate,
			"participants": ev.Participants,
		}
		if len(ev.Annotations) > 0 {
			notes := make([]any, len(ev.Annotations))
			for j, n := range ev.Annotations {
				notes[j] = n
			}
			m["annotations"] = notes
		}
		events[i] = m
	}

	return map[string]any{
		"scenario_name":      scenarioName,
		"run_token":          result.RunToken,
		"events":             events,
		"final_frame":        result.FinalFrame,
		"final_gauge_points": result.FinalGaugePoints,
	}
}

// RunWithGolden executes a scenario and compares the resolved log against a
// golden fixture in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	data, err := timeline.MarshalCanonical(snapshotMap(scenario.Name, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
