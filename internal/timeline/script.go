package timeline

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Script is the structured form of a user-authored action script. It is the
// hand-off format between the external parser and the engine: every row has
// already been reduced to at most one anchor.
type Script struct {
	// Name identifies the script in stored runs and diagnostics.
	Name string `yaml:"name,omitempty"`

	// Rows are the authored actions in authoring order.
	Rows []Row `yaml:"rows"`
}

// rawRow is the YAML shape of a row. Anchor fields are pointers so the
// decoder can distinguish "absent" from zero values.
type rawRow struct {
	Name    string   `yaml:"name"`
	Time    *float64 `yaml:"time,omitempty"`  // absolute seconds
	Frame   *int     `yaml:"frame,omitempty"` // absolute frame
	Label   string   `yaml:"label,omitempty"`
	Offset  int      `yaml:"offset,omitempty"` // frames, signed
	Gauge   *float64 `yaml:"gauge,omitempty"`  // target level in units
	Cost    float64  `yaml:"cost,omitempty"`
	Publish string   `yaml:"publish,omitempty"`
	Actor   string   `yaml:"actor,omitempty"`
	Notes   []string `yaml:"notes,omitempty"`
}

// UnmarshalYAML decodes a row and applies the anchor priority order
// frame > time > label > gauge. A row whose raw text implied several anchors
// keeps only the highest-priority one.
func (r *Row) UnmarshalYAML(value *yaml.Node) error {
	var raw rawRow
	if err := value.Decode(&raw); err != nil {
		return err
	}

	r.Name = raw.Name
	r.Cost = raw.Cost
	r.Publish = raw.Publish
	r.Actor = raw.Actor
	r.Notes = raw.Notes

	switch {
	case raw.Frame != nil:
		r.Anchor = Anchor{Kind: AnchorFrame, Frame: *raw.Frame}
	case raw.Time != nil:
		r.Anchor = Anchor{Kind: AnchorFrame, Frame: SecondsToFrame(*raw.Time)}
	case raw.Label != "":
		r.Anchor = Anchor{Kind: AnchorLabel, Label: raw.Label, Offset: raw.Offset}
	case raw.Gauge != nil:
		r.Anchor = Anchor{Kind: AnchorGauge, Gauge: *raw.Gauge}
	default:
		// No anchor written by the author: synthesize the implicit
		// full-gauge anchor. The cost doubles as the target level, so a
		// costed action waits until it is affordable; a free action with
		// no anchor resolves at the current frame.
		r.Anchor = Anchor{Kind: AnchorGauge, Gauge: raw.Cost, Implicit: true}
	}

	return nil
}

// LoadScript reads and strictly decodes a script YAML file. Unknown fields
// are rejected to catch typos early.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes script YAML from memory.
func ParseScript(data []byte) (*Script, error) {
	var script Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&script); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(script.Rows) == 0 {
		return nil, fmt.Errorf("parse script: no rows")
	}
	for i, row := range script.Rows {
		if row.Name == "" {
			return nil, fmt.Errorf("parse script: row %d has no name", i)
		}
	}
	return &script, nil
}
