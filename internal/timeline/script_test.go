package timeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScript_AnchorPriority(t *testing.T) {
	script, err := ParseScript([]byte(`
name: priority
rows:
  - name: frame wins
    frame: 90
    time: 1.0
    label: open
    gauge: 2.0
  - name: time next
    time: 2.0
    label: open
    gauge: 2.0
  - name: label next
    label: open
    offset: -15
    gauge: 2.0
  - name: gauge last
    gauge: 2.0
`))
	require.NoError(t, err)
	require.Len(t, script.Rows, 4)

	assert.Equal(t, Anchor{Kind: AnchorFrame, Frame: 90}, script.Rows[0].Anchor)
	assert.Equal(t, Anchor{Kind: AnchorFrame, Frame: 60}, script.Rows[1].Anchor)
	assert.Equal(t, Anchor{Kind: AnchorLabel, Label: "open", Offset: -15}, script.Rows[2].Anchor)
	assert.Equal(t, Anchor{Kind: AnchorGauge, Gauge: 2.0}, script.Rows[3].Anchor)
}

func TestParseScript_ImplicitGaugeAnchorFromCost(t *testing.T) {
	script, err := ParseScript([]byte(`
rows:
  - name: spender
    cost: 1.0
  - name: filler
`))
	require.NoError(t, err)
	require.Len(t, script.Rows, 2)

	spender := script.Rows[0]
	assert.Equal(t, AnchorGauge, spender.Anchor.Kind)
	assert.Equal(t, 1.0, spender.Anchor.Gauge)
	assert.True(t, spender.Anchor.Implicit)

	filler := script.Rows[1]
	assert.Equal(t, AnchorGauge, filler.Anchor.Kind)
	assert.Equal(t, 0.0, filler.Anchor.Gauge, "free action resolves immediately")
	assert.True(t, filler.Anchor.Implicit)
}

func TestParseScript_ExplicitZeroFrameIsNotImplicit(t *testing.T) {
	script, err := ParseScript([]byte(`
rows:
  - name: opener
    frame: 0
`))
	require.NoError(t, err)
	assert.Equal(t, Anchor{Kind: AnchorFrame, Frame: 0}, script.Rows[0].Anchor)
	assert.False(t, script.Rows[0].Anchor.Implicit)
}

func TestParseScript_CarriesRowFields(t *testing.T) {
	script, err := ParseScript([]byte(`
name: fields
rows:
  - name: opener
    frame: 0
    cost: 0.5
    publish: open
    actor: slot2
    notes: [manual retime]
`))
	require.NoError(t, err)

	row := script.Rows[0]
	assert.Equal(t, "opener", row.Name)
	assert.Equal(t, 0.5, row.Cost)
	assert.Equal(t, "open", row.Publish)
	assert.Equal(t, "slot2", row.Actor)
	assert.Equal(t, []string{"manual retime"}, row.Notes)
}

func TestParseScript_RejectsUnknownFields(t *testing.T) {
	_, err := ParseScript([]byte(`
rows:
  - name: typo
    frmae: 30
`))
	require.Error(t, err)
}

func TestParseScript_RejectsEmptyAndNameless(t *testing.T) {
	_, err := ParseScript([]byte(`rows: []`))
	require.Error(t, err)

	_, err = ParseScript([]byte(`
rows:
  - frame: 30
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0")
}

func TestLoadScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: from-disk
rows:
  - name: opener
    time: 3.0
`), 0o644))

	script, err := LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, "from-disk", script.Name)
	assert.Equal(t, 90, script.Rows[0].Anchor.Frame)

	_, err = LoadScript(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
