package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.Validate())
	assert.Equal(t, int64(3_000_000), cfg.CeilingPoints())
	assert.Equal(t, 5400, cfg.BattleFrames())
	assert.Len(t, cfg.Participants, 5)
	assert.False(t, cfg.Amplifier)
	assert.False(t, cfg.ConsumeBeforeAccrue)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cap_units: 10.5
participants: [alice, bob]
amplifier: true
directives: true
duration_alt:
  overclock: true
levels:
  depot: 2
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10.5, cfg.CapUnits)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Participants)
	assert.True(t, cfg.Amplifier)
	assert.Equal(t, 20.0, cfg.AmplifierPct, "untouched fields keep defaults")
	assert.True(t, cfg.AltDuration("overclock"))
	assert.False(t, cfg.AltDuration("snipe"))
	assert.Equal(t, 2, cfg.Level("depot"))
	assert.Equal(t, 0, cfg.Level("unset"))
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cap_units: 8\n"), 0o644))

	t.Setenv("GAUGELINE_CAP_UNITS", "12")
	t.Setenv("GAUGELINE_BASE_RATE", "150")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12.0, cfg.CapUnits)
	assert.Equal(t, 150.0, cfg.BaseRate)
}

func TestLoad_EmptyPathSkipsFile(t *testing.T) {
	t.Setenv("GAUGELINE_DIRECTIVES", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Directives)
	assert.Equal(t, 10.0, cfg.CapUnits)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cap_unitz: 8\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err, "unknown fields are rejected")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Config{
		CapUnits:        0,
		BattleSeconds:   -1,
		BaseRate:        -5,
		Participants:    []string{"a", "a", ""},
		Amplifier:       true,
		AmplifierPct:    0,
		MaxResolveSteps: 0,
		Levels:          map[string]int{"depot": -1},
	}
	errs := cfg.Validate()
	assert.Len(t, errs, 8)
}

func TestValidate_FractionalCap(t *testing.T) {
	cfg := Default()
	cfg.CapUnits = 10.5
	assert.Empty(t, cfg.Validate())
	assert.Equal(t, int64(3_150_000), cfg.CeilingPoints())
}
