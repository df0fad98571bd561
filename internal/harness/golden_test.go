package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// The golden fixture pins the engine's byte-exact canonical output for the
// interleave scenario; any change to event content, ordering, or the
// canonical serialization shows up as a fixture diff.
func TestGolden_OpenerInterleave(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "opener-interleave.yaml"))
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, scenario))
}
