package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestScenarios runs every scenario under testdata/scenarios against its
// golden snapshot.
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(scenario.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestSnapshot_CanonicalMap(t *testing.T) {
	snap := Snapshot{ScenarioName: "s", Kind: KindItems, Params: "show=all", IDs: []int64{1, 2}, Tables: []string{"wikilog_posts"}}
	m := snap.toCanonicalMap()
	require.Equal(t, []any{int64(1), int64(2)}, m["ids"])
	require.Equal(t, "show=all", m["params"])
	require.NotContains(t, m, "error")

	snap.Error = "boom"
	m = snap.toCanonicalMap()
	require.Equal(t, "boom", m["error"])
	require.NotContains(t, m, "ids")
	require.NotContains(t, m, "params")
}
