package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDemoScenarios runs every scenario under testdata/scenarios and
// compares its snapshot against testdata/golden.
//
// Regenerate snapshots with:
//
//	go test ./internal/harness -run TestDemoScenarios -update
func TestDemoScenarios(t *testing.T) {
	scenarios, err := LoadScenarios("../../testdata/scenarios", "")
	require.NoError(t, err)
	require.Len(t, scenarios, 13)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "scenario %s failed: %v", scenario.Name, result.Errors)
		})
	}
}

func TestCommentsMatchPrimitiveService(t *testing.T) {
	plain, err := LoadScenario("../../testdata/scenarios/01_primitive_service.yaml")
	require.NoError(t, err)
	commented, err := LoadScenario("../../testdata/scenarios/05_comments.yaml")
	require.NoError(t, err)

	a, err := Run(plain)
	require.NoError(t, err)
	b, err := Run(commented)
	require.NoError(t, err)

	assert.Equal(t, a.Snapshot.Hash, b.Snapshot.Hash)
	assert.Equal(t, a.Snapshot.Methods, b.Snapshot.Methods)
}
