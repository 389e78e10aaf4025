package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazyanubis/ic-canister-kit/internal/store"
)

func intPtr(n int) *int { return &n }

func TestRun_Pass(t *testing.T) {
	scenario := &Scenario{
		Name:  "list",
		Input: "type List = opt record { head : nat; tail : List }; service : { a : (List) -> (List) }",
		Expect: Expect{
			Methods: map[string]string{
				"a": "(μrec_0.opt record { head : nat; tail : rec_0; }) -> (μrec_1.opt record { head : nat; tail : rec_1; })",
			},
			RecursionCount: intPtr(2),
			Warnings:       []string{},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"List"}, result.Snapshot.Aliases)
	assert.Len(t, result.Snapshot.Hash, 64)
}

func TestRun_ExpectationFailures(t *testing.T) {
	tests := []struct {
		name    string
		expect  Expect
		wantErr string
	}{
		{"methods", Expect{Methods: map[string]string{"f": "(nat) -> ()"}}, "Assertion failed: methods"},
		{"canonical", Expect{Canonical: "service { }"}, "Assertion failed: canonical"},
		{"recursion count", Expect{RecursionCount: intPtr(3)}, "Assertion failed: recursion_count"},
		{"warnings", Expect{Warnings: []string{"W001"}}, "Assertion failed: warnings"},
		{"unexpected success", Expect{ErrorKind: "PARSE_ERROR"}, "Assertion failed: error_kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(&Scenario{
				Name:   tt.name,
				Input:  "service : { f : () -> () }",
				Expect: tt.expect,
			})
			require.NoError(t, err)
			assert.False(t, result.Pass)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], tt.wantErr)
		})
	}
}

func TestRun_ExpectedError(t *testing.T) {
	result, err := Run(&Scenario{
		Name:   "missing",
		Input:  "service : { f : (Nope) -> () }",
		Expect: Expect{ErrorKind: "MISSING_TYPE"},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "MISSING_TYPE", result.Snapshot.ErrorKind)
}

func TestRun_WrongErrorKind(t *testing.T) {
	result, err := Run(&Scenario{
		Name:   "missing",
		Input:  "service : { f : (Nope) -> () }",
		Expect: Expect{ErrorKind: "PARSE_ERROR"},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "MISSING_TYPE")
}

func TestRun_UnexpectedError(t *testing.T) {
	result, err := Run(&Scenario{Name: "bad", Input: "service x"})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "Expected: success")
}

func TestRun_StrictMode(t *testing.T) {
	input := `service : { foo : () -> (); "foo" : (nat) -> () }`

	lenient, err := Run(&Scenario{Name: "lenient", Input: input, Expect: Expect{Warnings: []string{"W001"}}})
	require.NoError(t, err)
	assert.True(t, lenient.Pass, "errors: %v", lenient.Errors)

	strict, err := Run(&Scenario{Name: "strict", Input: input, Strict: true, Expect: Expect{ErrorKind: "PARSE_ERROR"}})
	require.NoError(t, err)
	assert.True(t, strict.Pass, "errors: %v", strict.Errors)
}

func TestHarness_SharedArchive(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	h := New(st, nil)
	ctx := context.Background()
	for _, name := range []string{"one", "two"} {
		result, err := h.Run(ctx, &Scenario{Name: name, Input: "service : { f : () -> () }"})
		require.NoError(t, err)
		assert.True(t, result.Pass, "errors: %v", result.Errors)
	}

	n, err := st.CountSchemas(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one row per scenario source")
}

func TestMarshalSnapshot(t *testing.T) {
	data, err := MarshalSnapshot(Snapshot{
		ScenarioName: "s",
		Methods:      map[string]string{"b": "() -> ()", "a": "(nat) -> ()"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{
  "scenario_name": "s",
  "methods": {
    "a": "(nat) -> ()",
    "b": "() -> ()"
  },
  "recursion_count": 0
}
`, string(data))
}
