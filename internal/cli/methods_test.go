package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ledgerSource = `type Account = record { owner : principal; sub : opt blob };
service : {
  transfer : (Account, nat) -> (variant { ok : nat; err : text });
  balance : (Account) -> (nat) query;
  "notify me" : () -> () oneway;
}
`

func TestMethodsText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ledger.did", ledgerSource)

	out, err := execute(NewMethodsCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)

	assert.Contains(t, out, "Method")
	assert.Contains(t, out, "Signature")
	assert.Contains(t, out, `"notify me"`)
	assert.Contains(t, out, "(nat) query")
	assert.Contains(t, out, "variant { err : text; ok : nat; }")
}

func TestMethodsJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ledger.did", ledgerSource)

	out, err := execute(NewMethodsCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   []MethodRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 3)

	// Sorted by name.
	assert.Equal(t, "balance", resp.Data[0].Name)
	assert.Equal(t, "query", resp.Data[0].Annotation)
	assert.Equal(t, "notify me", resp.Data[1].Name)
	assert.Equal(t, "oneway", resp.Data[1].Annotation)
	assert.Equal(t, "transfer", resp.Data[2].Name)
	assert.Empty(t, resp.Data[2].Annotation)
	assert.Equal(t,
		"(record { owner : principal; sub : opt vec nat8; }, nat) -> (variant { err : text; ok : nat; })",
		resp.Data[2].Signature)
}

func TestMethodsParseFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.did", "service : { f : (nat) => () }")

	out, err := execute(NewMethodsCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E008]")
}
