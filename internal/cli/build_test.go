package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ping.did", pingSource)
	writeFile(t, dir, "canisters/mutual.did", mutualSource)
	writeFile(t, dir, "canisters/notes.txt", "not candid")
	writeFile(t, dir, ManifestFile, `sources:  ["ping.did", "canisters"]
output:   "canonical"
database: "candid.db"
`)

	out, err := execute(NewBuildCommand(&RootOptions{Format: "json"}), dir)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   BuildReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Data.Built)
	assert.Equal(t, 0, resp.Data.Failed)
	require.Len(t, resp.Data.Entries, 2)
	for _, e := range resp.Data.Entries {
		assert.True(t, e.Archived, e.Source)
		assert.False(t, e.Cached, e.Source)
	}

	data, err := os.ReadFile(filepath.Join(dir, "canonical", "ping.did"))
	require.NoError(t, err)
	assert.Equal(t, pingCanon+"\n", string(data))

	_, err = os.Stat(filepath.Join(dir, "canonical", "mutual.did"))
	require.NoError(t, err)

	history, err := execute(NewHistoryCommand(&RootOptions{Format: "json"}),
		filepath.Join(dir, "ping.did"), "--db", filepath.Join(dir, "candid.db"))
	require.NoError(t, err)
	assert.Contains(t, history, resp.Data.Entries[0].Hash)
}

func TestBuildCachesIdenticalSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.did", pingSource)
	writeFile(t, dir, "b.did", pingSource)
	writeFile(t, dir, ManifestFile, `sources: ["a.did", "b.did"]`)

	out, err := execute(NewBuildCommand(&RootOptions{Format: "json"}), dir)
	require.NoError(t, err)

	var resp struct {
		Data BuildReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Entries, 2)
	assert.False(t, resp.Data.Entries[0].Cached)
	assert.True(t, resp.Data.Entries[1].Cached)
	assert.Equal(t, resp.Data.Entries[0].Hash, resp.Data.Entries[1].Hash)
}

func TestBuildCollectsFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.did", pingSource)
	writeFile(t, dir, "bad.did", "service : { f : (Nope) -> () }")
	writeFile(t, dir, ManifestFile, `sources: ["bad.did", "good.did"]`)

	out, err := execute(NewBuildCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ "+filepath.Join(dir, "bad.did"))
	assert.Contains(t, out, "[E008]")
	assert.Contains(t, out, "✓ "+filepath.Join(dir, "good.did"))
	assert.Contains(t, out, "Build Summary: 1 built, 1 failed")
}

func TestBuildStrictManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dup.did", "service : { f : () -> (); f : (nat) -> () }")
	writeFile(t, dir, ManifestFile, `sources: ["dup.did"]
strict: true
`)

	_, err := execute(NewBuildCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestBuildReportsWarnings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dup.did", "service : { f : () -> (); f : (nat) -> () }")
	writeFile(t, dir, ManifestFile, `sources: ["dup.did"]`)

	out, err := execute(NewBuildCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "warning W001: method f is repeated")

	out, err = execute(NewBuildCommand(&RootOptions{Format: "json"}), dir)
	require.NoError(t, err)
	var resp struct {
		Data BuildReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Entries, 1)
	require.Len(t, resp.Data.Entries[0].Warnings, 1)
	assert.Equal(t, "W001", resp.Data.Entries[0].Warnings[0].Code)
}

func TestBuildMissingManifest(t *testing.T) {
	out, err := execute(NewBuildCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
}

func TestBuildNoSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "empty"), 0755))
	writeFile(t, dir, ManifestFile, `sources: ["empty"]`)

	out, err := execute(NewBuildCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E003")
}
