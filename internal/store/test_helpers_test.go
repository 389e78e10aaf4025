package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a new on-disk store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSchema creates a schema with minimal required fields.
func createTestSchema(hash, source string) Schema {
	return Schema{
		Hash:      hash,
		Source:    source,
		Canonical: "service { greet : (text) -> (text) query; }",
		Methods:   map[string]string{"greet": "(text) -> (text) query"},
		Aliases:   []string{"Name"},
	}
}
