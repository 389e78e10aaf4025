package store

import "errors"

// ErrNotFound is returned when no archived schema matches a lookup.
var ErrNotFound = errors.New("schema not found")

// Schema is one archived parse result.
type Schema struct {
	// ID is a UUIDv7 assigned on first write.
	ID string

	// Hash is the canonical identity of the service.
	Hash string

	// Source names where the text came from (a path, or "-" for stdin).
	Source string

	// Canonical is the emitted service text.
	Canonical string

	// Methods maps method names to rendered signatures.
	Methods map[string]string

	// Aliases lists declared alias names in declaration order.
	Aliases []string

	// Seq is the logical clock value assigned on insert.
	Seq int64

	ToolVersion string
	FormVersion string
}
