package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lazyanubis/ic-canister-kit/internal/candid"
)

// WriteSchema archives a parse result and returns the stored row.
//
// ID and Seq are assigned here; values set by the caller are ignored.
// Uses ON CONFLICT(hash, source) DO NOTHING for idempotency: writing the
// same service from the same source again returns the existing row with
// inserted=false.
func (s *Store) WriteSchema(ctx context.Context, schema Schema) (stored Schema, inserted bool, err error) {
	methodsJSON, err := marshalMethods(schema.Methods)
	if err != nil {
		return Schema{}, false, fmt.Errorf("write schema: %w", err)
	}
	aliasesJSON, err := marshalAliases(schema.Aliases)
	if err != nil {
		return Schema{}, false, fmt.Errorf("write schema: %w", err)
	}
	if schema.ToolVersion == "" {
		schema.ToolVersion = candid.ToolVersion
	}
	if schema.FormVersion == "" {
		schema.FormVersion = candid.FormVersion
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Schema{}, false, fmt.Errorf("write schema: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM schemas`).Scan(&seq); err != nil {
		return Schema{}, false, fmt.Errorf("write schema: next seq: %w", err)
	}

	schema.ID = uuid.Must(uuid.NewV7()).String()
	schema.Seq = seq
	result, err := tx.ExecContext(ctx, `
		INSERT INTO schemas
		(id, hash, source, canonical, methods, aliases, seq, tool_version, form_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash, source) DO NOTHING
	`,
		schema.ID,
		schema.Hash,
		schema.Source,
		schema.Canonical,
		methodsJSON,
		aliasesJSON,
		schema.Seq,
		schema.ToolVersion,
		schema.FormVersion,
	)
	if err != nil {
		return Schema{}, false, fmt.Errorf("write schema: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return Schema{}, false, fmt.Errorf("write schema: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Conflict - row already exists, return it unchanged
		row := tx.QueryRowContext(ctx, selectSchema+`
			WHERE hash = ? AND source = ?
		`, schema.Hash, schema.Source)
		stored, err = scanSchema(row)
		if err != nil {
			return Schema{}, false, fmt.Errorf("write schema: select existing: %w", err)
		}
	} else {
		stored = schema
		inserted = true
	}

	if err := tx.Commit(); err != nil {
		return Schema{}, false, fmt.Errorf("write schema: commit: %w", err)
	}
	return stored, inserted, nil
}
