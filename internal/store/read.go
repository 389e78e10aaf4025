package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const selectSchema = `
	SELECT id, hash, source, canonical, methods, aliases, seq, tool_version, form_version
	FROM schemas`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ReadSchema returns the most recently archived schema with the given hash.
// Returns ErrNotFound if none exists.
func (s *Store) ReadSchema(ctx context.Context, hash string) (Schema, error) {
	row := s.db.QueryRowContext(ctx, selectSchema+`
		WHERE hash = ?
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, hash)

	schema, err := scanSchema(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Schema{}, fmt.Errorf("read schema %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return Schema{}, fmt.Errorf("read schema %s: %w", hash, err)
	}
	return schema, nil
}

// ListSchemas returns every archived schema read from source, oldest first.
// Results are ordered by seq ASC, id COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) if nothing was archived for source.
func (s *Store) ListSchemas(ctx context.Context, source string) ([]Schema, error) {
	rows, err := s.db.QueryContext(ctx, selectSchema+`
		WHERE source = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, source)
	if err != nil {
		return nil, fmt.Errorf("query schemas: %w", err)
	}
	defer rows.Close()

	schemas := []Schema{}
	for rows.Next() {
		schema, err := scanSchema(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schema: %w", err)
		}
		schemas = append(schemas, schema)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schemas: %w", err)
	}
	return schemas, nil
}

// CountSchemas returns the number of archived rows.
func (s *Store) CountSchemas(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schemas`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count schemas: %w", err)
	}
	return n, nil
}

func scanSchema(row scanner) (Schema, error) {
	var schema Schema
	var methodsJSON, aliasesJSON string

	if err := row.Scan(
		&schema.ID, &schema.Hash, &schema.Source, &schema.Canonical,
		&methodsJSON, &aliasesJSON, &schema.Seq,
		&schema.ToolVersion, &schema.FormVersion,
	); err != nil {
		return Schema{}, err
	}

	methods, err := unmarshalMethods(methodsJSON)
	if err != nil {
		return Schema{}, err
	}
	schema.Methods = methods

	aliases, err := unmarshalAliases(aliasesJSON)
	if err != nil {
		return Schema{}, err
	}
	schema.Aliases = aliases

	return schema, nil
}
