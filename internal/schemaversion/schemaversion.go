// Package schemaversion derives a CompilationRequest's schema_version
// field from a live database's catalog. It is a boundary collaborator,
// not part of the CompilationRequest core (see SPEC_FULL.md §10):
// nothing in internal/request, internal/wire, internal/source, or
// internal/cachekey imports it.
package schemaversion

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"smf/internal/cachekey"
)

// Derive connects to a live MySQL-compatible database and computes a
// 128-bit schema_version id by hashing the ordered set of
// (table, column, column_type) triples information_schema reports for
// the current database, the same catalog shape the teacher's own
// internal/introspect/mysql package walks to rebuild a core.Database.
func Derive(ctx context.Context, db *sql.DB) (uuid.UUID, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT table_name, column_name, column_type
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		ORDER BY table_name, ordinal_position
	`)
	if err != nil {
		return uuid.Nil, err
	}
	defer rows.Close()

	w := cachekey.New()
	for rows.Next() {
		var table, column, columnType string
		if err := rows.Scan(&table, &column, &columnType); err != nil {
			return uuid.Nil, err
		}
		w.WriteLenPrefixed([]byte(table))
		w.WriteLenPrefixed([]byte(column))
		w.WriteLenPrefixed([]byte(columnType))
	}
	if err := rows.Err(); err != nil {
		return uuid.Nil, err
	}

	return uuid.UUID(w.Sum()), nil
}
