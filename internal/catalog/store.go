package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps the catalog in a PostgreSQL table:
//
//	wbs_elements(wbs_element text primary key, name text not null)
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore wraps an existing connection pool. The pool's lifecycle belongs
// to the caller.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// EnsureSchema creates the catalog table if it does not exist yet.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS wbs_elements (
			wbs_element TEXT PRIMARY KEY,
			name        TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure catalog schema: %w", err)
	}
	return nil
}

// Snapshot reads the full catalog.
func (s *PGStore) Snapshot(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `SELECT wbs_element, name FROM wbs_elements`)
	if err != nil {
		return nil, fmt.Errorf("catalog snapshot: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Code, &e.Name); err != nil {
			return nil, fmt.Errorf("catalog snapshot scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog snapshot: %w", err)
	}
	return entries, nil
}

// Replace swaps the table contents for the given entries in one transaction,
// using the COPY protocol for the bulk load. Either the old rows or the new
// rows are visible, never a mix.
func (s *PGStore) Replace(ctx context.Context, entries []Entry) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("catalog replace: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM wbs_elements`); err != nil {
		return 0, fmt.Errorf("catalog replace: clear: %w", err)
	}

	copyRows := make([][]any, len(entries))
	for i, e := range entries {
		copyRows[i] = []any{e.Code, e.Name}
	}

	inserted, err := tx.CopyFrom(ctx,
		pgx.Identifier{"wbs_elements"},
		[]string{"wbs_element", "name"},
		pgx.CopyFromRows(copyRows),
	)
	if err != nil {
		return 0, fmt.Errorf("catalog replace: copy: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("catalog replace: commit: %w", err)
	}
	return inserted, nil
}
