// internal/persist/pgstore.go
package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps snapshot generations as rows; older rows serve as the
// backup chain and retention pruning happens in the same transaction as the
// insert, so a reader always sees either the previous set or the new one.
type PostgresStore struct {
	pool      *pgxpool.Pool
	retention int
}

// NewPostgresStore wraps an existing pool. retention counts backups beyond
// the current generation, mirroring the file store.
func NewPostgresStore(pool *pgxpool.Pool, retention int) *PostgresStore {
	if retention < 0 {
		retention = 0
	}
	return &PostgresStore{pool: pool, retention: retention}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (ps *PostgresStore) EnsureSchema(ctx context.Context) error {
	q := `
		CREATE TABLE IF NOT EXISTS engine_snapshots (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			data JSONB NOT NULL
		)
	`
	if _, err := ps.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("creating engine_snapshots table: %w", err)
	}
	return nil
}

// Save verifies the document, inserts it as the newest generation, and
// prunes generations beyond the retention count.
func (ps *PostgresStore) Save(ctx context.Context, data []byte) error {
	if _, err := DecodeDocument(data); err != nil {
		return fmt.Errorf("verifying snapshot before insert: %w", err)
	}
	err := pgx.BeginTxFunc(ctx, ps.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, e := tx.Exec(ctx, `INSERT INTO engine_snapshots (data) VALUES ($1)`, data); e != nil {
			return e
		}
		prune := `
			DELETE FROM engine_snapshots
			WHERE id NOT IN (
				SELECT id FROM engine_snapshots ORDER BY id DESC LIMIT $1
			)
		`
		_, e := tx.Exec(ctx, prune, ps.retention+1)
		return e
	})
	if err != nil {
		return fmt.Errorf("saving snapshot generation: %w", err)
	}
	return nil
}

// Load returns the stored generations, newest first.
func (ps *PostgresStore) Load(ctx context.Context) ([][]byte, error) {
	rows, err := ps.pool.Query(ctx,
		`SELECT data FROM engine_snapshots ORDER BY id DESC LIMIT $1`, ps.retention+1)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot generations: %w", err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		out = append(out, data)
	}
	return out, rows.Err()
}
