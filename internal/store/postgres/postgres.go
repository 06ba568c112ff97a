// Package postgres is the Data Store implementation (spec.md §6 C1): ACID
// storage backed by any relational store with parameterized queries,
// foreign keys, multi-statement transactions, batched writes, and
// JSON-in-text columns. It targets Postgres via jmoiron/sqlx and
// github.com/lib/pq, and golang-migrate/migrate for schema migrations
// (see migrations/).
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"citytycoon-backend/internal/logger"
)

// MaxParamsPerStatement bounds how many rows a single batched INSERT may
// carry, per spec.md §6: "at most ~20 rows per insert statement assuming
// five columns" (a 65535 total placeholder ceiling is the real driver
// limit; 20x5=100 is a conservative chunk size well under it).
const MaxParamsPerStatement = 20

// Store bundles the shared *sqlx.DB every repository embeds.
type Store struct {
	DB *sqlx.DB
}

// Open connects to dsn and verifies the connection with a ping.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("connected to postgres")
	return &Store{DB: db}, nil
}

func (s *Store) Close() error { return s.DB.Close() }

// newID generates an opaque 128-bit identifier (spec.md §3: "all
// identifiers are opaque 128-bit values").
func newID() string { return uuid.NewString() }

// chunk splits rows into groups of at most n, for batched inserts that must
// respect a store's per-statement parameter cap.
func chunk[T any](rows []T, n int) [][]T {
	if n <= 0 {
		n = MaxParamsPerStatement
	}
	var out [][]T
	for len(rows) > 0 {
		end := n
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[:end])
		rows = rows[end:]
	}
	return out
}
