// Package pgx provides a Postgres storage adapter backed by a pgxpool.
package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbreck/postern/core"
)

type Adapter struct {
	pool *pgxpool.Pool
}

var _ core.Storage = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}

// Migrate creates the adapter's tables when they do not exist yet.
func (a *Adapter) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS auth_tokens (
			token_hash      TEXT PRIMARY KEY,
			session_id      TEXT NOT NULL,
			contact_address TEXT NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL,
			consumed_at     TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS auth_sessions (
			session_id TEXT PRIMARY KEY,
			email      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS auth_debounce (
			address       TEXT PRIMARY KEY,
			last_admitted TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := a.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
