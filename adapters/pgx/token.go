package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mbreck/postern/core"
)

func (a *Adapter) CreateToken(ctx context.Context, token *core.AuthToken) error {
	_, err := a.pool.Exec(ctx,
		`INSERT INTO auth_tokens (token_hash, session_id, contact_address, created_at)
		 VALUES ($1, $2, $3, $4)`,
		token.TokenHash, token.SessionID, token.ContactAddress, token.CreatedAt,
	)
	return err
}

// ConsumeToken marks the token consumed and returns its record. The
// conditional UPDATE is the atomicity guarantee: of any number of racing
// callers, the database lets exactly one through the consumed_at IS NULL
// predicate.
func (a *Adapter) ConsumeToken(ctx context.Context, tokenHash string) (*core.AuthToken, error) {
	record := &core.AuthToken{TokenHash: tokenHash}
	consumedAt := time.Now()

	err := a.pool.QueryRow(ctx,
		`UPDATE auth_tokens
		 SET consumed_at = $2
		 WHERE token_hash = $1 AND consumed_at IS NULL
		 RETURNING session_id, contact_address, created_at`,
		tokenHash, consumedAt,
	).Scan(&record.SessionID, &record.ContactAddress, &record.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		// Either the token never existed or somebody else consumed it.
		var exists bool
		if err := a.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM auth_tokens WHERE token_hash = $1)`,
			tokenHash,
		).Scan(&exists); err != nil {
			return nil, err
		}
		if exists {
			return nil, core.ErrTokenConsumed
		}
		return nil, core.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	record.ConsumedAt = &consumedAt
	return record, nil
}

func (a *Adapter) DeleteExpiredTokens(ctx context.Context, olderThan time.Time) (int, error) {
	tag, err := a.pool.Exec(ctx,
		`DELETE FROM auth_tokens WHERE created_at < $1`,
		olderThan,
	)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
