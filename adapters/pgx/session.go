package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

func (a *Adapter) SetIdentity(ctx context.Context, sessionID, email string) error {
	_, err := a.pool.Exec(ctx,
		`INSERT INTO auth_sessions (session_id, email, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id) DO UPDATE
		 SET email = EXCLUDED.email, updated_at = EXCLUDED.updated_at`,
		sessionID, email, time.Now(),
	)
	return err
}

// Identity returns "" for a session without a proven identity; missing rows
// are not an error.
func (a *Adapter) Identity(ctx context.Context, sessionID string) (string, error) {
	var email string
	err := a.pool.QueryRow(ctx,
		`SELECT email FROM auth_sessions WHERE session_id = $1`,
		sessionID,
	).Scan(&email)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return email, nil
}
