package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// Reserve admits the address through a guarded upsert. The insert claims a
// new address; the conditional update claims a stale one. Either way the
// claim and the timestamp write are a single statement, so two racing
// requests for the same address cannot both be admitted.
func (a *Adapter) Reserve(ctx context.Context, address string, window time.Duration) (time.Duration, error) {
	now := time.Now()

	tag, err := a.pool.Exec(ctx,
		`INSERT INTO auth_debounce (address, last_admitted)
		 VALUES ($1, $2)
		 ON CONFLICT (address) DO UPDATE
		 SET last_admitted = EXCLUDED.last_admitted
		 WHERE auth_debounce.last_admitted <= $3`,
		address, now, now.Add(-window),
	)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() > 0 {
		return 0, nil
	}

	// Rejected: read the record to report the remaining wait.
	var lastAdmitted time.Time
	err = a.pool.QueryRow(ctx,
		`SELECT last_admitted FROM auth_debounce WHERE address = $1`,
		address,
	).Scan(&lastAdmitted)

	if errors.Is(err, pgx.ErrNoRows) {
		// The record vanished between the upsert and the read (pruned).
		// Treat it as the smallest possible rejection; the next attempt
		// will be admitted.
		return time.Millisecond, nil
	}
	if err != nil {
		return 0, err
	}

	remaining := window - time.Since(lastAdmitted)
	if remaining <= 0 {
		remaining = time.Millisecond
	}
	return remaining, nil
}

func (a *Adapter) PruneDebounce(ctx context.Context, olderThan time.Time) (int, error) {
	tag, err := a.pool.Exec(ctx,
		`DELETE FROM auth_debounce WHERE last_admitted < $1`,
		olderThan,
	)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
