package redis

import (
	"context"
	"time"
)

// Reserve maps the debounce window directly onto a key TTL: SET NX admits
// the address and starts the window in one atomic step, and a rejected
// caller reads the remaining wait off PTTL. Records age out on their own,
// so growth is bounded without any sweeping.
func (a *Adapter) Reserve(ctx context.Context, address string, window time.Duration) (time.Duration, error) {
	admitted, err := a.client.SetNX(ctx, a.debounceKey(address), 1, window).Result()
	if err != nil {
		return 0, err
	}
	if admitted {
		return 0, nil
	}

	remaining, err := a.client.PTTL(ctx, a.debounceKey(address)).Result()
	if err != nil {
		return 0, err
	}
	if remaining <= 0 {
		// The key expired between SETNX and PTTL; the next attempt will
		// be admitted.
		remaining = time.Millisecond
	}
	return remaining, nil
}

// PruneDebounce is a no-op under Redis; window TTLs already bound growth.
func (a *Adapter) PruneDebounce(ctx context.Context, olderThan time.Time) (int, error) {
	return 0, nil
}
