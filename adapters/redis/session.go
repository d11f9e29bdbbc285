package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

func (a *Adapter) SetIdentity(ctx context.Context, sessionID, email string) error {
	// No TTL: session lifetime is the cookie's concern.
	return a.client.Set(ctx, a.sessionKey(sessionID), email, 0).Err()
}

func (a *Adapter) Identity(ctx context.Context, sessionID string) (string, error) {
	email, err := a.client.Get(ctx, a.sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return email, nil
}
