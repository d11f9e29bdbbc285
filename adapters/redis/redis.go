// Package redis provides a Redis storage adapter.
//
// Token and debounce records ride native key TTLs: an unconsumed token
// disappears on its own once its retention has passed, and debounce records
// never outlive their window. Session identities are stored without a TTL;
// session lifetime is governed by the cookie.
package redis

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mbreck/postern/core"
)

// defaultTokenRetention bounds how long an unconsumed token record is kept.
// It comfortably exceeds any sane token window so that an expired token
// still reports "expired" rather than "unknown" while it lingers.
const defaultTokenRetention = 24 * time.Hour

type Adapter struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

var _ core.Storage = (*Adapter)(nil)

func New(client *redis.Client, keyPrefix string) *Adapter {
	if keyPrefix == "" {
		keyPrefix = "postern"
	}
	return &Adapter{
		client:    client,
		prefix:    keyPrefix,
		retention: defaultTokenRetention,
	}
}

func (a *Adapter) tokenKey(hash string) string {
	return fmt.Sprintf("%s:token:%s", a.prefix, hash)
}

func (a *Adapter) consumedKey(hash string) string {
	return fmt.Sprintf("%s:token:%s:consumed", a.prefix, hash)
}

func (a *Adapter) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:session:%s", a.prefix, sessionID)
}

func (a *Adapter) debounceKey(address string) string {
	return fmt.Sprintf("%s:debounce:%s", a.prefix, address)
}
