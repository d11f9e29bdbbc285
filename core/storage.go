package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORTS (persistent key-value backends)
// ============================================

// TokenStorage defines token-related persistence operations.
type TokenStorage interface {
	// CreateToken persists a freshly issued token record.
	CreateToken(ctx context.Context, token *AuthToken) error

	// ConsumeToken atomically marks the token with the given hash as
	// consumed and returns its record. When several callers race on the
	// same hash, exactly one receives the record; the rest receive
	// ErrTokenConsumed. An unknown hash returns ErrTokenNotFound.
	ConsumeToken(ctx context.Context, tokenHash string) (*AuthToken, error)

	// DeleteExpiredTokens removes token records created before the cutoff,
	// consumed or not. Expiry is enforced lazily at consumption time; this
	// only bounds storage growth.
	DeleteExpiredTokens(ctx context.Context, olderThan time.Time) (int, error)
}

// SessionStorage maps a session id to its proven identity.
// Session lifetime is governed externally (cookie lifetime); no expiry here.
type SessionStorage interface {
	SetIdentity(ctx context.Context, sessionID, email string) error

	// Identity returns the email associated with the session, or "" when
	// the session has no proven identity yet.
	Identity(ctx context.Context, sessionID string) (string, error)
}

// DebounceStorage records per-address issuance admissions.
type DebounceStorage interface {
	// Reserve atomically admits the address if its last admission is at
	// least window ago, recording now as the new admission. It returns 0
	// on admission, or the remaining wait when rejected. The
	// check-and-record must be atomic per address.
	Reserve(ctx context.Context, address string, window time.Duration) (time.Duration, error)

	// PruneDebounce removes admission records older than the cutoff.
	// Records age out naturally; this only bounds storage growth.
	PruneDebounce(ctx context.Context, olderThan time.Time) (int, error)
}

// Storage is the full persistence surface of the library.
type Storage interface {
	TokenStorage
	SessionStorage
	DebounceStorage
}

// ============================================
// MAIL PORT
// ============================================

// Mailer receives the "token issued" signal. It is responsible for building
// the user-facing link around the raw token and delivering it to the
// contact address. The raw token is never returned to the browser.
type Mailer interface {
	SendToken(ctx context.Context, contactAddress, token string) error
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(ctx context.Context, contactAddress, token string) error

func (f MailerFunc) SendToken(ctx context.Context, contactAddress, token string) error {
	return f(ctx, contactAddress, token)
}

// ============================================
// HTTP PORT
// ============================================

type HTTPAdapter interface {
	RegisterRoutes(p *Postern) error
}
