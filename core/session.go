package core

import (
	"context"
	"fmt"
)

// SessionManager links session identifiers to proven identities.
//
// It is deliberately thin: session lifetime is governed externally by the
// cookie that carries the identifier, so no expiry is modeled here. Reads
// and writes for different session ids never interfere; per-session
// serialization is provided by the backing store.
type SessionManager struct {
	storage SessionStorage
}

func NewSessionManager(storage SessionStorage) *SessionManager {
	return &SessionManager{storage: storage}
}

// SetAuthenticated durably records the proven identity for the session.
// Called after a successful token consumption.
func (sm *SessionManager) SetAuthenticated(ctx context.Context, sessionID, email string) error {
	if sessionID == "" {
		return ErrSessionIDRequired
	}
	if email == "" {
		return ErrEmailRequired
	}

	if err := sm.storage.SetIdentity(ctx, sessionID, email); err != nil {
		return fmt.Errorf("failed to store session identity: %w", err)
	}
	return nil
}

// IsAuthenticated returns the identity proven for the session, or "" when
// none has been. Identity here means authentication only; whether the
// address is authorized is the access gate's question.
func (sm *SessionManager) IsAuthenticated(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}

	email, err := sm.storage.Identity(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to read session identity: %w", err)
	}
	return email, nil
}
