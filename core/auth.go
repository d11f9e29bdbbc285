package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3/log"

	"github.com/mbreck/postern/pkg/crypto"
)

// BeginAuthentication starts the email-link flow for a session.
//
// The request is admitted through the debounce guard first; a rejected
// request fails with *DebounceError carrying the remaining wait. On
// admission a fresh token is minted, its hash is persisted, and the raw
// value is handed to the Mailer together with the contact address.
//
// The returned credentials exist for observability. The raw token is not
// part of them; it only leaves through the mail signal.
func (p *Postern) BeginAuthentication(ctx context.Context, sessionID, email string) (*Credentials, error) {
	// Step 1: Validate before touching any state
	if sessionID == "" {
		return nil, ErrSessionIDRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	// Step 2: Ask the debounce guard to admit the address
	if err := p.Debounce.Admit(ctx, email); err != nil {
		return nil, err
	}

	// Step 3: Mint an unguessable token; only its hash is stored
	pair, err := crypto.GenerateHashedToken(p.TokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	record := &AuthToken{
		TokenHash:      pair.Hash,
		SessionID:      sessionID,
		ContactAddress: email,
		CreatedAt:      p.now(),
	}

	if err := p.Storage.CreateToken(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	// Step 4: Signal the mailer. Issuance already succeeded; a dispatch
	// failure is logged, not returned.
	if err := p.Mailer.SendToken(ctx, email, pair.Token); err != nil {
		log.Errorf("postern: sending token email to %s failed: %v", email, err)
	}

	return &Credentials{SessionID: sessionID, ContactAddress: email}, nil
}

// Authenticate consumes a presented token.
//
// Exactly one of any set of concurrent calls with the same token succeeds;
// the rest fail with ErrTokenConsumed. Expiry is checked lazily here, after
// winning the consumption race. Writing the identity into session state is
// the caller's responsibility; use CompleteAuthentication for the full flow.
func (p *Postern) Authenticate(ctx context.Context, token string) (*Credentials, error) {
	if token == "" {
		return nil, ErrTokenNotFound
	}

	record, err := p.Storage.ConsumeToken(ctx, crypto.HashToken(token))
	if err != nil {
		return nil, err
	}

	if p.now().Sub(record.CreatedAt) > p.TokenTTL {
		return nil, ErrTokenExpired
	}

	return &Credentials{
		SessionID:      record.SessionID,
		ContactAddress: record.ContactAddress,
	}, nil
}

// CompleteAuthentication is the token-link entry point: it consumes the
// token, persists the proven identity into session state, and pushes the
// outcome to every connection joined to the session.
func (p *Postern) CompleteAuthentication(ctx context.Context, token string) (*Credentials, error) {
	creds, err := p.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := p.Sessions.SetAuthenticated(ctx, creds.SessionID, creds.ContactAddress); err != nil {
		return nil, fmt.Errorf("failed to persist session identity: %w", err)
	}

	p.Hub.Broadcast(creds.SessionID, creds.ContactAddress)

	return creds, nil
}

// SweepExpired removes token records past their window, consumed or not,
// and debounce records past theirs. Both are lazily enforced already;
// sweeping only bounds storage growth and may be run on any schedule.
func (p *Postern) SweepExpired(ctx context.Context) error {
	now := p.now()

	if _, err := p.Storage.DeleteExpiredTokens(ctx, now.Add(-p.TokenTTL)); err != nil {
		return fmt.Errorf("failed to sweep tokens: %w", err)
	}
	if _, err := p.Storage.PruneDebounce(ctx, now.Add(-p.Debounce.Window())); err != nil {
		return fmt.Errorf("failed to sweep debounce records: %w", err)
	}

	return nil
}
