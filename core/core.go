package core

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3/log"
)

type Config struct {
	// Storage backs tokens, session state and debounce records.
	Storage Storage

	// Mailer consumes the "token issued" signal.
	Mailer Mailer

	// Optional config
	HTTP           HTTPAdapter
	TokenTTL       time.Duration
	DebounceWindow time.Duration
	TokenBytes     int
	BasePath       string
}

// Postern wires the authentication core, the debounce guard, the session
// state store, the access gate and the notification hub together.
type Postern struct {
	Storage  Storage
	Mailer   Mailer
	Sessions *SessionManager
	Debounce *Debouncer
	Access   *AccessGate
	Hub      *Hub

	TokenTTL   time.Duration
	TokenBytes int
	BasePath   string

	now func() time.Time
}

// NewPostern assembles the component graph over a single storage backend.
// Defaulting of the durations and sizes is the facade's job; values arrive
// here already resolved.
func NewPostern(storage Storage, mailer Mailer, tokenTTL, debounceWindow time.Duration, tokenBytes int, basePath string) *Postern {
	access := NewAccessGate()

	return &Postern{
		Storage:    storage,
		Mailer:     mailer,
		Sessions:   NewSessionManager(storage),
		Debounce:   NewDebouncer(debounceWindow, storage),
		Access:     access,
		Hub:        NewHub(access),
		TokenTTL:   tokenTTL,
		TokenBytes: tokenBytes,
		BasePath:   basePath,
		now:        time.Now,
	}
}

// JoinSession registers a live connection with the notification hub and,
// when the session already carries a proven identity, immediately pushes
// the current outcome to that single connection.
func (p *Postern) JoinSession(ctx context.Context, sessionID string) *Subscriber {
	sub := p.Hub.Join(sessionID)

	email, err := p.Sessions.IsAuthenticated(ctx, sessionID)
	if err != nil {
		log.Errorf("postern: state lookup for joining session failed: %v", err)
		return sub
	}
	if email != "" {
		sub.push(p.Hub.outcome(email))
	}

	return sub
}
