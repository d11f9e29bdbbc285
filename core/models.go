package core

import "time"

// AuthToken is an outstanding single-use authentication token.
//
// The raw token value never touches storage; only its hash does. The raw
// value travels to the user out-of-band through the Mailer.
type AuthToken struct {
	TokenHash string `json:"-"` // Never expose in JSON (security!)

	// SessionID is the browser session the token was issued for.
	SessionID string `json:"sessionId"`

	// ContactAddress is the email address exactly as the caller supplied it.
	// All internal keying uses the lowercased form; the original casing is
	// preserved for display.
	ContactAddress string `json:"contactAddress"`

	CreatedAt  time.Time  `json:"createdAt"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`
}

// Credentials is the result of a successful token consumption.
//
// It is ephemeral: the caller writes the identity into session state and
// notifies live connections, then discards it.
type Credentials struct {
	SessionID      string `json:"sessionId"`
	ContactAddress string `json:"contactAddress"`
}

// EventKind names an authentication outcome pushed to live connections.
type EventKind string

const (
	// EventAuthenticated means the identity is proven and on the allow-list.
	EventAuthenticated EventKind = "authenticated"

	// EventAccessWarning means the identity is proven but not on the
	// allow-list. This is a normal outcome, not an error.
	EventAccessWarning EventKind = "warning"
)

// Event is an authentication outcome delivered to session-joined connections.
type Event struct {
	Kind  EventKind `json:"kind"`
	Email string    `json:"email"`
}
