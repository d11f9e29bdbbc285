package core

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors (client input, rejected before any state mutation)
var (
	ErrSessionIDRequired = errors.New("session id is required") // 400
	ErrEmailRequired     = errors.New("email is required")      // 400
	ErrInvalidEmail      = errors.New("invalid email format")   // 400
)

// Token errors. All three surface to the token-link caller as one generic
// failure; they are only distinguished in server-side logs.
var (
	ErrTokenNotFound = errors.New("unknown authentication token")
	ErrTokenExpired  = errors.New("authentication token expired")
	ErrTokenConsumed = errors.New("authentication token already used")
)

// Access-list errors
var (
	ErrAccessListParse = errors.New("could not parse access list") // previous snapshot stays active
)

// Config errors (server-side configuration)
var (
	ErrMailerRequired = errors.New("mailer is required") // 500
)

// DebounceError reports a token-issuance request rejected because the same
// address was admitted too recently. Remaining is how long the caller has to
// wait; it is user-facing and recoverable, not an anomaly.
type DebounceError struct {
	Remaining time.Duration
}

func (e *DebounceError) Error() string {
	return fmt.Sprintf("too many login requests, retry in %dms", e.Remaining.Milliseconds())
}

// RemainingMillis is the wait in whole milliseconds, never negative.
func (e *DebounceError) RemainingMillis() int64 {
	if e.Remaining < 0 {
		return 0
	}
	return e.Remaining.Milliseconds()
}
