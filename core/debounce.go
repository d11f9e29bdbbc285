package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Debouncer rate-limits token issuance per contact address.
//
// Addresses are keyed by their lowercased form, so requests for
// "User@Example.com" and "user@example.com" share one window. The
// check-and-record itself is atomic inside the storage adapter; two
// near-simultaneous requests for the same address never both pass.
type Debouncer struct {
	window  time.Duration
	storage DebounceStorage
}

func NewDebouncer(window time.Duration, storage DebounceStorage) *Debouncer {
	return &Debouncer{
		window:  window,
		storage: storage,
	}
}

// Window returns the configured debounce window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Admit decides whether a token may be issued for the address right now.
// A rejection is a *DebounceError with the remaining wait; any other error
// is a storage failure.
func (d *Debouncer) Admit(ctx context.Context, address string) error {
	remaining, err := d.storage.Reserve(ctx, strings.ToLower(address), d.window)
	if err != nil {
		return fmt.Errorf("failed to check debounce record: %w", err)
	}
	if remaining > 0 {
		return &DebounceError{Remaining: remaining}
	}
	return nil
}
