package core

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage is an in-process Storage backend.
//
// It is the default when no adapter is configured and the workhorse of the
// test suite, mirroring the shape durable adapters must honor: single-winner
// token consumption and atomic debounce reservation. Debounce records that
// have aged past their window are dropped lazily when the address is seen
// again; PruneDebounce bounds growth for addresses never seen again.
type MemoryStorage struct {
	mu       sync.Mutex
	tokens   map[string]*AuthToken
	sessions map[string]string
	debounce map[string]time.Time

	// now is replaceable in tests.
	now func() time.Time
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tokens:   make(map[string]*AuthToken),
		sessions: make(map[string]string),
		debounce: make(map[string]time.Time),
		now:      time.Now,
	}
}

// TokenStorage implementation

func (m *MemoryStorage) CreateToken(ctx context.Context, token *AuthToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *token
	m.tokens[token.TokenHash] = &cp
	return nil
}

func (m *MemoryStorage) ConsumeToken(ctx context.Context, tokenHash string) (*AuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.tokens[tokenHash]
	if !ok {
		return nil, ErrTokenNotFound
	}
	if record.ConsumedAt != nil {
		return nil, ErrTokenConsumed
	}

	consumedAt := m.now()
	record.ConsumedAt = &consumedAt

	cp := *record
	return &cp, nil
}

func (m *MemoryStorage) DeleteExpiredTokens(ctx context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for hash, record := range m.tokens {
		if record.CreatedAt.Before(olderThan) {
			delete(m.tokens, hash)
			count++
		}
	}
	return count, nil
}

// SessionStorage implementation

func (m *MemoryStorage) SetIdentity(ctx context.Context, sessionID, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[sessionID] = email
	return nil
}

func (m *MemoryStorage) Identity(ctx context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sessions[sessionID], nil
}

// DebounceStorage implementation

func (m *MemoryStorage) Reserve(ctx context.Context, address string, window time.Duration) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if last, ok := m.debounce[address]; ok {
		if elapsed := now.Sub(last); elapsed < window {
			return window - elapsed, nil
		}
	}

	m.debounce[address] = now
	return 0, nil
}

func (m *MemoryStorage) PruneDebounce(ctx context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for address, last := range m.debounce {
		if last.Before(olderThan) {
			delete(m.debounce, address)
			count++
		}
	}
	return count, nil
}
