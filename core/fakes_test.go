package core

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock is a hand-cranked clock shared by a test's Postern and storage.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentMail struct {
	contactAddress string
	token          string
}

// fakeMailer records every token signal and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendToken(ctx context.Context, contactAddress, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{contactAddress: contactAddress, token: token})
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) lastSent(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail was sent")
	}
	return m.sent[len(m.sent)-1]
}

// flakyStorage wraps MemoryStorage with injectable error fields.
type flakyStorage struct {
	*MemoryStorage
	createTokenErr error
	consumeErr     error
	setIdentityErr error
	identityErr    error
	reserveErr     error
}

func (f *flakyStorage) CreateToken(ctx context.Context, token *AuthToken) error {
	if f.createTokenErr != nil {
		return f.createTokenErr
	}
	return f.MemoryStorage.CreateToken(ctx, token)
}

func (f *flakyStorage) ConsumeToken(ctx context.Context, tokenHash string) (*AuthToken, error) {
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	return f.MemoryStorage.ConsumeToken(ctx, tokenHash)
}

func (f *flakyStorage) SetIdentity(ctx context.Context, sessionID, email string) error {
	if f.setIdentityErr != nil {
		return f.setIdentityErr
	}
	return f.MemoryStorage.SetIdentity(ctx, sessionID, email)
}

func (f *flakyStorage) Identity(ctx context.Context, sessionID string) (string, error) {
	if f.identityErr != nil {
		return "", f.identityErr
	}
	return f.MemoryStorage.Identity(ctx, sessionID)
}

func (f *flakyStorage) Reserve(ctx context.Context, address string, window time.Duration) (time.Duration, error) {
	if f.reserveErr != nil {
		return 0, f.reserveErr
	}
	return f.MemoryStorage.Reserve(ctx, address, window)
}

// newTestPostern builds a Postern over a fresh memory backend with the
// clock under test control.
func newTestPostern(t *testing.T) (*Postern, *fakeMailer, *fakeClock) {
	t.Helper()
	p, _, mailer, clock := newTestPosternWithStorage(t)
	return p, mailer, clock
}

func newTestPosternWithStorage(t *testing.T) (*Postern, *flakyStorage, *fakeMailer, *fakeClock) {
	t.Helper()

	clock := newFakeClock()
	memory := NewMemoryStorage()
	memory.now = clock.Now
	storage := &flakyStorage{MemoryStorage: memory}
	mailer := &fakeMailer{}

	p := NewPostern(storage, mailer, 30*time.Minute, time.Minute, 32, "/auth")
	p.now = clock.Now

	return p, storage, mailer, clock
}
