package core

import (
	"sync"

	"github.com/gofiber/fiber/v3/log"
)

// subscriberBuffer is the per-connection event buffer. Broadcasts never
// block; a subscriber that falls this far behind misses the event.
const subscriberBuffer = 8

// Hub fans authentication outcomes out to live connections.
//
// Each connection joins exactly one session and holds a Subscriber until it
// disconnects. Membership is a broadcast group keyed by session id, so a
// login in one tab reaches every tab sharing the session. Outcomes are
// computed against the access gate at delivery time, never cached at
// issuance: the allow-list may change between the two.
type Hub struct {
	access *AccessGate

	mu       sync.RWMutex
	sessions map[string]map[*Subscriber]struct{}
}

// Subscriber is one live connection's membership in a session group.
type Subscriber struct {
	// C delivers authentication outcomes. It is closed by Leave.
	C chan Event

	sessionID string
	hub       *Hub
	closed    bool
}

func NewHub(access *AccessGate) *Hub {
	return &Hub{
		access:   access,
		sessions: make(map[string]map[*Subscriber]struct{}),
	}
}

// Join adds a connection to the session's broadcast group.
// The caller must call Leave when the connection ends.
func (h *Hub) Join(sessionID string) *Subscriber {
	sub := &Subscriber{
		C:         make(chan Event, subscriberBuffer),
		sessionID: sessionID,
		hub:       h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.sessions[sessionID]
	if !ok {
		group = make(map[*Subscriber]struct{})
		h.sessions[sessionID] = group
	}
	group[sub] = struct{}{}

	return sub
}

// Leave removes the subscriber from its group and closes its channel.
// Safe to call more than once.
func (s *Subscriber) Leave() {
	h := s.hub

	h.mu.Lock()
	defer h.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if group, ok := h.sessions[s.sessionID]; ok {
		delete(group, s)
		if len(group) == 0 {
			delete(h.sessions, s.sessionID)
		}
	}
	close(s.C)
}

// SessionID returns the session this subscriber is joined to.
func (s *Subscriber) SessionID() string {
	return s.sessionID
}

// Broadcast computes the outcome for the address and delivers it to every
// connection currently joined to the session.
func (h *Hub) Broadcast(sessionID, email string) {
	ev := h.outcome(email)

	h.mu.RLock()
	subs := make([]*Subscriber, 0, len(h.sessions[sessionID]))
	for sub := range h.sessions[sessionID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.push(ev)
	}
}

// Joined returns how many connections are currently joined to the session.
func (h *Hub) Joined(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// outcome distinguishes a proven identity that may use the service from one
// that may not. Both travel the same channel; denial is not an error.
func (h *Hub) outcome(email string) Event {
	if h.access.IsAuthorized(email) {
		return Event{Kind: EventAuthenticated, Email: email}
	}
	return Event{Kind: EventAccessWarning, Email: email}
}

// push delivers without blocking. Dropping is preferable to letting one
// stalled connection hold up the broadcast. A subscriber that already left
// is skipped; the hub lock serializes push against Leave's close.
func (s *Subscriber) push(ev Event) {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()

	if s.closed {
		return
	}

	select {
	case s.C <- ev:
	default:
		log.Warnf("postern: dropping %s event for session %s, subscriber buffer full", ev.Kind, s.sessionID)
	}
}
