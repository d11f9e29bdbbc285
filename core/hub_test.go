package core

import (
	"context"
	"testing"
)

func newTestHub(allowList []string) *Hub {
	gate := NewAccessGate()
	gate.Replace(allowList)
	return NewHub(gate)
}

func drainOne(t *testing.T, sub *Subscriber) Event {
	t.Helper()
	select {
	case ev := <-sub.C:
		return ev
	default:
		t.Fatal("subscriber received no event")
		return Event{}
	}
}

// Requirement: a broadcast reaches every connection joined to the session
// and nobody else.
func TestHub_Broadcast(t *testing.T) {
	h := newTestHub([]string{"user@example.com"})

	one := h.Join("s1")
	defer one.Leave()
	two := h.Join("s1")
	defer two.Leave()
	other := h.Join("s2")
	defer other.Leave()

	h.Broadcast("s1", "user@example.com")

	for _, sub := range []*Subscriber{one, two} {
		ev := drainOne(t, sub)
		if ev.Kind != EventAuthenticated || ev.Email != "user@example.com" {
			t.Errorf("event = %+v", ev)
		}
	}

	select {
	case ev := <-other.C:
		t.Fatalf("unrelated session received %+v", ev)
	default:
	}
}

// Requirement: the outcome is computed against the allow-list at delivery
// time, not cached at issuance.
func TestHub_OutcomeAtDeliveryTime(t *testing.T) {
	gate := NewAccessGate()
	h := NewHub(gate)

	sub := h.Join("s1")
	defer sub.Leave()

	h.Broadcast("s1", "user@example.com")
	if ev := drainOne(t, sub); ev.Kind != EventAccessWarning {
		t.Errorf("before allow-listing: kind = %q, want %q", ev.Kind, EventAccessWarning)
	}

	gate.Replace([]string{"user@example.com"})

	h.Broadcast("s1", "user@example.com")
	if ev := drainOne(t, sub); ev.Kind != EventAuthenticated {
		t.Errorf("after allow-listing: kind = %q, want %q", ev.Kind, EventAuthenticated)
	}
}

// Requirement: leaving removes the connection from the group, closes its
// channel, and is safe to repeat.
func TestHub_Leave(t *testing.T) {
	h := newTestHub(nil)

	sub := h.Join("s1")
	if h.Joined("s1") != 1 {
		t.Fatalf("Joined() = %d, want 1", h.Joined("s1"))
	}

	sub.Leave()
	sub.Leave()

	if h.Joined("s1") != 0 {
		t.Errorf("Joined() = %d after leave, want 0", h.Joined("s1"))
	}

	if _, open := <-sub.C; open {
		t.Error("channel still open after leave")
	}

	// Broadcasting into an empty group is a no-op, not a panic.
	h.Broadcast("s1", "user@example.com")
}

// Requirement: a subscriber that stopped draining never blocks the
// broadcast; overflow events are dropped for that subscriber only.
func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := newTestHub(nil)

	stalled := h.Join("s1")
	defer stalled.Leave()
	healthy := h.Join("s1")
	defer healthy.Leave()

	for i := 0; i < subscriberBuffer+4; i++ {
		h.Broadcast("s1", "user@example.com")
		// Keep the healthy subscriber drained.
		drainOne(t, healthy)
	}

	if got := len(stalled.C); got != subscriberBuffer {
		t.Errorf("stalled buffer = %d, want %d", got, subscriberBuffer)
	}
}

// Requirement: joining after a login pushes the current state to just that
// connection.
func TestPostern_JoinSessionSyncsState(t *testing.T) {
	p, _, _ := newTestPostern(t)
	ctx := context.Background()
	p.Access.Replace([]string{"user@example.com"})

	if err := p.Sessions.SetAuthenticated(ctx, "s1", "User@Example.com"); err != nil {
		t.Fatalf("SetAuthenticated() error = %v", err)
	}

	sub := p.JoinSession(ctx, "s1")
	defer sub.Leave()

	ev := drainOne(t, sub)
	if ev.Kind != EventAuthenticated || ev.Email != "User@Example.com" {
		t.Errorf("on-join event = %+v", ev)
	}

	fresh := p.JoinSession(ctx, "s2")
	defer fresh.Leave()
	select {
	case ev := <-fresh.C:
		t.Fatalf("session without identity received %+v", ev)
	default:
	}
}
