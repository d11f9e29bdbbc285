package core

import (
	"errors"
	"sync"
	"testing"
)

// Requirement: lookups are case-insensitive and an empty gate denies
// everyone.
func TestAccessGate_IsAuthorized(t *testing.T) {
	tests := []struct {
		name  string
		list  []string
		email string
		want  bool
	}{
		{name: "empty gate denies", list: nil, email: "user@example.com", want: false},
		{name: "exact match", list: []string{"user@example.com"}, email: "user@example.com", want: true},
		{name: "lookup casing ignored", list: []string{"user@example.com"}, email: "User@Example.COM", want: true},
		{name: "list casing normalized", list: []string{"USER@EXAMPLE.COM"}, email: "user@example.com", want: true},
		{name: "absent address denied", list: []string{"user@example.com"}, email: "other@example.com", want: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := NewAccessGate()
			g.Replace(test.list)

			if got := g.IsAuthorized(test.email); got != test.want {
				t.Errorf("IsAuthorized(%q) = %v, want %v", test.email, got, test.want)
			}
		})
	}
}

// Requirement: Replace swaps the whole list; entries not in the new
// snapshot lose access.
func TestAccessGate_ReplaceIsWholesale(t *testing.T) {
	g := NewAccessGate()
	g.Replace([]string{"a@example.com", "b@example.com"})
	g.Replace([]string{"c@example.com"})

	if g.IsAuthorized("a@example.com") || g.IsAuthorized("b@example.com") {
		t.Error("entries from the replaced snapshot survived")
	}
	if !g.IsAuthorized("c@example.com") {
		t.Error("entry from the new snapshot missing")
	}
	if g.Size() != 1 {
		t.Errorf("Size() = %d, want 1", g.Size())
	}
}

// Requirement: a malformed update returns ErrAccessListParse and leaves
// the previous snapshot fully in effect.
func TestAccessGate_ReplaceJSON(t *testing.T) {
	g := NewAccessGate()
	g.Replace([]string{"ok@example.com"})

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "valid array", payload: `["new@example.com"]`, wantErr: false},
		{name: "not json", payload: `this is not json`, wantErr: true},
		{name: "wrong shape", payload: `{"emails": []}`, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := NewAccessGate()
			g.Replace([]string{"ok@example.com"})

			err := g.ReplaceJSON([]byte(test.payload))
			if test.wantErr {
				if !errors.Is(err, ErrAccessListParse) {
					t.Fatalf("ReplaceJSON() error = %v, want ErrAccessListParse", err)
				}
				if !g.IsAuthorized("ok@example.com") {
					t.Error("failed update cleared the previous snapshot")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReplaceJSON() error = %v", err)
			}
			if !g.IsAuthorized("new@example.com") || g.IsAuthorized("ok@example.com") {
				t.Error("snapshot was not replaced wholesale")
			}
		})
	}
}

// Requirement: concurrent readers always observe a complete snapshot while
// updates swap it out from under them. Both alternating snapshots hold two
// members, so any reader observing another size caught a partial set.
func TestAccessGate_ConcurrentSwap(t *testing.T) {
	g := NewAccessGate()
	g.Replace([]string{"a@example.com", "b@example.com"})

	done := make(chan struct{})
	var writer sync.WaitGroup
	var readers sync.WaitGroup

	writer.Add(1)
	go func() {
		defer writer.Done()
		lists := [][]string{
			{"a@example.com", "b@example.com"},
			{"c@example.com", "d@example.com"},
		}
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
				g.Replace(lists[i%2])
			}
		}
	}()

	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for j := 0; j < 10000; j++ {
				if size := g.Size(); size != 2 {
					t.Errorf("Size() = %d, want 2", size)
					return
				}
				g.IsAuthorized("a@example.com")
			}
		}()
	}

	readers.Wait()
	close(done)
	writer.Wait()
}
