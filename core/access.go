package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gofiber/fiber/v3/log"
)

// AccessGate answers whether a proven identity is permitted to use the
// service.
//
// The allow-list is an immutable snapshot behind an atomic pointer: reads
// are lock-free and always observe a complete set, updates build a new set
// and swap it in whole. An address absent from the snapshot is denied;
// an empty gate denies everyone (fail-closed).
type AccessGate struct {
	snapshot atomic.Pointer[accessList]
}

type accessList struct {
	members map[string]struct{}
}

func NewAccessGate() *AccessGate {
	g := &AccessGate{}
	g.snapshot.Store(&accessList{members: map[string]struct{}{}})
	return g
}

// IsAuthorized reports whether the address is on the allow-list snapshot
// active at call time. Matching is case-insensitive.
func (g *AccessGate) IsAuthorized(email string) bool {
	_, ok := g.snapshot.Load().members[strings.ToLower(email)]
	return ok
}

// Size returns the number of entries in the current snapshot.
func (g *AccessGate) Size() int {
	return len(g.snapshot.Load().members)
}

// Replace swaps the entire allow-list for the given addresses.
// Entries are normalized to lowercase.
func (g *AccessGate) Replace(addresses []string) {
	members := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		members[strings.ToLower(a)] = struct{}{}
	}
	g.snapshot.Store(&accessList{members: members})
}

// ReplaceJSON swaps the allow-list from a serialized JSON array of
// addresses. A payload that fails to parse leaves the previous snapshot in
// effect: a bad update must never clear authorization for everyone. The
// parse failure is logged and returned to the updating caller only.
func (g *AccessGate) ReplaceJSON(raw []byte) error {
	var addresses []string
	if err := json.Unmarshal(raw, &addresses); err != nil {
		log.Errorf("postern: access list update rejected, keeping previous snapshot: %v", err)
		return fmt.Errorf("%w: %v", ErrAccessListParse, err)
	}

	g.Replace(addresses)
	return nil
}
