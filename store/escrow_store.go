// Package store is the in-memory escrow store of spec.md §3/§5: a mapping
// from escrow id to escrow record, mutated only through typed transitions,
// with one mutual-exclusion token per escrow so concurrent callers can
// operate on different escrows without contending, while all mutation of a
// single escrow is serialized.
package store

import (
	"fmt"
	"sync"

	"github.com/liquidityos/escrow-coordinator/domain"
)

// entry pairs an escrow record with the lock that serializes its
// transitions, per spec.md §5's per-escrow mutual-exclusion requirement.
type entry struct {
	mu     sync.Mutex
	escrow *domain.Escrow
}

// EscrowStore owns every Escrow record for the life of the process. It is
// the only mutable shared state besides wallet.Manager's secret store.
type EscrowStore struct {
	mu      sync.RWMutex
	entries map[domain.ID]*entry
}

func New() *EscrowStore {
	return &EscrowStore{entries: make(map[domain.ID]*entry)}
}

// ErrNotFound is returned when an escrow id is unknown. Package escrow maps
// it to the NotFound error kind of spec.md §7.
var ErrNotFound = fmt.Errorf("store: escrow not found")

// Create inserts a brand-new escrow record. It must be called at most once
// per id.
func (s *EscrowStore) Create(e *domain.Escrow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[e.ID]; exists {
		return fmt.Errorf("store: escrow %s already exists", e.ID)
	}
	s.entries[e.ID] = &entry{escrow: e}
	return nil
}

// Get returns a point-in-time copy for reads: it takes id's per-escrow lock,
// clones the record while holding it, then releases the lock before
// returning. Cloning under the lock (rather than returning the live pointer)
// is what makes this safe to call concurrently with WithLock — without it, a
// reader iterating the returned record's FundingTxIDs map or SettlementTxs
// slice could race with a concurrent WithLock mutation and crash the
// process. Callers in package escrow that intend to mutate MUST use WithLock
// instead.
func (s *EscrowStore) Get(id domain.ID) (*domain.Escrow, error) {
	s.mu.RLock()
	en, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.escrow.Clone(), nil
}

// WithLock acquires id's per-escrow token, hands the current record to fn,
// and holds the token for fn's entire duration — including any ledger call
// fn makes — so no other goroutine can observe or mutate the escrow mid
// transition, per spec.md §5. fn mutates the record in place; a non-nil
// error leaves the record exactly as fn last left it (the spec's "timed-out
// submit_transfer does not roll back status" rule, §5).
func (s *EscrowStore) WithLock(id domain.ID, fn func(*domain.Escrow) error) error {
	s.mu.RLock()
	en, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	en.mu.Lock()
	defer en.mu.Unlock()
	return fn(en.escrow)
}

// Len reports the number of escrows tracked, regardless of status. The
// Health command's active_escrows field comes from CountActive, not Len.
func (s *EscrowStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// CountActive reports escrows not yet in a terminal status.
func (s *EscrowStore) CountActive() int {
	s.mu.RLock()
	ids := make([]*entry, 0, len(s.entries))
	for _, en := range s.entries {
		ids = append(ids, en)
	}
	s.mu.RUnlock()

	n := 0
	for _, en := range ids {
		en.mu.Lock()
		if !en.escrow.Terminal() {
			n++
		}
		en.mu.Unlock()
	}
	return n
}
