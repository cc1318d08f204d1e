package store

import (
	"sync"
	"time"

	"github.com/spec-kit/agent-console/internal/domain"
	util "github.com/spec-kit/agent-console/pkg/util"
)

// Store owns the in-memory snapshot for one ticket. It is the only holder of
// shared mutable ticket state: the UI reads snapshots from it and every
// mutation flows through a dispatched Intent, never through direct field
// writes.
//
// The protocol per mutation: Apply the intent (optimistic read is available
// immediately), issue the upstream request under a sequence number from
// Begin, then Reconcile with the server's canonical snapshot on success or
// with a refetched snapshot on failure (rollback-by-refetch).
type Store struct {
	mu              sync.RWMutex
	snapshot        domain.Ticket
	serverUpdatedAt time.Time
	seq             uint64
	lastTempID      int64
	closed          bool
	now             func() time.Time
}

// New builds a store seeded with a server snapshot.
func New(snapshot domain.Ticket) *Store {
	return NewWithClock(snapshot, time.Now)
}

// NewWithClock is New with an injectable clock.
func NewWithClock(snapshot domain.Ticket, now func() time.Time) *Store {
	return &Store{
		snapshot:        snapshot.Clone(),
		serverUpdatedAt: snapshot.UpdatedAt,
		now:             now,
	}
}

// TicketID returns the id of the owned snapshot.
func (s *Store) TicketID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.ID
}

// Snapshot returns a copy of the current (possibly speculative) snapshot.
func (s *Store) Snapshot() domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

// Begin reserves a monotonic sequence number for one upstream round-trip.
// The number keys the stale-response guard in Reconcile.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Apply runs the intent's reducer against the current snapshot and installs
// the result. Returns the new snapshot for immediate rendering.
func (s *Store) Apply(intent Intent) domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = intent.apply(s.snapshot, s.now())
	return s.snapshot.Clone()
}

// Reconcile adopts a server snapshot wholesale, replacing any speculative
// state. It is idempotent under out-of-order confirmations: a response for a
// different ticket, for a sequence this store never issued, for a closed
// store, or older than the last adopted server truth is discarded with a
// stale-response error that callers swallow.
func (s *Store) Reconcile(seq uint64, server domain.Ticket) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || server.ID != s.snapshot.ID || seq == 0 || seq > s.seq {
		return domain.Ticket{}, util.NewStaleResponse(server.ID, seq)
	}
	if server.UpdatedAt.Before(s.serverUpdatedAt) {
		return domain.Ticket{}, util.NewStaleResponse(server.ID, seq)
	}

	s.snapshot = server.Clone()
	s.serverUpdatedAt = server.UpdatedAt
	return s.snapshot.Clone(), nil
}

// AllocateCommentID hands out a locally-unique negative id for an optimistic
// comment, derived from the monotonic clock. Server-assigned ids are
// positive, so the ranges never collide.
func (s *Store) AllocateCommentID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := -s.now().UnixNano()
	if id >= s.lastTempID {
		id = s.lastTempID - 1
	}
	s.lastTempID = id
	return id
}

// Close marks the store as no longer having a subscriber. Late-arriving
// responses reconcile into a closed store as stale and are discarded.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
