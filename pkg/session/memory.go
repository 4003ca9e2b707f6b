package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/artwork-table/pkg/table"
)

const backendMemory = "memory"

type memoryEntry struct {
	snap    *table.Snapshot
	expires time.Time
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.RWMutex
	entries   map[string]memoryEntry
	lastSweep time.Time
}

// NewMemoryStore creates an in-memory store whose entries expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		panic("session ttl must be positive")
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the snapshot for id. Expired entries are removed.
func (s *MemoryStore) Get(_ context.Context, id string) (*table.Snapshot, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if ok && !s.now().Before(entry.expires) {
		s.mu.Lock()
		// re-check: a concurrent Set may have refreshed it
		if cur, still := s.entries[id]; still && !s.now().Before(cur.expires) {
			delete(s.entries, id)
		}
		s.mu.Unlock()
		ok = false
	}

	if !ok {
		Lookups.WithLabelValues(backendMemory, "miss").Inc()
		return nil, ErrNotFound
	}

	Lookups.WithLabelValues(backendMemory, "hit").Inc()
	return cloneSnapshot(entry.snap), nil
}

// Set stores a copy of snap and collects expired entries, at most once per
// sweep interval.
func (s *MemoryStore) Set(_ context.Context, id string, snap *table.Snapshot) error {
	if snap == nil {
		Errors.WithLabelValues(backendMemory, "set").Inc()
		return fmt.Errorf("session snapshot cannot be nil")
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	s.entries[id] = memoryEntry{
		snap:    cloneSnapshot(snap),
		expires: now.Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < min(s.ttl, time.Minute) {
		return
	}
	s.lastSweep = now
	for id, entry := range s.entries {
		if !now.Before(entry.expires) {
			delete(s.entries, id)
		}
	}
}

// Delete removes the snapshot for id.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len returns the number of stored entries, including expired ones not yet collected.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cloneSnapshot(snap *table.Snapshot) *table.Snapshot {
	out := *snap
	out.Rows = append(out.Rows[:0:0], snap.Rows...)
	out.Selection = append(out.Selection[:0:0], snap.Selection...)
	return &out
}
