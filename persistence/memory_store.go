package persistence

import (
	"context"
	"sort"
	"sync"
)

// MemorySessionStore is an in-memory SessionStore for development and tests.
type MemorySessionStore struct {
	mu     sync.RWMutex
	snaps  map[string]*Snapshot
	closed bool
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{snaps: make(map[string]*Snapshot)}
}

// Save implements SessionStore.
func (s *MemorySessionStore) Save(_ context.Context, snap *Snapshot) error {
	if snap == nil || snap.SessionID == "" {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.snaps[snap.SessionID] = snap.clone()
	return nil
}

// Load implements SessionStore.
func (s *MemorySessionStore) Load(_ context.Context, sessionID string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	snap, ok := s.snaps[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return snap.clone(), nil
}

// Delete implements SessionStore.
func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	delete(s.snaps, sessionID)
	return nil
}

// List implements SessionStore.
func (s *MemorySessionStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	ids := make([]string, 0, len(s.snaps))
	for id := range s.snaps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close implements SessionStore.
func (s *MemorySessionStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.snaps = make(map[string]*Snapshot)
	return nil
}
