package connection

import "sync"

// StateStore caches the last known connection state per tenant. It is
// deliberately not persisted: after a restart the first observation becomes a
// fresh baseline instead of re-firing transition webhooks.
type StateStore interface {
	Get(tenantID string) (connected bool, ok bool)
	Set(tenantID string, connected bool)
}

type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string]bool
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]bool)}
}

func (s *MemoryStateStore) Get(tenantID string) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	connected, ok := s.states[tenantID]
	return connected, ok
}

func (s *MemoryStateStore) Set(tenantID string, connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[tenantID] = connected
}

var _ StateStore = (*MemoryStateStore)(nil)
