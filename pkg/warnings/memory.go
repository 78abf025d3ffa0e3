package warnings

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. Records are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]time.Time)}
}

func (s *MemoryStore) Get(_ context.Context, identity string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	at, ok := s.records[NormalizeIdentity(identity)]
	return at, ok, nil
}

func (s *MemoryStore) Upsert(_ context.Context, identity string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Same millisecond precision as the persistent stores
	s.records[NormalizeIdentity(identity)] = time.UnixMilli(at.UnixMilli())
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, NormalizeIdentity(identity))
	return nil
}

// Len returns the number of stored records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore) Health(context.Context) error {
	return nil
}
