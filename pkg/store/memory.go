package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in memory. When a capacity is set the oldest
// records are evicted first.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[string]*Record
	order    []string
	capacity int
	now      func() time.Time
}

// NewMemoryStore creates an in-memory store holding at most capacity
// records; zero means unbounded.
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{
		records:  make(map[string]*Record),
		capacity: capacity,
		now:      time.Now,
	}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(rec, s.now())
	if _, exists := s.records[rec.ID]; !exists {
		s.order = append(s.order, rec.ID)
	}
	cp := *rec
	s.records[rec.ID] = &cp

	for s.capacity > 0 && len(s.order) > s.capacity {
		delete(s.records, s.order[0])
		s.order = s.order[1:]
	}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *rec
	return &cp, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return notFound(id)
	}
	delete(s.records, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close implements Store.
func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
