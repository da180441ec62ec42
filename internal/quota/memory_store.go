package quota

import (
	"context"
	"sync"
	"time"
)

// In-process ledger store for development mode and tests. Counts survive
// only for the process lifetime.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]Record),
	}
}

func (s *MemoryStore) CountSince(ctx context.Context, identity string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, record := range s.records[identity] {
		if !record.At.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) Append(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Identity] = append(s.records[record.Identity], record)
	return nil
}

// Records returns a copy of all records for one identity.
func (s *MemoryStore) Records(identity string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records[identity]))
	copy(out, s.records[identity])
	return out
}
