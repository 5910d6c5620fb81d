package source

import (
	"context"
	"sync"

	"github.com/josegonzalez/dupcheck/pkg/dupcheck"
)

// MemorySource holds existing records in memory, grouped by entity type.
type MemorySource struct {
	mu      sync.RWMutex
	records map[dupcheck.EntityType][]dupcheck.Record
}

// NewMemorySource creates a memory source seeded with records.
func NewMemorySource(records ...dupcheck.Record) *MemorySource {
	s := &MemorySource{records: make(map[dupcheck.EntityType][]dupcheck.Record)}
	s.Add(records...)
	return s
}

// Name returns the source name.
func (s *MemorySource) Name() string {
	return "memory"
}

// Add appends records to the pool of their entity type. Nil records are skipped.
func (s *MemorySource) Add(records ...dupcheck.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if r == nil {
			continue
		}
		e := r.EntityType()
		s.records[e] = append(s.records[e], r)
	}
}

// Records returns a copy of the pool for the entity type. The records themselves are shared.
func (s *MemorySource) Records(ctx context.Context, entity dupcheck.EntityType) ([]dupcheck.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	pool := make([]dupcheck.Record, len(s.records[entity]))
	copy(pool, s.records[entity])
	return pool, nil
}

// Len returns the number of records held for the entity type.
func (s *MemorySource) Len(entity dupcheck.EntityType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[entity])
}

// Close drops every record.
func (s *MemorySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[dupcheck.EntityType][]dupcheck.Record)
	return nil
}
