package job

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Record)}
}

func (s *MemoryStore) Put(_ context.Context, rec Record) error {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return fmt.Errorf("job id is required")
	}
	rec.ID = id
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}
