package job

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore keeps recently written or read records in an LRU in front of
// another Store. Writes go through to the inner store first.
type CachedStore struct {
	inner Store
	cache *lru.Cache[string, Record]
}

func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, Record](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

func (s *CachedStore) Put(ctx context.Context, rec Record) error {
	if err := s.inner.Put(ctx, rec); err != nil {
		s.cache.Remove(rec.ID)
		return err
	}
	s.cache.Add(rec.ID, rec)
	return nil
}

func (s *CachedStore) Get(ctx context.Context, id string) (Record, error) {
	if rec, ok := s.cache.Get(id); ok {
		return rec, nil
	}
	rec, err := s.inner.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	s.cache.Add(id, rec)
	return rec, nil
}
