package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is a process-local store for development and tests. go-cache's
// janitor evicts expired entries every cleanupInterval.
type MemoryStore struct {
	c   *gocache.Cache
	now func() time.Time
}

func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		c:   gocache.New(gocache.NoExpiration, cleanupInterval),
		now: time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) ([]byte, error) {
	v, ok := s.c.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	entry, ok := v.(memoryEntry)
	if !ok || !s.now().Before(entry.expiresAt) {
		s.c.Delete(id)
		return nil, ErrNotFound
	}
	out := make([]byte, len(entry.data))
	copy(out, entry.data)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, id string, data []byte, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		s.c.Delete(id)
		return nil
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.c.Set(id, memoryEntry{data: buf, expiresAt: expiresAt}, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.c.Delete(id)
	return nil
}

func (s *MemoryStore) Len() int {
	return s.c.ItemCount()
}
