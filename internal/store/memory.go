package store

import (
	"context"
	"hash/maphash"
	"sync"

	"github.com/serroba/url-shortener/internal/shortener"
)

const memoryShards = 64

type memoryShard struct {
	mu   sync.RWMutex
	urls map[shortener.Code]shortener.ShortURL
}

// MemoryStore is an in-memory implementation of shortener.Repository.
// Codes are spread over independently locked shards so inserts of distinct
// codes rarely contend and lookups only take read locks.
type MemoryStore struct {
	seed   maphash.Seed
	shards [memoryShards]*memoryShard
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{seed: maphash.MakeSeed()}

	for i := range m.shards {
		m.shards[i] = &memoryShard{urls: make(map[shortener.Code]shortener.ShortURL)}
	}

	return m
}

func (m *MemoryStore) shard(code shortener.Code) *memoryShard {
	return m.shards[maphash.String(m.seed, string(code))%memoryShards]
}

func (m *MemoryStore) InsertIfAbsent(_ context.Context, shortURL *shortener.ShortURL) (bool, error) {
	s := m.shard(shortURL.Code)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.urls[shortURL.Code]; exists {
		return false, nil
	}

	s.urls[shortURL.Code] = *shortURL

	return true, nil
}

func (m *MemoryStore) Lookup(_ context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	s := m.shard(code)

	s.mu.RLock()
	url, ok := s.urls[code]
	s.mu.RUnlock()

	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &url, nil
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	n := 0

	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.urls)
		s.mu.RUnlock()
	}

	return n
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
