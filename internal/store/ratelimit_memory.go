package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/serroba/url-shortener/internal/ratelimit"
)

// RateLimitMemoryStore keeps sliding-window hit logs in process memory.
// Counters are per instance, so replicas behind a load balancer each
// enforce their own budget.
type RateLimitMemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time

	// Keys idle for longer than the widest window seen are swept at most
	// once per that window.
	maxWindow time.Duration
	lastSweep time.Time
}

// NewRateLimitMemoryStore creates an empty store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		hits:      make(map[string][]time.Time),
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

// Record logs one hit for key and returns the hits inside the trailing window.
func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	s.maxWindow = max(s.maxWindow, window)
	if now.Sub(s.lastSweep) >= s.maxWindow {
		s.sweep(now)
	}

	log := s.hits[key]

	// The log is sorted, so everything before the first live hit has expired.
	live := sort.Search(len(log), func(i int) bool {
		return now.Sub(log[i]) < window
	})

	log = append(log[live:], now)
	s.hits[key] = log

	return int64(len(log)), nil
}

// Len returns the number of tracked keys.
func (s *RateLimitMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.hits)
}

func (s *RateLimitMemoryStore) sweep(now time.Time) {
	for key, log := range s.hits {
		if len(log) == 0 || now.Sub(log[len(log)-1]) >= s.maxWindow {
			delete(s.hits, key)
		}
	}

	s.lastSweep = now
}

var _ ratelimit.Store = (*RateLimitMemoryStore)(nil)
