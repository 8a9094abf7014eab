package store_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShortURL(code, url string) *shortener.ShortURL {
	return &shortener.ShortURL{
		Code:        shortener.Code(code),
		OriginalURL: url,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestMemoryStore_InsertIfAbsent(t *testing.T) {
	t.Run("inserts new code", func(t *testing.T) {
		s := store.NewMemoryStore()

		inserted, err := s.InsertIfAbsent(context.Background(), newShortURL("abc1234", "https://example.com"))

		require.NoError(t, err)
		assert.True(t, inserted)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("keeps existing record on collision", func(t *testing.T) {
		s := store.NewMemoryStore()
		ctx := context.Background()
		_, _ = s.InsertIfAbsent(ctx, newShortURL("abc1234", "https://example.com"))

		inserted, err := s.InsertIfAbsent(ctx, newShortURL("abc1234", "https://other.com"))
		require.NoError(t, err)
		assert.False(t, inserted)

		got, err := s.Lookup(ctx, "abc1234")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", got.OriginalURL)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("concurrent inserts of one code have a single winner", func(t *testing.T) {
		s := store.NewMemoryStore()

		assertSingleWinner(t, s)
		assert.Equal(t, 1, s.Len())
	})
}

// assertSingleWinner races 50 inserts of one code and expects exactly one
// to succeed, with the winner's record left in the store.
func assertSingleWinner(t *testing.T, repo shortener.Repository) {
	t.Helper()

	ctx := context.Background()

	var (
		wg     sync.WaitGroup
		wins   atomic.Int32
		mu     sync.Mutex
		winner string
		errs   []error
	)

	for i := range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			url := fmt.Sprintf("https://example.com/%d", i)

			inserted, err := repo.InsertIfAbsent(ctx, newShortURL("race123", url))
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()

				return
			}

			if inserted {
				wins.Add(1)

				mu.Lock()
				winner = url
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	require.Empty(t, errs)
	assert.Equal(t, int32(1), wins.Load())

	got, err := repo.Lookup(ctx, "race123")
	require.NoError(t, err)
	assert.Equal(t, winner, got.OriginalURL)
}

func TestMemoryStore_Lookup(t *testing.T) {
	t.Run("returns record when found", func(t *testing.T) {
		s := store.NewMemoryStore()
		want := newShortURL("abc1234", "https://example.com")
		_, _ = s.InsertIfAbsent(context.Background(), want)

		got, err := s.Lookup(context.Background(), "abc1234")

		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("returns ErrNotFound when code does not exist", func(t *testing.T) {
		s := store.NewMemoryStore()

		got, err := s.Lookup(context.Background(), "missing")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		s := store.NewMemoryStore()
		ctx := context.Background()
		_, _ = s.InsertIfAbsent(ctx, newShortURL("abc1234", "https://example.com"))

		got, _ := s.Lookup(ctx, "abc1234")
		got.OriginalURL = "https://mutated.com"

		again, _ := s.Lookup(ctx, "abc1234")
		assert.Equal(t, "https://example.com", again.OriginalURL)
	})
}
