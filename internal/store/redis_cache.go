package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/shortener"
)

// RedisCacheRepository wraps a Repository with a Redis read cache.
// Records never change once inserted, so cached entries need no invalidation.
type RedisCacheRepository struct {
	store  shortener.Repository
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
// A zero ttl caches entries without expiry.
func NewRedisCacheRepository(
	store shortener.Repository, client redis.UniversalClient, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "cache:shorturl:",
		ttl:    ttl,
	}
}

// InsertIfAbsent stores the record in the underlying store and, when it was
// inserted, writes it through to the cache.
func (r *RedisCacheRepository) InsertIfAbsent(ctx context.Context, shortURL *shortener.ShortURL) (bool, error) {
	inserted, err := r.store.InsertIfAbsent(ctx, shortURL)
	if err != nil || !inserted {
		return inserted, err
	}

	r.cacheURL(ctx, shortURL)

	return true, nil
}

// Lookup checks the cache first and falls back to the underlying store.
func (r *RedisCacheRepository) Lookup(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	if url, err := r.getFromCache(ctx, code); err == nil {
		return url, nil
	}

	url, err := r.store.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheURL(ctx, url)

	return url, nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	return shortURLFromHash(result), nil
}

// cacheURL is best effort; a failed write only costs a later cache miss.
func (r *RedisCacheRepository) cacheURL(ctx context.Context, url *shortener.ShortURL) {
	pipe := r.client.TxPipeline()
	key := r.prefix + string(url.Code)

	pipe.HSet(ctx, key, map[string]interface{}{
		"code":         string(url.Code),
		"original_url": url.OriginalURL,
		"created_at":   url.CreatedAt.UnixNano(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	_, _ = pipe.Exec(ctx)
}

// Shutdown is a no-op for RedisCacheRepository (client managed externally).
func (r *RedisCacheRepository) Shutdown() error {
	return nil
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
