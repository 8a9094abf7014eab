package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/shortener"
)

// insertIfAbsentScript writes the whole record in one step, so readers never
// see a hash with only some of its fields.
var insertIfAbsentScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], "code", ARGV[1], "original_url", ARGV[2], "created_at", ARGV[3])
return 1
`)

// RedisStore is a Redis implementation of shortener.Repository.
// Each record is a hash stored under prefix+code.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a new Redis-backed URL store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "shorturl:",
	}
}

func (r *RedisStore) InsertIfAbsent(ctx context.Context, shortURL *shortener.ShortURL) (bool, error) {
	inserted, err := insertIfAbsentScript.Run(ctx, r.client,
		[]string{r.prefix + string(shortURL.Code)},
		string(shortURL.Code),
		shortURL.OriginalURL,
		shortURL.CreatedAt.UnixNano(),
	).Int()
	if err != nil {
		return false, err
	}

	return inserted == 1, nil
}

func (r *RedisStore) Lookup(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, shortener.ErrNotFound
	}

	return shortURLFromHash(fields), nil
}

func shortURLFromHash(fields map[string]string) *shortener.ShortURL {
	var createdAt time.Time

	if ts, ok := fields["created_at"]; ok {
		if nanos, err := strconv.ParseInt(ts, 10, 64); err == nil {
			createdAt = time.Unix(0, nanos).UTC()
		}
	}

	return &shortener.ShortURL{
		Code:        shortener.Code(fields["code"]),
		OriginalURL: fields["original_url"],
		CreatedAt:   createdAt,
	}
}

// Compile-time check.
var _ shortener.Repository = (*RedisStore)(nil)
