package ratelimit

import (
	"context"
	"time"
)

// Store keeps the request timestamps behind each sliding window.
type Store interface {
	// Record adds a request under key, drops entries older than window and
	// returns how many requests remain in it, this one included.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
