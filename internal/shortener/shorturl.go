package shortener

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a code is unknown or not a well-formed code.
	ErrNotFound = errors.New("short url not found")
	// ErrInvalidURL is returned when the long URL is empty or not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrCodeSpaceExhausted is returned when every attempt produced a colliding code.
	ErrCodeSpaceExhausted = errors.New("code space exhausted")
	// ErrGenerationUnavailable is returned when the random source fails.
	ErrGenerationUnavailable = errors.New("code generation unavailable")
)

// Code represents a short URL code.
type Code string

// ShortURL is the record stored for every created short code.
// Records are immutable once inserted.
type ShortURL struct {
	Code        Code
	OriginalURL string
	CreatedAt   time.Time
}
