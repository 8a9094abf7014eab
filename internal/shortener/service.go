package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultMaxAttempts bounds how many candidate codes Create tries before giving up.
const DefaultMaxAttempts = 5

// Config tunes the Service. Zero values fall back to the defaults.
type Config struct {
	CodeLength  int
	MaxAttempts int
	// Reserved codes are never handed out, e.g. path segments of other routes.
	Reserved []string
}

// Service creates and resolves short URLs on top of a Repository.
// It holds no state between calls.
type Service struct {
	store       Repository
	generator   CodeGenerator
	codeLength  int
	maxAttempts int
	reserved    map[Code]struct{}
	now         func() time.Time
}

// NewService creates a shortener service.
func NewService(store Repository, generator CodeGenerator, cfg Config) *Service {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = DefaultCodeLength
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	reserved := make(map[Code]struct{}, len(cfg.Reserved))
	for _, code := range cfg.Reserved {
		reserved[Code(code)] = struct{}{}
	}

	return &Service{
		store:       store,
		generator:   generator,
		codeLength:  cfg.CodeLength,
		maxAttempts: cfg.MaxAttempts,
		reserved:    reserved,
		now:         time.Now,
	}
}

// Create validates longURL and stores it under a freshly generated code.
// Colliding or reserved candidates are retried up to the configured number of attempts.
func (s *Service) Create(ctx context.Context, longURL string) (*ShortURL, error) {
	if err := ValidateURL(longURL); err != nil {
		return nil, err
	}

	for range s.maxAttempts {
		code, err := s.generator.Generate()
		if err != nil {
			if errors.Is(err, ErrGenerationUnavailable) {
				return nil, err
			}

			return nil, fmt.Errorf("%w: %w", ErrGenerationUnavailable, err)
		}

		if _, ok := s.reserved[code]; ok {
			continue
		}

		shortURL := &ShortURL{
			Code:        code,
			OriginalURL: longURL,
			CreatedAt:   s.now().UTC(),
		}

		inserted, err := s.store.InsertIfAbsent(ctx, shortURL)
		if err != nil {
			return nil, fmt.Errorf("insert short url: %w", err)
		}

		if inserted {
			return shortURL, nil
		}
	}

	return nil, fmt.Errorf("%w: no free code after %d attempts", ErrCodeSpaceExhausted, s.maxAttempts)
}

// Resolve returns the record for code.
// Malformed codes are reported as ErrNotFound, same as unknown ones.
func (s *Service) Resolve(ctx context.Context, code string) (*ShortURL, error) {
	if !ValidCode(code, s.codeLength) {
		return nil, ErrNotFound
	}

	shortURL, err := s.store.Lookup(ctx, Code(code))
	if err != nil {
		return nil, err
	}

	return shortURL, nil
}
