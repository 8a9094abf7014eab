package shortener

import "context"

// Repository is the mapping store that owns every ShortURL record.
type Repository interface {
	// InsertIfAbsent stores shortURL only when its code is unused.
	// It reports false, without touching the store, when the code already exists.
	// Two concurrent calls for the same code never both report true.
	InsertIfAbsent(ctx context.Context, shortURL *ShortURL) (bool, error)

	// Lookup returns the record for code or ErrNotFound.
	Lookup(ctx context.Context, code Code) (*ShortURL, error)
}
