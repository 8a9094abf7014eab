package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	// Registers the "sqlite3" driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/serroba/url-shortener/internal/shortener"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS short_urls (
		code         TEXT PRIMARY KEY,
		original_url TEXT NOT NULL,
		created_at   INTEGER NOT NULL
	)
`

// SQLiteStore is a SQLite implementation of shortener.Repository.
// created_at is stored as unix nanoseconds.
type SQLiteStore struct {
	db *sql.DB
}

// sqliteFileParams puts file databases in WAL mode so readers never wait on
// each other or on the writer, and makes writers wait for the lock instead of
// failing with SQLITE_BUSY.
const sqliteFileParams = "_journal_mode=WAL&_busy_timeout=5000"

// OpenSQLite opens the database at path. Use ":memory:" for a private in-memory database.
func OpenSQLite(path string) (*sql.DB, error) {
	if isSQLiteMemory(path) {
		db, err := sql.Open("sqlite3", path)
		if err != nil {
			return nil, err
		}

		// Every connection to ":memory:" is a separate empty database.
		db.SetMaxOpenConns(1)

		return db, nil
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	return sql.Open("sqlite3", path+sep+sqliteFileParams)
}

func isSQLiteMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// NewSQLiteStore creates a new SQLite-backed URL store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Migrate creates the short_urls table when it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchema)

	return err
}

func (s *SQLiteStore) InsertIfAbsent(ctx context.Context, shortURL *shortener.ShortURL) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO short_urls (code, original_url, created_at) VALUES (?, ?, ?)`,
		string(shortURL.Code),
		shortURL.OriginalURL,
		shortURL.CreatedAt.UnixNano(),
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (s *SQLiteStore) Lookup(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	var (
		url   shortener.ShortURL
		nanos int64
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT code, original_url, created_at FROM short_urls WHERE code = ?`,
		string(code),
	).Scan(&url.Code, &url.OriginalURL, &nanos)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	url.CreatedAt = time.Unix(0, nanos).UTC()

	return &url, nil
}

// Compile-time check.
var _ shortener.Repository = (*SQLiteStore)(nil)
