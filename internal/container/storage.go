package container

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/handlers"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"go.uber.org/zap"
)

const connectTimeout = 5 * time.Second

// Redis owns the shared Redis client.
type Redis struct {
	Client *redis.Client
}

// Shutdown closes the client.
func (r *Redis) Shutdown() error {
	return r.Client.Close()
}

// Postgres owns the PostgreSQL connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

// Shutdown closes the pool.
func (p *Postgres) Shutdown() error {
	p.Pool.Close()

	return nil
}

// SQLite owns the SQLite database handle.
type SQLite struct {
	DB *sql.DB
}

// Shutdown closes the database.
func (s *SQLite) Shutdown() error {
	return s.DB.Close()
}

// RedisPackage provides *Redis. The client connects lazily.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)

		return &Redis{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// PostgresPackage provides *Postgres, failing when the database is unreachable.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("postgres: %w", err)
		}

		return &Postgres{Pool: pool}, nil
	})
}

// SQLitePackage provides *SQLite.
func SQLitePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*SQLite, error) {
		opts := do.MustInvoke[*Options](i)

		db, err := store.OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}

		return &SQLite{DB: db}, nil
	})
}

// RepositoryPackage provides the shortener.Repository selected by Options.Backend.
// SQL backends are migrated on first use and optionally fronted by a Redis cache.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		repo, err := newRepository(i, opts)
		if err != nil {
			return nil, err
		}

		logger.Info("storage ready", zap.String("backend", opts.Backend))

		if !opts.cachesInRedis() {
			return repo, nil
		}

		redisConn, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		ttl := time.Duration(opts.CacheTTL) * time.Second
		logger.Info("redis read cache enabled", zap.Duration("ttl", ttl))

		return store.NewRedisCacheRepository(repo, redisConn.Client, ttl), nil
	})
}

func newRepository(i *do.Injector, opts *Options) (shortener.Repository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch opts.Backend {
	case BackendRedis:
		redisConn, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		return store.NewRedisStore(redisConn.Client), nil
	case BackendPostgres:
		pg, err := do.Invoke[*Postgres](i)
		if err != nil {
			return nil, err
		}

		repo := store.NewPostgresStore(pg.Pool)
		if err := repo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}

		return repo, nil
	case BackendSQLite:
		lite, err := do.Invoke[*SQLite](i)
		if err != nil {
			return nil, err
		}

		repo := store.NewSQLiteStore(lite.DB)
		if err := repo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}

		return repo, nil
	case BackendMemory:
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Backend)
	}
}

// ShortenerPackage provides the *shortener.Service.
func ShortenerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)
		repo := do.MustInvoke[shortener.Repository](i)

		gen, err := shortener.NewNanoidGenerator(opts.CodeLength)
		if err != nil {
			return nil, err
		}

		return shortener.NewService(repo, gen, shortener.Config{
			CodeLength:  opts.CodeLength,
			MaxAttempts: opts.MaxAttempts,
			Reserved:    handlers.ReservedCodes,
		}), nil
	})
}
