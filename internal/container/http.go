package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/handlers"
	"github.com/serroba/url-shortener/internal/health"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/serroba/url-shortener/internal/ratelimit"
	"github.com/serroba/url-shortener/internal/replication"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"go.uber.org/zap"
)

// RateLimitPackage provides the *ratelimit.PolicyLimiter, or nil when
// rate limiting is disabled. Counters live in Redis whenever the service
// already talks to Redis so that replicas share them.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.RateLimit == 0 {
			return nil, nil
		}

		policy := ratelimit.DefaultPolicy(int64(opts.RateLimit))

		if !opts.UsesRedis() {
			return ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), policy), nil
		}

		redisConn, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		return ratelimit.NewPolicyLimiter(store.NewRateLimitRedisStore(redisConn.Client), policy), nil
	})
}

// HTTPPackage provides the *chi.Mux and the huma.API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*chi.Mux, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		router := chi.NewMux()
		router.Use(
			chimiddleware.RequestID,
			chimiddleware.RealIP,
			chimiddleware.CleanPath,
			chimiddleware.Recoverer,
			middleware.AccessLog(logger),
			cors.Handler(cors.Options{
				AllowedOrigins: opts.AllowedOrigins(),
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				ExposedHeaders: []string{"Location", "Retry-After"},
				MaxAge:         300,
			}),
		)

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		service, err := do.Invoke[*shortener.Service](i)
		if err != nil {
			return nil, err
		}

		limiter, err := do.Invoke[*ratelimit.PolicyLimiter](i)
		if err != nil {
			return nil, err
		}

		publishers, err := do.Invoke[*messaging.PublisherGroup](i)
		if err != nil {
			return nil, err
		}

		checkers, err := healthCheckers(i, opts)
		if err != nil {
			return nil, err
		}

		handlers.UseBadRequestForValidation()

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))

		if limiter != nil {
			api.UseMiddleware(middleware.PolicyRateLimiter(api, limiter, logger))
		}

		urlHandler := handlers.NewURLHandler(
			service,
			handlers.Config{
				BaseURL:        opts.PublicBaseURL(),
				CreateStatus:   opts.CreateStatus,
				RedirectStatus: opts.RedirectStatus,
			},
			replication.NewPublisher(publishers),
			logger,
		)

		health.RegisterRoutes(api, health.NewHandler(checkers))
		handlers.RegisterRoutes(api, urlHandler)

		return api, nil
	})
}

func healthCheckers(i *do.Injector, opts *Options) (map[string]health.Checker, error) {
	checkers := make(map[string]health.Checker)

	if opts.UsesRedis() {
		redisConn, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		checkers["redis"] = health.NewRedisChecker(redisConn.Client)
	}

	switch opts.Backend {
	case BackendPostgres:
		pg, err := do.Invoke[*Postgres](i)
		if err != nil {
			return nil, err
		}

		checkers["postgres"] = health.CheckerFunc(pg.Pool.Ping)
	case BackendSQLite:
		lite, err := do.Invoke[*SQLite](i)
		if err != nil {
			return nil, err
		}

		checkers["sqlite"] = health.CheckerFunc(lite.DB.PingContext)
	}

	return checkers, nil
}
