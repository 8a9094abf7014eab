package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/serroba/url-shortener/internal/ratelimit"
	"github.com/serroba/url-shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testUserAgent = "TestAgent/1.0"

type failingRateStore struct{}

func (failingRateStore) Record(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func setupLimitedAPI(t *testing.T, rateStore ratelimit.Store, policy *ratelimit.Policy) *chi.Mux {
	t.Helper()

	router := chi.NewMux()
	router.Use(chimw.RealIP)

	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.PolicyRateLimiter(api, ratelimit.NewPolicyLimiter(rateStore, policy), zap.NewNop()))

	ok := func(_ context.Context, _ *struct{}) (*testOutput, error) {
		return &testOutput{}, nil
	}

	huma.Register(api, huma.Operation{
		OperationID: "create",
		Method:      http.MethodPost,
		Path:        "/create",
		Metadata:    ratelimit.Metadata(ratelimit.EndpointConfig{Scope: ratelimit.ScopeCreate}),
	}, ok)
	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/r",
		Metadata:    ratelimit.Metadata(ratelimit.EndpointConfig{Scope: ratelimit.ScopeRedirect}),
	}, ok)
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Metadata:    ratelimit.Metadata(ratelimit.EndpointConfig{Disabled: true}),
	}, ok)

	return router
}

func doRequest(router http.Handler, method, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("User-Agent", testUserAgent)
	req.Header.Set("X-Real-IP", ip)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func createOnlyPolicy(limit int64) *ratelimit.Policy {
	return &ratelimit.Policy{
		Limits: map[ratelimit.Scope][]ratelimit.LimitConfig{
			ratelimit.ScopeCreate: {{Max: limit, Window: time.Minute}},
		},
	}
}

func TestPolicyRateLimiter(t *testing.T) {
	t.Run("allows request when under limit", func(t *testing.T) {
		router := setupLimitedAPI(t, store.NewRateLimitMemoryStore(), createOnlyPolicy(2))

		w := doRequest(router, http.MethodPost, "/create", "10.0.0.1")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("returns 429 with details once the limit is exceeded", func(t *testing.T) {
		router := setupLimitedAPI(t, store.NewRateLimitMemoryStore(), createOnlyPolicy(1))

		_ = doRequest(router, http.MethodPost, "/create", "10.0.0.1")
		w := doRequest(router, http.MethodPost, "/create", "10.0.0.1")

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "create scope, 2/1 requests in 1m0s")
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		router := setupLimitedAPI(t, store.NewRateLimitMemoryStore(), createOnlyPolicy(1))

		_ = doRequest(router, http.MethodPost, "/create", "10.0.0.1")
		w := doRequest(router, http.MethodPost, "/create", "10.0.0.2")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("redirect budget is separate from create budget", func(t *testing.T) {
		router := setupLimitedAPI(t, store.NewRateLimitMemoryStore(), createOnlyPolicy(1))

		_ = doRequest(router, http.MethodPost, "/create", "10.0.0.1")

		for range 5 {
			w := doRequest(router, http.MethodGet, "/r", "10.0.0.1")
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("global scope covers every operation", func(t *testing.T) {
		policy := &ratelimit.Policy{
			Limits: map[ratelimit.Scope][]ratelimit.LimitConfig{
				ratelimit.ScopeGlobal: {{Max: 2, Window: time.Minute}},
			},
		}
		router := setupLimitedAPI(t, store.NewRateLimitMemoryStore(), policy)

		_ = doRequest(router, http.MethodPost, "/create", "10.0.0.1")
		_ = doRequest(router, http.MethodGet, "/r", "10.0.0.1")
		w := doRequest(router, http.MethodGet, "/r", "10.0.0.1")

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("skips rate limiting when disabled via metadata", func(t *testing.T) {
		router := setupLimitedAPI(t, failingRateStore{}, ratelimit.DefaultPolicy(1))

		w := doRequest(router, http.MethodGet, "/health", "10.0.0.1")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("returns 500 on store error", func(t *testing.T) {
		router := setupLimitedAPI(t, failingRateStore{}, ratelimit.DefaultPolicy(1))

		w := doRequest(router, http.MethodPost, "/create", "10.0.0.1")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
