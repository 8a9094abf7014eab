package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/url-shortener/internal/handlers"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/replication"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBaseURL = "http://localhost:8080"

type createBody struct {
	Code     string `json:"code"`
	ShortURL string `json:"short_url"`
	LongURL  string `json:"long_url"`
}

// failingShortener fails every call with err.
type failingShortener struct {
	err error
}

func (f failingShortener) Create(context.Context, string) (*shortener.ShortURL, error) {
	return nil, f.err
}

func (f failingShortener) Resolve(context.Context, string) (*shortener.ShortURL, error) {
	return nil, f.err
}

func newService(t *testing.T) *shortener.Service {
	t.Helper()

	gen, err := shortener.NewNanoidGenerator(shortener.DefaultCodeLength)
	require.NoError(t, err)

	return shortener.NewService(store.NewMemoryStore(), gen, shortener.Config{})
}

func newRouter(
	t *testing.T,
	service handlers.Shortener,
	cfg handlers.Config,
	publish messaging.Publish[replication.ShortURLCreated],
) *chi.Mux {
	t.Helper()

	handlers.UseBadRequestForValidation()

	if cfg.BaseURL == "" {
		cfg.BaseURL = testBaseURL
	}

	if publish == nil {
		publish = messaging.NopPublish[replication.ShortURLCreated]()
	}

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	handlers.RegisterRoutes(api, handlers.NewURLHandler(service, cfg, publish, zap.NewNop()))

	return router
}

func postCreate(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/create", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	return w
}

func decodeCreate(t *testing.T, w *httptest.ResponseRecorder) createBody {
	t.Helper()

	var body createBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

func TestCreateShortURL(t *testing.T) {
	t.Run("creates short url with 201 and location", func(t *testing.T) {
		router := newRouter(t, newService(t), handlers.Config{}, nil)

		w := postCreate(router, `{"long_url":"https://example.com/very/long/path"}`)

		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeCreate(t, w)
		assert.Len(t, body.Code, shortener.DefaultCodeLength)
		assert.True(t, shortener.ValidCode(body.Code, shortener.DefaultCodeLength))
		assert.Equal(t, testBaseURL+"/"+body.Code, body.ShortURL)
		assert.Equal(t, "https://example.com/very/long/path", body.LongURL)
		assert.Equal(t, body.ShortURL, w.Header().Get("Location"))
	})

	t.Run("create status is configurable", func(t *testing.T) {
		router := newRouter(t, newService(t), handlers.Config{CreateStatus: http.StatusOK}, nil)

		w := postCreate(router, `{"long_url":"https://example.com"}`)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("trailing slash on base url is ignored", func(t *testing.T) {
		router := newRouter(t, newService(t), handlers.Config{BaseURL: "https://sho.rt/"}, nil)

		body := decodeCreate(t, postCreate(router, `{"long_url":"https://example.com"}`))

		assert.Equal(t, "https://sho.rt/"+body.Code, body.ShortURL)
	})

	t.Run("same url twice yields distinct codes", func(t *testing.T) {
		router := newRouter(t, newService(t), handlers.Config{}, nil)

		first := decodeCreate(t, postCreate(router, `{"long_url":"https://example.com"}`))
		second := decodeCreate(t, postCreate(router, `{"long_url":"https://example.com"}`))

		assert.NotEqual(t, first.Code, second.Code)
	})

	t.Run("invalid urls return 400", func(t *testing.T) {
		router := newRouter(t, newService(t), handlers.Config{}, nil)

		for _, body := range []string{
			`{"long_url":""}`,
			`{"long_url":"not-a-url"}`,
			`{"long_url":"ftp://example.com/file"}`,
			`{"long_url":"https://"}`,
		} {
			w := postCreate(router, body)

			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}
	})

	t.Run("missing field returns 400", func(t *testing.T) {
		router := newRouter(t, newService(t), handlers.Config{}, nil)

		w := postCreate(router, `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		router := newRouter(t, newService(t), handlers.Config{}, nil)

		w := postCreate(router, `{"long_url":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service failure returns 500", func(t *testing.T) {
		router := newRouter(t, failingShortener{err: shortener.ErrCodeSpaceExhausted}, handlers.Config{}, nil)

		w := postCreate(router, `{"long_url":"https://example.com"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("publishes the created record", func(t *testing.T) {
		var published []*replication.ShortURLCreated

		publish := func(_ context.Context, event *replication.ShortURLCreated) error {
			published = append(published, event)

			return nil
		}
		router := newRouter(t, newService(t), handlers.Config{}, publish)

		body := decodeCreate(t, postCreate(router, `{"long_url":"https://example.com"}`))

		require.Len(t, published, 1)
		assert.Equal(t, body.Code, published[0].Code)
		assert.Equal(t, "https://example.com", published[0].OriginalURL)
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		publish := func(context.Context, *replication.ShortURLCreated) error {
			return errors.New("broker down")
		}
		router := newRouter(t, newService(t), handlers.Config{}, publish)

		w := postCreate(router, `{"long_url":"https://example.com"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestRedirectToURL(t *testing.T) {
	t.Run("redirects created code with 302", func(t *testing.T) {
		router := newRouter(t, newService(t), handlers.Config{}, nil)
		created := decodeCreate(t, postCreate(router, `{"long_url":"https://echo.labstack.com/docs/request"}`))

		w := get(router, "/"+created.Code)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://echo.labstack.com/docs/request", w.Header().Get("Location"))
	})

	t.Run("redirect status is configurable", func(t *testing.T) {
		router := newRouter(t, newService(t), handlers.Config{RedirectStatus: http.StatusMovedPermanently}, nil)
		created := decodeCreate(t, postCreate(router, `{"long_url":"https://example.com"}`))

		w := get(router, "/"+created.Code)

		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, "https://example.com", w.Header().Get("Location"))
	})

	t.Run("repeated redirects are stable", func(t *testing.T) {
		router := newRouter(t, newService(t), handlers.Config{}, nil)
		created := decodeCreate(t, postCreate(router, `{"long_url":"https://example.com/a?b=c"}`))

		for range 3 {
			w := get(router, "/"+created.Code)

			assert.Equal(t, "https://example.com/a?b=c", w.Header().Get("Location"))
		}
	})

	t.Run("unknown code returns 404", func(t *testing.T) {
		router := newRouter(t, newService(t), handlers.Config{}, nil)

		w := get(router, "/zzzzzzz")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, w.Header().Get("Location"))
	})

	t.Run("malformed code returns 404", func(t *testing.T) {
		router := newRouter(t, newService(t), handlers.Config{}, nil)

		for _, path := range []string{"/ab$$$$$", "/short", "/waytoolongcode"} {
			w := get(router, path)

			assert.Equal(t, http.StatusNotFound, w.Code, path)
		}
	})

	t.Run("store failure returns 500", func(t *testing.T) {
		router := newRouter(t, failingShortener{err: errors.New("store down")}, handlers.Config{}, nil)

		w := get(router, "/abc1234")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
