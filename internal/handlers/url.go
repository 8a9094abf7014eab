package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/serroba/url-shortener/internal/replication"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// Shortener is the service behind the URL endpoints.
type Shortener interface {
	Create(ctx context.Context, longURL string) (*shortener.ShortURL, error)
	Resolve(ctx context.Context, code string) (*shortener.ShortURL, error)
}

// Config holds the deployment choices of the URL endpoints.
type Config struct {
	// BaseURL prefixes codes in returned short URLs.
	BaseURL string
	// CreateStatus is 200 or 201.
	CreateStatus int
	// RedirectStatus is 301, 302, 307 or 308.
	RedirectStatus int
}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	service        Shortener
	baseURL        string
	createStatus   int
	redirectStatus int
	publishCreated messaging.Publish[replication.ShortURLCreated]
	logger         *zap.Logger
}

// NewURLHandler creates a new URL handler. Zero statuses default to 201 and 302.
func NewURLHandler(
	service Shortener,
	cfg Config,
	publishCreated messaging.Publish[replication.ShortURLCreated],
	logger *zap.Logger,
) *URLHandler {
	if cfg.CreateStatus == 0 {
		cfg.CreateStatus = http.StatusCreated
	}

	if cfg.RedirectStatus == 0 {
		cfg.RedirectStatus = http.StatusFound
	}

	return &URLHandler{
		service:        service,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		createStatus:   cfg.CreateStatus,
		redirectStatus: cfg.RedirectStatus,
		publishCreated: publishCreated,
		logger:         logger,
	}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	shortURL, err := h.service.Create(ctx, req.Body.LongURL)
	if err != nil {
		if errors.Is(err, shortener.ErrInvalidURL) {
			return nil, huma.Error400BadRequest(err.Error())
		}

		h.logger.Error("failed to create short url", append(requestFields(ctx), zap.Error(err))...)

		return nil, huma.Error500InternalServerError("failed to create short url")
	}

	if err := h.publishCreated(ctx, replication.NewShortURLCreated(shortURL)); err != nil {
		h.logger.Error("failed to publish created short url",
			zap.String("code", string(shortURL.Code)),
			zap.Error(err),
		)
	}

	h.logger.Info("short url created",
		append(requestFields(ctx), zap.String("code", string(shortURL.Code)))...)

	fullShortURL := h.baseURL + "/" + string(shortURL.Code)

	resp := &CreateShortURLResponse{Status: h.createStatus, Location: fullShortURL}
	resp.Body.Code = string(shortURL.Code)
	resp.Body.ShortURL = fullShortURL
	resp.Body.LongURL = shortURL.OriginalURL

	return resp, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	shortURL, err := h.service.Resolve(ctx, req.Code)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		h.logger.Error("failed to resolve short url",
			append(requestFields(ctx), zap.String("code", req.Code), zap.Error(err))...)

		return nil, huma.Error500InternalServerError("failed to resolve short url")
	}

	return &RedirectResponse{Status: h.redirectStatus, Location: shortURL.OriginalURL}, nil
}

func requestFields(ctx context.Context) []zap.Field {
	meta, ok := middleware.ClientMetaFrom(ctx)
	if !ok {
		return nil
	}

	return []zap.Field{
		zap.String("request_id", meta.RequestID),
		zap.String("client_ip", meta.ClientIP),
	}
}
