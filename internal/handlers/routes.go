package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/ratelimit"
)

// ReservedCodes are single path segments served by routes other than the
// redirect. A short code equal to one of them could never be resolved.
var ReservedCodes = []string{"create", "health", "docs", "schemas", "openapi"}

// RegisterRoutes registers the create and redirect operations.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/create",
		Summary:       "Create short URL",
		Description:   "Stores the long URL under a freshly generated short code.",
		Tags:          []string{"URLs"},
		DefaultStatus: urlHandler.createStatus,
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
		Metadata:      ratelimit.Metadata(ratelimit.EndpointConfig{Scope: ratelimit.ScopeCreate}),
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID:   "redirect-short-url",
		Method:        http.MethodGet,
		Path:          "/{code}",
		Summary:       "Redirect to original URL",
		Description:   "Redirects to the original URL associated with the short code.",
		Tags:          []string{"URLs"},
		DefaultStatus: urlHandler.redirectStatus,
		Errors:        []int{http.StatusNotFound, http.StatusInternalServerError},
		Metadata:      ratelimit.Metadata(ratelimit.EndpointConfig{Scope: ratelimit.ScopeRedirect}),
	}, urlHandler.RedirectToURL)
}
