package middleware

import (
	"context"
	"net"

	"github.com/danielgtaylor/huma/v2"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// ClientMeta describes the caller of a request.
type ClientMeta struct {
	RequestID string
	ClientIP  string
	UserAgent string
	Referrer  string
}

type clientMetaKey struct{}

// WithClientMeta returns a copy of ctx carrying meta.
func WithClientMeta(ctx context.Context, meta ClientMeta) context.Context {
	return context.WithValue(ctx, clientMetaKey{}, meta)
}

// ClientMetaFrom returns the ClientMeta stored by RequestMeta, if any.
func ClientMetaFrom(ctx context.Context) (ClientMeta, bool) {
	meta, ok := ctx.Value(clientMetaKey{}).(ClientMeta)

	return meta, ok
}

// RequestMeta is a middleware that adds the request id, client IP, user-agent
// and referrer to the request context.
// It expects chi's RequestID and RealIP middlewares to run first.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := ClientMeta{
			RequestID: chimw.GetReqID(ctx.Context()),
			ClientIP:  clientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		next(huma.WithContext(ctx, WithClientMeta(ctx.Context(), meta)))
	}
}

// clientIP strips the port from the remote address, which RealIP has
// already replaced with X-Forwarded-For or X-Real-IP when present.
func clientIP(ctx huma.Context) string {
	addr := ctx.RemoteAddr()

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return host
}
