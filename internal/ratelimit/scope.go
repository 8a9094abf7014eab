package ratelimit

import "github.com/danielgtaylor/huma/v2"

// Scope groups operations that share a rate limit budget.
type Scope string

const (
	// ScopeGlobal applies to every rate limited request.
	ScopeGlobal Scope = "global"
	// ScopeCreate applies to short URL creation.
	ScopeCreate Scope = "create"
	// ScopeRedirect applies to code resolution.
	ScopeRedirect Scope = "redirect"
)

// MetadataKey is the huma operation metadata key holding an EndpointConfig.
const MetadataKey = "rateLimit"

// EndpointConfig is attached to huma operations through Metadata.
// Operations without one only count against ScopeGlobal.
type EndpointConfig struct {
	Scope Scope
	// Disabled exempts the operation, e.g. health probes.
	Disabled bool
}

// Metadata returns operation metadata carrying cfg.
func Metadata(cfg EndpointConfig) map[string]any {
	return map[string]any{MetadataKey: cfg}
}

// GetEndpointConfig extracts the EndpointConfig from operation metadata, if present.
func GetEndpointConfig(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}

// ResolveScopes returns the scopes a request counts against.
func ResolveScopes(ctx huma.Context) []Scope {
	cfg := GetEndpointConfig(ctx)
	if cfg == nil || cfg.Scope == "" || cfg.Scope == ScopeGlobal {
		return []Scope{ScopeGlobal}
	}

	return []Scope{ScopeGlobal, cfg.Scope}
}
