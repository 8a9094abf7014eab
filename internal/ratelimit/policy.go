package ratelimit

import "time"

// LimitConfig caps a client to Max requests per sliding Window.
type LimitConfig struct {
	Max    int64
	Window time.Duration
}

// Policy maps each scope to the limits enforced on it.
// A request must satisfy every limit of every scope it falls into.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// DefaultPolicy derives a policy from the per-minute create budget of one client.
// Redirects are cheap reads and get ten times the create budget.
func DefaultPolicy(createPerMinute int64) *Policy {
	redirectPerMinute := createPerMinute * 10

	return &Policy{
		Limits: map[Scope][]LimitConfig{
			ScopeGlobal: {
				{Max: redirectPerMinute + createPerMinute, Window: time.Minute},
			},
			ScopeCreate: {
				{Max: createPerMinute, Window: time.Minute},
				{Max: max(createPerMinute/6, 1), Window: 10 * time.Second},
			},
			ScopeRedirect: {
				{Max: redirectPerMinute, Window: time.Minute},
			},
		},
	}
}
