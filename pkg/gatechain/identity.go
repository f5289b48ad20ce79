package gatechain

import "context"

// Principal is the authenticated identity attached to a request by an
// upstream authentication layer. The pipeline never validates credentials
// itself; it only consumes whatever identity was resolved before it ran.
type Principal struct {
	ID       string
	Username string
	Role     string
}

// DisplayName returns the identity used in request log lines.
func (p Principal) DisplayName() string {
	if p.Username != "" {
		return p.Username
	}
	return p.ID
}

type contextKey int

const principalKey contextKey = iota

// WithPrincipal returns a context carrying the authenticated principal.
// Authentication middleware calls this before the gate chain runs.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the authenticated principal from a context.
// The second return value is false for anonymous requests.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
