package api

import (
	"net/http"

	"github.com/yourusername/gatechain/pkg/gatechain"
)

// Authenticator resolves the caller identity before the gate chain runs.
// It stands in for a real token-validation layer: whoever terminates
// authentication upstream (JWT validation, a session service, an ingress
// proxy) forwards the resolved identity in headers, and this middleware
// attaches it to the request context as a gatechain.Principal.
//
// Requests without identity headers stay anonymous; the gates decide what
// anonymous callers may do.
type Authenticator struct {
	userHeader string
	nameHeader string
	roleHeader string
}

// NewAuthenticator creates the identity-forwarding middleware with the
// conventional header names.
func NewAuthenticator() *Authenticator {
	return &Authenticator{
		userHeader: "X-User-Id",
		nameHeader: "X-User-Name",
		roleHeader: "X-User-Role",
	}
}

// Middleware wraps next, injecting the forwarded principal if present.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(a.userHeader)
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}

		p := gatechain.Principal{
			ID:       id,
			Username: r.Header.Get(a.nameHeader),
			Role:     r.Header.Get(a.roleHeader),
		}
		next.ServeHTTP(w, r.WithContext(gatechain.WithPrincipal(r.Context(), p)))
	})
}
