package gatechain

import (
	"net"
	"net/http"
	"strings"
)

// ClientKey extracts a stable client identifier from a request.
// It prefers the first entry of the X-Forwarded-For header (the original
// client when behind a proxy or load balancer) and falls back to the
// transport peer address with the port stripped.
//
// The returned key is opaque: no IP syntax validation is performed, it is
// only used as a map key by the rate limiter. ClientKey never fails; a
// request with no resolvable address yields the empty string, which means
// all such clients share a single rate limit window.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can be a comma-separated list of IPs.
		// The first entry is the original client.
		first := xff
		if idx := strings.Index(xff, ","); idx >= 0 {
			first = xff[:idx]
		}
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
