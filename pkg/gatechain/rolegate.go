package gatechain

import (
	"net/http"
	"strings"
)

// AccessPolicy declares which resources require an elevated role.
// A request is protected when its path starts with one of ProtectedPrefixes,
// OR when its method is a write method and the path contains one of
// WriteMarkers. The two predicates are evaluated independently; neither
// narrows the other.
type AccessPolicy struct {
	ProtectedPrefixes []string
	WriteMarkers      []string
	AllowedRoles      []string
}

// RoleAccessGate requires authentication and a sufficient role for protected
// resources. It holds no per-request state; the policy is immutable after
// construction.
type RoleAccessGate struct {
	prefixes []string
	markers  []string
	roles    map[string]struct{}
}

var writeMethods = map[string]struct{}{
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// NewRoleAccessGate creates a gate from the given policy.
func NewRoleAccessGate(policy AccessPolicy) *RoleAccessGate {
	roles := make(map[string]struct{}, len(policy.AllowedRoles))
	for _, role := range policy.AllowedRoles {
		// An empty role never satisfies a role requirement, so it can never
		// be part of the allowed set either.
		if role != "" {
			roles[role] = struct{}{}
		}
	}
	return &RoleAccessGate{
		prefixes: policy.ProtectedPrefixes,
		markers:  policy.WriteMarkers,
		roles:    roles,
	}
}

// Name implements Gate.
func (g *RoleAccessGate) Name() string { return "role_access" }

// Check implements Gate.
func (g *RoleAccessGate) Check(r *http.Request) Decision {
	if !g.protected(r) {
		return Allow()
	}

	p, ok := PrincipalFrom(r.Context())
	if !ok {
		return RejectJSON(http.StatusUnauthorized, map[string]interface{}{
			"error": "Authentication required to access this resource.",
		})
	}

	if _, sufficient := g.roles[p.Role]; !sufficient {
		return RejectJSON(http.StatusForbidden, map[string]interface{}{
			"error": "Access denied. Admin or moderator role required.",
		})
	}
	return Allow()
}

// protected reports whether the request needs a role check.
func (g *RoleAccessGate) protected(r *http.Request) bool {
	for _, prefix := range g.prefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	if _, write := writeMethods[r.Method]; write {
		for _, m := range g.markers {
			if strings.Contains(r.URL.Path, m) {
				return true
			}
		}
	}
	return false
}
