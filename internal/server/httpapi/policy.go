package httpapi

import (
	"net/http"
	"strings"
)

// access is what a route demands from the caller.
type access int

const (
	accessPublic access = iota
	accessAuthenticated
	accessAdmin
)

// rule matches requests by method and path prefix. An empty method matches
// any method.
type rule struct {
	method string
	prefix string
	access access
}

// defaultPolicy is evaluated top-down, first match wins; anything unmatched
// requires authentication. More specific prefixes must precede the broader
// ones they overlap with.
var defaultPolicy = []rule{
	{http.MethodPost, "/api/v1/auth/", accessPublic},
	{http.MethodGet, "/health", accessPublic},
	{http.MethodGet, "/metrics", accessPublic},
	{http.MethodPost, "/api/v1/books/", accessAdmin},
	{http.MethodGet, "/api/v1/books", accessPublic},
	{http.MethodPost, "/api/v1/ratings", accessAuthenticated},
	{"", "/api/v1/private/", accessAuthenticated},
}

func requiredAccess(rules []rule, method, path string) access {
	for _, r := range rules {
		if r.method != "" && r.method != method {
			continue
		}
		if strings.HasPrefix(path, r.prefix) {
			return r.access
		}
	}
	return accessAuthenticated
}

// Policy enforces the route access rules. It runs after the identity filter
// and is the only place that turns a missing or insufficient identity into a
// response: 401 for anonymous callers on protected routes, 403 for
// authenticated callers lacking the required role.
func Policy(rules []rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, authenticated := UserFromRequest(r)

			switch requiredAccess(rules, r.Method, r.URL.Path) {
			case accessPublic:
			case accessAuthenticated:
				if !authenticated {
					writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
					return
				}
			case accessAdmin:
				if !authenticated {
					writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
					return
				}
				if !user.IsAdmin() {
					writeJSON(w, http.StatusForbidden, errorResponse{Error: "Forbidden"})
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// DefaultPolicy wires the standard route table.
func DefaultPolicy() func(http.Handler) http.Handler {
	return Policy(defaultPolicy)
}
