// Package httpapi is the HTTP transport of the server: router, identity
// filter, authorization policy, handlers, and the JSON error mapping.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dsmirnov/bookshelf/internal/server/models"
)

type ctxKey int

const userContextKey ctxKey = iota

func withUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext returns the authenticated account attached by the identity
// filter, or (nil, false) for an anonymous request.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userContextKey).(*models.User)
	return u, ok
}

// UserFromRequest is UserFromContext over the request's context.
func UserFromRequest(r *http.Request) (*models.User, bool) {
	return UserFromContext(r.Context())
}
