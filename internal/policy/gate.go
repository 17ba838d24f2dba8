// Package policy is the authorization gate wrapping mutating routes. It
// answers 401 for missing principals and 403 naming the missing role or
// permission; services below it only ever see booleans and errors.
package policy

import (
	"context"
	"net/http"

	"github.com/motelworks/motel-manager/internal/auth"
	"github.com/motelworks/motel-manager/internal/httpx"
	"github.com/motelworks/motel-manager/internal/rbac"
)

// Gate delegates every check to the RBAC authority live, so role and
// permission mutations are visible on the next request.
type Gate struct {
	RBAC *rbac.Service
}

func NewGate(r *rbac.Service) *Gate { return &Gate{RBAC: r} }

// IsAuthenticated reports whether the request context carries a principal.
func (g *Gate) IsAuthenticated(ctx context.Context) bool {
	_, ok := auth.UserIDFromContext(ctx)
	return ok
}

// HasRole checks the current principal against a role name.
func (g *Gate) HasRole(ctx context.Context, name string) bool {
	uid, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return false
	}
	held, err := g.RBAC.HasRole(ctx, uid, name)
	return err == nil && held
}

// HasPermission checks the current principal against a permission name.
func (g *Gate) HasPermission(ctx context.Context, name string) bool {
	uid, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return false
	}
	held, err := g.RBAC.HasPermission(ctx, uid, name)
	return err == nil && held
}

// RequireRole blocks the request unless the principal holds any of the
// given roles.
func (g *Gate) RequireRole(names ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			held, err := g.RBAC.HasAnyRole(r.Context(), uid, names)
			if err != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
				return
			}
			if !held {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", map[string]any{"missing_role": names})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission blocks the request unless any of the principal's roles
// grants the permission.
func (g *Gate) RequirePermission(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			held, err := g.RBAC.HasPermission(r.Context(), uid, name)
			if err != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
				return
			}
			if !held {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", map[string]string{"missing_permission": name})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
