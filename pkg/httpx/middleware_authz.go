package httpx

import (
	"net/http"
	"slices"
)

// Authorization error codes. A missing principal is an authentication
// problem (401); a present principal with the wrong role is 403.
const (
	CodeNotAuthenticated = "not_authenticated"
	CodeInsufficientRole = "insufficient_permissions"
)

// RequireRole allows the request through only when the authenticated
// principal holds one of the listed roles. Must run after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, CodeNotAuthenticated)
				return
			}
			if !slices.Contains(roles, claims.Role) {
				WriteError(w, http.StatusForbidden, CodeInsufficientRole)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
