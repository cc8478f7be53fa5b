package httpx

import (
	"context"

	"github.com/hireline/hireline/pkg/jwtx"
)

type ctxKey int

const claimsKey ctxKey = iota

// WithClaims stores verified session claims in the context.
func WithClaims(ctx context.Context, claims jwtx.SessionClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the session claims placed by AuthnMiddleware.
// ok is false on unauthenticated requests.
func ClaimsFromContext(ctx context.Context) (jwtx.SessionClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(jwtx.SessionClaims)
	return claims, ok
}
