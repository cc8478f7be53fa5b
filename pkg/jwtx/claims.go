// Package jwtx implements the signed session tokens used by the platform
// and verification of third-party identity tokens.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Deliberately long-lived: the platform favours staying
// signed in over short sessions, and the client silently refreshes anyway.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 7 * 24 * time.Hour

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	// Must always exceed the access TTL so a refresh is worth attempting.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// Kind distinguishes the two token classes in a pair. Endpoints reject a
// token presented with the wrong kind.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// SessionClaims are the claims embedded in both tokens of a session pair.
// The two tokens share an identical shape; only kind and expiry differ.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user.
	Email string `json:"email"`

	// Role is the user's role at issue time. The refresh endpoint re-reads
	// the current role from the store rather than trusting this value.
	Role string `json:"role"`

	// Kind marks the token as access or refresh class.
	Kind Kind `json:"kind"`
}

// NewSessionClaims builds claims for one token of a pair.
func NewSessionClaims(userID, email, role string, kind Kind, ttl time.Duration, issuer string, now time.Time) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Role:  role,
		Kind:  kind,
	}
}
