package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrKindMismatch = errors.New("jwtx: token kind mismatch")
)

// HS256 signs and verifies session tokens with a single shared secret.
// Stateless: safe for concurrent use.
type HS256 struct {
	secret []byte
	issuer string
}

func NewHS256(secret []byte, issuer string) *HS256 {
	return &HS256{secret: secret, issuer: issuer}
}

// Sign turns claims into a compact signed JWT string.
func (h *HS256) Sign(claims SessionClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// Verify validates the token and returns its claims. Callers must check the
// returned error with errors.Is to distinguish an expired token (worth
// refreshing) from a forged or garbled one (not worth refreshing).
func (h *HS256) Verify(tokenStr string, kind Kind) (SessionClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	var claims SessionClaims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return SessionClaims{}, classifyParseError(err)
	}

	if h.issuer != "" && claims.Issuer != h.issuer {
		return SessionClaims{}, ErrInvalidSig
	}
	if claims.Kind != kind {
		return SessionClaims{}, ErrKindMismatch
	}

	return claims, nil
}

// Decode parses claims without any signature or expiry check. Diagnostics
// only; never use the result for access decisions.
func (h *HS256) Decode(tokenStr string) (SessionClaims, error) {
	var claims SessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return SessionClaims{}, ErrMalformed
	}
	return claims, nil
}

// classifyParseError collapses the library's error tree into our closed set
// so callers can decide whether a refresh attempt is worthwhile.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return ErrMalformed
	}
}
