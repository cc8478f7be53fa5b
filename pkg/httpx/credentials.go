package httpx

import (
	"net/http"
	"strings"
)

// AccessTokenCookie is the cookie the browser client stores the access
// token in when cookie transport is used.
const AccessTokenCookie = "accessToken"

// CredentialSource locates a session token in an incoming request. Absence
// is not an error at this layer; sources return "" and let the
// authentication middleware decide.
type CredentialSource interface {
	Extract(r *http.Request) string
}

// BearerHeaderSource reads "Authorization: Bearer <token>".
type BearerHeaderSource struct{}

func (BearerHeaderSource) Extract(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// CookieSource reads a token from a named cookie.
type CookieSource struct {
	Name string
}

func (s CookieSource) Extract(r *http.Request) string {
	c, err := r.Cookie(s.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

// DefaultCredentialSources is the fixed precedence order: a well-formed
// bearer header wins, then the access-token cookie.
func DefaultCredentialSources() []CredentialSource {
	return []CredentialSource{
		BearerHeaderSource{},
		CookieSource{Name: AccessTokenCookie},
	}
}

// ExtractToken tries each source in order and returns the first hit.
func ExtractToken(r *http.Request, sources ...CredentialSource) string {
	for _, s := range sources {
		if token := s.Extract(r); token != "" {
			return token
		}
	}
	return ""
}
