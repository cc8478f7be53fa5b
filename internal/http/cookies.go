package http

import (
	"net/http"
	"time"

	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/pkg/httpx"
)

// Cookie names. The access cookie name is shared with the credential
// extraction middleware.
const (
	CookieAccessToken  = httpx.AccessTokenCookie
	CookieRefreshToken = "refreshToken"
	CookieCSRF         = "sso_csrf"
)

// sessionCookieMaxAge is the browser-side window for both session cookies.
// Token expiry is still enforced server side; the cookie window only
// bounds how long the browser keeps presenting them.
const sessionCookieMaxAge = 7 * 24 * time.Hour

// csrfCookieMaxAge bounds the OAuth round trip to the identity provider.
const csrfCookieMaxAge = 5 * time.Minute

// CookieWriter writes the platform's cookies with consistent attributes.
type CookieWriter struct {
	// Secure marks cookies Secure; on in production, off for local HTTP.
	Secure bool
}

func (c *CookieWriter) set(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *CookieWriter) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetSession writes both token cookies.
func (c *CookieWriter) SetSession(w http.ResponseWriter, pair domain.TokenPair) {
	c.set(w, CookieAccessToken, pair.AccessToken, sessionCookieMaxAge)
	c.set(w, CookieRefreshToken, pair.RefreshToken, sessionCookieMaxAge)
}

// ClearSession removes both token cookies.
func (c *CookieWriter) ClearSession(w http.ResponseWriter) {
	c.clear(w, CookieAccessToken)
	c.clear(w, CookieRefreshToken)
}

// SetCSRF writes the short-lived OAuth anti-forgery cookie.
func (c *CookieWriter) SetCSRF(w http.ResponseWriter, nonce string) {
	c.set(w, CookieCSRF, nonce, csrfCookieMaxAge)
}

// ClearCSRF removes the anti-forgery cookie once the flow settles.
func (c *CookieWriter) ClearCSRF(w http.ResponseWriter) {
	c.clear(w, CookieCSRF)
}
