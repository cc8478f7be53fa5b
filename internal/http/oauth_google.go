package http

import (
	"net/http"
	"net/url"

	"github.com/hireline/hireline/internal/service"
)

// GoogleOAuthHandler serves the browser-facing Google sign-in flow.
type GoogleOAuthHandler struct {
	OAuth       *service.OAuthCoordinator
	Cookies     *CookieWriter
	FrontendURL string
	Dev         bool
}

// HandleStart sets the anti-forgery cookie and redirects to the consent
// screen. The requested role rides inside the state parameter.
func (h *GoogleOAuthHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	authURL, nonce, err := h.OAuth.Start(r.URL.Query().Get("role"))
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	h.Cookies.SetCSRF(w, nonce)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleCallback finishes the flow: on success the session cookies are set
// and the browser is sent back to the frontend with a role hint; on
// failure the pipeline's tagged error is rendered as JSON.
func (h *GoogleOAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var cookieNonce string
	if c, err := r.Cookie(CookieCSRF); err == nil {
		cookieNonce = c.Value
	}

	user, pair, err := h.OAuth.Callback(r.Context(), q.Get("code"), q.Get("state"), cookieNonce)
	if err != nil {
		h.Cookies.ClearCSRF(w)
		writeServiceError(w, r, err, h.Dev)
		return
	}

	h.Cookies.ClearCSRF(w)
	h.Cookies.SetSession(w, pair)
	http.Redirect(w, r, h.frontendRedirect(user.Role), http.StatusFound)
}

// frontendRedirect appends the role hint to the configured frontend origin.
func (h *GoogleOAuthHandler) frontendRedirect(role string) string {
	u, err := url.Parse(h.FrontendURL)
	if err != nil {
		return h.FrontendURL
	}
	q := u.Query()
	q.Set("role", role)
	u.RawQuery = q.Encode()
	return u.String()
}
