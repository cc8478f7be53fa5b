package http

import (
	"net/http"

	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/internal/service"
	"github.com/hireline/hireline/pkg/httpx"
)

// AuthHandler serves registration, login, refresh and profile.
type AuthHandler struct {
	Users   *service.UserService
	Tokens  *service.TokenService
	Cookies *CookieWriter
	Dev     bool
}

// sessionResponse is the login/register payload: the public user, both
// tokens for header-based clients, and where the frontend should land.
type sessionResponse struct {
	User         domain.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	RedirectTo   string            `json:"redirectTo"`
}

// refreshResponse omits RedirectTo; a refresh never navigates.
type refreshResponse struct {
	User         domain.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

// roleRedirect picks the post-login landing path for a role.
func roleRedirect(role string) string {
	switch role {
	case domain.RoleAdmin:
		return "/admin"
	case domain.RoleEmployer:
		return "/employer"
	default:
		return "/jobs"
	}
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !decodeJSONBody(w, r, &in) {
		return
	}

	user, pair, err := h.Users.Register(r.Context(), in.Name, in.Email, in.Password, in.Role)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	h.Cookies.SetSession(w, pair)
	httpx.WriteJSON(w, http.StatusCreated, sessionResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		RedirectTo:   roleRedirect(user.Role),
	})
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSONBody(w, r, &in) {
		return
	}

	user, pair, err := h.Users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	h.Cookies.SetSession(w, pair)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		RedirectTo:   roleRedirect(user.Role),
	})
}

// HandleRefresh exchanges a refresh token for a new pair. The token is
// taken from the JSON body first, then from the refresh cookie. Cookies
// are rewritten only when the credential itself arrived via cookie, so
// header-based API clients never get cookies pushed at them.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if !decodeJSONBody(w, r, &in) {
			return
		}
	}

	token := in.RefreshToken
	fromCookie := false
	if token == "" {
		if c, err := r.Cookie(CookieRefreshToken); err == nil {
			token = c.Value
			fromCookie = true
		}
	}

	user, pair, err := h.Tokens.Refresh(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	if fromCookie {
		h.Cookies.SetSession(w, pair)
	}
	httpx.WriteJSON(w, http.StatusOK, refreshResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok {
		writeServiceError(w, r, domain.ErrNotAuthenticated, h.Dev)
		return
	}

	user, err := h.Users.Profile(r.Context(), p.ID)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, struct {
		User domain.PublicUser `json:"user"`
	}{User: user.Public()})
}
