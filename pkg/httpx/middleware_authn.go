package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hireline/hireline/pkg/jwtx"
)

// Stable authentication error codes. The client treats expired_token as the
// cue to attempt a silent refresh; the other two mean re-login.
const (
	CodeMissingToken = "missing_token"
	CodeInvalidToken = "invalid_token"
	CodeExpiredToken = "expired_token"
)

// AuthnMiddleware extracts a session token via the given credential sources,
// verifies it as an access token, and stores the claims in the request
// context. The three 401 codes are distinct on purpose: only an expired
// token should trigger a client-side refresh.
func AuthnMiddleware(verifier *jwtx.HS256, sources ...CredentialSource) Middleware {
	if len(sources) == 0 {
		sources = DefaultCredentialSources()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r, sources...)
			if token == "" {
				writeAuthnError(w, CodeMissingToken)
				return
			}

			claims, err := verifier.Verify(token, jwtx.KindAccess)
			if err != nil {
				code := CodeInvalidToken
				if errors.Is(err, jwtx.ErrExpired) {
					code = CodeExpiredToken
				}
				writeAuthnError(w, code)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func writeAuthnError(w http.ResponseWriter, code string) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer error=%q`, code))
	WriteError(w, http.StatusUnauthorized, code)
}
