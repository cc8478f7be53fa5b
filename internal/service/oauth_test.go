package service_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/internal/service"
	"github.com/hireline/hireline/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testClientID = "client-123"

// fakeIdP plays the identity provider: a JWKS endpoint plus a token
// endpoint that returns an RS256-signed ID token for a fixed identity.
type fakeIdP struct {
	key           *rsa.PrivateKey
	srv           *httptest.Server
	exchangeCalls atomic.Int64

	subject       string
	email         string
	emailVerified bool
	name          string
	failExchange  bool
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	idp := &fakeIdP{key: key, subject: "google-sub-1", email: "alice@example.com", emailVerified: true, name: "Alice"}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /jwks", func(w http.ResponseWriter, r *http.Request) {
		doc := jwtx.JWKS{Keys: []jwtx.JWK{{
			Kty: "RSA",
			Kid: "test-key",
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString([]byte{0x01, 0x00, 0x01}),
		}}}
		_ = json.NewEncoder(w).Encode(doc)
	})
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		idp.exchangeCalls.Add(1)
		if idp.failExchange {
			http.Error(w, "upstream broke", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "upstream-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     idp.signIDToken(t),
		})
	})

	idp.srv = httptest.NewServer(mux)
	t.Cleanup(idp.srv.Close)
	return idp
}

func (f *fakeIdP) signIDToken(t *testing.T) string {
	t.Helper()

	claims := jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            testClientID,
		"exp":            time.Now().Add(time.Hour).Unix(),
		"iat":            time.Now().Unix(),
		"email":          f.email,
		"email_verified": f.emailVerified,
		"name":           f.name,
	}
	if f.subject != "" {
		claims["sub"] = f.subject
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key"

	signed, err := token.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func newCoordinator(t *testing.T, env *testEnv, idp *fakeIdP) *service.OAuthCoordinator {
	t.Helper()

	keys := jwtx.NewGoogleKeySet(nil)
	keys.URL = idp.srv.URL + "/jwks"

	return &service.OAuthCoordinator{
		Users:  env.users,
		Tokens: env.tokens,
		Keys:   keys,
		Config: &oauth2.Config{
			ClientID:     testClientID,
			ClientSecret: "shhh",
			RedirectURL:  "http://localhost:8080/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  idp.srv.URL + "/auth",
				TokenURL: idp.srv.URL + "/token",
			},
		},
	}
}

// startFlow runs Start and pulls the state parameter out of the consent URL.
func startFlow(t *testing.T, c *service.OAuthCoordinator, role string) (state, nonce string) {
	t.Helper()

	authURL, nonce, err := c.Start(role)
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state = parsed.Query().Get("state")
	require.NotEmpty(t, state)
	return state, nonce
}

func TestOAuthCallback(t *testing.T) {
	t.Run("full flow creates a signed-in user", func(t *testing.T) {
		env := newTestEnv(t)
		idp := newFakeIdP(t)
		c := newCoordinator(t, env, idp)

		state, nonce := startFlow(t, c, "employer")

		user, pair, err := c.Callback(context.Background(), "auth-code", state, nonce)
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", user.Email)
		require.Equal(t, domain.RoleEmployer, user.Role)

		p, err := env.tokens.VerifyAccess(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, p.ID)
	})

	t.Run("missing params short-circuit", func(t *testing.T) {
		env := newTestEnv(t)
		idp := newFakeIdP(t)
		c := newCoordinator(t, env, idp)

		_, _, err := c.Callback(context.Background(), "", "some-state", "nonce")
		require.ErrorIs(t, err, domain.ErrOAuthMissingParams)

		_, _, err = c.Callback(context.Background(), "code", "", "nonce")
		require.ErrorIs(t, err, domain.ErrOAuthMissingParams)
		require.EqualValues(t, 0, idp.exchangeCalls.Load())
	})

	t.Run("csrf mismatch rejected before any network call", func(t *testing.T) {
		env := newTestEnv(t)
		idp := newFakeIdP(t)
		c := newCoordinator(t, env, idp)

		state, _ := startFlow(t, c, "employee")

		_, _, err := c.Callback(context.Background(), "auth-code", state, "wrong-nonce")
		require.ErrorIs(t, err, domain.ErrOAuthCsrfMismatch)

		_, _, err = c.Callback(context.Background(), "auth-code", state, "")
		require.ErrorIs(t, err, domain.ErrOAuthCsrfMismatch)

		_, _, err = c.Callback(context.Background(), "auth-code", "not-base64!", "nonce")
		require.ErrorIs(t, err, domain.ErrOAuthCsrfMismatch)

		require.EqualValues(t, 0, idp.exchangeCalls.Load(), "csrf check must run before the exchange")
	})

	t.Run("exchange failure", func(t *testing.T) {
		env := newTestEnv(t)
		idp := newFakeIdP(t)
		idp.failExchange = true
		c := newCoordinator(t, env, idp)

		state, nonce := startFlow(t, c, "employee")

		_, _, err := c.Callback(context.Background(), "auth-code", state, nonce)
		require.ErrorIs(t, err, domain.ErrOAuthExchangeFailed)
	})

	t.Run("unverified email rejected", func(t *testing.T) {
		env := newTestEnv(t)
		idp := newFakeIdP(t)
		idp.emailVerified = false
		c := newCoordinator(t, env, idp)

		state, nonce := startFlow(t, c, "employee")

		_, _, err := c.Callback(context.Background(), "auth-code", state, nonce)
		require.ErrorIs(t, err, domain.ErrOAuthInvalidIdentity)
	})

	t.Run("missing subject rejected", func(t *testing.T) {
		env := newTestEnv(t)
		idp := newFakeIdP(t)
		idp.subject = ""
		c := newCoordinator(t, env, idp)

		state, nonce := startFlow(t, c, "employee")

		_, _, err := c.Callback(context.Background(), "auth-code", state, nonce)
		require.ErrorIs(t, err, domain.ErrOAuthInvalidIdentity)

		_, err = env.store.Users().GetUserByEmail(context.Background(), "alice@example.com")
		require.Error(t, err, "no account may be created for an identity without a subject")
	})

	t.Run("second sign-in reuses the account", func(t *testing.T) {
		env := newTestEnv(t)
		idp := newFakeIdP(t)
		c := newCoordinator(t, env, idp)

		state, nonce := startFlow(t, c, "employer")
		first, _, err := c.Callback(context.Background(), "auth-code", state, nonce)
		require.NoError(t, err)

		state, nonce = startFlow(t, c, "employee")
		second, _, err := c.Callback(context.Background(), "auth-code", state, nonce)
		require.NoError(t, err)

		require.Equal(t, first.ID, second.ID)
		require.Equal(t, domain.RoleEmployer, second.Role, "existing role is kept")
	})
}
