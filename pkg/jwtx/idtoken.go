package jwtx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GoogleJWKSURL serves the RSA keys Google signs ID tokens with.
const GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// googleIssuers are the two issuer forms Google emits.
var googleIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// IDTokenClaims are the OpenID Connect claims we extract from a verified
// identity token.
type IDTokenClaims struct {
	jwt.RegisteredClaims

	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
}

// RemoteKeySet verifies RS256 identity tokens against a JWKS document
// fetched over HTTPS and cached between requests.
type RemoteKeySet struct {
	URL        string
	HTTPClient *http.Client
	TTL        time.Duration

	// fetchMu serializes refetches; mu only guards the cache fields, so
	// verifications holding warm keys never wait on the network.
	fetchMu   sync.Mutex
	mu        sync.RWMutex
	keys      *KeySet
	fetchedAt time.Time
}

// NewGoogleKeySet builds a RemoteKeySet against Google's published JWKS.
func NewGoogleKeySet(client *http.Client) *RemoteKeySet {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RemoteKeySet{
		URL:        GoogleJWKSURL,
		HTTPClient: client,
		TTL:        time.Hour,
		keys:       NewKeySet(),
	}
}

// VerifyGoogleIDToken validates the signature, issuer, audience and expiry
// of a Google ID token and returns its identity claims.
func (r *RemoteKeySet) VerifyGoogleIDToken(ctx context.Context, tokenStr, audience string) (IDTokenClaims, error) {
	keys, err := r.current(ctx)
	if err != nil {
		return IDTokenClaims{}, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(audience),
	)

	var claims IDTokenClaims
	_, err = parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("jwtx: missing kid")
		}
		return keys.Get(kid)
	})
	if err != nil {
		return IDTokenClaims{}, fmt.Errorf("jwtx: verify id token: %w", err)
	}

	if !slices.Contains(googleIssuers, claims.Issuer) {
		return IDTokenClaims{}, fmt.Errorf("jwtx: unexpected id token issuer %q", claims.Issuer)
	}

	return claims, nil
}

// current returns the cached key set, refetching when stale. The fetch
// happens outside the cache lock: callers with warm-but-stale keys use the
// cached set immediately while at most one of them refetches, and a fetch
// failure with warm keys falls back to the cached set so a transient JWKS
// outage does not break sign-in. Only a cold cache makes callers wait.
func (r *RemoteKeySet) current(ctx context.Context) (*KeySet, error) {
	keys, warm, fresh := r.cached()
	if fresh {
		return keys, nil
	}

	if warm {
		// Stale keys still verify; one caller refetches, the rest go on.
		if !r.fetchMu.TryLock() {
			return keys, nil
		}
		defer r.fetchMu.Unlock()
		if err := r.fetch(ctx); err != nil {
			return keys, nil
		}
		keys, _, _ = r.cached()
		return keys, nil
	}

	r.fetchMu.Lock()
	defer r.fetchMu.Unlock()

	// Another caller may have warmed the cache while we waited.
	if keys, warm, _ := r.cached(); warm {
		return keys, nil
	}
	if err := r.fetch(ctx); err != nil {
		return nil, err
	}
	keys, _, _ = r.cached()
	return keys, nil
}

func (r *RemoteKeySet) cached() (keys *KeySet, warm, fresh bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	warm = r.keys.Len() > 0
	return r.keys, warm, warm && time.Since(r.fetchedAt) < r.TTL
}

// fetch retrieves the JWKS document and swaps it into the cache. Callers
// hold fetchMu, never mu.
func (r *RemoteKeySet) fetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return fmt.Errorf("jwtx: build jwks request: %w", err)
	}

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("jwtx: fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwtx: jwks endpoint returned status %d", resp.StatusCode)
	}

	var doc JWKS
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("jwtx: decode jwks: %w", err)
	}

	if err := r.keys.Replace(doc); err != nil {
		return err
	}

	r.mu.Lock()
	r.fetchedAt = time.Now()
	r.mu.Unlock()
	return nil
}
