package sessionsdk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hireline/hireline/pkg/sessionsdk"
	"github.com/stretchr/testify/require"
)

// fakePlatform is a minimal in-process stand-in for the API: one valid
// access token at a time, rotated by the refresh endpoint.
type fakePlatform struct {
	mu           sync.Mutex
	accessToken  string
	refreshToken string
	refreshCalls atomic.Int64
}

func (f *fakePlatform) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)

		f.mu.Lock()
		f.accessToken = "access-1"
		f.refreshToken = "refresh-1"
		f.mu.Unlock()

		writeJSON(w, http.StatusOK, sessionsdk.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"})
	})

	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)

		var in struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)

		f.mu.Lock()
		defer f.mu.Unlock()
		if in.RefreshToken != f.refreshToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"status": 401, "error": "invalid_or_expired"})
			return
		}
		f.accessToken = "access-2"
		f.refreshToken = "refresh-2"
		writeJSON(w, http.StatusOK, sessionsdk.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"})
	})

	mux.HandleFunc("GET /api/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		valid := "Bearer " + f.accessToken
		f.mu.Unlock()

		switch got := r.Header.Get("Authorization"); {
		case got == valid:
			writeJSON(w, http.StatusOK, map[string]any{
				"user": sessionsdk.Profile{ID: "user_1", Email: "alice@example.com", Role: "employee"},
			})
		case got == "Bearer access-0" || got == "Bearer access-1":
			writeJSON(w, http.StatusUnauthorized, map[string]any{"status": 401, "error": "expired_token"})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]any{"status": 401, "error": "invalid_token"})
		}
	})

	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClientLoginAndProfile(t *testing.T) {
	platform := &fakePlatform{}
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	client := sessionsdk.New(srv.URL, nil)
	require.NoError(t, client.Login(context.Background(), "alice@example.com", "hunter22"))

	profile, err := client.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", profile.Email)
}

func TestClientSilentRefresh(t *testing.T) {
	platform := &fakePlatform{accessToken: "access-2", refreshToken: "refresh-1"}
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	// Store holds a stale access token; first profile call 401s with
	// expired_token and the client must recover without surfacing it.
	store := &sessionsdk.MemoryStore{}
	require.NoError(t, store.Save(sessionsdk.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}))
	client := sessionsdk.New(srv.URL, store)

	profile, err := client.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "user_1", profile.ID)
	require.EqualValues(t, 1, platform.refreshCalls.Load())

	pair, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "access-2", pair.AccessToken)
	require.Equal(t, "refresh-2", pair.RefreshToken)
}

func TestClientConcurrentRefreshSingleFlight(t *testing.T) {
	platform := &fakePlatform{accessToken: "access-2", refreshToken: "refresh-1"}
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	store := &sessionsdk.MemoryStore{}
	require.NoError(t, store.Save(sessionsdk.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}))
	client := sessionsdk.New(srv.URL, store)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = client.Me(context.Background())
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}
	require.EqualValues(t, 1, platform.refreshCalls.Load(), "concurrent expiries must share one refresh")
}

func TestClientFailedRefreshKeepsOriginalResponse(t *testing.T) {
	platform := &fakePlatform{accessToken: "access-2", refreshToken: "refresh-2"}
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	// Both stored tokens are stale: the access token expires the first
	// call and the refresh attempt itself 401s. The caller must still see
	// the server's original expired_token response, not a refresh error.
	store := &sessionsdk.MemoryStore{}
	require.NoError(t, store.Save(sessionsdk.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-0"}))
	client := sessionsdk.New(srv.URL, store)

	_, err := client.Me(context.Background())
	require.Error(t, err)
	require.True(t, sessionsdk.IsCode(err, "expired_token"), "original 401 must be propagated, got %v", err)
	require.EqualValues(t, 1, platform.refreshCalls.Load(), "exactly one refresh attempt, no further retries")
}

func TestClientDoesNotRetryInvalidToken(t *testing.T) {
	platform := &fakePlatform{accessToken: "access-2", refreshToken: "refresh-1"}
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	store := &sessionsdk.MemoryStore{}
	require.NoError(t, store.Save(sessionsdk.TokenPair{AccessToken: "forged", RefreshToken: "refresh-1"}))
	client := sessionsdk.New(srv.URL, store)

	_, err := client.Me(context.Background())
	require.Error(t, err)
	require.True(t, sessionsdk.IsCode(err, "invalid_token"))
	require.EqualValues(t, 0, platform.refreshCalls.Load(), "invalid_token must not trigger a refresh")
}

func TestClientNoSessionNoRetry(t *testing.T) {
	platform := &fakePlatform{accessToken: "access-2"}
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	client := sessionsdk.New(srv.URL, nil)
	_, err := client.Me(context.Background())
	require.Error(t, err)
	require.EqualValues(t, 0, platform.refreshCalls.Load())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := &sessionsdk.FileStore{Path: path}

	// Empty on first load.
	pair, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, pair.AccessToken)

	require.NoError(t, store.Save(sessionsdk.TokenPair{AccessToken: "a", RefreshToken: "r"}))

	pair, err = store.Load()
	require.NoError(t, err)
	require.Equal(t, "a", pair.AccessToken)
	require.Equal(t, "r", pair.RefreshToken)

	require.NoError(t, store.Clear())
	pair, err = store.Load()
	require.NoError(t, err)
	require.Empty(t, pair.RefreshToken)
}
