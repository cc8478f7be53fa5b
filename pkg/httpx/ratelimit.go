package httpx

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hireline/hireline/pkg/slogx"
	"golang.org/x/time/rate"
)

// CodeRateLimited is returned on 429 responses.
const CodeRateLimited = "rate_limit_exceeded"

// RateLimitConfig defines a token-bucket rate limit profile.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the window.
	RequestsPerWindow int
	// Window is the time window the request budget refills over.
	Window time.Duration
	// Burst allows temporary spikes above the steady rate.
	Burst int
}

// KeyExtractor derives the bucket key for a request, such as the client IP
// or the authenticated user ID.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP, honouring X-Forwarded-For and
// X-Real-IP for proxied requests.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// UserKeyExtractor extracts the authenticated user ID from the request
// context, or "" when the request is anonymous.
func UserKeyExtractor(r *http.Request) string {
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		return claims.Subject
	}
	return ""
}

// CompositeKeyExtractor joins the non-empty outputs of several extractors.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// RateLimiter tracks a token bucket per key. Each instance is independent,
// so two routes sharing one instance share a budget and routes with their
// own instances do not. Construct at wiring time and inject.
type RateLimiter struct {
	cfg   RateLimitConfig
	limit rate.Limit

	limiters    sync.Map // map[string]*rate.Limiter
	mu          sync.Mutex
	lastCleanup time.Time
}

// NewRateLimiter builds an independent limiter instance from a profile.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		cfg:         cfg,
		limit:       rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		lastCleanup: time.Now(),
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rl.limit, rl.cfg.Burst)
	actual, _ := rl.limiters.LoadOrStore(key, limiter)
	rl.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops idle buckets so ephemeral keys do not accumulate. A
// bucket with a full budget has not been hit for at least one window.
func (rl *RateLimiter) maybeCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastCleanup) < 5*time.Minute {
		return
	}
	rl.lastCleanup = time.Now()

	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(rl.cfg.Burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// Middleware enforces the limit, grouping requests by the extractor's key.
// Requests with no extractable key pass through unthrottled.
func (rl *RateLimiter) Middleware(extract KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := extract(r)
			if key == "" {
				log.Warn("rate limit: no key for request, allowing")
				next.ServeHTTP(w, r)
				return
			}

			limiter := rl.getLimiter(key)
			if !limiter.Allow() {
				reservation := limiter.Reserve()
				delay := reservation.Delay()
				reservation.Cancel()

				retryAfter := max(int(delay.Seconds()), 1)
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.cfg.RequestsPerWindow))
				w.Header().Set("X-RateLimit-Window", rl.cfg.Window.String())

				log.Warn("rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"retry_after", retryAfter,
				)

				WriteError(w, http.StatusTooManyRequests, CodeRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ByIP limits by client IP only.
func (rl *RateLimiter) ByIP() Middleware {
	return rl.Middleware(IPKeyExtractor)
}

// ByUser limits by authenticated user ID, falling back to IP for anonymous
// requests.
func (rl *RateLimiter) ByUser() Middleware {
	return rl.Middleware(CompositeKeyExtractor(":", UserKeyExtractor, IPKeyExtractor))
}
