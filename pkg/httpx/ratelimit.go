package httpx

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hwylde/gatehouse/pkg/slogx"
)

// RateLimitConfig defines a token-bucket profile for a group of routes. This
// middleware is a blunt per-IP request cap; the credential-attempt lockout is
// enforced separately by the auth service with its own counter.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// Route profiles. Each can be overridden via RATELIMIT_{NAME}_{REQUESTS,
// WINDOW_SEC, BURST} environment variables, which the tests lean on.
var (
	// StrictLimit fronts the credential endpoints (verify, step-up).
	StrictLimit = RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	// ModerateLimit fronts authenticated operations.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 60, Window: time.Minute, Burst: 60}

	// LenientLimit fronts health endpoints that monitors poll.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 300, Window: time.Minute, Burst: 300}
)

func init() {
	StrictLimit = RateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = RateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = RateLimitFromEnv("LENIENT", LenientLimit)
}

// RateLimitFromEnv overlays RATELIMIT_{prefix}_* environment variables onto a
// default profile. Unparseable or non-positive values keep the default.
func RateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	if n, err := strconv.Atoi(os.Getenv("RATELIMIT_" + prefix + "_REQUESTS")); err == nil && n > 0 {
		cfg.RequestsPerWindow = n
	}
	if n, err := strconv.Atoi(os.Getenv("RATELIMIT_" + prefix + "_WINDOW_SEC")); err == nil && n > 0 {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, err := strconv.Atoi(os.Getenv("RATELIMIT_" + prefix + "_BURST")); err == nil && n > 0 {
		cfg.Burst = n
	}
	return cfg
}

// ipLimiters keeps one token bucket per client IP, pruning idle buckets so
// the map does not grow without bound.
type ipLimiters struct {
	buckets sync.Map // string -> *rate.Limiter
	limit   rate.Limit
	burst   int

	mu        sync.Mutex
	lastPrune time.Time
}

func (l *ipLimiters) get(key string) *rate.Limiter {
	if v, ok := l.buckets.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := l.buckets.LoadOrStore(key, rate.NewLimiter(l.limit, l.burst))
	l.maybePrune()
	return v.(*rate.Limiter)
}

func (l *ipLimiters) maybePrune() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Since(l.lastPrune) < 5*time.Minute {
		return
	}
	l.lastPrune = time.Now()

	// A bucket back at full burst has been idle long enough to forget.
	l.buckets.Range(func(key, v any) bool {
		if v.(*rate.Limiter).Tokens() >= float64(l.burst) {
			l.buckets.Delete(key)
		}
		return true
	})
}

// RateLimitByIP limits requests per client IP with the given profile,
// answering 429 with a Retry-After header once the bucket is drained. The
// body deliberately gives no more precision than the header.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	perSecond := float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()
	limiters := &ipLimiters{
		limit:     rate.Limit(perSecond),
		burst:     cfg.Burst,
		lastPrune: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bucket := limiters.get(ClientIP(r))
			if bucket.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			res := bucket.Reserve()
			delay := res.Delay()
			res.Cancel()
			retryAfter := max(int(delay.Seconds()), 1)

			slogx.FromContext(r.Context()).Warn("request rate limit exceeded",
				"ip", ClientIP(r),
				"path", r.URL.Path,
			)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":   "rate_limited",
				"message": "too many requests, try again later",
			})
		})
	}
}
