package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hwylde/gatehouse/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func limitedRequest(h http.Handler, ip string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Real-IP", ip)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestRateLimitByIP(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
	h := httpx.Chain(okHandler(), httpx.RateLimitByIP(cfg))

	t.Run("allows up to burst then blocks", func(t *testing.T) {
		for i := range 3 {
			require.Equal(t, http.StatusOK, limitedRequest(h, "203.0.113.1").Code, "request %d", i+1)
		}

		rec := limitedRequest(h, "203.0.113.1")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Contains(t, rec.Body.String(), "rate_limited")
	})

	t.Run("buckets are per IP", func(t *testing.T) {
		require.Equal(t, http.StatusOK, limitedRequest(h, "203.0.113.2").Code)
	})

	t.Run("headerless clients share the unknown bucket", func(t *testing.T) {
		h := httpx.Chain(okHandler(),
			httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}))

		r1 := httptest.NewRequest(http.MethodGet, "/", nil)
		rec1 := httptest.NewRecorder()
		h.ServeHTTP(rec1, r1)
		require.Equal(t, http.StatusOK, rec1.Code)

		r2 := httptest.NewRequest(http.MethodGet, "/", nil)
		r2.RemoteAddr = "192.0.2.9:1234" // different peer, same bucket
		rec2 := httptest.NewRecorder()
		h.ServeHTTP(rec2, r2)
		require.Equal(t, http.StatusTooManyRequests, rec2.Code)
	})
}

func TestRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	t.Run("defaults when unset", func(t *testing.T) {
		require.Equal(t, def, httpx.RateLimitFromEnv("UNSET", def))
	})

	t.Run("overrides apply", func(t *testing.T) {
		t.Setenv("RATELIMIT_T1_REQUESTS", "42")
		t.Setenv("RATELIMIT_T1_WINDOW_SEC", "30")
		t.Setenv("RATELIMIT_T1_BURST", "7")

		cfg := httpx.RateLimitFromEnv("T1", def)
		require.Equal(t, 42, cfg.RequestsPerWindow)
		require.Equal(t, 30*time.Second, cfg.Window)
		require.Equal(t, 7, cfg.Burst)
	})

	t.Run("junk values keep defaults", func(t *testing.T) {
		t.Setenv("RATELIMIT_T2_REQUESTS", "nope")
		t.Setenv("RATELIMIT_T2_WINDOW_SEC", "-1")
		t.Setenv("RATELIMIT_T2_BURST", "0")

		require.Equal(t, def, httpx.RateLimitFromEnv("T2", def))
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), mw("outer"), mw("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner"}, order)
}
