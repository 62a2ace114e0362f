package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hwylde/gatehouse/internal/gatehouse/domain"
	gatehousehttp "github.com/hwylde/gatehouse/internal/gatehouse/http"
	"github.com/hwylde/gatehouse/internal/gatehouse/service"
	"github.com/hwylde/gatehouse/internal/gatehouse/store/memory"
	"github.com/hwylde/gatehouse/pkg/gateclient"
	"github.com/stretchr/testify/require"
)

// fakeSecrets is a fixed secret store for handler tests.
type fakeSecrets struct {
	roles      map[domain.Role]string
	signingKey string
}

func (f fakeSecrets) Secret(role domain.Role) (string, bool) {
	v, ok := f.roles[role]
	return v, ok && v != ""
}

func (f fakeSecrets) SigningKey() (string, bool) { return f.signingKey, f.signingKey != "" }

func (f fakeSecrets) AdminTOTP() (string, bool) { return "", false }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T) *gatehousehttp.Router {
	t.Helper()

	sec := fakeSecrets{
		roles: map[domain.Role]string{
			domain.RoleStaff:  "123456",
			domain.RoleAdmin:  "admin-password",
			domain.RoleUpload: "654321",
			domain.RoleCron:   "cron-secret",
		},
		signingKey: "handler-test-key",
	}
	kv := memory.NewStore()
	router := gatehousehttp.NewRouter(service.NewAuthService(sec, kv), kv, sec, "test", testLogger())
	router.ApplyRoutes()
	return router
}

// do sends a request through the router with a distinct client IP so the
// HTTP-level rate limiter never interferes with unrelated assertions.
func do(t *testing.T, router http.Handler, method, path, bearer, ip string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("X-Forwarded-For", ip)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func loginStaff(t *testing.T, router http.Handler, ip string) string {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/v1/auth/staff/verify", "", ip,
		gateclient.VerifyRequest{Pin: "123456"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody[gateclient.TokenResponse](t, rec).Token
}

func loginAdmin(t *testing.T, router http.Handler, ip string) string {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/v1/auth/admin/verify", "", ip,
		gateclient.VerifyRequest{Password: "admin-password"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody[gateclient.TokenResponse](t, rec).Token
}

func TestVerifyEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("issues a token for a correct pin", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/auth/staff/verify", "", "10.0.0.1",
			gateclient.VerifyRequest{Pin: "123456"}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		resp := decodeBody[gateclient.TokenResponse](t, rec)
		require.True(t, resp.OK)
		require.Equal(t, "staff", resp.Role)
		require.NotEmpty(t, resp.Token)
	})

	t.Run("wrong pin is 401 with attempts remaining", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/auth/staff/verify", "", "10.0.0.2",
			gateclient.VerifyRequest{Pin: "000000"}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		apiErr := decodeBody[gateclient.APIError](t, rec)
		require.Equal(t, gateclient.ErrorCodeInvalidCreds, apiErr.Code)
		require.NotNil(t, apiErr.AttemptsRemaining)
	})

	t.Run("unknown role is 400", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/auth/root/verify", "", "10.0.0.3",
			gateclient.VerifyRequest{Pin: "123456"}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid JSON is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/staff/verify",
			bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", "10.0.0.4")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong content type is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/staff/verify",
			bytes.NewReader([]byte("pin=123456")))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", "10.0.0.5")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unconfigured secret is 503", func(t *testing.T) {
		sec := fakeSecrets{roles: map[domain.Role]string{}, signingKey: "k"}
		kv := memory.NewStore()
		broken := gatehousehttp.NewRouter(service.NewAuthService(sec, kv), kv, sec, "test", testLogger())
		broken.ApplyRoutes()

		rec := do(t, broken, http.MethodPost, "/v1/auth/staff/verify", "", "10.0.0.6",
			gateclient.VerifyRequest{Pin: "123456"}, nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("lockout answers 429", func(t *testing.T) {
		for range service.MaxAttempts {
			do(t, router, http.MethodPost, "/v1/auth/upload/verify", "", "10.0.0.7",
				gateclient.VerifyRequest{Pin: "000000"}, nil)
		}
		rec := do(t, router, http.MethodPost, "/v1/auth/upload/verify", "", "10.0.0.7",
			gateclient.VerifyRequest{Pin: "654321"}, nil)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Empty(t, rec.Header().Get("Retry-After"),
			"the lockout response promises nothing more precise than later")

		apiErr := decodeBody[gateclient.APIError](t, rec)
		require.Equal(t, gateclient.ErrorCodeRateLimited, apiErr.Code)

		t.Run("even a malformed body gets 429 while locked out", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/auth/upload/verify",
				bytes.NewReader([]byte("{not json")))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Forwarded-For", "10.0.0.7")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusTooManyRequests, rec.Code)
		})
	})
}

func TestSessionEndpoints(t *testing.T) {
	router := newTestRouter(t)
	token := loginStaff(t, router, "10.0.1.1")

	t.Run("introspection describes the session", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/v1/auth/session", token, "10.0.1.2", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[gateclient.SessionResponse](t, rec)
		require.Equal(t, "staff", resp.Role)
		require.NotEmpty(t, resp.TokenID)
		require.Positive(t, resp.ExpiresInSeconds)
	})

	t.Run("missing bearer is 401", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/v1/auth/session", "", "10.0.1.3", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/auth/logout", token, "10.0.1.4", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = do(t, router, http.MethodGet, "/v1/auth/session", token, "10.0.1.5", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "logged-out token no longer introspects")
	})
}

func TestStepUpAndRevokeEndpoints(t *testing.T) {
	router := newTestRouter(t)
	adminToken := loginAdmin(t, router, "10.0.2.1")

	t.Run("step-up requires an admin session", func(t *testing.T) {
		staffToken := loginStaff(t, router, "10.0.2.2")
		rec := do(t, router, http.MethodPost, "/v1/auth/step-up", staffToken, "10.0.2.3",
			gateclient.StepUpRequest{Password: "admin-password"}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("revoke without step-up header is 428", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/auth/revoke", adminToken, "10.0.2.4",
			gateclient.RevokeRequest{Role: "staff"}, nil)
		require.Equal(t, http.StatusPreconditionRequired, rec.Code)

		apiErr := decodeBody[gateclient.APIError](t, rec)
		require.Equal(t, gateclient.ErrorCodeStepUpRequired, apiErr.Code)
	})

	t.Run("revoke with a garbage step-up header is 401", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/auth/revoke", adminToken, "10.0.2.5",
			gateclient.RevokeRequest{Role: "staff"},
			map[string]string{gateclient.StepUpHeader: "garbage"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("full step-up then role-wide revoke", func(t *testing.T) {
		staffToken := loginStaff(t, router, "10.0.2.6")

		rec := do(t, router, http.MethodPost, "/v1/auth/step-up", adminToken, "10.0.2.7",
			gateclient.StepUpRequest{Password: "admin-password"}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		stepUp := decodeBody[gateclient.StepUpResponse](t, rec).Token

		rec = do(t, router, http.MethodPost, "/v1/auth/revoke", adminToken, "10.0.2.8",
			gateclient.RevokeRequest{Role: "staff"},
			map[string]string{gateclient.StepUpHeader: stepUp})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = do(t, router, http.MethodGet, "/v1/auth/session", staffToken, "10.0.2.9", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "staff epoch bumped")

		rec = do(t, router, http.MethodGet, "/v1/auth/session", adminToken, "10.0.2.10", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code, "admin sessions unaffected")
	})

	t.Run("revoke with unknown role in body is 400", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/auth/step-up", adminToken, "10.0.2.11",
			gateclient.StepUpRequest{Password: "admin-password"}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		stepUp := decodeBody[gateclient.StepUpResponse](t, rec).Token

		rec = do(t, router, http.MethodPost, "/v1/auth/revoke", adminToken, "10.0.2.12",
			gateclient.RevokeRequest{Role: "root"},
			map[string]string{gateclient.StepUpHeader: stepUp})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCronEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("cron secret as bearer", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/cron/ping", "cron-secret", "10.0.3.1", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[gateclient.StatusResponse](t, rec)
		require.True(t, resp.OK)
	})

	t.Run("wrong secret is 401", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/v1/cron/ping", "wrong", "10.0.3.2", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("a staff session token does not pass the cron guard", func(t *testing.T) {
		staffToken := loginStaff(t, router, "10.0.3.3")
		rec := do(t, router, http.MethodPost, "/v1/cron/ping", staffToken, "10.0.3.4", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("livez", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/livez", "", "10.0.4.1", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[gateclient.HealthResponse](t, rec)
		require.Equal(t, "ok", resp.Status)
	})

	t.Run("readyz with healthy store", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/readyz", "", "10.0.4.2", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[gateclient.HealthResponse](t, rec)
		require.Equal(t, "ok", resp.Checks.Store)
		require.Equal(t, "ok", resp.Checks.Signer)
	})

	t.Run("readyz degrades without a signing key", func(t *testing.T) {
		sec := fakeSecrets{roles: map[domain.Role]string{}}
		kv := memory.NewStore()
		broken := gatehousehttp.NewRouter(service.NewAuthService(sec, kv), kv, sec, "test", testLogger())
		broken.ApplyRoutes()

		rec := do(t, broken, http.MethodGet, "/readyz", "", "10.0.4.3", nil, nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		resp := decodeBody[gateclient.HealthResponse](t, rec)
		require.Equal(t, "degraded", resp.Status)
	})
}
