package http

import (
	"net/http"
	"time"

	"github.com/hwylde/gatehouse/internal/gatehouse/secrets"
	"github.com/hwylde/gatehouse/internal/gatehouse/store"
	"github.com/hwylde/gatehouse/pkg/gateclient"
	"github.com/hwylde/gatehouse/pkg/httpx"
)

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Returns 200 whenever the process is up, with uptime and version.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	gateclient.HealthResponse	"status, uptime, version"
//	@Router			/livez [get]
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, gateclient.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the KV store and the signing key configuration. A failing check
//	@Description	returns 503 so the instance is taken out of rotation.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	gateclient.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	gateclient.HealthResponse	"status, uptime, version, checks"
//	@Router			/readyz [get]
func ReadyzHandler(startTime time.Time, version string, kv store.KV, sec secrets.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &gateclient.HealthChecks{
			Store:  "ok",
			Signer: "ok",
		}
		status := "ok"
		statusCode := http.StatusOK

		if err := kv.Ping(r.Context()); err != nil {
			checks.Store = "error: " + err.Error()
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if _, ok := sec.SigningKey(); !ok {
			checks.Signer = "error: signing key not configured"
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, gateclient.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
