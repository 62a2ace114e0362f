package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hwylde/gatehouse/internal/gatehouse/domain"
	"github.com/hwylde/gatehouse/internal/gatehouse/service"
	"github.com/hwylde/gatehouse/internal/gatehouse/store"
	"github.com/hwylde/gatehouse/pkg/gateclient"
	"github.com/hwylde/gatehouse/pkg/httpx"
	"github.com/hwylde/gatehouse/pkg/slogx"
)

// CronPingHandler serves POST /v1/cron/ping, the heartbeat endpoint for
// scheduled jobs. The bearer credential is the cron secret itself.
type CronPingHandler struct {
	Auth *service.AuthService
	KV   store.KV
}

// lastPingKey records when a scheduled job last checked in, so operators can
// spot a dead cron from the store.
const lastPingKey = "cron:last_ping"

// ServeHTTP godoc
//
//	@Summary		Scheduled-job heartbeat
//	@Description	Authenticates the cron secret and records the heartbeat timestamp.
//	@Tags			Cron
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	gateclient.StatusResponse	"ok, status"
//	@Failure		401	{object}	gateclient.APIError			"error, message"
//	@Failure		503	{object}	gateclient.APIError			"error, message"
//	@Router			/v1/cron/ping [post]
func (h *CronPingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bearer, _ := httpx.BearerToken(r)
	if _, apiErr := h.Auth.RequireRole(r.Context(), bearer, domain.RoleCron); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	if err := h.KV.Set(r.Context(), lastPingKey, ts, 0); err != nil {
		// The heartbeat is best-effort; auth already succeeded.
		slogx.FromContext(r.Context()).Warn("failed to record cron heartbeat", "error", err)
	}

	httpx.WriteJSON(w, http.StatusOK, gateclient.StatusResponse{OK: true, Status: "pong"})
}
