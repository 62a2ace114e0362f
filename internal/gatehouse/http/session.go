package http

import (
	"net/http"
	"time"

	"github.com/hwylde/gatehouse/internal/gatehouse/service"
	"github.com/hwylde/gatehouse/pkg/gateclient"
	"github.com/hwylde/gatehouse/pkg/httpx"
)

// SessionHandler serves GET /v1/auth/session and POST /v1/auth/logout.
type SessionHandler struct {
	Auth *service.AuthService
}

// HandleIntrospect godoc
//
//	@Summary		Describe the presented session
//	@Description	Returns the role, token id and expiry of the session behind the bearer token.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	gateclient.SessionResponse	"role, tokenId, expiresInSeconds, expiresAt"
//	@Failure		401	{object}	gateclient.APIError			"error, message"
//	@Failure		503	{object}	gateclient.APIError			"error, message"
//	@Router			/v1/auth/session [get]
func (h *SessionHandler) HandleIntrospect(w http.ResponseWriter, r *http.Request) {
	bearer, _ := httpx.BearerToken(r)
	session, apiErr := h.Auth.RequireSession(r.Context(), bearer)
	if apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gateclient.SessionResponse{
		Role:             session.Role,
		TokenID:          session.ID,
		ExpiresInSeconds: int(session.Remaining(time.Now()).Seconds()),
		ExpiresAt:        session.ExpiresAt.Unix(),
	})
}

// HandleLogout godoc
//
//	@Summary		Log out the presented session
//	@Description	Revokes the presented token server-side for its remaining lifetime.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	gateclient.StatusResponse	"ok, status"
//	@Failure		401	{object}	gateclient.APIError			"error, message"
//	@Failure		503	{object}	gateclient.APIError			"error, message"
//	@Router			/v1/auth/logout [post]
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	bearer, _ := httpx.BearerToken(r)
	session, apiErr := h.Auth.RequireSession(r.Context(), bearer)
	if apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	if apiErr := h.Auth.RevokeSession(r.Context(), session); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gateclient.StatusResponse{OK: true, Status: "logged_out"})
}
