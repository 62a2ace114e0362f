package http

import (
	"encoding/json"
	"net/http"

	"github.com/hwylde/gatehouse/internal/gatehouse/domain"
	"github.com/hwylde/gatehouse/internal/gatehouse/service"
	"github.com/hwylde/gatehouse/pkg/gateclient"
	"github.com/hwylde/gatehouse/pkg/httpx"
)

// RevokeHandler serves POST /v1/auth/revoke, the role-wide revocation
// endpoint. It is the one destructive operation in this service and
// therefore requires a step-up token on top of the admin session.
type RevokeHandler struct {
	Auth *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Revoke every session for a role
//	@Description	Bumps the role's epoch, invalidating all tokens issued before the call.
//	@Description	Requires an admin session and a step-up token in the X-Admin-Step-Up header.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			X-Admin-Step-Up	header		string					true	"Step-up token"
//	@Param			body			body		gateclient.RevokeRequest	true	"Role to revoke"
//	@Success		200				{object}	gateclient.StatusResponse	"ok, status"
//	@Failure		400				{object}	gateclient.APIError		"error, message"
//	@Failure		401				{object}	gateclient.APIError		"error, message"
//	@Failure		428				{object}	gateclient.APIError		"error, message"
//	@Failure		503				{object}	gateclient.APIError		"error, message"
//	@Router			/v1/auth/revoke [post]
func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if apiErr := requireJSON(r); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	bearer, _ := httpx.BearerToken(r)
	session, apiErr := h.Auth.RequireRole(r.Context(), bearer, domain.RoleAdmin)
	if apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	stepUp := r.Header.Get(gateclient.StepUpHeader)
	if apiErr := h.Auth.RequireStepUp(r.Context(), stepUp, session); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	var req gateclient.RevokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		gateclient.ErrMalformedRequest.WriteError(w)
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		gateclient.ErrMalformedRequest.WithMessage("unknown role").WriteError(w)
		return
	}

	if apiErr := h.Auth.RevokeRoleSessions(r.Context(), role); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gateclient.StatusResponse{OK: true, Status: "revoked"})
}
