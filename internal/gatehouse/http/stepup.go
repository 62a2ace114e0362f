package http

import (
	"encoding/json"
	"net/http"

	"github.com/hwylde/gatehouse/internal/gatehouse/domain"
	"github.com/hwylde/gatehouse/internal/gatehouse/service"
	"github.com/hwylde/gatehouse/pkg/gateclient"
	"github.com/hwylde/gatehouse/pkg/httpx"
)

// StepUpHandler serves POST /v1/auth/step-up.
type StepUpHandler struct {
	Auth *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Mint an admin step-up token
//	@Description	Re-verifies the admin password against a live admin session and returns a
//	@Description	short-lived token bound to that session. Destructive admin operations require
//	@Description	this token in the X-Admin-Step-Up header.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		gateclient.StepUpRequest	true	"Admin password"
//	@Success		200		{object}	gateclient.StepUpResponse	"token, expiresInSeconds"
//	@Failure		400		{object}	gateclient.APIError		"error, message"
//	@Failure		401		{object}	gateclient.APIError		"error, message"
//	@Failure		429		{object}	gateclient.APIError		"error, message"
//	@Failure		503		{object}	gateclient.APIError		"error, message"
//	@Router			/v1/auth/step-up [post]
func (h *StepUpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	var req gateclient.StepUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		gateclient.ErrMalformedRequest.WriteError(w)
		return
	}

	resp, apiErr := h.Auth.CreateStepUp(r.Context(), session, req, httpx.ClientIP(r))
	if apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
