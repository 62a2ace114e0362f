package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hwylde/gatehouse/internal/gatehouse/domain"
	"github.com/hwylde/gatehouse/internal/gatehouse/service"
	"github.com/hwylde/gatehouse/pkg/gateclient"
	"github.com/hwylde/gatehouse/pkg/httpx"
)

// VerifyHandler serves POST /v1/auth/{role}/verify.
type VerifyHandler struct {
	Auth *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Verify a role credential
//	@Description	Exchanges a role credential (PIN or password) for a signed session token.
//	@Description	Admin verification additionally requires a TOTP code when one is configured server-side.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			role	path		string					true	"Role name"	Enums(staff, admin, upload)
//	@Param			body	body		gateclient.VerifyRequest	true	"Role credential"
//	@Success		200		{object}	gateclient.TokenResponse	"ok, token, role, expiresInSeconds"
//	@Failure		400		{object}	gateclient.APIError		"error, message"
//	@Failure		401		{object}	gateclient.APIError		"error, message, attemptsRemaining"
//	@Failure		429		{object}	gateclient.APIError		"error, message"
//	@Failure		503		{object}	gateclient.APIError		"error, message"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Router			/v1/auth/{role}/verify [post]
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	role, err := domain.ParseRole(r.PathValue("role"))
	if err != nil {
		gateclient.ErrMalformedRequest.WithMessage("unknown role").WriteError(w)
		return
	}

	// Configuration and lockout are decided before the body is read, so a
	// locked-out caller gets 429 even for a body that would not parse.
	if apiErr := h.Auth.PrecheckVerify(r.Context(), role, httpx.ClientIP(r)); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	if apiErr := requireJSON(r); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	var req gateclient.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		gateclient.ErrMalformedRequest.WriteError(w)
		return
	}

	resp, apiErr := h.Auth.Verify(r.Context(), role, req, httpx.ClientIP(r))
	if apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// requireJSON rejects requests that declare a non-JSON content type. An
// absent header is accepted.
func requireJSON(r *http.Request) *gateclient.APIError {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/json") {
		return gateclient.ErrMalformedRequest.WithMessage("content-type must be application/json")
	}
	return nil
}
