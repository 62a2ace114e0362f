package gateclient

// VerifyRequest is the body of POST /v1/auth/{role}/verify. Staff, upload and
// cron roles send Pin; admin sends Password and, when TOTP is configured on
// the server, OTP.
type VerifyRequest struct {
	// Pin is the shared numeric credential for pin-based roles.
	Pin string `json:"pin,omitempty"`

	// Password is the admin credential.
	Password string `json:"password,omitempty"`

	// OTP is the optional admin one-time code.
	OTP string `json:"otp,omitempty"`
}

// TokenResponse is returned by a successful verify call.
type TokenResponse struct {
	OK bool `json:"ok"`

	// Token is the signed bearer token for subsequent requests.
	Token string `json:"token"`

	// Role is the role the token was issued for.
	Role string `json:"role"`

	// ExpiresInSeconds is the token lifetime.
	ExpiresInSeconds int `json:"expiresInSeconds"`
}

// StepUpResponse is returned by a successful step-up re-authentication.
type StepUpResponse struct {
	// Token authorizes destructive admin operations. It is bound to the
	// admin session that requested it.
	Token string `json:"token"`

	// ExpiresInSeconds is the step-up token lifetime.
	ExpiresInSeconds int `json:"expiresInSeconds"`
}

// SessionResponse describes the session behind a valid bearer token.
type SessionResponse struct {
	Role string `json:"role"`

	// TokenID is the unique identifier (jti) of the presented token.
	TokenID string `json:"tokenId"`

	// ExpiresInSeconds is the remaining lifetime.
	ExpiresInSeconds int `json:"expiresInSeconds"`

	// ExpiresAt is the absolute expiry as a Unix timestamp.
	ExpiresAt int64 `json:"expiresAt"`
}

// StepUpRequest is the body of POST /v1/auth/step-up.
type StepUpRequest struct {
	Password string `json:"password"`
	OTP      string `json:"otp,omitempty"`
}

// RevokeRequest is the body of POST /v1/auth/revoke. Role selects which
// role's sessions to invalidate.
type RevokeRequest struct {
	Role string `json:"role"`
}

// StatusResponse is the generic acknowledgement body for logout, revoke
// and cron ping.
type StatusResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status,omitempty"`
}

// HealthResponse is the body of the health probe endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Store  string `json:"store"`
	Signer string `json:"signer"`
}
