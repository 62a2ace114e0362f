package service

import (
	"context"
	"time"

	"github.com/hwylde/gatehouse/internal/gatehouse/domain"
	"github.com/hwylde/gatehouse/internal/gatehouse/secrets"
	"github.com/hwylde/gatehouse/internal/gatehouse/store"
	"github.com/hwylde/gatehouse/pkg/cryptox"
	"github.com/hwylde/gatehouse/pkg/gateclient"
	"github.com/hwylde/gatehouse/pkg/slogx"
	"github.com/hwylde/gatehouse/pkg/tokenx"
	"github.com/pquerna/otp/totp"
)

// AuthService orchestrates credential verification, token issuance and the
// guards protecting role-scoped endpoints. Every method returns a
// *gateclient.APIError so handlers can write the failure straight to the
// wire without interpreting it.
type AuthService struct {
	Secrets     secrets.Store
	Limiter     *Limiter
	Revocations *Revocations

	// Now is swappable for expiry tests. Nil means time.Now.
	Now func() time.Time
}

// NewAuthService wires the service over a shared KV store.
func NewAuthService(sec secrets.Store, kv store.KV) *AuthService {
	return &AuthService{
		Secrets:     sec,
		Limiter:     &Limiter{KV: kv},
		Revocations: &Revocations{KV: kv},
	}
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// codec builds the token codec from the currently configured signing key.
func (s *AuthService) codec() (*tokenx.Codec, *gateclient.APIError) {
	key, ok := s.Secrets.SigningKey()
	if !ok {
		return nil, gateclient.ErrUnavailable
	}
	return tokenx.New(key), nil
}

// RequireRole authenticates a bearer credential against a required role.
// For cron the bearer IS the configured secret, compared in constant time;
// no token is involved. For every other role the bearer is a session token,
// which must verify, carry an accepted role, not be individually revoked,
// and not predate its role's epoch.
func (s *AuthService) RequireRole(ctx context.Context, bearer string, role domain.Role) (tokenx.Claims, *gateclient.APIError) {
	if bearer == "" {
		return tokenx.Claims{}, gateclient.ErrInvalidToken
	}

	if role == domain.RoleCron {
		secret, ok := s.Secrets.Secret(domain.RoleCron)
		if !ok {
			return tokenx.Claims{}, gateclient.ErrUnavailable
		}
		if !cryptox.SafeCompare(bearer, secret) {
			return tokenx.Claims{}, gateclient.ErrInvalidToken
		}
		return tokenx.Claims{Role: domain.RoleCron.String()}, nil
	}

	codec, apiErr := s.codec()
	if apiErr != nil {
		return tokenx.Claims{}, apiErr
	}

	claims, err := codec.Verify(bearer, role.Accepted()...)
	if err != nil {
		return tokenx.Claims{}, gateclient.ErrInvalidToken
	}

	return s.checkSession(ctx, claims)
}

// tokenRoles is every role whose bearer credential is a session token.
var tokenRoles = []string{
	domain.RoleStaff.String(),
	domain.RoleAdmin.String(),
	domain.RoleUpload.String(),
}

// RequireSession authenticates a bearer token of any token-issuing role.
// Used by endpoints that act on the presented session itself, like logout
// and introspection.
func (s *AuthService) RequireSession(ctx context.Context, bearer string) (tokenx.Claims, *gateclient.APIError) {
	if bearer == "" {
		return tokenx.Claims{}, gateclient.ErrInvalidToken
	}

	codec, apiErr := s.codec()
	if apiErr != nil {
		return tokenx.Claims{}, apiErr
	}

	claims, err := codec.Verify(bearer, tokenRoles...)
	if err != nil {
		return tokenx.Claims{}, gateclient.ErrInvalidToken
	}

	return s.checkSession(ctx, claims)
}

// checkSession applies the server-side validity checks a signature alone
// cannot answer: revocation by jti and the role epoch.
func (s *AuthService) checkSession(ctx context.Context, claims tokenx.Claims) (tokenx.Claims, *gateclient.APIError) {
	// Step-up tokens are not session tokens. A bound token presented as a
	// bearer credential is rejected even though its signature is valid.
	if claims.Bind != "" {
		return tokenx.Claims{}, gateclient.ErrInvalidToken
	}

	revoked, err := s.Revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		slogx.FromContext(ctx).Warn("revocation store unreachable, rejecting token", "error", err)
	}
	if revoked {
		return tokenx.Claims{}, gateclient.ErrInvalidToken
	}

	epoch, err := s.Revocations.RoleEpoch(ctx, claims.Role)
	if err != nil {
		slogx.FromContext(ctx).Warn("epoch read failed, rejecting token", "error", err)
		return tokenx.Claims{}, gateclient.ErrInvalidToken
	}
	if claims.Epoch < epoch {
		return tokenx.Claims{}, gateclient.ErrInvalidToken
	}

	return claims, nil
}

// PrecheckVerify runs every check that precedes reading the request body:
// the role must have a verify policy, its secret and the signing key must be
// configured, and the (role, ip) pair must not be locked out. Handlers call
// it before decoding so a locked-out caller sees 429 even for a body that
// would not parse, and a misconfigured deployment answers 503 before
// anything else.
func (s *AuthService) PrecheckVerify(ctx context.Context, role domain.Role, ip string) *gateclient.APIError {
	if _, ok := domain.PolicyFor(role); !ok {
		return gateclient.ErrMalformedRequest.WithMessage("role has no interactive verify flow")
	}
	if _, ok := s.Secrets.Secret(role); !ok {
		return gateclient.ErrUnavailable
	}
	if _, apiErr := s.codec(); apiErr != nil {
		return apiErr
	}
	if _, limited := s.Limiter.Check(ctx, role, ip); limited {
		return gateclient.ErrRateLimited
	}
	return nil
}

// Verify checks a submitted credential for a role and issues a session
// token. Configuration checks come first so a missing secret or signing key
// is always 503, never a credential failure; the lockout check comes before
// the credential comparison so a locked-out caller learns nothing from a
// 429.
func (s *AuthService) Verify(ctx context.Context, role domain.Role, req gateclient.VerifyRequest, ip string) (*gateclient.TokenResponse, *gateclient.APIError) {
	if apiErr := s.PrecheckVerify(ctx, role, ip); apiErr != nil {
		return nil, apiErr
	}

	policy, _ := domain.PolicyFor(role)
	secret, _ := s.Secrets.Secret(role)

	var candidate string
	switch policy.Field {
	case "pin":
		candidate = req.Pin
	case "password":
		candidate = req.Password
	}
	candidate = policy.Sanitize(candidate)
	if candidate == "" {
		return nil, gateclient.ErrMalformedRequest.WithMessage("missing required field: " + policy.Field)
	}

	if !cryptox.VerifySecret(candidate, secret) {
		remaining := s.Limiter.RecordFailure(ctx, role, ip)
		slogx.FromContext(ctx).Info("credential check failed",
			"role", role, "attempts_remaining", remaining)
		return nil, gateclient.ErrInvalidCredentials.WithAttempts(remaining)
	}

	if role == domain.RoleAdmin {
		if apiErr := s.checkAdminOTP(ctx, req.OTP, ip); apiErr != nil {
			return nil, apiErr
		}
	}

	s.Limiter.Clear(ctx, role, ip)

	epoch, err := s.Revocations.RoleEpoch(ctx, role.String())
	if err != nil {
		return nil, gateclient.ErrUnavailable
	}

	codec, apiErr := s.codec()
	if apiErr != nil {
		return nil, apiErr
	}

	claims := tokenx.NewSessionClaims(role.String(), epoch, policy.SessionTTL, s.now())
	token, err := codec.Sign(claims)
	if err != nil {
		return nil, gateclient.ErrServerError
	}

	slogx.FromContext(ctx).Info("session issued", "role", role, "jti", claims.ID)
	return &gateclient.TokenResponse{
		OK:               true,
		Token:            token,
		Role:             role.String(),
		ExpiresInSeconds: int(policy.SessionTTL.Seconds()),
	}, nil
}

// checkAdminOTP enforces the optional TOTP second factor. When no TOTP
// secret is configured the check is a no-op. A wrong or missing code counts
// as a failed attempt like a wrong password would.
func (s *AuthService) checkAdminOTP(ctx context.Context, code, ip string) *gateclient.APIError {
	totpSecret, configured := s.Secrets.AdminTOTP()
	if !configured {
		return nil
	}
	if code == "" || !totp.Validate(code, totpSecret) {
		remaining := s.Limiter.RecordFailure(ctx, domain.RoleAdmin, ip)
		return gateclient.ErrInvalidCredentials.WithAttempts(remaining)
	}
	return nil
}

// CreateStepUp re-verifies the admin password against a live admin session
// and mints a short-lived token bound to that session's jti. The binding
// means a stolen step-up token is useless without the session it was minted
// for.
func (s *AuthService) CreateStepUp(ctx context.Context, session tokenx.Claims, req gateclient.StepUpRequest, ip string) (*gateclient.StepUpResponse, *gateclient.APIError) {
	secret, ok := s.Secrets.Secret(domain.RoleAdmin)
	if !ok {
		return nil, gateclient.ErrUnavailable
	}
	codec, apiErr := s.codec()
	if apiErr != nil {
		return nil, apiErr
	}

	if _, limited := s.Limiter.Check(ctx, domain.RoleAdmin, ip); limited {
		return nil, gateclient.ErrRateLimited
	}

	if req.Password == "" {
		return nil, gateclient.ErrMalformedRequest.WithMessage("missing required field: password")
	}
	if !cryptox.VerifySecret(req.Password, secret) {
		remaining := s.Limiter.RecordFailure(ctx, domain.RoleAdmin, ip)
		return nil, gateclient.ErrInvalidCredentials.WithAttempts(remaining)
	}
	if apiErr := s.checkAdminOTP(ctx, req.OTP, ip); apiErr != nil {
		return nil, apiErr
	}

	s.Limiter.Clear(ctx, domain.RoleAdmin, ip)

	claims := tokenx.NewStepUpClaims(domain.RoleAdmin.String(), session.ID, domain.StepUpTTL, s.now())
	token, err := codec.Sign(claims)
	if err != nil {
		return nil, gateclient.ErrServerError
	}

	slogx.FromContext(ctx).Info("step-up issued", "bound_jti", session.ID)
	return &gateclient.StepUpResponse{
		Token:            token,
		ExpiresInSeconds: int(domain.StepUpTTL.Seconds()),
	}, nil
}

// RequireStepUp validates the step-up token accompanying a destructive
// operation. Absence is 428 (retry after re-authenticating); presence of an
// unusable token is 401.
func (s *AuthService) RequireStepUp(ctx context.Context, stepUp string, session tokenx.Claims) *gateclient.APIError {
	if stepUp == "" {
		return gateclient.ErrStepUpRequired
	}

	codec, apiErr := s.codec()
	if apiErr != nil {
		return apiErr
	}

	claims, err := codec.Verify(stepUp, domain.RoleAdmin.String())
	if err != nil {
		return gateclient.ErrStepUpInvalid
	}
	if claims.Bind == "" || claims.Bind != session.ID {
		return gateclient.ErrStepUpInvalid
	}
	return nil
}

// RevokeSession revokes the presented token's jti for its remaining
// lifetime.
func (s *AuthService) RevokeSession(ctx context.Context, session tokenx.Claims) *gateclient.APIError {
	if err := s.Revocations.RevokeJTI(ctx, session.ID, session.Remaining(s.now())); err != nil {
		slogx.FromContext(ctx).Error("failed to persist revocation", "jti", session.ID, "error", err)
		return gateclient.ErrUnavailable
	}
	slogx.FromContext(ctx).Info("session revoked", "jti", session.ID, "role", session.Role)
	return nil
}

// RevokeRoleSessions invalidates every outstanding session for a role by
// bumping its epoch.
func (s *AuthService) RevokeRoleSessions(ctx context.Context, role domain.Role) *gateclient.APIError {
	epoch, err := s.Revocations.BumpRoleEpoch(ctx, role)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to bump role epoch", "role", role, "error", err)
		return gateclient.ErrUnavailable
	}
	slogx.FromContext(ctx).Info("role sessions revoked", "role", role, "epoch", epoch)
	return nil
}
