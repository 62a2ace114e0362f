package tokenx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hwylde/gatehouse/pkg/idx"
)

// Claims are the payload of every token the service issues. Session tokens
// and step-up tokens share one shape; a step-up token is distinguished by a
// non-empty Bind.
type Claims struct {
	jwt.RegisteredClaims

	// Role the bearer authenticated as ("staff", "admin", "upload").
	Role string `json:"role"`

	// Epoch is the role's token version at signing time. Bumping the stored
	// epoch invalidates every token carrying a smaller value, which is how we
	// revoke all of a role's sessions without enumerating them.
	Epoch int64 `json:"tv,omitempty"`

	// Bind is the jti of the admin session token a step-up token was minted
	// for. A step-up token is only accepted alongside that exact session.
	Bind string `json:"bind,omitempty"`
}

// NewSessionClaims builds claims for a session token. Timestamps are
// truncated to whole seconds; the wire format carries integer unix seconds.
func NewSessionClaims(role string, epoch int64, ttl time.Duration, now time.Time) Claims {
	now = now.UTC().Truncate(time.Second)
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        idx.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:  role,
		Epoch: epoch,
	}
}

// NewStepUpClaims builds claims for a step-up token bound to the session
// token identified by bind.
func NewStepUpClaims(role, bind string, ttl time.Duration, now time.Time) Claims {
	now = now.UTC().Truncate(time.Second)
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        idx.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
		Bind: bind,
	}
}

// TTL returns exp-iat, the lifetime the token was issued with.
func (c Claims) TTL() time.Duration {
	if c.ExpiresAt == nil || c.IssuedAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(c.IssuedAt.Time)
}

// Remaining returns the time until expiry, or zero if already expired.
func (c Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	d := c.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
