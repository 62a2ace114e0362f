package service

import (
	"context"
	"strconv"
	"time"

	"github.com/hwylde/gatehouse/internal/gatehouse/domain"
	"github.com/hwylde/gatehouse/internal/gatehouse/store"
)

// Revocations tracks individually revoked token ids and per-role epochs in
// the shared KV store. Unlike the rate limiter it fails CLOSED: when the
// store cannot answer, a token whose revocation status is unknown is treated
// as revoked. Accepting a possibly-revoked token is the one mistake this
// subsystem exists to prevent.
type Revocations struct {
	KV store.KV
}

func jtiKey(jti string) string { return "revoked:" + jti }

func epochKey(role string) string { return "epoch:" + role }

// RevokeJTI marks a token id revoked for at least ttl, which callers set to
// the token's remaining lifetime. After that the token is expired anyway and
// the marker can lapse.
func (r *Revocations) RevokeJTI(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return r.KV.Set(ctx, jtiKey(jti), "1", ttl)
}

// IsRevoked reports whether a token id has been revoked. A store error
// reports revoked=true alongside the error.
func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, ok, err := r.KV.Get(ctx, jtiKey(jti))
	if err != nil {
		return true, err
	}
	return ok, nil
}

// BumpRoleEpoch invalidates every outstanding token for a role: tokens carry
// the epoch current at issue time and verification requires it to be at
// least the stored value. The counter never expires.
func (r *Revocations) BumpRoleEpoch(ctx context.Context, role domain.Role) (int64, error) {
	return r.KV.Incr(ctx, epochKey(role.String()), 0)
}

// RoleEpoch returns the current epoch for a role. A role that has never been
// bumped is at epoch 0.
func (r *Revocations) RoleEpoch(ctx context.Context, role string) (int64, error) {
	raw, ok, err := r.KV.Get(ctx, epochKey(role))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return n, nil
}
