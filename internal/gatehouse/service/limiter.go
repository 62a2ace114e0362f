package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hwylde/gatehouse/internal/gatehouse/domain"
	"github.com/hwylde/gatehouse/internal/gatehouse/store"
	"github.com/hwylde/gatehouse/pkg/slogx"
)

const (
	// MaxAttempts is the number of failed credential checks allowed per
	// (role, ip) pair before lockout.
	MaxAttempts = 5

	// LockoutWindow is how long the failure counter lives. The window is
	// fixed at the first failure, not sliding.
	LockoutWindow = 15 * time.Minute
)

// Limiter counts failed credential checks per (role, ip) in the shared KV
// store. It fails OPEN: if the store is unreachable the check passes, because
// locking every legitimate user out during a store outage is worse than
// briefly losing brute-force protection. The credential check itself still
// stands between the caller and a token.
type Limiter struct {
	KV store.KV
}

func limitKey(role domain.Role, ip string) string {
	return fmt.Sprintf("ratelimit:%s:%s", role, ip)
}

// Check reports whether the pair is locked out, and how many attempts remain.
func (l *Limiter) Check(ctx context.Context, role domain.Role, ip string) (remaining int, limited bool) {
	raw, ok, err := l.KV.Get(ctx, limitKey(role, ip))
	if err != nil {
		slogx.FromContext(ctx).Warn("rate limiter store read failed, allowing request",
			"role", role, "error", err)
		return MaxAttempts, false
	}
	if !ok {
		return MaxAttempts, false
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return MaxAttempts, false
	}
	remaining = MaxAttempts - int(n)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, n >= MaxAttempts
}

// RecordFailure bumps the failure counter and returns the attempts remaining.
func (l *Limiter) RecordFailure(ctx context.Context, role domain.Role, ip string) (remaining int) {
	n, err := l.KV.Incr(ctx, limitKey(role, ip), LockoutWindow)
	if err != nil {
		slogx.FromContext(ctx).Warn("rate limiter store write failed",
			"role", role, "error", err)
		return MaxAttempts - 1
	}
	remaining = MaxAttempts - int(n)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Clear resets the counter after a successful credential check.
func (l *Limiter) Clear(ctx context.Context, role domain.Role, ip string) {
	if err := l.KV.Delete(ctx, limitKey(role, ip)); err != nil {
		slogx.FromContext(ctx).Warn("rate limiter store delete failed",
			"role", role, "error", err)
	}
}
