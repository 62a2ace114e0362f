package httpx

import (
	"net/http"
	"strings"
)

// UnknownIP is the rate-limit key used when no forwarding header identifies
// the client. Clients behind the same non-forwarding proxy share one bucket;
// that is an accepted tradeoff.
const UnknownIP = "unknown"

// ClientIP returns the client address for rate-limiting purposes: the first
// entry of X-Forwarded-For, then X-Real-IP, then UnknownIP. RemoteAddr is
// not used; behind the reverse proxy it is always the proxy.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return UnknownIP
}

// BearerToken extracts the credential from an "Authorization: Bearer <...>"
// header. ok is false when the header is absent or not a bearer scheme.
func BearerToken(r *http.Request) (token string, ok bool) {
	authz := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return "", false
	}
	token = strings.TrimSpace(strings.TrimPrefix(authz, prefix))
	return token, token != ""
}
