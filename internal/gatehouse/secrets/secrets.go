// Package secrets reads role credentials and the token signing key from the
// environment. Values are re-read on every call; the cost is negligible and
// it keeps tests free of process-global state beyond t.Setenv.
package secrets

import (
	"os"

	"github.com/hwylde/gatehouse/internal/gatehouse/domain"
)

// Store resolves configured secrets. The distinction between "not configured"
// (ok=false) and "configured but mismatched" matters: the former is a 503
// service misconfiguration, the latter a 401.
type Store interface {
	// Secret returns the credential configured for a role.
	Secret(role domain.Role) (string, bool)

	// SigningKey returns the HMAC secret shared by all token-issuing roles.
	SigningKey() (string, bool)

	// AdminTOTP returns the optional admin TOTP secret. When set, admin
	// verify and step-up require a valid one-time code.
	AdminTOTP() (string, bool)
}

var roleEnv = map[domain.Role]string{
	domain.RoleStaff:  "STAFF_PIN",
	domain.RoleAdmin:  "ADMIN_PASSWORD",
	domain.RoleUpload: "UPLOAD_PIN",
	domain.RoleCron:   "CRON_SECRET",
}

// EnvStore reads secrets from process environment variables.
type EnvStore struct{}

// NewEnvStore returns the environment-backed secret store.
func NewEnvStore() EnvStore { return EnvStore{} }

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (EnvStore) Secret(role domain.Role) (string, bool) {
	name, ok := roleEnv[role]
	if !ok {
		return "", false
	}
	return lookup(name)
}

func (EnvStore) SigningKey() (string, bool) {
	return lookup("AUTH_SECRET")
}

func (EnvStore) AdminTOTP() (string, bool) {
	return lookup("ADMIN_TOTP_SECRET")
}
