package domain

import (
	"strings"
	"time"
)

// VerifyPolicy describes how a role's interactive verify flow works: which
// JSON field carries the credential, how the submitted value is normalised,
// and how long an issued session lasts.
type VerifyPolicy struct {
	// Field is the request body field the credential arrives in.
	Field string

	// DigitsOnly strips everything but digits from the submitted value
	// before comparison, so "12 34" and "12-34" match a PIN of "1234".
	DigitsOnly bool

	// SessionTTL is the lifetime of session tokens issued for the role.
	SessionTTL time.Duration
}

// StepUpTTL is the lifetime of admin step-up tokens. Deliberately short so a
// leaked step-up token is useless minutes later.
const StepUpTTL = 5 * time.Minute

var verifyPolicies = map[Role]VerifyPolicy{
	RoleStaff:  {Field: "pin", DigitsOnly: true, SessionTTL: 12 * time.Hour},
	RoleUpload: {Field: "pin", DigitsOnly: true, SessionTTL: 12 * time.Hour},
	RoleAdmin:  {Field: "password", SessionTTL: 2 * time.Hour},
	// cron has no policy: it is a machine credential presented directly as
	// a bearer secret and never exchanged for a token.
}

// PolicyFor returns the verify policy for a role. ok is false for roles with
// no interactive verify flow.
func PolicyFor(role Role) (VerifyPolicy, bool) {
	p, ok := verifyPolicies[role]
	return p, ok
}

// Sanitize normalises a submitted credential per the policy.
func (p VerifyPolicy) Sanitize(raw string) string {
	raw = strings.TrimSpace(raw)
	if !p.DigitsOnly {
		return raw
	}
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
