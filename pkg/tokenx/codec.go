// Package tokenx signs and verifies the compact session and step-up tokens
// used by the auth service. Tokens are standard HS256 JWTs: three
// dot-separated base64url segments with an {"alg":"HS256","typ":"JWT"}
// header, signed with the single process-wide signing secret. One key
// validates tokens for every role; rotating it invalidates all outstanding
// tokens at once.
package tokenx

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSecret means the signing secret is not configured. Callers must
	// surface this as "auth unavailable", never as a failed credential.
	ErrNoSecret = errors.New("tokenx: signing secret not configured")

	// ErrMalformed means the token is not three dot-separated segments or
	// the payload does not decode.
	ErrMalformed = errors.New("tokenx: malformed token")

	// ErrExpired means the signature checked out but exp is in the past.
	ErrExpired = errors.New("tokenx: token expired")

	// ErrRole means the token's role is not in the accepted set.
	ErrRole = errors.New("tokenx: role not accepted")

	// ErrInvalid covers every other failure (bad signature, wrong alg, bad
	// claims). Responses must never distinguish these cases.
	ErrInvalid = errors.New("tokenx: invalid token")
)

// Codec signs and verifies tokens with a single HMAC-SHA256 key.
type Codec struct {
	secret []byte
}

// New returns a Codec using the given signing secret. An empty secret is
// allowed at construction; Sign and Verify then fail with ErrNoSecret, which
// keeps "not configured" a per-request decision rather than a startup panic.
func New(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Sign serialises claims into a signed compact token.
func (c *Codec) Sign(claims Claims) (string, error) {
	if len(c.secret) == 0 {
		return "", ErrNoSecret
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("tokenx: sign: %w", err)
	}
	return tok, nil
}

// Verify parses raw and returns its claims when, and only when, all of the
// following hold: the structure is header.payload.signature, the signature
// verifies under HS256 with the codec's secret, exp is in the future, and the
// embedded role is one of roles. The HMAC comparison inside the parser is
// constant-time.
//
// Revocation and epoch checks are deliberately not done here: the codec is
// pure computation so it stays trivially testable. The auth service layers
// those on top.
func (c *Codec) Verify(raw string, roles ...string) (Claims, error) {
	if len(c.secret) == 0 {
		return Claims{}, ErrNoSecret
	}
	if strings.Count(raw, ".") != 2 {
		return Claims{}, ErrMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, ErrMalformed
	default:
		return Claims{}, ErrInvalid
	}

	if !slices.Contains(roles, claims.Role) {
		return Claims{}, ErrRole
	}
	return claims, nil
}
