// Package cryptox holds the credential-comparison primitives for the auth
// service. Every place a secret, signature, or token binding is compared must
// go through this package; plain == on secret material is a timing oracle.
package cryptox

import "crypto/subtle"

// SafeCompare reports whether candidate equals secret in constant time.
//
// Byte lengths are compared first and a mismatch returns false immediately:
// the length of a credential is not secret (the attacker chose the candidate),
// so an early return there leaks nothing about content. Equal-length inputs
// are then compared with a fixed-time byte walk.
func SafeCompare(candidate, secret string) bool {
	if len(candidate) != len(secret) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(secret)) == 1
}
