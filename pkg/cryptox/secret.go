package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters, matching the OWASP minimum recommendation.
const (
	argonMemory      = 19 * 1024 // KiB
	argonIterations  = 2
	argonParallelism = 1
	argonKeyLength   = 32
	argonSaltLength  = 16
)

// hashPrefix marks a configured secret as an Argon2id PHC string rather than
// a plaintext PIN/password.
const hashPrefix = "$argon2id$"

// VerifySecret compares a candidate credential against a configured secret.
//
// The configured value may be either the plaintext credential itself (the
// common case for short numeric PINs) or an Argon2id PHC-format hash produced
// by HashSecret, recognised by its "$argon2id$" prefix. Both paths end in a
// constant-time comparison.
func VerifySecret(candidate, configured string) bool {
	if strings.HasPrefix(configured, hashPrefix) {
		return verifyArgon2id(candidate, configured) == nil
	}
	return SafeCompare(candidate, configured)
}

// HashSecret produces a PHC-format Argon2id hash suitable for storing in the
// environment instead of a plaintext credential.
func HashSecret(secret string) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(secret), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)

	return fmt.Sprintf("%sv=19$m=%d,t=%d,p=%d$%s$%s",
		hashPrefix,
		argonMemory, argonIterations, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// verifyArgon2id checks a candidate against a PHC string of the form
// $argon2id$v=19$m=X,t=Y,p=Z$salt$hash. Parameters are taken from the stored
// string so older hashes keep verifying after a parameter bump.
func verifyArgon2id(candidate, encoded string) error {
	parts := strings.Split(encoded, "$")
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", salt, hash]
	if len(parts) != 6 {
		return errors.New("cryptox: malformed argon2id hash")
	}
	if parts[1] != "argon2id" || parts[2] != "v=19" {
		return errors.New("cryptox: unsupported hash variant")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("cryptox: parse hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("cryptox: decode salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("cryptox: decode hash: %w", err)
	}

	got := argon2.IDKey([]byte(candidate), salt, iters, mem, par, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return errors.New("cryptox: secret mismatch")
	}
	return nil
}
