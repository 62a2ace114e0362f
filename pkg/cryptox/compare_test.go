package cryptox_test

import (
	"strings"
	"testing"

	"github.com/hwylde/gatehouse/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestSafeCompareLengthMismatch(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"empty vs non-empty", "", "1234"},
		{"prefix", "123", "1234"},
		{"suffix", "1234", "234"},
		{"long vs short", strings.Repeat("a", 512), "a"},
		{"binary content", "\x00\x01\x02", "\x00\x01"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.False(t, cryptox.SafeCompare(tc.a, tc.b))
			require.False(t, cryptox.SafeCompare(tc.b, tc.a))
		})
	}
}

func TestSafeCompareEqualLength(t *testing.T) {
	secrets := []string{"1234", "correct horse battery staple", "\x00\xff\x7f", "♞knight"}

	for _, s := range secrets {
		require.True(t, cryptox.SafeCompare(s, s))
	}

	// Any single-byte mutation of an equal-length string must fail.
	secret := "s3cret-pin-9"
	for i := 0; i < len(secret); i++ {
		mutated := []byte(secret)
		mutated[i] ^= 0x01
		require.False(t, cryptox.SafeCompare(string(mutated), secret), "mutation at byte %d", i)
	}
}

func TestVerifySecretPlaintext(t *testing.T) {
	require.True(t, cryptox.VerifySecret("1234", "1234"))
	require.False(t, cryptox.VerifySecret("1235", "1234"))
	require.False(t, cryptox.VerifySecret("", "1234"))
}

func TestVerifySecretArgon2id(t *testing.T) {
	hash, err := cryptox.HashSecret("hunter2!")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.True(t, cryptox.VerifySecret("hunter2!", hash))
	require.False(t, cryptox.VerifySecret("hunter3!", hash))
	require.False(t, cryptox.VerifySecret("", hash))

	t.Run("two hashes of the same secret differ", func(t *testing.T) {
		other, err := cryptox.HashSecret("hunter2!")
		require.NoError(t, err)
		require.NotEqual(t, hash, other, "salts must be random")
		require.True(t, cryptox.VerifySecret("hunter2!", other))
	})

	t.Run("malformed hash never matches", func(t *testing.T) {
		for _, bad := range []string{
			"$argon2id$",
			"$argon2id$v=19$m=19456,t=2,p=1$!!!$!!!",
			"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		} {
			require.False(t, cryptox.VerifySecret("hunter2!", bad))
		}
	})
}
