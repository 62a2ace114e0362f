package gatehouse_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/hwylde/gatehouse/pkg/gateclient"
	"github.com/stretchr/testify/require"
)

// TestCredentialLockout exercises the (role, ip) lockout against the real
// store in the container: five wrong PINs lock the pair out, and the 429
// persists even for a correct PIN.
func TestCredentialLockout(t *testing.T) {
	baseURL := setupContainer(t)
	client := gateclient.NewClient(baseURL)
	ctx := t.Context()

	var apiErr *gateclient.APIError
	for i := range 5 {
		_, err := client.Verify(ctx, "upload", gateclient.VerifyRequest{Pin: "000000"})
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode, "attempt %d", i+1)
	}

	_, err := client.Verify(ctx, "upload", gateclient.VerifyRequest{Pin: uploadPIN})
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode,
		"correct pin is still refused during lockout")

	t.Run("other roles unaffected", func(t *testing.T) {
		_, err := client.Verify(ctx, "staff", gateclient.VerifyRequest{Pin: staffPIN})
		require.NoError(t, err)
	})
}
