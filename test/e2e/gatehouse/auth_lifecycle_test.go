package gatehouse_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/hwylde/gatehouse/pkg/gateclient"
	"github.com/stretchr/testify/require"
)

// TestAuthLifecycle exercises the full flow end to end: verify for each
// role, guarded calls, step-up, logout and role-wide revocation against the
// containerized service.
func TestAuthLifecycle(t *testing.T) {
	baseURL := setupContainer(t)
	client := gateclient.NewClient(baseURL)
	ctx := t.Context()

	t.Run("staff verify and introspect", func(t *testing.T) {
		resp, err := client.Verify(ctx, "staff", gateclient.VerifyRequest{Pin: staffPIN})
		require.NoError(t, err)
		require.True(t, resp.OK)
		require.Equal(t, "staff", resp.Role)

		session, err := client.Session(ctx, resp.Token)
		require.NoError(t, err)
		require.Equal(t, "staff", session.Role)
		require.NotEmpty(t, session.TokenID)
		require.Positive(t, session.ExpiresInSeconds)
	})

	t.Run("wrong pin reports attempts remaining", func(t *testing.T) {
		_, err := client.Verify(ctx, "upload", gateclient.VerifyRequest{Pin: "000000"})

		var apiErr *gateclient.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.NotNil(t, apiErr.AttemptsRemaining)
	})

	t.Run("logout revokes server-side", func(t *testing.T) {
		resp, err := client.Verify(ctx, "staff", gateclient.VerifyRequest{Pin: staffPIN})
		require.NoError(t, err)

		require.NoError(t, client.Logout(ctx, resp.Token))

		_, err = client.Session(ctx, resp.Token)
		var apiErr *gateclient.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})

	t.Run("step-up then role-wide revoke", func(t *testing.T) {
		staffResp, err := client.Verify(ctx, "staff", gateclient.VerifyRequest{Pin: staffPIN})
		require.NoError(t, err)

		adminResp, err := client.Verify(ctx, "admin", gateclient.VerifyRequest{Password: adminPassword})
		require.NoError(t, err)

		// Destructive call without step-up is refused with 428.
		err = client.Revoke(ctx, adminResp.Token, "", "staff")
		var apiErr *gateclient.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusPreconditionRequired, apiErr.StatusCode)

		stepUp, err := client.StepUp(ctx, adminResp.Token, gateclient.StepUpRequest{Password: adminPassword})
		require.NoError(t, err)

		require.NoError(t, client.Revoke(ctx, adminResp.Token, stepUp.Token, "staff"))

		_, err = client.Session(ctx, staffResp.Token)
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode, "staff epoch bumped")

		// A fresh staff login works immediately after the revocation.
		fresh, err := client.Verify(ctx, "staff", gateclient.VerifyRequest{Pin: staffPIN})
		require.NoError(t, err)
		_, err = client.Session(ctx, fresh.Token)
		require.NoError(t, err)
	})

	t.Run("cron heartbeat with the raw secret", func(t *testing.T) {
		require.NoError(t, client.CronPing(ctx, cronSecret))

		err := client.CronPing(ctx, "wrong-secret")
		var apiErr *gateclient.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})

	t.Run("admin token passes staff guard, not vice versa", func(t *testing.T) {
		adminResp, err := client.Verify(ctx, "admin", gateclient.VerifyRequest{Password: adminPassword})
		require.NoError(t, err)

		staffResp, err := client.Verify(ctx, "staff", gateclient.VerifyRequest{Pin: staffPIN})
		require.NoError(t, err)

		// Step-up requires an admin session; a staff token must be refused.
		_, err = client.StepUp(ctx, staffResp.Token, gateclient.StepUpRequest{Password: adminPassword})
		var apiErr *gateclient.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

		// The admin token introspects fine, proving it is a live session.
		session, err := client.Session(ctx, adminResp.Token)
		require.NoError(t, err)
		require.Equal(t, "admin", session.Role)
	})
}

func TestHealthProbes(t *testing.T) {
	baseURL := setupContainer(t)
	client := gateclient.NewClient(baseURL)

	require.NoError(t, client.Live(t.Context()))
	require.NoError(t, client.Ready(t.Context()))
}
