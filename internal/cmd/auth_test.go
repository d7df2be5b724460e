package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

func TestAuthSignIn_Participant(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler())

	stdout, _, err := runCLI(t, "", "auth", "signin")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Signed in: participant@example.org")
	assert.Contains(t, stdout, "Roles:     participant")

	stored, err := config.LoadSession("default")
	require.NoError(t, err)
	assert.Equal(t, env.host(), stored.Host)
	assert.Contains(t, string(stored.Session), "token-participant@example.org")
}

func TestAuthSignIn_AdminProfile(t *testing.T) {
	setupTestEnv(t, newRouteHandler())

	stdout, _, err := runCLI(t, "", "auth", "signin", "--admin", "--profile", "ops", "-o", "json")
	require.NoError(t, err)

	payload := decodeObject(t, stdout)
	assert.Equal(t, "ops", payload["profile"])
	assert.Equal(t, true, payload["authenticated"])
	assert.Equal(t, "admin", payload["roles"])
	assert.NotContains(t, stdout, "token-", "the token is never printed")

	_, err = config.LoadSession("ops")
	require.NoError(t, err)
	_, err = config.LoadSession("default")
	assert.ErrorIs(t, err, config.ErrNoSession)
}

func TestAuthSignIn_UsernameFromStdin(t *testing.T) {
	setupTestEnv(t, newRouteHandler())

	stdout, _, err := runCLI(t, "secret\n", "auth", "signin", "--username", "dev@example.org", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Roles:     developer")
}

func TestAuthSignIn_InvalidFlags(t *testing.T) {
	setupTestEnv(t, newRouteHandler())

	tests := []struct {
		name  string
		input string
		args  []string
	}{
		{"username without stdin", "", []string{"auth", "signin", "--username", "dev@example.org"}},
		{"username with admin", "secret\n", []string{"auth", "signin", "--username", "dev@example.org", "--password-stdin", "--admin"}},
		{"empty stdin", "", []string{"auth", "signin", "--username", "dev@example.org", "--password-stdin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.input, tt.args...)
			require.Error(t, err)
			assert.Equal(t, exitUsage, ExitCode(err))
		})
	}
}

func TestAuthSignIn_WrongPassword(t *testing.T) {
	setupTestEnv(t, newRouteHandler())

	_, _, err := runCLI(t, "wrong\n", "auth", "signin", "--username", "dev@example.org", "--password-stdin")
	require.Error(t, err)
	assert.Equal(t, exitAuth, ExitCode(err))

	_, err = config.LoadSession("default")
	assert.ErrorIs(t, err, config.ErrNoSession, "a failed sign-in stores nothing")
}

func TestAuthStatus(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler())

	stdout, _, err := runCLI(t, "", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, `Profile "default" is not signed in`)

	stdout, _, err = runCLI(t, "", "auth", "status", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, false, decodeObject(t, stdout)["authenticated"])

	env.seedSession(t, "researcher")
	stdout, _, err = runCLI(t, "", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Roles:     researcher")
	assert.Empty(t, env.routes.seen(), "status does not call the server")
}

func TestAuthStatus_OtherHost(t *testing.T) {
	setupTestEnv(t, newRouteHandler())
	require.NoError(t, storeSession("default", "https://elsewhere.example.org/", testSessionFor("participant@example.org")))

	stdout, _, err := runCLI(t, "", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "not signed in")
}

func TestAuthSignOut(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler())
	env.seedSession(t)

	_, stderr, err := runCLI(t, "", "auth", "signout")
	require.NoError(t, err)
	assert.Contains(t, stderr, `Signed out of profile "default"`)
	assert.Equal(t, []string{"POST /api/v1/auth/signOut"}, env.routes.seen())
	assert.Equal(t, "test-token", env.routes.tokens[0])

	_, err = config.LoadSession("default")
	assert.ErrorIs(t, err, config.ErrNoSession)

	_, stderr, err = runCLI(t, "", "auth", "signout")
	require.NoError(t, err, "signing out twice is harmless")
	assert.Contains(t, stderr, "is not signed in")
}

func TestAuthSignOut_ServerFailureStillForgets(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler().
		On("POST", "/api/v1/auth/signOut", jsonResponse(500, `{"message":"boom"}`)))
	env.seedSession(t)

	_, stderr, err := runCLI(t, "", "auth", "signout")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Warning: server sign-out failed")

	_, err = config.LoadSession("default")
	assert.ErrorIs(t, err, config.ErrNoSession)
}
