package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
	"github.com/sagebionetworks/bridge-sdk-go/internal/resolve"
)

func TestExitCodeMapping(t *testing.T) {
	notFound := &api.ServerError{StatusCode: http.StatusNotFound, Message: "Survey not found."}
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, exitOK},
		{"help", pflag.ErrHelp, exitOK},
		{"usage", usageErrorf("--created-on is required"), exitUsage},
		{"argument", &api.ArgumentError{Name: "guid", Reason: "must not be empty"}, exitUsage},
		{"config", &config.MissingPropertyError{Key: config.Host}, exitUsage},
		{"ambiguous", &resolve.AmbiguousError{Query: "sleep"}, exitUsage},
		{"cobra unknown command", errors.New(`unknown command "nope" for "bridge"`), exitUsage},
		{"cobra required flag", errors.New(`required flag(s) "tracker" not set`), exitUsage},
		{"no session", fmt.Errorf("wrapped: %w", config.ErrNoSession), exitAuth},
		{"signed out", api.ErrNotSignedIn("GetSchedules"), exitAuth},
		{"auth", &api.AuthError{ServerError: &api.ServerError{StatusCode: http.StatusUnauthorized}}, exitAuth},
		{"credentials", &api.InvalidCredentialsError{Username: "ada", Err: notFound}, exitAuth},
		{"not found", notFound, exitNotFound},
		{"unresolved", &resolve.NotFoundError{Query: "steps"}, exitNotFound},
		{"server", &api.ServerError{StatusCode: http.StatusInternalServerError}, exitServer},
		{"transport", &api.TransportError{Method: "GET", URL: "http://localhost/", Err: errors.New("connection refused")}, exitTransport},
		{"generic", errors.New("boom"), exitGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, ExitCode(tc.err))
		})
	}
}
