package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
	"github.com/sagebionetworks/bridge-sdk-go/internal/iocontext"
)

// testEnv is a fake Bridge server plus the environment pointing the CLI at
// it.
type testEnv struct {
	server *httptest.Server
	routes *routeHandler
}

// host is the configured HOST, which sessions are pinned to.
func (e *testEnv) host() string {
	return e.server.URL + "/"
}

// setupTestEnv starts a server for handler and configures every property
// through the environment. Sign-in and sign-out routes are answered unless
// the handler overrides them.
func setupTestEnv(t *testing.T, handler *routeHandler) *testEnv {
	t.Helper()
	resetTestRing()

	if _, ok := handler.routes["POST /api/v1/auth/signIn"]; !ok {
		handler.On("POST", "/api/v1/auth/signIn", signInResponse)
	}
	if _, ok := handler.routes["POST /api/v1/auth/signOut"]; !ok {
		handler.On("POST", "/api/v1/auth/signOut", jsonResponse(http.StatusOK, `{"message":"Signed out."}`))
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	values := map[config.Key]string{
		config.ParticipantEmail:    "participant@example.org",
		config.ParticipantPassword: "secret",
		config.AdminEmail:          "admin@example.org",
		config.AdminPassword:       "secret",
		config.Host:                server.URL + "/",
		config.AuthAPI:             "api/v1/auth",
		config.ProfileAPI:          "api/v1/profile",
		config.ConsentAPI:          "api/v1/consent",
		config.StudyConsentAPI:     "admin/v1/consents",
		config.SchedulePlanningAPI: "researcher/v1/scheduleplans",
		config.SchedulesAPI:        "api/v1/schedules",
		config.ActivitiesAPI:       "api/v1/activities",
		config.SurveysAPI:          "researcher/v1/surveys",
		config.SurveyResponseAPI:   "api/v1/surveys/response",
		config.TrackerAPI:          "api/v1/healthdata",
		config.HealthDataAPI:       "api/v1/healthdata",
		config.UploadAPI:           "api/v1/upload",
		config.ParticipantsAPI:     "api/v3/participants",
		config.UsersAPI:            "api/v3/users",
	}
	for key, value := range values {
		t.Setenv(string(key), value)
	}
	for _, key := range []string{
		"BRIDGE_SDK_CONFIG", "BRIDGE_DEBUG", "BRIDGE_TIMEOUT", "BRIDGE_RATE_LIMIT",
		"BRIDGE_FOLLOW_REDIRECTS", "BRIDGE_CACHE_TTL", "BRIDGE_CACHE_DIR", "BRIDGE_REDIS_ADDR",
	} {
		unsetEnv(t, key)
	}
	t.Setenv("BRIDGE_OUTPUT", "text")
	t.Setenv("BRIDGE_MAX_RETRIES", "0")
	t.Setenv("BRIDGE_CACHE", "off")

	return &testEnv{server: server, routes: handler}
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	_ = os.Unsetenv(key)
}

// seedSession stores a signed-in session for the default profile, as a
// previous 'auth signin' would.
func (e *testEnv) seedSession(t *testing.T, roles ...string) {
	t.Helper()
	require.NoError(t, storeSession("default", e.host(), testSessionFor("participant@example.org", roles...)))
}

// signInResponse grants roles by username: admin@ gets admin, dev@ gets
// developer, anyone else none. The password must be "secret".
func signInResponse(w http.ResponseWriter, r *http.Request) {
	var creds api.SignInCredentials
	_ = json.NewDecoder(r.Body).Decode(&creds)
	if creds.Password != "secret" {
		jsonResponse(http.StatusNotFound, `{"message":"Account not found."}`)(w, r)
		return
	}
	var roles []string
	switch {
	case strings.HasPrefix(creds.Username, "admin@"):
		roles = []string{api.RoleNameAdmin}
	case strings.HasPrefix(creds.Username, "dev@"):
		roles = []string{api.RoleNameDeveloper}
	}
	body, _ := json.Marshal(map[string]any{
		"authenticated": true,
		"sessionToken":  "token-" + creds.Username,
		"username":      creds.Username,
		"roles":         roles,
		"consented":     true,
	})
	w.Header().Set(api.SessionHeader, "token-"+creds.Username)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// runCLI executes args with stdin set to input and returns what the command
// wrote to stdout and stderr.
func runCLI(t *testing.T, input string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	streams, out, errOut := iocontext.Buffers(input)
	ctx := iocontext.WithIO(context.Background(), streams)
	err = Execute(ctx, args)
	return out.String(), errOut.String(), err
}

func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

// routeHandler routes requests by exact "METHOD PATH" and records every
// request it sees. Unknown routes get 404.
type routeHandler struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []string
	tokens   []string
}

func newRouteHandler() *routeHandler {
	return &routeHandler{routes: make(map[string]http.HandlerFunc)}
}

// On registers handler for method and path and returns rh for chaining.
func (rh *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	rh.routes[method+" "+path] = handler
	return rh
}

func (rh *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	rh.mu.Lock()
	rh.requests = append(rh.requests, key)
	rh.tokens = append(rh.tokens, r.Header.Get(api.SessionHeader))
	handler, ok := rh.routes[key]
	rh.mu.Unlock()
	if ok {
		handler(w, r)
		return
	}
	http.NotFound(w, r)
}

// seen returns the requests received so far.
func (rh *routeHandler) seen() []string {
	rh.mu.Lock()
	defer rh.mu.Unlock()
	return append([]string(nil), rh.requests...)
}

// decodeItems parses {"items": [...]} list output.
func decodeItems(t *testing.T, output string) []map[string]any {
	t.Helper()
	var payload struct {
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &payload), "output: %s", output)
	return payload.Items
}

func decodeObject(t *testing.T, output string) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &payload), "output: %s", output)
	return payload
}

func testSessionFor(username string, roles ...string) api.Session {
	session := api.NewSession("test-token", roles...)
	session.Username = username
	return session
}
