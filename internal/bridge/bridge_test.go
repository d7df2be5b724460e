package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// fakeBridge is a minimal server: sign-in grants the roles listed in
// rolesByUser and every other request answers with handler.
type fakeBridge struct {
	*httptest.Server
	calls       atomic.Int32
	mu          sync.Mutex
	paths       []string
	rolesByUser map[string][]string
	handler     http.HandlerFunc
}

func newFakeBridge(t *testing.T) *fakeBridge {
	t.Helper()
	fb := &fakeBridge{rolesByUser: map[string][]string{
		"participant@example.org": nil,
		"admin@example.org":       {api.RoleNameAdmin},
		"dev@example.org":         {api.RoleNameDeveloper},
		"researcher@example.org":  {api.RoleNameResearcher},
	}}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.Close)
	return fb
}

func (fb *fakeBridge) serve(w http.ResponseWriter, r *http.Request) {
	fb.calls.Add(1)
	fb.mu.Lock()
	fb.paths = append(fb.paths, r.Method+" "+r.URL.Path)
	fb.mu.Unlock()

	switch r.URL.Path {
	case "/api/v1/auth/signIn":
		var creds api.SignInCredentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		roles, ok := fb.rolesByUser[creds.Username]
		if !ok || creds.Password != "secret" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Account not found."}`))
			return
		}
		w.Header().Set(api.SessionHeader, "token-"+creds.Username)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"authenticated": true,
			"sessionToken":  "token-" + creds.Username,
			"username":      creds.Username,
			"roles":         roles,
		})
	case "/api/v1/auth/signOut":
		_, _ = w.Write([]byte(`{"message":"Signed out."}`))
	default:
		if fb.handler != nil {
			fb.handler(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"items":[],"total":0}`))
	}
}

func (fb *fakeBridge) requests() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.paths...)
}

func testConfig(t *testing.T, host string) *config.Config {
	t.Helper()
	cfg, err := config.FromValues(map[config.Key]string{
		config.ParticipantEmail:    "participant@example.org",
		config.ParticipantPassword: "secret",
		config.AdminEmail:          "admin@example.org",
		config.AdminPassword:       "secret",
		config.Host:                host + "/",
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
	})
	require.NoError(t, err)
	return cfg
}

func newTestProvider(t *testing.T, fb *fakeBridge) *Provider {
	t.Helper()
	settings := config.DefaultSettings()
	settings.MaxRetries = 0
	p, err := NewProvider(testConfig(t, fb.URL), settings)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestNewProvider(t *testing.T) {
	fb := newFakeBridge(t)
	p := newTestProvider(t, fb)

	assert.False(t, p.IsSignedIn())
	assert.Equal(t, fb.URL+"/", p.Config().Host())
	assert.Equal(t, int32(0), fb.calls.Load())

	_, err := NewProvider(nil, config.DefaultSettings())
	assert.True(t, api.IsArgumentError(err))

	bad := config.DefaultSettings()
	bad.Cache = "memcached"
	_, err = NewProvider(testConfig(t, fb.URL), bad)
	assert.True(t, config.IsInvalidConfigError(err))
}

func TestProvider_SignInAndOut(t *testing.T) {
	fb := newFakeBridge(t)
	p := newTestProvider(t, fb)
	ctx := context.Background()

	session, err := p.SignInParticipant(ctx)
	require.NoError(t, err)
	assert.True(t, session.SignedIn())
	assert.NotEmpty(t, session.Token())
	assert.True(t, p.IsSignedIn())
	assert.Equal(t, NoRoles, p.Roles())

	require.NoError(t, p.SignOut(ctx))
	assert.False(t, p.IsSignedIn())
	assert.Empty(t, p.Session().Token())

	require.NoError(t, p.SignOut(ctx), "signing out twice is safe")
	assert.Equal(t, []string{"POST /api/v1/auth/signIn", "POST /api/v1/auth/signOut"}, fb.requests())
}

func TestProvider_SignInAdmin(t *testing.T) {
	fb := newFakeBridge(t)
	p := newTestProvider(t, fb)

	_, err := p.SignInAdmin(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Roles().Has(RoleAdmin))
}

func TestProvider_GarbageCredentials(t *testing.T) {
	fb := newFakeBridge(t)
	p := newTestProvider(t, fb)

	session, err := p.SignIn(context.Background(), "garbage@example.org", "garbage")
	require.Error(t, err)
	assert.True(t, api.IsInvalidCredentialsError(err))
	assert.False(t, session.SignedIn())
	assert.False(t, p.IsSignedIn())
}

func TestProvider_FailedSignInDropsPreviousSession(t *testing.T) {
	fb := newFakeBridge(t)
	p := newTestProvider(t, fb)
	ctx := context.Background()

	_, err := p.SignInParticipant(ctx)
	require.NoError(t, err)
	_, err = p.SignIn(ctx, "participant@example.org", "wrong")
	require.Error(t, err)
	assert.False(t, p.IsSignedIn())
}

func TestProvider_Resume(t *testing.T) {
	fb := newFakeBridge(t)
	p := newTestProvider(t, fb)

	require.NoError(t, p.Resume(api.NewSession("stored-token", api.RoleNameDeveloper)))
	assert.True(t, p.IsSignedIn())
	assert.True(t, p.Roles().Has(RoleDeveloper))

	err := p.Resume(api.Session{})
	assert.True(t, api.IsArgumentError(err))
	assert.True(t, p.IsSignedIn(), "a rejected resume keeps the current session")
}

func TestProvider_SignOutServerErrorStillSignsOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	settings := config.DefaultSettings()
	p, err := NewProvider(testConfig(t, server.URL), settings)
	require.NoError(t, err)
	require.NoError(t, p.Resume(api.NewSession("token")))

	err = p.SignOut(context.Background())
	assert.True(t, api.IsServerError(err))
	assert.False(t, p.IsSignedIn())
}

func TestProvider_String(t *testing.T) {
	fb := newFakeBridge(t)
	p := newTestProvider(t, fb)
	require.NoError(t, p.Resume(api.NewSession("do-not-print")))

	assert.NotContains(t, fmt.Sprint(p), "do-not-print")
	assert.Contains(t, fmt.Sprint(p), strings.TrimPrefix(fb.URL, "http://"))
}

func TestProvider_ConcurrentSessionAccess(t *testing.T) {
	fb := newFakeBridge(t)
	p := newTestProvider(t, fb)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = p.SignInParticipant(ctx)
			} else {
				_, _ = p.Client().GetAllTrackers(ctx)
			}
		}()
	}
	wg.Wait()
	assert.True(t, p.IsSignedIn())
}

func TestProvider_CacheSettings(t *testing.T) {
	fb := newFakeBridge(t)
	settings := config.DefaultSettings()
	settings.Cache = config.CacheFile
	settings.CacheDir = t.TempDir()
	settings.CacheTTL = time.Hour

	p, err := NewProvider(testConfig(t, fb.URL), settings)
	require.NoError(t, err)
	assert.NoError(t, p.Close())

	settings.Cache = config.CacheRedis
	settings.RedisAddr = "127.0.0.1:1"
	p, err = NewProvider(testConfig(t, fb.URL), settings)
	require.NoError(t, err, "redis is dialed lazily")
	assert.NoError(t, p.Close())
}
