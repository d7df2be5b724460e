package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestAuthenticate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/auth/signIn" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get(SessionHeader) != "" {
			t.Error("sign-in must not carry a session token")
		}
		var creds SignInCredentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if creds.Username != "ada" || creds.Password != "P4ssword" {
			t.Errorf("unexpected credentials %+v", creds)
		}
		w.Header().Set(SessionHeader, "token-abc")
		_, _ = w.Write([]byte(`{"authenticated":true,"sessionToken":"token-abc","username":"ada","roles":["developer"],"consented":true}`))
	}))
	defer server.Close()

	rec := &recordingMetrics{}
	client := newTestClient(server.URL, WithMetrics(rec))
	session, err := client.Auth().Authenticate(context.Background(), "ada", "P4ssword")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !session.SignedIn() || session.Token() != "token-abc" {
		t.Errorf("expected signed-in session, got %v", session)
	}
	if session.Username != "ada" || !session.Consented || !session.HasRole(RoleNameDeveloper) {
		t.Errorf("identity not taken from body: %+v", session)
	}
	if len(rec.signIns) != 1 || !rec.signIns[0] {
		t.Errorf("sign-ins recorded = %v", rec.signIns)
	}
}

func TestAuthenticate_HeaderTokenWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(SessionHeader, "from-header")
		_, _ = w.Write([]byte(`{"sessionToken":"from-body"}`))
	}))
	defer server.Close()

	session, err := newTestClient(server.URL).Auth().Authenticate(context.Background(), "ada", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Token() != "from-header" {
		t.Errorf("Token() = %q", session.Token())
	}
	if session.Username != "ada" {
		t.Errorf("username should default to the one signed in with, got %q", session.Username)
	}
}

func TestAuthenticate_Rejected(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusLocked} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set(SessionHeader, "should-not-be-used")
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"message":"Invalid username or password"}`))
			}))
			defer server.Close()

			rec := &recordingMetrics{}
			session, err := newTestClient(server.URL, WithMetrics(rec)).Auth().Authenticate(context.Background(), "garbage", "garbage")
			if session.SignedIn() {
				t.Fatal("rejected sign-in returned a signed-in session")
			}
			var ice *InvalidCredentialsError
			if !errors.As(err, &ice) {
				t.Fatalf("expected InvalidCredentialsError, got %T: %v", err, err)
			}
			if ice.Username != "garbage" || StatusCode(err) != status {
				t.Errorf("unexpected error %+v", ice)
			}
			if len(rec.signIns) != 1 || rec.signIns[0] {
				t.Errorf("sign-ins recorded = %v", rec.signIns)
			}
		})
	}
}

func TestAuthenticate_ServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	session, err := newTestClient(server.URL).Auth().Authenticate(context.Background(), "ada", "pw")
	if session.SignedIn() {
		t.Fatal("failed sign-in returned a signed-in session")
	}
	if IsInvalidCredentialsError(err) || StatusCode(err) != http.StatusInternalServerError {
		t.Errorf("expected plain ServerError, got %v", err)
	}
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"authenticated":true,"sessionToken":"body-only"}`))
	}))
	defer server.Close()

	session, err := newTestClient(server.URL).Auth().Authenticate(context.Background(), "ada", "pw")
	if !errors.Is(err, ErrMissingSessionHeader) {
		t.Fatalf("expected ErrMissingSessionHeader, got %v", err)
	}
	if session.SignedIn() {
		t.Error("expected signed-out session")
	}
}

func TestAuthenticate_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	session, err := newTestClient(url).Auth().Authenticate(context.Background(), "ada", "pw")
	if !IsTransportError(err) || session.SignedIn() {
		t.Fatalf("expected TransportError and no session, got %v %v", err, session)
	}
}

func TestAuthenticate_EmptyArguments(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	auth := newTestClient(server.URL).Auth()
	for _, tt := range []struct{ user, pass string }{{"", "pw"}, {"  ", "pw"}, {"ada", ""}} {
		if _, err := auth.Authenticate(context.Background(), tt.user, tt.pass); !IsArgumentError(err) {
			t.Errorf("Authenticate(%q, %q): expected ArgumentError, got %v", tt.user, tt.pass, err)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("expected no requests, got %d", calls.Load())
	}
}

func TestSignOut(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/auth/signOut" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get(SessionHeader) != "session-token" {
			t.Errorf("Bridge-Session = %q", r.Header.Get(SessionHeader))
		}
		_, _ = w.Write([]byte(`{"message":"Signed out."}`))
	}))
	defer server.Close()

	auth := newTestClient(server.URL).Auth()
	in := testSession()
	out, err := auth.SignOut(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.SignedIn() {
		t.Error("expected signed-out session")
	}
	if !in.SignedIn() {
		t.Error("SignOut must not modify its argument")
	}

	again, err := auth.SignOut(context.Background(), out)
	if err != nil || again.SignedIn() {
		t.Errorf("second sign-out = %v, %v", again, err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 request, got %d", calls.Load())
	}
}

func TestSignOut_ServerErrorStillSignsOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	out, err := newTestClient(server.URL).Auth().SignOut(context.Background(), testSession())
	if out.SignedIn() {
		t.Error("expected signed-out session")
	}
	if !IsServerError(err) {
		t.Errorf("expected ServerError to be reported, got %v", err)
	}
}

func TestSignUpAndEmailRequests(t *testing.T) {
	var paths []string
	var bodies []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	auth := newTestClient(server.URL).Auth()
	creds, err := NewSignUpCredentials("ada", "ada@example.org", "P4ssword")
	if err != nil {
		t.Fatalf("NewSignUpCredentials: %v", err)
	}
	if err := auth.SignUp(context.Background(), creds); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if err := auth.RequestResetPassword(context.Background(), "ada@example.org"); err != nil {
		t.Fatalf("RequestResetPassword: %v", err)
	}
	if err := auth.ResendEmailVerification(context.Background(), "ada@example.org"); err != nil {
		t.Fatalf("ResendEmailVerification: %v", err)
	}

	want := []string{"/api/v1/auth/signUp", "/api/v1/auth/requestResetPassword", "/api/v1/auth/resendEmailVerification"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
	if bodies[0]["email"] != "ada@example.org" || bodies[0]["username"] != "ada" {
		t.Errorf("sign-up body = %v", bodies[0])
	}
	if bodies[1]["email"] != "ada@example.org" {
		t.Errorf("reset body = %v", bodies[1])
	}

	if err := auth.SignUp(context.Background(), SignUpCredentials{Username: "ada", Password: "pw"}); !IsArgumentError(err) {
		t.Errorf("expected ArgumentError without email, got %v", err)
	}
	if err := auth.RequestResetPassword(context.Background(), ""); !IsArgumentError(err) {
		t.Errorf("expected ArgumentError, got %v", err)
	}
}
