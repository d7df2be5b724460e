package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestServerError_Error(t *testing.T) {
	err := &ServerError{StatusCode: 404, Message: "Not found", URL: "https://x.org/p"}
	if err.Error() != "API error (status 404) https://x.org/p: Not found" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	read := &ServerError{StatusCode: 200, Status: "200 OK", Message: "failed to read response", URL: "https://x.org/p", Err: io.ErrUnexpectedEOF}
	if !strings.Contains(read.Error(), "failed to read response") || !errors.Is(read, io.ErrUnexpectedEOF) {
		t.Errorf("unexpected read error: %v", read)
	}
}

func TestNewServerError_AuthStatuses(t *testing.T) {
	tests := []struct {
		status   int
		wantAuth bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, true},
		{http.StatusForbidden, true},
		{http.StatusNotFound, false},
		{http.StatusPreconditionFailed, false},
		{http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := newServerError(tt.status, fmt.Sprint(tt.status), "https://x.org/p", []byte(`{"message":"m"}`), http.Header{"X-Request-Id": {"r1"}})
			if IsAuthError(err) != tt.wantAuth {
				t.Errorf("IsAuthError = %v, want %v", IsAuthError(err), tt.wantAuth)
			}
			var se *ServerError
			if !errors.As(err, &se) {
				t.Fatalf("expected ServerError in chain, got %T", err)
			}
			if se.StatusCode != tt.status || se.Message != "m" || se.RequestID != "r1" {
				t.Errorf("unexpected ServerError %+v", se)
			}
		})
	}
}

func TestAuthError_Error(t *testing.T) {
	err := &AuthError{ServerError: &ServerError{StatusCode: 401, Message: "Not signed in", URL: "https://x.org/p"}}
	if !strings.HasPrefix(err.Error(), "authentication error: ") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestInvalidCredentialsError(t *testing.T) {
	se := &ServerError{StatusCode: 404, Message: "Account not found.", URL: "https://x.org/signIn"}
	err := fmt.Errorf("sign in: %w", &InvalidCredentialsError{Username: "ada", Err: se})

	if !IsInvalidCredentialsError(err) {
		t.Error("IsInvalidCredentialsError should return true")
	}
	if StatusCode(err) != 404 {
		t.Errorf("StatusCode = %d", StatusCode(err))
	}
	if !strings.Contains(err.Error(), "ada") {
		t.Errorf("message should name the user: %q", err.Error())
	}
}

func TestStateError(t *testing.T) {
	err := ErrNotSignedIn("profile get")
	if !IsStateError(err) {
		t.Error("IsStateError should return true")
	}
	if err.Error() != "profile get: must be signed in to call this method" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if (&StateError{Reason: "r"}).Error() != "r" {
		t.Error("StateError without Op should print only the reason")
	}
}

func TestArgumentError(t *testing.T) {
	err := argumentError("email", "must not be empty")
	if !IsArgumentError(err) {
		t.Error("IsArgumentError should return true")
	}
	if err.Error() != "invalid argument email: must not be empty" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestTransportError(t *testing.T) {
	inner := io.ErrUnexpectedEOF
	err := &TransportError{Method: "GET", URL: "https://x.org/p", Attempts: 3, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("should unwrap to inner error")
	}
	if err.Error() != "GET https://x.org/p failed after 3 attempts: unexpected EOF" {
		t.Errorf("unexpected message %q", err.Error())
	}
	single := &TransportError{Method: "POST", URL: "https://x.org/p", Attempts: 1, Err: inner}
	if single.Error() != "POST https://x.org/p failed: unexpected EOF" {
		t.Errorf("unexpected message %q", single.Error())
	}
}

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"404", &ServerError{StatusCode: 404}, true},
		{"not found message", &ServerError{StatusCode: 400, Message: "Tracker not found"}, true},
		{"other", &ServerError{StatusCode: 400, Message: "bad"}, false},
		{"plain", errors.New("not found"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.want {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	if StatusCode(errors.New("x")) != 0 {
		t.Error("plain errors carry no status")
	}
	if StatusCode(&AuthError{ServerError: &ServerError{StatusCode: 403}}) != 403 {
		t.Error("AuthError should expose its status")
	}
}
