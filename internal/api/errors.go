package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMissingSessionHeader is returned when a sign-in response carries no
// Bridge-Session header.
var ErrMissingSessionHeader = errors.New("session token does not exist in this response")

// StateError reports an operation attempted in the wrong session state:
// signed out, or signed in without a required role.
type StateError struct {
	Op     string
	Reason string
}

func (e *StateError) Error() string {
	if e.Op == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// ErrNotSignedIn builds the StateError returned for signed-out sessions.
func ErrNotSignedIn(op string) error {
	return &StateError{Op: op, Reason: "must be signed in to call this method"}
}

// ArgumentError reports a nil, empty or malformed argument.
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Name, e.Reason)
}

func argumentError(name, reason string) error {
	return &ArgumentError{Name: name, Reason: reason}
}

// TransportError reports that the host could not be reached, or that the
// exchange broke before a status line was received.
type TransportError struct {
	Method   string
	URL      string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("%s %s failed after %d attempts: %v", e.Method, e.URL, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError represents a non-2xx response, or a response whose body
// could not be read.
type ServerError struct {
	StatusCode int
	Status     string
	Message    string
	URL        string
	Body       string
	RequestID  string
	Err        error
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Status
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", msg, e.URL, e.Err)
	}
	return fmt.Sprintf("API error (status %d) %s: %s", e.StatusCode, e.URL, msg)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

// AuthError is a 401 or 403 response.
type AuthError struct {
	*ServerError
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication error: %s", e.ServerError.Error())
}

func (e *AuthError) Unwrap() error {
	return e.ServerError
}

// InvalidCredentialsError is a sign-in rejected by the server.
type InvalidCredentialsError struct {
	Username string
	Err      *ServerError
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("invalid credentials for %s: %s", e.Username, e.Err.Error())
}

func (e *InvalidCredentialsError) Unwrap() error {
	return e.Err
}

// newServerError builds the error for a non-2xx response. 401 and 403 are
// wrapped in AuthError.
func newServerError(statusCode int, status, url string, body []byte, header http.Header) error {
	se := &ServerError{
		StatusCode: statusCode,
		Status:     status,
		Message:    serverMessage(body, statusCode),
		URL:        url,
		Body:       string(body),
		RequestID:  header.Get("X-Request-Id"),
	}
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		return &AuthError{ServerError: se}
	}
	return se
}

// IsStateError checks if the error is a session state error.
func IsStateError(err error) bool {
	var e *StateError
	return errors.As(err, &e)
}

// IsArgumentError checks if the error is an argument error.
func IsArgumentError(err error) bool {
	var e *ArgumentError
	return errors.As(err, &e)
}

// IsTransportError checks if the error is a transport error.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsServerError checks if the error is a server error.
func IsServerError(err error) bool {
	var e *ServerError
	return errors.As(err, &e)
}

// IsAuthError checks if the error is an authentication error.
func IsAuthError(err error) bool {
	var e *AuthError
	return errors.As(err, &e)
}

// IsInvalidCredentialsError checks if the error is a rejected sign-in.
func IsInvalidCredentialsError(err error) bool {
	var e *InvalidCredentialsError
	return errors.As(err, &e)
}

// IsNotFoundError checks if the error indicates a resource was not found.
func IsNotFoundError(err error) bool {
	var e *ServerError
	if errors.As(err, &e) {
		return e.StatusCode == http.StatusNotFound ||
			strings.Contains(strings.ToLower(e.Message), "not found")
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *ServerError
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
