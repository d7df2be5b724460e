package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrorCode is a machine-readable classification of an SDK error.
type ErrorCode string

const (
	ErrBadRequest      ErrorCode = "bad_request"
	ErrUnauthorized    ErrorCode = "unauthorized"
	ErrForbidden       ErrorCode = "forbidden"
	ErrNotFound        ErrorCode = "not_found"
	ErrConflict        ErrorCode = "conflict"
	ErrValidation      ErrorCode = "validation_failed"
	ErrServerError     ErrorCode = "server_error"
	ErrTimeout         ErrorCode = "timeout"
	ErrCodeNotSignedIn ErrorCode = "not_signed_in"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrTransport       ErrorCode = "transport"
	ErrUnknown         ErrorCode = "unknown"
)

// IsRetryable returns true if errors with this code may succeed on retry.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case ErrServerError, ErrTimeout, ErrTransport:
		return true
	default:
		return false
	}
}

// Suggestion returns a human-readable hint for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrUnauthorized, ErrCodeNotSignedIn:
		return "Run 'bridge auth signin' to authenticate"
	case ErrForbidden:
		return "Sign in with an account that has the required role"
	case ErrNotFound:
		return "Verify the identifier exists"
	case ErrValidation, ErrBadRequest, ErrInvalidArgument:
		return "Check the input values"
	case ErrConflict:
		return "The resource changed on the server; fetch it again and retry"
	case ErrServerError:
		return "The server encountered an error; try again later"
	case ErrTimeout:
		return "The request timed out; raise --timeout or check connectivity"
	case ErrTransport:
		return "Check the HOST setting and network connectivity"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	case 412:
		return ErrCodeNotSignedIn
	case 422:
		return ErrValidation
	default:
		if statusCode >= 500 && statusCode < 600 {
			return ErrServerError
		}
		return ErrUnknown
	}
}

// StructuredError is the JSON form of an error printed by the CLI.
type StructuredError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	Suggestion string         `json:"suggestion,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

// StructuredErrorFromError classifies any SDK error.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		out := NewStructuredError(ErrorCodeFromStatus(serverErr.StatusCode), err.Error())
		out.Context = map[string]any{
			"status_code": serverErr.StatusCode,
			"url":         serverErr.URL,
		}
		if serverErr.RequestID != "" {
			out.Context["request_id"] = serverErr.RequestID
		}
		return out
	}

	var stateErr *StateError
	if errors.As(err, &stateErr) {
		return NewStructuredError(ErrCodeNotSignedIn, err.Error())
	}

	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		out := NewStructuredError(ErrInvalidArgument, err.Error())
		out.Context = map[string]any{"argument": argErr.Name}
		return out
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		code := ErrTransport
		if errors.Is(err, context.DeadlineExceeded) {
			code = ErrTimeout
		}
		out := NewStructuredError(code, err.Error())
		out.Context = map[string]any{"url": transportErr.URL, "attempts": transportErr.Attempts}
		return out
	}

	return NewStructuredError(ErrUnknown, err.Error())
}

// serverMessage reduces a Bridge error body ({"message": "...", "statusCode": n})
// to its message, falling back to the status text.
func serverMessage(body []byte, statusCode int) string {
	var errResp struct {
		Message string         `json:"message"`
		Reason  string         `json:"reason"`
		Errors  map[string]any `json:"errors"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		msg := strings.TrimSpace(errResp.Message)
		if msg == "" {
			msg = strings.TrimSpace(errResp.Reason)
		}
		if details := formatValidationErrors(errResp.Errors); details != "" {
			if msg == "" {
				return "Validation errors:\n" + details
			}
			return msg + "\nValidation errors:\n" + details
		}
		if msg != "" {
			return msg
		}
	}
	return http.StatusText(statusCode)
}

// formatValidationErrors renders {"field": "msg"} and {"field": ["msg", ...]}
// maps as sorted "  field: msg" lines.
func formatValidationErrors(errs map[string]any) string {
	var lines []string
	for field, value := range errs {
		switch v := value.(type) {
		case string:
			lines = append(lines, fmt.Sprintf("  %s: %s", field, v))
		case []any:
			for _, msg := range v {
				if msgStr, ok := msg.(string); ok {
					lines = append(lines, fmt.Sprintf("  %s: %s", field, msgStr))
				}
			}
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}
