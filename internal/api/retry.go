package api

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
)

// DefaultMaxRetries is the number of times an idempotent request is
// re-sent after an I/O failure.
const DefaultMaxRetries = 5

// RetryConfig holds configuration for retry behavior. Only I/O failures of
// idempotent requests are retried, immediately and without backoff; a
// response with any status code is final.
type RetryConfig struct {
	MaxRetries int
}

// DefaultRetryConfig returns the default of five retries.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: DefaultMaxRetries}
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodDelete, http.MethodPut, http.MethodTrace:
		return true
	default:
		return false
	}
}

// retryableError reports whether a failed exchange may succeed if re-sent.
// Cancellation, unknown hosts, refused connections and TLS failures are
// final.
func retryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return false
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return false
	}
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return false
	}
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}
	return true
}

// retriesFor returns how many times a request with method may be re-sent.
func (r RetryConfig) retriesFor(method string) int {
	if !isIdempotent(method) || r.MaxRetries < 0 {
		return 0
	}
	return r.MaxRetries
}
