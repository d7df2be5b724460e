// Package validation holds the syntax rules applied to configuration values
// and request arguments before anything is sent to the server.
package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// MaxURLLength is the standard browser URL limit.
const MaxURLLength = 2048

// ValidateHostURL validates a service host. The host must be an absolute
// http(s) URL with a hostname and must end with "/", because request URLs
// are built by appending relative paths to it.
func ValidateHostURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("URL exceeds maximum length of %d characters", MaxURLLength)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if !parsedURL.IsAbs() {
		return fmt.Errorf("URL must be absolute, got %q", rawURL)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed, got %q", parsedURL.Scheme)
	}
	if parsedURL.Hostname() == "" {
		return fmt.Errorf("URL must include a hostname")
	}
	if parsedURL.RawQuery != "" || parsedURL.Fragment != "" {
		return fmt.Errorf("URL must not carry a query or fragment")
	}
	if !strings.HasSuffix(rawURL, "/") {
		return fmt.Errorf("URL must end with \"/\" (for example https://webservices.sagebridge.org/)")
	}
	return nil
}

// ValidateRelativePath checks a path that is appended to a host URL.
func ValidateRelativePath(path string) error {
	if strings.HasPrefix(path, "/") {
		return fmt.Errorf("path %q must not start with \"/\"", path)
	}
	if strings.Contains(path, "://") {
		return fmt.Errorf("path %q must be relative", path)
	}
	return nil
}
