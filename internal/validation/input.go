package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Input length limits
const (
	MaxEmailLength    = 320 // RFC 5321: 64 chars (local) + 1 (@) + 255 (domain) = 320
	MaxPasswordLength = 1024
)

// ValidateEmailFormat validates that email is a bare address such as
// "participant@example.org". Display-name forms ("Jane <jane@x.org>") and
// addresses without a dotted domain are rejected.
func ValidateEmailFormat(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if length := utf8.RuneCountInString(email); length > MaxEmailLength {
		return fmt.Errorf("email exceeds maximum length of %d characters (got %d)", MaxEmailLength, length)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	if addr.Address != email || addr.Name != "" {
		return fmt.Errorf("invalid email format: %q is not a bare address", email)
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return fmt.Errorf("invalid email format: domain %q is not fully qualified", domain)
	}
	return nil
}

// ValidateCredentials checks that a sign-in pair is usable before it is sent.
func ValidateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password exceeds maximum length of %d bytes", MaxPasswordLength)
	}
	return nil
}
