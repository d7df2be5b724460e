package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// newUser is the body of an admin account creation.
type newUser struct {
	SignUpCredentials
	Consent bool `json:"consent"`
}

// Create makes an account with roles, optionally consented to the study.
// Requires the admin role.
func (s UsersService) Create(ctx context.Context, session Session, creds SignUpCredentials, roles []string, consent bool) error {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return argumentError("credentials", "email and password are required")
	}
	path, err := s.resourcePath(config.UsersAPI)
	if err != nil {
		return err
	}
	creds.Roles = append([]string(nil), roles...)
	return s.do(ctx, http.MethodPost, path, &session, newUser{SignUpCredentials: creds, Consent: consent}, nil)
}

// Delete removes the account with email. Requires the admin role.
func (s UsersService) Delete(ctx context.Context, session Session, email string) error {
	if strings.TrimSpace(email) == "" {
		return argumentError("email", "must not be empty")
	}
	path, err := s.resourcePath(config.UsersAPI)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodDelete, withQuery(path, url.Values{"email": {email}}), &session, nil, nil)
}
