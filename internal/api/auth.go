package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
	"github.com/sagebionetworks/bridge-sdk-go/internal/debug"
)

// Authenticate signs in with username and password. The token comes from
// the Bridge-Session response header and the identity from the body. A
// rejected sign-in returns an InvalidCredentialsError; no usable Session is
// returned on any failure.
func (s AuthService) Authenticate(ctx context.Context, username, password string) (Session, error) {
	if strings.TrimSpace(username) == "" {
		return Session{}, argumentError("username", "must not be empty")
	}
	if password == "" {
		return Session{}, argumentError("password", "must not be empty")
	}
	path, err := s.resourcePath(config.AuthAPI, "signIn")
	if err != nil {
		return Session{}, err
	}

	resp, err := s.send(ctx, http.MethodPost, path, nil, SignInCredentials{Username: username, Password: password})
	if err != nil {
		s.metrics.RecordSignIn(false)
		var se *ServerError
		if errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 {
			return Session{}, &InvalidCredentialsError{Username: username, Err: se}
		}
		return Session{}, err
	}

	token, err := s.ExtractSessionToken(resp)
	if err != nil {
		s.metrics.RecordSignIn(false)
		return Session{}, err
	}
	var session Session
	if err := decodeBody(resp, &session); err != nil {
		s.metrics.RecordSignIn(false)
		return Session{}, err
	}
	if session.Username == "" {
		session.Username = username
	}
	s.metrics.RecordSignIn(true)
	if debug.IsEnabled(ctx) {
		slog.Debug("signed in", "username", session.Username, "roles", session.Roles)
	}
	return session.withToken(token), nil
}

// SignOut ends session on the server. The returned Session is always
// signed out; a server or transport failure is returned alongside it. A
// session that is already signed out is returned unchanged without a
// request.
func (s AuthService) SignOut(ctx context.Context, session Session) (Session, error) {
	if !session.SignedIn() {
		return session, nil
	}
	path, err := s.resourcePath(config.AuthAPI, "signOut")
	if err != nil {
		return session.SignedOut(), err
	}
	_, err = s.send(ctx, http.MethodPost, path, &session, nil)
	return session.SignedOut(), err
}

// SignUp registers a new participant account. The account must verify its
// email address before it can sign in.
func (s AuthService) SignUp(ctx context.Context, creds SignUpCredentials) error {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return argumentError("credentials", "username and password are required")
	}
	if strings.TrimSpace(creds.Email) == "" {
		return argumentError("email", "must not be empty")
	}
	path, err := s.resourcePath(config.AuthAPI, "signUp")
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodPost, path, nil, creds, nil)
}

// RequestResetPassword asks the server to email a password reset link.
func (s AuthService) RequestResetPassword(ctx context.Context, email string) error {
	return s.emailRequest(ctx, "requestResetPassword", email)
}

// ResendEmailVerification asks the server to send the verification email
// again.
func (s AuthService) ResendEmailVerification(ctx context.Context, email string) error {
	return s.emailRequest(ctx, "resendEmailVerification", email)
}

func (s AuthService) emailRequest(ctx context.Context, action, email string) error {
	if strings.TrimSpace(email) == "" {
		return argumentError("email", "must not be empty")
	}
	path, err := s.resourcePath(config.AuthAPI, action)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodPost, path, nil, EmailRequest{Email: email}, nil)
}
