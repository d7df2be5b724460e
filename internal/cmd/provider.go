package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
	"github.com/sagebionetworks/bridge-sdk-go/internal/bridge"
	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// version is set at build time via ldflags
var version = "dev"

// loadConfig reads the properties file named by --config, or the default
// one, with environment overrides.
func loadConfig() (*config.Config, error) {
	if path := strings.TrimSpace(flags.ConfigPath); path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

// newProvider builds a signed-out Provider from the configuration, the
// BRIDGE_* settings and the global flags.
func newProvider() (*bridge.Provider, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	if flags.Timeout > 0 {
		settings.Timeout = flags.Timeout
	}
	return bridge.NewProvider(cfg, settings, bridge.WithAPIOptions(
		api.WithMetrics(collector),
		api.WithUserAgent(api.UserAgent(version)),
	))
}

// resolveProfile returns --profile, or the keyring's current profile.
func resolveProfile() string {
	if p := strings.TrimSpace(flags.Profile); p != "" {
		return p
	}
	current, err := config.CurrentProfile()
	if err != nil {
		slog.Debug("cannot read current profile", "error", err)
		return "default"
	}
	return current
}

// signedInProvider builds a Provider and resumes the session stored for the
// active profile. The session must have been issued by the configured host.
func signedInProvider() (*bridge.Provider, error) {
	p, err := newProvider()
	if err != nil {
		return nil, err
	}
	session, err := loadStoredSession(resolveProfile(), p.Config().Host())
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	if err := p.Resume(session); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

func loadStoredSession(profile, host string) (api.Session, error) {
	stored, err := config.LoadSession(profile)
	if err != nil {
		return api.Session{}, err
	}
	if stored.Host != host {
		return api.Session{}, fmt.Errorf("profile %q was signed in to %s, not %s: %w", profile, stored.Host, host, config.ErrNoSession)
	}
	var session api.Session
	if err := json.Unmarshal(stored.Session, &session); err != nil {
		return api.Session{}, fmt.Errorf("stored session for %q is corrupt: %w", profile, err)
	}
	if !session.SignedIn() {
		return api.Session{}, config.ErrNoSession
	}
	return session, nil
}

func storeSession(profile, host string, session api.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return config.SaveSession(profile, config.StoredSession{
		Host:    host,
		SavedAt: time.Now().UTC(),
		Session: data,
	})
}

// withClient runs fn with the role-gated client of the stored session. An
// auth failure from the server means the stored session expired; it is
// removed so the next command asks for a fresh sign-in.
func withClient(ctx context.Context, fn func(ctx context.Context, c *bridge.Client) error) error {
	p, err := signedInProvider()
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	err = fn(ctx, p.Client())
	if api.IsAuthError(err) {
		profile := resolveProfile()
		if derr := config.DeleteSession(profile); derr != nil {
			slog.Debug("failed to remove expired session", "profile", profile, "error", derr)
		}
		return fmt.Errorf("%w (session removed, run 'bridge auth signin')", err)
	}
	return err
}

// isSignedOutError reports whether err means there is no usable session.
func isSignedOutError(err error) bool {
	return errors.Is(err, config.ErrNoSession) || api.IsStateError(err)
}
