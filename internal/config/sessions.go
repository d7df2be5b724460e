package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/99designs/keyring"
)

// Keyring layout: one item per profile plus the profile list and the name
// of the current profile.
const (
	keyringService  = "bridge-sdk"
	defaultProfile  = "default"
	sessionPrefix   = "session:"
	profilesItem    = "profiles"
	currentItem     = "current_profile"
	keyringFileName = "keyring"
)

// Environment variables that choose where sessions are kept.
const (
	EnvKeyringBackend  = "BRIDGE_KEYRING_BACKEND" // auto, file or system
	EnvKeyringPassword = "BRIDGE_KEYRING_PASSWORD"
	EnvCredentialsDir  = "BRIDGE_CREDENTIALS_DIR"
)

// ErrNoSession is returned when no session is stored for a profile.
var ErrNoSession = errors.New("not signed in - run 'bridge auth signin' first")

// StoredSession is a signed-in session persisted between CLI invocations.
// Session holds the serialized session value; Host pins it to the server
// that issued it.
type StoredSession struct {
	Host    string          `json:"host"`
	SavedAt time.Time       `json:"saved_at"`
	Session json.RawMessage `json:"session"`
}

var openKeyring = keyring.Open

var stdinIsTerminal = func() bool {
	info, err := os.Stdin.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// SetOpenKeyring allows replacing the keyring opener for testing.
// Returns a cleanup function that restores the original.
func SetOpenKeyring(fn func(keyring.Config) (keyring.Keyring, error)) func() {
	original := openKeyring
	openKeyring = fn
	return func() { openKeyring = original }
}

// sessionRing is an open keyring holding stored sessions.
type sessionRing struct {
	keyring.Keyring
}

func openSessions() (sessionRing, error) {
	kr, err := openKeyring(sessionKeyringConfig(runtime.GOOS))
	if err != nil {
		return sessionRing{}, fmt.Errorf("failed to open keyring: %w", err)
	}
	return sessionRing{kr}, nil
}

// sessionKeyringConfig picks the backend. System mode leaves the choice to
// the keyring library; file mode, and auto mode on Linux without a D-Bus
// session, use the encrypted file backend.
func sessionKeyringConfig(goos string) keyring.Config {
	cfg := keyring.Config{ServiceName: keyringService}

	mode := strings.ToLower(strings.TrimSpace(os.Getenv(EnvKeyringBackend)))
	switch mode {
	case "system", "os", "native":
		return cfg
	case "file":
	default:
		mode = "auto"
	}

	cfg.FileDir = sessionFileDir()
	cfg.FilePasswordFunc = sessionFilePassword
	headless := goos == "linux" && strings.TrimSpace(os.Getenv("DBUS_SESSION_BUS_ADDRESS")) == ""
	if mode == "file" || headless {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}
	return cfg
}

func sessionFileDir() string {
	if dir := strings.TrimSpace(os.Getenv(EnvCredentialsDir)); dir != "" {
		return filepath.Join(dir, keyringFileName)
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, keyringService, keyringFileName)
	}
	return filepath.Join(os.TempDir(), keyringService, keyringFileName)
}

func sessionFilePassword(prompt string) (string, error) {
	if password := strings.TrimSpace(os.Getenv(EnvKeyringPassword)); password != "" {
		return password, nil
	}
	if !stdinIsTerminal() {
		return "", fmt.Errorf("set %s to use the file keyring without a terminal", EnvKeyringPassword)
	}
	return keyring.TerminalPrompt(prompt)
}

func profileName(profile string) string {
	if profile = strings.TrimSpace(profile); profile == "" {
		return defaultProfile
	}
	return profile
}

func sessionKey(profile string) string {
	return sessionPrefix + profileName(profile)
}

// getJSON decodes item key into v. found is false when the item is absent.
func (r sessionRing) getJSON(key string, v any) (found bool, err error) {
	item, err := r.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(item.Data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (r sessionRing) setJSON(key, label string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.Set(keyring.Item{Key: key, Label: label, Data: data}); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (r sessionRing) profiles() ([]string, error) {
	var list []string
	if _, err := r.getJSON(profilesItem, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func (r sessionRing) current() (string, error) {
	item, err := r.Get(currentItem)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return defaultProfile, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read current profile: %w", err)
	}
	return string(item.Data), nil
}

func (r sessionRing) setCurrent(profile string) error {
	return r.Set(keyring.Item{Key: currentItem, Data: []byte(profileName(profile))})
}

// SaveSession stores a session under profile and makes profile current.
func SaveSession(profile string, session StoredSession) error {
	profile = profileName(profile)
	ring, err := openSessions()
	if err != nil {
		return err
	}

	if session.SavedAt.IsZero() {
		session.SavedAt = time.Now().UTC()
	}
	if err := ring.setJSON(sessionKey(profile), "Bridge session ("+profile+")", session); err != nil {
		return err
	}

	list, err := ring.profiles()
	if err != nil {
		return err
	}
	if !slices.Contains(list, profile) {
		if err := ring.setJSON(profilesItem, "", append(list, profile)); err != nil {
			return err
		}
	}
	return ring.setCurrent(profile)
}

// LoadSession retrieves the session stored under profile.
func LoadSession(profile string) (StoredSession, error) {
	ring, err := openSessions()
	if err != nil {
		return StoredSession{}, err
	}
	var session StoredSession
	found, err := ring.getJSON(sessionKey(profile), &session)
	if err != nil {
		return StoredSession{}, err
	}
	if !found {
		return StoredSession{}, ErrNoSession
	}
	return session, nil
}

// DeleteSession removes the session stored under profile. Removing a
// profile that has no session is not an error. When profile was current,
// the first remaining profile (or the default one) becomes current.
func DeleteSession(profile string) error {
	profile = profileName(profile)
	ring, err := openSessions()
	if err != nil {
		return err
	}

	if err := ring.Remove(sessionKey(profile)); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove session: %w", err)
	}

	list, err := ring.profiles()
	if err != nil {
		return err
	}
	remaining := slices.DeleteFunc(list, func(p string) bool { return p == profile })
	if err := ring.setJSON(profilesItem, "", remaining); err != nil {
		return err
	}

	if current, err := ring.current(); err == nil && current == profile {
		next := defaultProfile
		if len(remaining) > 0 {
			next = remaining[0]
		}
		return ring.setCurrent(next)
	}
	return nil
}

// ListSessions returns the profiles that have a stored session, in the
// order they were first saved.
func ListSessions() ([]string, error) {
	ring, err := openSessions()
	if err != nil {
		return nil, err
	}
	return ring.profiles()
}

// CurrentProfile returns the active profile name.
func CurrentProfile() (string, error) {
	ring, err := openSessions()
	if err != nil {
		return "", err
	}
	return ring.current()
}

// SetCurrentProfile sets the active profile name.
func SetCurrentProfile(profile string) error {
	ring, err := openSessions()
	if err != nil {
		return err
	}
	return ring.setCurrent(profile)
}
