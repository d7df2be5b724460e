package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// SettingsEnvFile is an optional dotenv file in the working directory. Its
// BRIDGE_* entries apply where the variable is not already set.
const SettingsEnvFile = ".env"

// Cache modes accepted by Settings.Cache.
const (
	CacheOff   = "off"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Settings holds the transport tuning read from BRIDGE_* environment
// variables. Zero values are replaced in WithDefaults.
type Settings struct {
	Timeout         time.Duration `envconfig:"TIMEOUT" default:"30s"`
	MaxRetries      int           `envconfig:"MAX_RETRIES" default:"5"`
	FollowRedirects bool          `envconfig:"FOLLOW_REDIRECTS" default:"true"`
	RateLimit       float64       `envconfig:"RATE_LIMIT" default:"0"`
	Debug           bool          `envconfig:"DEBUG"`
	Cache           string        `envconfig:"CACHE" default:"off"`
	CacheTTL        time.Duration `envconfig:"CACHE_TTL" default:"10m"`
	CacheDir        string        `envconfig:"CACHE_DIR"`
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
}

// DefaultSettings returns the settings used when no BRIDGE_* variable is set.
func DefaultSettings() Settings {
	return Settings{
		Timeout:         30 * time.Second,
		MaxRetries:      5,
		FollowRedirects: true,
		Cache:           CacheOff,
		CacheTTL:        10 * time.Minute,
		RedisAddr:       "localhost:6379",
	}
}

// LoadSettings reads BRIDGE_* environment variables, after filling unset
// ones from SettingsEnvFile.
func LoadSettings() (Settings, error) {
	if err := applySettingsEnvFile(SettingsEnvFile); err != nil {
		return Settings{}, err
	}
	var s Settings
	if err := envconfig.Process("bridge", &s); err != nil {
		return Settings{}, &InvalidConfigError{Reason: "cannot read BRIDGE_* settings", Err: err}
	}
	s = s.WithDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// applySettingsEnvFile copies the BRIDGE_* entries of path into the process
// environment. Other entries are ignored; configuration keys are only read
// from the properties file and the environment.
func applySettingsEnvFile(path string) error {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &InvalidConfigError{Reason: fmt.Sprintf("cannot read %s", path), Err: err}
	}
	for key, value := range values {
		if !strings.HasPrefix(key, "BRIDGE_") {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}

// WithDefaults returns a copy of s with unset durations and modes filled in.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.Timeout == 0 {
		s.Timeout = d.Timeout
	}
	if s.Cache == "" {
		s.Cache = d.Cache
	}
	if s.CacheTTL == 0 {
		s.CacheTTL = d.CacheTTL
	}
	if s.RedisAddr == "" {
		s.RedisAddr = d.RedisAddr
	}
	return s
}

// Validate rejects negative limits and unknown cache modes.
func (s Settings) Validate() error {
	switch {
	case s.Timeout < 0:
		return &InvalidConfigError{Key: "BRIDGE_TIMEOUT", Value: s.Timeout.String(), Reason: "must not be negative"}
	case s.MaxRetries < 0:
		return &InvalidConfigError{Key: "BRIDGE_MAX_RETRIES", Value: fmt.Sprint(s.MaxRetries), Reason: "must not be negative"}
	case s.RateLimit < 0:
		return &InvalidConfigError{Key: "BRIDGE_RATE_LIMIT", Value: fmt.Sprint(s.RateLimit), Reason: "must not be negative"}
	case s.CacheTTL < 0:
		return &InvalidConfigError{Key: "BRIDGE_CACHE_TTL", Value: s.CacheTTL.String(), Reason: "must not be negative"}
	}
	switch s.Cache {
	case CacheOff, CacheFile, CacheRedis:
	default:
		return &InvalidConfigError{Key: "BRIDGE_CACHE", Value: s.Cache, Reason: "use off, file or redis"}
	}
	return nil
}
