// Package config loads the SDK configuration: the service host, the account
// credentials used by test tooling and one URL path template per resource.
//
// Values come from a properties file (KEY=value lines) and every declared key
// can be overridden by an environment variable of the same name. The result
// is validated once and never mutated afterwards.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/magiconair/properties"
)

const (
	// DefaultFile is read by LoadDefault when BRIDGE_SDK_CONFIG is not set.
	DefaultFile = "bridge-sdk.properties"

	envConfigFile = "BRIDGE_SDK_CONFIG"
)

// Config is a validated, read-only view of the configuration keys.
type Config struct {
	values map[Key]string
	source string
}

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// LoadDefault loads the default properties file with environment overrides.
// A missing default file is not an error as long as the environment supplies
// every required key.
func LoadDefault() (*Config, error) {
	if path := strings.TrimSpace(os.Getenv(envConfigFile)); path != "" {
		return Load(path)
	}
	cfg, err := loadWithEnv(DefaultFile, os.LookupEnv, true)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load loads path with overrides from the process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv loads path with overrides resolved through lookup. An empty path
// loads from the environment alone.
func LoadWithEnv(path string, lookup LookupFunc) (*Config, error) {
	return loadWithEnv(path, lookup, false)
}

func loadWithEnv(path string, lookup LookupFunc, optionalFile bool) (*Config, error) {
	values := make(map[Key]string)

	if path != "" {
		fileValues, err := readProperties(path)
		switch {
		case err == nil:
			for _, spec := range schema {
				if v, ok := fileValues[string(spec.key)]; ok {
					values[spec.key] = v
				}
			}
		case optionalFile && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, &InvalidConfigError{
				Reason: fmt.Sprintf("cannot read properties file %s", path),
				Err:    err,
			}
		}
	}

	if lookup != nil {
		for _, spec := range schema {
			if v, ok := lookup(string(spec.key)); ok {
				values[spec.key] = v
			}
		}
	}

	cfg, err := FromValues(values)
	if err != nil {
		return nil, err
	}
	cfg.source = path
	return cfg, nil
}

// readProperties parses a Java properties file. Values are taken verbatim:
// "${name}" is not expanded and "#" only starts a comment at the beginning
// of a line.
func readProperties(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(data)
	if err != nil {
		return nil, err
	}
	return p.Map(), nil
}

// FromValues validates an explicit key/value set. It is the single place
// where validation happens; the loaders only gather values.
func FromValues(values map[Key]string) (*Config, error) {
	resolved := make(map[Key]string, len(schema))
	var missing *multierror.Error
	for _, spec := range schema {
		v, ok := values[spec.key]
		if !ok {
			if spec.required {
				missing = multierror.Append(missing, &MissingPropertyError{Key: spec.key})
				continue
			}
			v = spec.fallback
		}
		resolved[spec.key] = v
	}
	if err := missing.ErrorOrNil(); err != nil {
		return nil, err
	}

	for _, spec := range schema {
		if spec.rule == nil {
			continue
		}
		if err := spec.rule(resolved[spec.key]); err != nil {
			return nil, &InvalidConfigError{
				Key:    spec.key,
				Value:  resolved[spec.key],
				Reason: err.Error(),
				Err:    err,
			}
		}
	}

	return &Config{values: resolved}, nil
}

// Get returns the value for key, or "" for an undeclared key.
func (c *Config) Get(key Key) string {
	return c.values[key]
}

// Source returns the properties file the configuration was read from.
func (c *Config) Source() string {
	return c.source
}

func (c *Config) Host() string                { return c.values[Host] }
func (c *Config) ParticipantEmail() string    { return c.values[ParticipantEmail] }
func (c *Config) ParticipantPassword() string { return c.values[ParticipantPassword] }
func (c *Config) AdminEmail() string          { return c.values[AdminEmail] }
func (c *Config) AdminPassword() string       { return c.values[AdminPassword] }

// Paths returns the path template for every resource key.
func (c *Config) Paths() map[Key]string {
	paths := make(map[Key]string)
	for _, key := range PathKeys() {
		paths[key] = c.values[key]
	}
	return paths
}

// Entries returns the configuration as ordered key/value pairs with secrets
// redacted, for display.
func (c *Config) Entries() [][2]string {
	entries := make([][2]string, 0, len(schema))
	for _, spec := range schema {
		value := c.values[spec.key]
		if spec.secret && value != "" {
			value = "[REDACTED]"
		}
		entries = append(entries, [2]string{string(spec.key), value})
	}
	return entries
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config[")
	for i, entry := range c.Entries() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(entry[0])
		b.WriteString("=")
		b.WriteString(entry[1])
	}
	b.WriteString("]")
	return b.String()
}

// With returns a copy of c with key set to value, validated like a fresh load.
func (c *Config) With(key Key, value string) (*Config, error) {
	if _, err := specFor(key); err != nil {
		return nil, err
	}
	values := make(map[Key]string, len(c.values))
	for k, v := range c.values {
		values[k] = v
	}
	values[key] = value
	next, err := FromValues(values)
	if err != nil {
		return nil, err
	}
	next.source = c.source
	return next, nil
}
