package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore keeps one JSON file per key under a directory.
type FileStore struct {
	dir   string
	scope string
	ttl   time.Duration
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore for responses from host.
func NewFileStore(dir, host string, ttl time.Duration) *FileStore {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &FileStore{dir: dir, scope: shortHash(host), ttl: ttl}
}

// path maps "survey:<guid>:<createdOn>" to "survey_<host>_<key>.json".
func (s *FileStore) path(key string) string {
	label, _, _ := strings.Cut(key, ":")
	return filepath.Join(s.dir, sanitizeLabel(label)+"_"+s.scope+"_"+shortHash(key)+".json")
}

// Get loads the cached value for key into dst. Returns false on miss
// (no file, expired, disabled).
func (s *FileStore) Get(_ context.Context, key string, dst any) bool {
	if disabled() {
		return false
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	return decodeEntry(data, s.ttl, time.Now(), dst)
}

// Put writes value to the cache. Silently no-ops on error or when disabled.
func (s *FileStore) Put(_ context.Context, key string, value any) {
	if disabled() {
		return
	}
	data, err := encodeEntry(value, time.Now())
	if err != nil {
		return
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return
	}

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		_ = os.Remove(tmp)
		return
	}
	_ = os.Rename(tmp, path)
}

// Clear removes the cache files written for this store's host.
func (s *FileStore) Clear(context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !isCacheFilename(name) || !strings.Contains(name, "_"+s.scope+"_") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// ClearAll removes all cache files from the directory.
// For safety, it only removes files matching this project's cache filename scheme.
func ClearAll(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !isCacheFilename(e.Name()) {
			continue
		}
		_ = os.Remove(filepath.Join(dir, e.Name()))
	}
}

// DefaultDir returns the platform-appropriate cache directory.
// Returns "$XDG_CACHE_HOME/bridge-sdk" or equivalent.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "bridge-sdk"), nil
}

func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "cache"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, label)
}

func isCacheFilename(name string) bool {
	// Expected: "<label>_<12hex>_<12hex>.json"
	if filepath.Ext(name) != ".json" {
		return false
	}
	parts := strings.Split(strings.TrimSuffix(name, ".json"), "_")
	if len(parts) != 3 || parts[0] == "" {
		return false
	}
	return isShortHash(parts[1]) && isShortHash(parts[2])
}

func isShortHash(s string) bool {
	if len(s) != 12 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
