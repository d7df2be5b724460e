// Package cache keeps decoded API responses that never change once created,
// such as survey revisions addressed by guid and creation time.
//
// Entries are JSON, scoped per server host. Disable with BRIDGE_NO_CACHE=1.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"
)

const DefaultTTL = 10 * time.Minute

// Store reads and writes cached values by key. A miss and a broken entry
// look the same to callers; caching never fails a request.
type Store interface {
	Get(ctx context.Context, key string, dst any) bool
	Put(ctx context.Context, key string, value any)
	Clear(ctx context.Context) error
}

type entry struct {
	CachedAt time.Time       `json:"cached_at"`
	Items    json.RawMessage `json:"items"`
}

func encodeEntry(value any, now time.Time) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entry{CachedAt: now, Items: raw})
}

func decodeEntry(data []byte, ttl time.Duration, now time.Time, dst any) bool {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}
	if ttl > 0 && now.Sub(e.CachedAt) > ttl {
		return false
	}
	return json.Unmarshal(e.Items, dst) == nil
}

func disabled() bool {
	return os.Getenv("BRIDGE_NO_CACHE") != ""
}

// shortHash returns the first 12 hex digits of the SHA-1 of s.
func shortHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:6])
}

// Nop is a Store that never hits.
type Nop struct{}

func (Nop) Get(context.Context, string, any) bool { return false }
func (Nop) Put(context.Context, string, any)      {}
func (Nop) Clear(context.Context) error           { return nil }
