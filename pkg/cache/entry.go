package cache

import (
	"encoding/json"
	"time"
)

// Entry is the envelope stored in Redis for a cached response.
// The payload is an opaque, self-describing JSON value; the envelope adds
// the timestamps needed to double-check expiry on read, on top of the
// store-enforced TTL.
type Entry struct {
	// Payload is the serialized upstream response
	Payload json.RawMessage `json:"payload"`

	// CachedAt is when the entry was written
	CachedAt time.Time `json:"cached_at"`

	// ExpiresAt is when the entry becomes stale
	ExpiresAt time.Time `json:"expires_at"`
}

// NewEntry creates an entry expiring ttl from now.
func NewEntry(payload json.RawMessage, ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Payload:   payload,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.ExpiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}
