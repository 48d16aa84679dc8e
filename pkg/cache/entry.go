package cache

import (
	"time"

	"github.com/raywind/Kronos/pkg/marketdata"
)

// Entry is a cached candle series for one batch.
type Entry struct {
	// Candles is the fetched series, chronologically ordered.
	Candles []marketdata.Candle `json:"candles"`

	// Expires is when the entry becomes stale.
	Expires time.Time `json:"expires"`

	// CachedAt is when the entry was stored.
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
