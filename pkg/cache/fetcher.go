package cache

import (
	"context"
	"errors"
	"time"

	"github.com/raywind/Kronos/pkg/fetch"
	"github.com/raywind/Kronos/pkg/marketdata"
	"github.com/rs/zerolog/log"
)

// Cached wraps a fetch function with batch-level caching. A hit skips
// the remote call entirely; a miss fetches through fn and stores the
// result for ttl. Cache errors fall through to the remote fetch so a
// broken Redis never breaks fetching.
func Cached(fn fetch.Func[marketdata.Candle], m *Manager, symbol, interval string, ttl time.Duration) fetch.Func[marketdata.Candle] {
	logger := log.With().Str("component", "candle-cache").Logger()

	return func(ctx context.Context, batch fetch.DateRange) ([]marketdata.Candle, error) {
		key := Key{Symbol: symbol, Interval: interval, Range: batch}

		entry, err := m.Get(ctx, key)
		if err == nil {
			logger.Debug().
				Str("key", key.String()).
				Int("candles", len(entry.Candles)).
				Msg("Cache hit - skipping remote fetch")
			return entry.Candles, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			logger.Warn().Err(err).Str("key", key.String()).Msg("Cache get error")
		}

		candles, err := fn(ctx, batch)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		if err := m.Set(ctx, key, &Entry{
			Candles:  candles,
			Expires:  now.Add(ttl),
			CachedAt: now,
		}); err != nil {
			logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to cache batch")
		} else {
			logger.Debug().
				Str("key", key.String()).
				Int("candles", len(candles)).
				Dur("ttl", ttl).
				Msg("Cached batch")
		}

		return candles, nil
	}
}
