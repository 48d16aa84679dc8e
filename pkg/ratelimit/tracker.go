package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for cooldown tracking.
var (
	cooldownsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kronos_rate_limit_cooldowns_total",
		Help: "Total rate-limit cooldowns recorded by provider",
	}, []string{"provider"})

	blocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kronos_rate_limit_blocks_total",
		Help: "Total requests blocked by an active cooldown by provider",
	}, []string{"provider"})

	cooldownRemaining = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "kronos_rate_limit_cooldown_remaining_seconds",
		Help: "Seconds until the provider cooldown expires",
	}, []string{"provider"})
)

// Tracker stores provider cooldowns in Redis and gates requests while
// one is active.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewTracker creates a cooldown tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
	}
}

// GetState retrieves the cooldown state for a provider. Returns a zero
// state when the provider has never been limited.
func (t *Tracker) GetState(ctx context.Context, provider string) (*CooldownState, error) {
	limitedUntil, err := t.redis.Get(ctx, keyLimitedUntil(provider)).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get limited until: %w", err)
	}
	if err == redis.Nil {
		return &CooldownState{}, nil
	}

	lastLimited, err := t.redis.Get(ctx, keyLastLimited(provider)).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get last limited: %w", err)
	}

	state := &CooldownState{
		LimitedUntil: time.Unix(limitedUntil, 0),
	}
	if lastLimited > 0 {
		state.LastLimited = time.Unix(lastLimited, 0)
	}

	return state, nil
}

// MarkLimited records a rate-limit observation for a provider. The
// cooldown runs for retryAfter when the provider supplied one, or
// DefaultCooldown otherwise. The keys expire with the cooldown so
// stale state cleans itself up.
func (t *Tracker) MarkLimited(ctx context.Context, provider string, retryAfter time.Duration) error {
	cooldown := clampCooldown(retryAfter)
	now := time.Now()
	until := now.Add(cooldown)

	pipe := t.redis.Pipeline()
	pipe.Set(ctx, keyLimitedUntil(provider), until.Unix(), cooldown)
	pipe.Set(ctx, keyLastLimited(provider), now.Unix(), cooldown)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store cooldown state in redis: %w", err)
	}

	cooldownsTotal.WithLabelValues(provider).Inc()
	cooldownRemaining.WithLabelValues(provider).Set(cooldown.Seconds())

	t.logger.Warn().
		Str("provider", provider).
		Dur("cooldown", cooldown).
		Time("limited_until", until).
		Msg("Provider rate limit recorded - entering cooldown")

	return nil
}

// ShouldAllowRequest reports whether a request to the provider may
// proceed. When blocked, the returned duration is the remaining
// cooldown.
func (t *Tracker) ShouldAllowRequest(ctx context.Context, provider string) (bool, time.Duration, error) {
	state, err := t.GetState(ctx, provider)
	if err != nil {
		return false, 0, fmt.Errorf("get cooldown state: %w", err)
	}

	if state.InCooldown() {
		remaining := state.Remaining()
		blocksTotal.WithLabelValues(provider).Inc()
		cooldownRemaining.WithLabelValues(provider).Set(remaining.Seconds())

		t.logger.Warn().
			Str("provider", provider).
			Dur("remaining", remaining).
			Msg("Request blocked by active cooldown")

		return false, remaining, nil
	}

	cooldownRemaining.WithLabelValues(provider).Set(0)
	return true, 0, nil
}

// Clear removes the cooldown state for a provider.
func (t *Tracker) Clear(ctx context.Context, provider string) error {
	if err := t.redis.Del(ctx, keyLimitedUntil(provider), keyLastLimited(provider)).Err(); err != nil {
		return fmt.Errorf("clear cooldown state: %w", err)
	}
	cooldownRemaining.WithLabelValues(provider).Set(0)
	return nil
}
