// Package ratelimit tracks provider rate-limit cooldowns in shared
// Redis state, so every process fetching from the same provider backs
// off together instead of each burning its own retry budget.
package ratelimit

import (
	"fmt"
	"time"
)

// Redis key templates for cooldown state storage.
const (
	redisKeyLimitedUntil = "kronos:ratelimit:%s:limited_until"
	redisKeyLastLimited  = "kronos:ratelimit:%s:last_limited"
)

// DefaultCooldown is applied when a provider signals a rate limit
// without a Retry-After hint. Strict providers such as Yahoo Finance
// typically need on the order of half an hour before requests succeed
// again.
const DefaultCooldown = 30 * time.Minute

// MaxCooldown caps provider-supplied Retry-After values.
const MaxCooldown = 2 * time.Hour

// CooldownState is the shared rate-limit state for one provider.
type CooldownState struct {
	// LimitedUntil is when requests may resume. Zero when the
	// provider has never been limited or the cooldown expired.
	LimitedUntil time.Time `json:"limited_until"`

	// LastLimited is when the most recent rate limit was observed.
	LastLimited time.Time `json:"last_limited"`
}

// InCooldown reports whether requests are currently blocked.
func (s *CooldownState) InCooldown() bool {
	return time.Now().Before(s.LimitedUntil)
}

// Remaining returns the time until the cooldown expires.
// Returns 0 if no cooldown is active.
func (s *CooldownState) Remaining() time.Duration {
	d := time.Until(s.LimitedUntil)
	if d < 0 {
		return 0
	}
	return d
}

// clampCooldown normalizes a Retry-After hint into [DefaultCooldown
// when unset, MaxCooldown at most].
func clampCooldown(retryAfter time.Duration) time.Duration {
	if retryAfter <= 0 {
		return DefaultCooldown
	}
	if retryAfter > MaxCooldown {
		return MaxCooldown
	}
	return retryAfter
}

func keyLimitedUntil(provider string) string {
	return fmt.Sprintf(redisKeyLimitedUntil, provider)
}

func keyLastLimited(provider string) string {
	return fmt.Sprintf(redisKeyLastLimited, provider)
}
