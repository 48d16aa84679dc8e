package fetch

import (
	"math"
	"math/rand"
	"time"
)

// jitterFactor bounds the additive jitter at half the computed delay,
// which is enough to desynchronize concurrent callers without
// stretching the worst case past 1.5x.
const jitterFactor = 0.5

// Backoff computes exponential retry delays with additive jitter.
// Not safe for concurrent use; each orchestrator run owns its own.
type Backoff struct {
	base time.Duration
	max  time.Duration
	rng  *rand.Rand
}

// NewBackoff creates a backoff scheduler. rng may be nil, in which
// case a time-seeded source is used; tests pass a seeded source to
// make delays deterministic.
func NewBackoff(base, max time.Duration, rng *rand.Rand) *Backoff {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Backoff{base: base, max: max, rng: rng}
}

// NextDelay returns the delay before retry number attempt (1-based):
// min(max, base*2^(attempt-1)) plus uniform jitter in [0, delay/2].
// The result is never negative and is zero only when both base and
// max are zero.
func (b *Backoff) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(b.base) * math.Pow(2, float64(attempt-1))
	if delay > float64(b.max) {
		delay = float64(b.max)
	}
	if delay <= 0 {
		return 0
	}

	jitter := b.rng.Float64() * delay * jitterFactor
	return time.Duration(delay + jitter)
}
