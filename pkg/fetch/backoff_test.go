package fetch

import (
	"math/rand"
	"testing"
	"time"
)

func TestBackoff_NextDelayBounds(t *testing.T) {
	base := 60 * time.Second
	max := 600 * time.Second

	// A seeded source makes the jitter deterministic; bounds must
	// hold for every attempt regardless of the draw.
	for seed := int64(0); seed < 10; seed++ {
		b := NewBackoff(base, max, rand.New(rand.NewSource(seed)))

		for attempt := 1; attempt <= 8; attempt++ {
			delay := b.NextDelay(attempt)

			expected := base << (attempt - 1)
			if expected > max {
				expected = max
			}
			lower := expected
			upper := expected + expected/2

			if delay < lower || delay > upper {
				t.Errorf("seed %d attempt %d: delay %v outside [%v, %v]",
					seed, attempt, delay, lower, upper)
			}
		}
	}
}

func TestBackoff_CapAppliesBeforeJitter(t *testing.T) {
	b := NewBackoff(time.Second, 4*time.Second, rand.New(rand.NewSource(1)))

	// By attempt 4 the exponential term (8s) exceeds the 4s cap, so
	// the delay must stay within [4s, 6s].
	for attempt := 4; attempt <= 10; attempt++ {
		delay := b.NextDelay(attempt)
		if delay < 4*time.Second || delay > 6*time.Second {
			t.Errorf("attempt %d: delay %v outside capped range [4s, 6s]", attempt, delay)
		}
	}
}

func TestBackoff_ZeroConfig(t *testing.T) {
	b := NewBackoff(0, 0, rand.New(rand.NewSource(1)))

	if delay := b.NextDelay(1); delay != 0 {
		t.Errorf("NextDelay(1) = %v, want 0 for zero base and max", delay)
	}
	if delay := b.NextDelay(5); delay != 0 {
		t.Errorf("NextDelay(5) = %v, want 0 for zero base and max", delay)
	}
}

func TestBackoff_NeverNegative(t *testing.T) {
	b := NewBackoff(time.Millisecond, time.Second, rand.New(rand.NewSource(42)))

	for _, attempt := range []int{-3, 0, 1, 2, 30} {
		if delay := b.NextDelay(attempt); delay < 0 {
			t.Errorf("NextDelay(%d) = %v, negative delay", attempt, delay)
		}
	}
}

func TestBackoff_AttemptBelowOneClamped(t *testing.T) {
	b := NewBackoff(time.Second, time.Minute, rand.New(rand.NewSource(7)))

	// Attempts below 1 behave like the first attempt.
	delay := b.NextDelay(0)
	if delay < time.Second || delay > 1500*time.Millisecond {
		t.Errorf("NextDelay(0) = %v outside [1s, 1.5s]", delay)
	}
}

func TestBackoff_DeterministicWithSeed(t *testing.T) {
	a := NewBackoff(time.Second, time.Minute, rand.New(rand.NewSource(99)))
	b := NewBackoff(time.Second, time.Minute, rand.New(rand.NewSource(99)))

	for attempt := 1; attempt <= 5; attempt++ {
		if da, db := a.NextDelay(attempt), b.NextDelay(attempt); da != db {
			t.Errorf("attempt %d: %v != %v for identical seeds", attempt, da, db)
		}
	}
}
