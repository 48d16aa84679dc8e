package fetch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for fetch orchestration.
var (
	fetchBatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kronos_fetch_batches_total",
		Help: "Total batches fetched by outcome",
	}, []string{"outcome"})

	fetchRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kronos_fetch_retries_total",
		Help: "Total rate-limit retry attempts",
	})

	fetchRetryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kronos_fetch_retry_backoff_seconds",
		Help:    "Backoff duration before rate-limit retries",
		Buckets: []float64{1, 5, 15, 60, 120, 300, 600, 900},
	})

	fetchRetryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kronos_fetch_retry_exhausted_total",
		Help: "Total batches that exhausted their retry budget",
	})

	fetchFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kronos_fetch_fallbacks_total",
		Help: "Total escalations to the fallback policy",
	})
)

// Func fetches the records for one batch. Implementations signal a
// rate limit by returning an error wrapping ErrRateLimited; any other
// error aborts the orchestration without retry.
type Func[R any] func(ctx context.Context, batch DateRange) ([]R, error)

// Result carries the outcome of an orchestrated fetch. Records is
// always populated with whatever was fetched, including on error and
// cancellation, so callers can decide whether partial data is usable.
type Result[R any] struct {
	// Records is the chronological concatenation of all fetched
	// batch results.
	Records []R

	// Batches is the number of batches fetched successfully.
	Batches int

	// FellBack reports whether the fallback policy was engaged.
	FellBack bool

	// Cancelled reports that the context was cancelled before the
	// range completed. Cancellation is a normal terminal outcome,
	// not an error.
	Cancelled bool
}

// Orchestrator drives a fetch function across the batches of a date
// range, applying retry, backoff, and fallback policy. Each instance
// handles one logical fetch stream; instances share no state.
type Orchestrator[R any] struct {
	policy Policy
	fetch  Func[R]
	rng    *rand.Rand
	logger zerolog.Logger
}

// NewOrchestrator creates an orchestrator for the given policy and
// fetch function.
func NewOrchestrator[R any](policy Policy, fn Func[R]) (*Orchestrator[R], error) {
	if fn == nil {
		return nil, fmt.Errorf("fetch function is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	return &Orchestrator[R]{
		policy: policy,
		fetch:  fn,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: log.With().Str("component", "fetch-orchestrator").Logger(),
	}, nil
}

// SetRand sets the randomness source for jitter and inter-batch
// delays (for testing).
func (o *Orchestrator[R]) SetRand(rng *rand.Rand) {
	o.rng = rng
}

// SetLogger sets a custom logger.
func (o *Orchestrator[R]) SetLogger(logger zerolog.Logger) {
	o.logger = logger
}

// errCancelled is an internal marker; cancellation surfaces to callers
// as Result.Cancelled, never as an error.
var errCancelled = errors.New("cancelled")

// Fetch executes the fetch function across all batches of r. On full
// success the Result holds the complete chronological record sequence.
// On failure the Result still holds everything fetched before the
// failing batch.
func (o *Orchestrator[R]) Fetch(ctx context.Context, r DateRange) (Result[R], error) {
	var res Result[R]

	start := time.Now()
	err := o.run(ctx, r, o.policy, true, &res)
	if err != nil {
		return res, err
	}

	if res.Cancelled {
		o.logger.Warn().
			Stringer("range", r).
			Int("batches", res.Batches).
			Int("records", len(res.Records)).
			Msg("Fetch cancelled - returning partial result")
		return res, nil
	}

	o.logger.Info().
		Stringer("range", r).
		Int("batches", res.Batches).
		Int("records", len(res.Records)).
		Bool("fell_back", res.FellBack).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return res, nil
}

// run executes one planning pass. allowFallback permits a single
// escalation to the degraded policy for the remaining range.
func (o *Orchestrator[R]) run(ctx context.Context, r DateRange, pol Policy, allowFallback bool, res *Result[R]) error {
	batches, err := Plan(r, pol.BatchSizeDays)
	if err != nil {
		return err
	}

	o.logger.Debug().
		Stringer("range", r).
		Int("batches", len(batches)).
		Int("batch_size_days", pol.BatchSizeDays).
		Bool("fallback", !allowFallback).
		Msg("Planned batches")

	backoff := NewBackoff(pol.RetryBaseDelay, pol.MaxRetryDelay, o.rng)

	for i, batch := range batches {
		// Cancellation is checked before every attempt and sleep.
		if ctx.Err() != nil {
			res.Cancelled = true
			return nil
		}

		records, err := o.fetchBatch(ctx, batch, pol, backoff)
		if err != nil {
			if errors.Is(err, errCancelled) {
				res.Cancelled = true
				return nil
			}

			var exhausted *ExhaustedError
			if errors.As(err, &exhausted) && allowFallback {
				// Re-plan only the unfetched remainder under the
				// more conservative policy. One escalation only.
				remaining := DateRange{Start: batch.Start, End: r.End}
				fetchFallbacksTotal.Inc()
				res.FellBack = true

				o.logger.Warn().
					Stringer("batch", batch).
					Stringer("remaining", remaining).
					Int("fallback_batch_size_days", pol.FallbackBatchSizeDays).
					Msg("Retries exhausted - escalating to fallback policy")

				return o.run(ctx, remaining, pol.degraded(), false, res)
			}

			return err
		}

		res.Records = append(res.Records, records...)
		res.Batches++
		fetchBatchesTotal.WithLabelValues("success").Inc()

		// Pause between batches to keep request pressure down.
		// No pause after the last batch.
		if i < len(batches)-1 {
			delay := o.interBatchDelay(pol)
			o.logger.Debug().
				Stringer("batch", batch).
				Dur("delay", delay).
				Msg("Batch fetched - pausing before next")

			if err := o.sleep(ctx, delay); err != nil {
				res.Cancelled = true
				return nil
			}
		}
	}

	return nil
}

// fetchBatch attempts one batch, retrying rate-limit failures with
// exponential backoff up to the policy's retry budget.
func (o *Orchestrator[R]) fetchBatch(ctx context.Context, batch DateRange, pol Policy, backoff *Backoff) ([]R, error) {
	var lastErr error

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, errCancelled
		}

		records, err := o.fetch(ctx, batch)
		if err == nil {
			if attempt > 0 {
				o.logger.Info().
					Stringer("batch", batch).
					Int("attempt", attempt+1).
					Msg("Batch succeeded after retry")
			}
			return records, nil
		}

		if !errors.Is(err, ErrRateLimited) {
			fetchBatchesTotal.WithLabelValues("failed").Inc()
			return nil, &FailedError{Batch: batch, Err: err}
		}

		lastErr = err

		if attempt >= pol.MaxRetries {
			fetchBatchesTotal.WithLabelValues("exhausted").Inc()
			fetchRetryExhaustedTotal.Inc()
			o.logger.Warn().
				Stringer("batch", batch).
				Int("attempts", attempt+1).
				Msg("Rate-limit retries exhausted")
			return nil, &ExhaustedError{Batch: batch, Attempts: attempt + 1, Err: lastErr}
		}

		delay := backoff.NextDelay(attempt + 1)
		fetchRetriesTotal.Inc()
		fetchRetryBackoffSeconds.Observe(delay.Seconds())

		o.logger.Warn().
			Stringer("batch", batch).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("Rate limited - retrying after backoff")

		if err := o.sleep(ctx, delay); err != nil {
			return nil, errCancelled
		}
	}
}

// interBatchDelay draws a uniform delay from the policy's inter-batch
// range.
func (o *Orchestrator[R]) interBatchDelay(pol Policy) time.Duration {
	spread := pol.InterBatchDelayMax - pol.InterBatchDelayMin
	if spread <= 0 {
		return pol.InterBatchDelayMin
	}
	return pol.InterBatchDelayMin + time.Duration(o.rng.Float64()*float64(spread))
}

// sleep waits for d or until the context is cancelled.
func (o *Orchestrator[R]) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return errCancelled
	case <-timer.C:
		return nil
	}
}
