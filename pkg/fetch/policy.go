package fetch

import (
	"fmt"
	"time"
)

// Policy holds the fetch orchestration configuration.
// A Policy is read-only once handed to an orchestrator.
type Policy struct {
	// BatchSizeDays is the maximum number of calendar days per batch.
	BatchSizeDays int

	// InterBatchDelayMin and InterBatchDelayMax bound the randomized
	// pause between successful batches.
	InterBatchDelayMin time.Duration
	InterBatchDelayMax time.Duration

	// RetryBaseDelay is the backoff delay for the first retry.
	RetryBaseDelay time.Duration

	// MaxRetryDelay caps the exponential backoff delay.
	MaxRetryDelay time.Duration

	// MaxRetries is the number of retries after the initial attempt
	// for a rate-limited batch.
	MaxRetries int

	// FallbackBatchSizeDays is the batch size used after escalating
	// to the fallback policy. Must be smaller than BatchSizeDays.
	FallbackBatchSizeDays int

	// FallbackDelayMin and FallbackDelayMax bound the inter-batch
	// pause under the fallback policy.
	FallbackDelayMin time.Duration
	FallbackDelayMax time.Duration
}

// DefaultPolicy returns a conservative default configuration tuned for
// strict providers such as Yahoo Finance: half-year batches, 5-10s
// between batches, one minute base backoff capped at ten minutes, and
// a quarter-year fallback with 10-15s pauses.
func DefaultPolicy() Policy {
	return Policy{
		BatchSizeDays:         180,
		InterBatchDelayMin:    5 * time.Second,
		InterBatchDelayMax:    10 * time.Second,
		RetryBaseDelay:        60 * time.Second,
		MaxRetryDelay:         600 * time.Second,
		MaxRetries:            3,
		FallbackBatchSizeDays: 90,
		FallbackDelayMin:      10 * time.Second,
		FallbackDelayMax:      15 * time.Second,
	}
}

// Validate checks the policy invariants.
func (p Policy) Validate() error {
	if p.BatchSizeDays <= 0 {
		return fmt.Errorf("batch_size_days must be > 0 (got %d)", p.BatchSizeDays)
	}
	if p.InterBatchDelayMin < 0 {
		return fmt.Errorf("inter_batch_delay_min must be >= 0 (got %v)", p.InterBatchDelayMin)
	}
	if p.InterBatchDelayMax < p.InterBatchDelayMin {
		return fmt.Errorf("inter_batch_delay_max %v < inter_batch_delay_min %v",
			p.InterBatchDelayMax, p.InterBatchDelayMin)
	}
	if p.RetryBaseDelay <= 0 {
		return fmt.Errorf("retry_base_delay must be > 0 (got %v)", p.RetryBaseDelay)
	}
	if p.MaxRetryDelay < p.RetryBaseDelay {
		return fmt.Errorf("max_retry_delay %v < retry_base_delay %v",
			p.MaxRetryDelay, p.RetryBaseDelay)
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0 (got %d)", p.MaxRetries)
	}
	if p.FallbackBatchSizeDays <= 0 {
		return fmt.Errorf("fallback_batch_size_days must be > 0 (got %d)", p.FallbackBatchSizeDays)
	}
	// The fallback must be strictly more conservative than the
	// primary policy: smaller batches, pauses at least as long.
	if p.FallbackBatchSizeDays >= p.BatchSizeDays {
		return fmt.Errorf("fallback_batch_size_days %d must be < batch_size_days %d",
			p.FallbackBatchSizeDays, p.BatchSizeDays)
	}
	if p.FallbackDelayMin < p.InterBatchDelayMin {
		return fmt.Errorf("fallback_delay_min %v < inter_batch_delay_min %v",
			p.FallbackDelayMin, p.InterBatchDelayMin)
	}
	if p.FallbackDelayMax < p.FallbackDelayMin {
		return fmt.Errorf("fallback_delay_max %v < fallback_delay_min %v",
			p.FallbackDelayMax, p.FallbackDelayMin)
	}
	return nil
}

// degraded returns the policy applied after the single permitted
// fallback escalation. Retry parameters carry over unchanged.
func (p Policy) degraded() Policy {
	d := p
	d.BatchSizeDays = p.FallbackBatchSizeDays
	d.InterBatchDelayMin = p.FallbackDelayMin
	d.InterBatchDelayMax = p.FallbackDelayMax
	return d
}
