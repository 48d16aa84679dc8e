// Package fetch implements a rate-limit-aware fetch orchestrator for
// remote market-data providers.
//
// Large date ranges are split into batches, fetched strictly
// sequentially with randomized pauses between batches, and retried
// with exponential backoff and jitter when the provider signals a
// rate limit. When the primary policy is exhausted for a batch, the
// orchestrator escalates once to a more conservative fallback policy
// (smaller batches, longer pauses) covering the remaining range.
//
// Example usage:
//
//	policy := fetch.DefaultPolicy()
//	orch, err := fetch.NewOrchestrator(policy, fetchFn)
//	result, err := orch.Fetch(ctx, dateRange)
//
// The orchestrator:
//   - Plans contiguous, non-overlapping batches covering the range
//   - Fetches batches one at a time (parallelism defeats the purpose)
//   - Retries rate-limited batches with backoff and jitter
//   - Falls back once to a degraded policy for the remaining range
//   - Preserves partial results on every terminal outcome
//
// Adapters signal a rate limit by returning an error that wraps
// ErrRateLimited; every other fetch error aborts the run immediately.
package fetch
