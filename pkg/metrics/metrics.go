// Package metrics provides the central Prometheus registry reference
// for the Kronos fetch toolkit. All metrics are defined in their
// respective packages (fetch, cache, ratelimit, yahoo) to maintain
// modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the toolkit.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Fetch Metrics (pkg/fetch):
//   - kronos_fetch_batches_total{outcome} (Counter): Batches by outcome (success, failed, exhausted)
//   - kronos_fetch_retries_total (Counter): Rate-limit retry attempts
//   - kronos_fetch_retry_backoff_seconds (Histogram): Backoff duration before retries
//   - kronos_fetch_retry_exhausted_total (Counter): Batches that exhausted their retry budget
//   - kronos_fetch_fallbacks_total (Counter): Escalations to the fallback policy
//
// Cache Metrics (pkg/cache):
//   - kronos_cache_hits_total (Counter): Batch fetches served from cache
//   - kronos_cache_misses_total (Counter): Batch fetches not found in cache
//   - kronos_cache_errors_total{operation} (Counter): Cache operation errors
//
// Rate Limit Metrics (pkg/ratelimit):
//   - kronos_rate_limit_cooldowns_total{provider} (Counter): Cooldowns recorded
//   - kronos_rate_limit_blocks_total{provider} (Counter): Requests blocked by active cooldowns
//   - kronos_rate_limit_cooldown_remaining_seconds{provider} (Gauge): Remaining cooldown
//
// Provider Metrics (pkg/yahoo):
//   - kronos_provider_requests_total{provider, status} (Counter): Provider requests by HTTP status
//   - kronos_provider_request_duration_seconds{provider} (Histogram): Provider request duration
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(kronos_cache_hits_total[5m])) /
//   (sum(rate(kronos_cache_hits_total[5m])) + sum(rate(kronos_cache_misses_total[5m])))
//
//   # Rate-Limit Pressure
//   rate(kronos_fetch_retries_total[15m])
//
//   # Fallback Escalation Rate
//   rate(kronos_fetch_fallbacks_total[1h])
//
//   # P95 Provider Latency
//   histogram_quantile(0.95, rate(kronos_provider_request_duration_seconds_bucket[5m]))
//
//   # Active Cooldown
//   kronos_rate_limit_cooldown_remaining_seconds > 0
