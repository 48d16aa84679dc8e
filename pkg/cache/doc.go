// Package cache provides a Redis-backed cache for batch-fetched candle
// series.
//
// Every cache hit is a remote request that never happens, which makes
// local caching the cheapest rate-limit mitigation available: repeated
// fetches of historical ranges (which never change) are served entirely
// from Redis.
//
// Example usage:
//
//	manager := cache.NewManager(redisClient)
//	cached := cache.Cached(fetchFn, manager, "GC=F", "1d", 24*time.Hour)
//	orch, _ := fetch.NewOrchestrator(policy, cached)
//
// The Cached wrapper is transparent to the orchestrator: a batch-range
// hit short-circuits the remote call, a miss fetches and stores.
package cache
