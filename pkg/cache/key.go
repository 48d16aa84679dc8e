package cache

import (
	"fmt"
	"strings"

	"github.com/raywind/Kronos/pkg/fetch"
)

// Key identifies a cached batch: one symbol, one candle interval, one
// date range.
type Key struct {
	// Symbol is the instrument symbol (e.g. "GC=F", "BTC-USD").
	Symbol string

	// Interval is the candle interval (e.g. "1d", "1h", "5m").
	Interval string

	// Range is the batch date range.
	Range fetch.DateRange
}

// String generates a deterministic cache key string.
// Format: kronos:candles:SYMBOL:interval:start..end
//
// Example:
//
//	kronos:candles:GC=F:1d:2023-01-01..2023-06-29
func (k Key) String() string {
	symbol := strings.ToUpper(strings.TrimSpace(k.Symbol))
	interval := strings.ToLower(strings.TrimSpace(k.Interval))
	return fmt.Sprintf("kronos:candles:%s:%s:%s", symbol, interval, k.Range)
}
