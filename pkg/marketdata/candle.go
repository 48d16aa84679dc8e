// Package marketdata defines OHLCV candle records and the merge
// operations applied to batch-fetched series.
package marketdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one OHLCV record. Timestamps are UTC; prices and volumes
// use decimals to avoid float drift when amounts are derived.
type Candle struct {
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`

	// Amount is the traded notional. Providers that omit it get
	// close*volume via FillAmount.
	Amount decimal.Decimal `json:"amount"`
}

// Day returns the candle's UTC calendar day.
func (c Candle) Day() time.Time {
	t := c.Timestamp.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
