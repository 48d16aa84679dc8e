package marketdata

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Merge concatenates batch results into one series sorted by
// timestamp. Candles sharing a timestamp are deduplicated keeping the
// first occurrence, so overlapping batch edges cannot double-count a
// day.
func Merge(batches ...[]Candle) []Candle {
	total := 0
	for _, b := range batches {
		total += len(b)
	}
	if total == 0 {
		return nil
	}

	merged := make([]Candle, 0, total)
	for _, b := range batches {
		merged = append(merged, b...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})

	out := merged[:1]
	for _, c := range merged[1:] {
		if c.Timestamp.Equal(out[len(out)-1].Timestamp) {
			continue
		}
		out = append(out, c)
	}

	return out
}

// FillAmount derives missing traded notionals as close*volume. The
// series is modified in place and returned for chaining.
func FillAmount(series []Candle) []Candle {
	for i := range series {
		if series[i].Amount.IsZero() {
			series[i].Amount = series[i].Close.Mul(series[i].Volume)
		}
	}
	return series
}

// Clip keeps the most recent n candles of a sorted series.
func Clip(series []Candle, n int) []Candle {
	if n <= 0 {
		return nil
	}
	if len(series) <= n {
		return series
	}
	return series[len(series)-n:]
}

// TotalVolume sums the volume of a series.
func TotalVolume(series []Candle) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range series {
		sum = sum.Add(c.Volume)
	}
	return sum
}
