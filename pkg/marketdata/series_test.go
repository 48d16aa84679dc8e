package marketdata

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func candleAt(day int, close float64) Candle {
	return Candle{
		Timestamp: time.Date(2023, 1, day, 0, 0, 0, 0, time.UTC),
		Close:     decimal.NewFromFloat(close),
		Volume:    decimal.NewFromInt(100),
	}
}

func TestMerge_SortsAcrossBatches(t *testing.T) {
	batch1 := []Candle{candleAt(3, 10), candleAt(4, 11)}
	batch2 := []Candle{candleAt(1, 8), candleAt(2, 9)}

	merged := Merge(batch1, batch2)

	if len(merged) != 4 {
		t.Fatalf("Got %d candles, want 4", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if !merged[i].Timestamp.After(merged[i-1].Timestamp) {
			t.Errorf("Candle %d (%v) not after candle %d (%v)",
				i, merged[i].Timestamp, i-1, merged[i-1].Timestamp)
		}
	}
}

func TestMerge_DropsDuplicatesKeepingFirst(t *testing.T) {
	first := candleAt(2, 10)
	duplicate := candleAt(2, 99)

	merged := Merge([]Candle{candleAt(1, 8), first}, []Candle{duplicate, candleAt(3, 12)})

	if len(merged) != 3 {
		t.Fatalf("Got %d candles, want 3", len(merged))
	}
	if !merged[1].Close.Equal(first.Close) {
		t.Errorf("Duplicate resolution kept close %v, want %v (first occurrence)",
			merged[1].Close, first.Close)
	}
}

func TestMerge_Empty(t *testing.T) {
	if merged := Merge(); merged != nil {
		t.Errorf("Merge() = %v, want nil", merged)
	}
	if merged := Merge(nil, []Candle{}); merged != nil {
		t.Errorf("Merge of empty batches = %v, want nil", merged)
	}
}

func TestFillAmount(t *testing.T) {
	series := []Candle{
		{Close: decimal.NewFromInt(10), Volume: decimal.NewFromInt(5)},
		{Close: decimal.NewFromInt(10), Volume: decimal.NewFromInt(5), Amount: decimal.NewFromInt(123)},
	}

	FillAmount(series)

	if !series[0].Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Amount = %v, want 50 (close*volume)", series[0].Amount)
	}
	if !series[1].Amount.Equal(decimal.NewFromInt(123)) {
		t.Errorf("Existing amount overwritten: %v", series[1].Amount)
	}
}

func TestClip(t *testing.T) {
	series := []Candle{candleAt(1, 1), candleAt(2, 2), candleAt(3, 3)}

	clipped := Clip(series, 2)
	if len(clipped) != 2 {
		t.Fatalf("Got %d candles, want 2", len(clipped))
	}
	if clipped[0].Timestamp.Day() != 2 || clipped[1].Timestamp.Day() != 3 {
		t.Error("Clip must keep the most recent candles")
	}

	if got := Clip(series, 10); len(got) != 3 {
		t.Errorf("Clip beyond length returned %d candles, want 3", len(got))
	}
	if got := Clip(series, 0); got != nil {
		t.Errorf("Clip(series, 0) = %v, want nil", got)
	}
}

func TestTotalVolume(t *testing.T) {
	series := []Candle{candleAt(1, 1), candleAt(2, 2)}

	if got := TotalVolume(series); !got.Equal(decimal.NewFromInt(200)) {
		t.Errorf("TotalVolume = %v, want 200", got)
	}
}
