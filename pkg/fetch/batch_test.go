package fetch

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewDateRange(t *testing.T) {
	r, err := NewDateRange(date(2023, 1, 1), date(2023, 12, 31))
	if err != nil {
		t.Fatalf("NewDateRange failed: %v", err)
	}
	if r.Days() != 365 {
		t.Errorf("Days() = %d, want 365", r.Days())
	}
}

func TestNewDateRange_TruncatesToDay(t *testing.T) {
	start := time.Date(2023, 1, 1, 15, 30, 0, 0, time.UTC)
	end := time.Date(2023, 1, 2, 8, 0, 0, 0, time.UTC)

	r, err := NewDateRange(start, end)
	if err != nil {
		t.Fatalf("NewDateRange failed: %v", err)
	}
	if !r.Start.Equal(date(2023, 1, 1)) {
		t.Errorf("Start = %v, want midnight", r.Start)
	}
	if !r.End.Equal(date(2023, 1, 2)) {
		t.Errorf("End = %v, want midnight", r.End)
	}
}

func TestNewDateRange_Invalid(t *testing.T) {
	_, err := NewDateRange(date(2023, 6, 1), date(2023, 1, 1))
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange, got %v", err)
	}
}

func TestPlan_YearInHalfYearBatches(t *testing.T) {
	r := DateRange{Start: date(2023, 1, 1), End: date(2023, 12, 31)}

	batches, err := Plan(r, 180)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	if len(batches) != 2 {
		t.Fatalf("Expected 2 batches, got %d", len(batches))
	}
	if !batches[0].Start.Equal(date(2023, 1, 1)) || !batches[0].End.Equal(date(2023, 6, 29)) {
		t.Errorf("Batch 0 = %s, want 2023-01-01..2023-06-29", batches[0])
	}
	if !batches[1].Start.Equal(date(2023, 6, 30)) || !batches[1].End.Equal(date(2023, 12, 31)) {
		t.Errorf("Batch 1 = %s, want 2023-06-30..2023-12-31", batches[1])
	}
}

func TestPlan_ShortRangeSingleBatch(t *testing.T) {
	r := DateRange{Start: date(2023, 3, 1), End: date(2023, 3, 10)}

	batches, err := Plan(r, 180)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	if len(batches) != 1 {
		t.Fatalf("Expected 1 batch, got %d", len(batches))
	}
	if batches[0] != r {
		t.Errorf("Batch = %s, want input range %s", batches[0], r)
	}
}

func TestPlan_SingleDay(t *testing.T) {
	r := DateRange{Start: date(2023, 3, 1), End: date(2023, 3, 1)}

	batches, err := Plan(r, 30)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(batches) != 1 || batches[0] != r {
		t.Errorf("Expected single one-day batch, got %v", batches)
	}
}

func TestPlan_InvalidRange(t *testing.T) {
	r := DateRange{Start: date(2023, 6, 1), End: date(2023, 1, 1)}

	_, err := Plan(r, 30)
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange, got %v", err)
	}
}

func TestPlan_InvalidSize(t *testing.T) {
	r := DateRange{Start: date(2023, 1, 1), End: date(2023, 1, 31)}

	if _, err := Plan(r, 0); err == nil {
		t.Error("Expected error for zero batch size")
	}
	if _, err := Plan(r, -5); err == nil {
		t.Error("Expected error for negative batch size")
	}
}

// TestPlan_CoversRangeExactly checks that for a variety of ranges and
// batch sizes the plan is contiguous, non-overlapping, and covers the
// input exactly.
func TestPlan_CoversRangeExactly(t *testing.T) {
	tests := []struct {
		name     string
		r        DateRange
		sizeDays int
	}{
		{"year in half-year batches", DateRange{date(2023, 1, 1), date(2023, 12, 31)}, 180},
		{"year in quarter batches", DateRange{date(2023, 1, 1), date(2023, 12, 31)}, 90},
		{"uneven tail", DateRange{date(2023, 1, 1), date(2023, 2, 10)}, 7},
		{"size one", DateRange{date(2023, 1, 1), date(2023, 1, 10)}, 1},
		{"leap february", DateRange{date(2024, 2, 1), date(2024, 3, 31)}, 10},
		{"multi-year", DateRange{date(2020, 1, 1), date(2023, 12, 31)}, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches, err := Plan(tt.r, tt.sizeDays)
			if err != nil {
				t.Fatalf("Plan failed: %v", err)
			}
			if len(batches) == 0 {
				t.Fatal("Expected at least one batch")
			}

			if !batches[0].Start.Equal(tt.r.Start) {
				t.Errorf("First batch starts at %v, want %v", batches[0].Start, tt.r.Start)
			}
			if !batches[len(batches)-1].End.Equal(tt.r.End) {
				t.Errorf("Last batch ends at %v, want %v", batches[len(batches)-1].End, tt.r.End)
			}

			total := 0
			for i, b := range batches {
				if b.Start.After(b.End) {
					t.Errorf("Batch %d inverted: %s", i, b)
				}
				if b.Days() > tt.sizeDays {
					t.Errorf("Batch %d spans %d days, max %d", i, b.Days(), tt.sizeDays)
				}
				if i > 0 {
					prev := batches[i-1]
					if !b.Start.Equal(prev.End.AddDate(0, 0, 1)) {
						t.Errorf("Gap or overlap between batch %d (%s) and %d (%s)",
							i-1, prev, i, b)
					}
				}
				total += b.Days()
			}

			if total != tt.r.Days() {
				t.Errorf("Batches cover %d days, range has %d", total, tt.r.Days())
			}
		})
	}
}
