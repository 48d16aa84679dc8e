package fetch

import (
	"fmt"
	"time"
)

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a day-granular range. Both ends are truncated to
// UTC midnight. Returns ErrInvalidRange if start is after end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Day(start), End: Day(end)}
	if r.Start.After(r.End) {
		return DateRange{}, ErrInvalidRange
	}
	return r, nil
}

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Days returns the number of calendar days covered, inclusive.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains reports whether t falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// String formats the range as "2023-01-01..2023-12-31".
func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}

// Plan splits a range into chronologically ordered batches of at most
// sizeDays calendar days each. Batches are contiguous, non-overlapping,
// and their union equals the input range exactly. A range shorter than
// one batch yields a single batch equal to the input.
func Plan(r DateRange, sizeDays int) ([]DateRange, error) {
	if sizeDays <= 0 {
		return nil, fmt.Errorf("batch size must be > 0 (got %d)", sizeDays)
	}
	if r.Start.After(r.End) {
		return nil, ErrInvalidRange
	}

	var batches []DateRange
	start := r.Start
	for !start.After(r.End) {
		end := start.AddDate(0, 0, sizeDays-1)
		if end.After(r.End) {
			end = r.End
		}
		batches = append(batches, DateRange{Start: start, End: end})
		start = end.AddDate(0, 0, 1)
	}

	return batches, nil
}
