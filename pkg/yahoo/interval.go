package yahoo

import (
	"fmt"
	"strconv"
)

// MapInterval converts a data period ("daily" or a minute count such
// as "60") into a chart-API interval string. Minute counts of an hour
// or more map to hour intervals.
func MapInterval(period string) (string, error) {
	if period == "daily" {
		return "1d", nil
	}

	minutes, err := strconv.Atoi(period)
	if err != nil || minutes <= 0 {
		return "", fmt.Errorf("invalid period %q: want \"daily\" or a positive minute count", period)
	}

	if minutes >= 60 {
		return fmt.Sprintf("%dh", minutes/60), nil
	}
	return fmt.Sprintf("%dm", minutes), nil
}
