package domain

import (
	"strings"
	"time"
)

// DisplayTimeLayout renders event times as HH:mm DD-MM-YYYY.
const DisplayTimeLayout = "15:04 02-01-2006"

// FormatOccurredAt renders an epoch-millisecond timestamp in loc.
func FormatOccurredAt(epochMillis int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(epochMillis).In(loc).Format(DisplayTimeLayout)
}

// CleanPlace drops the trailing region qualifier from a catalog place,
// e.g. "10 km SSW of Idyllwild, CA" -> "10 km SSW of Idyllwild".
// Places without a comma are returned trimmed.
func CleanPlace(place string) string {
	if i := strings.LastIndex(place, ","); i >= 0 {
		place = place[:i]
	}
	return strings.TrimSpace(place)
}

// RecentWindow returns the [start, end] calendar-day window ending today
// (per the package clock) and reaching back the given number of months.
func RecentWindow(months int) (time.Time, time.Time) {
	now := clock.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return end.AddDate(0, -months, 0), end
}
