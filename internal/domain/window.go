package domain

import (
	"fmt"
	"time"
)

// DayWindow is the one-day aggregation unit: a full-width UTC calendar day.
// Date is midnight UTC of the day; End - Start is always exactly 24 hours.
type DayWindow struct {
	Date  time.Time
	Start time.Time
	End   time.Time
}

// Windows partitions [scanStart, scanEnd) into UTC day windows, one per
// calendar day fully or partially overlapped, in ascending date order.
// Boundary days are emitted full-width; Coverage clips them against the scan
// bounds. Returns ErrInvalidRange if scanEnd <= scanStart. Pure function of
// its inputs, so the same range can be windowed repeatedly.
func Windows(scanStart, scanEnd time.Time) ([]DayWindow, error) {
	if !scanEnd.After(scanStart) {
		return nil, fmt.Errorf("%w: [%s, %s)", ErrInvalidRange,
			scanStart.UTC().Format(time.RFC3339), scanEnd.UTC().Format(time.RFC3339))
	}

	start := scanStart.UTC()
	end := scanEnd.UTC()

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	var windows []DayWindow
	for day.Before(end) {
		next := day.AddDate(0, 0, 1)
		windows = append(windows, DayWindow{Date: day, Start: day, End: next})
		day = next
	}
	return windows, nil
}

// YearRange returns the scan bounds covering a full calendar year:
// [Jan 1 00:00 UTC, Jan 1 of the next year).
func YearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}
