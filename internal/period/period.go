// Package period provides calendar-month math shared by record queries
// and the monthly aggregator.
package period

import (
	"errors"
	"time"
)

var ErrInvalid = errors.New("invalid_period")

// Bounds returns the half-open UTC interval [first day of month, first
// day of next month) so that dialect-specific date functions are never
// needed in queries.
func Bounds(month, year int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 || year < 1 {
		return time.Time{}, time.Time{}, ErrInvalid
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return from, to, nil
}

// Days returns the number of calendar days in the month, leap years
// included.
func Days(month, year int) (int, error) {
	from, to, err := Bounds(month, year)
	if err != nil {
		return 0, err
	}
	return int(to.Sub(from).Hours() / 24), nil
}
