// Package calculator holds the pure derivations applied to records before they are stored.
// Every function is total over its input domain and never fails.
package calculator

import (
	"time"

	"github.com/shopspring/decimal"
)

const millisPerHour = 3_600_000

// WorkHours returns the elapsed hours between checkIn and checkOut, rounded to
// 2 decimal places half away from zero. The order of the two instants does not
// matter. It returns nil when either instant is missing.
func WorkHours(checkIn, checkOut *time.Time) *decimal.Decimal {
	if checkIn == nil || checkOut == nil {
		return nil
	}

	ms := checkOut.Sub(*checkIn).Milliseconds()
	if ms < 0 {
		ms = -ms
	}

	hours := decimal.NewFromInt(ms).Div(decimal.NewFromInt(millisPerHour)).Round(2)
	return &hours
}
