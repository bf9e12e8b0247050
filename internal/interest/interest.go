// Package interest computes the interest accrued on a balance between two
// instants.
//
// The accrual period is counted in whole UTC calendar days and converted to a
// year fraction truncated to two decimals, so 455 days count as 1.24 years.
package interest

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	daysPerYear   = 365
	secondsPerDay = 24 * 60 * 60
)

var AnnualRate = decimal.RequireFromString("0.02")

// Calculate returns the interest accrued on balance from start to end,
// rounded to cents. An end before start yields a non-positive amount.
func Calculate(balance decimal.Decimal, start, end time.Time) decimal.Decimal {
	return balance.Mul(YearFraction(DaysBetween(start, end))).Mul(AnnualRate).Round(2)
}

// DaysBetween counts UTC midnights crossed going from start to end.
func DaysBetween(start, end time.Time) int64 {
	return dayNumber(end) - dayNumber(start)
}

// YearFraction converts days to years, truncated (floored) to two decimals.
func YearFraction(days int64) decimal.Decimal {
	return decimal.New(floorDiv(days*100, daysPerYear), -2)
}

func dayNumber(t time.Time) int64 {
	return floorDiv(t.Unix(), secondsPerDay)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
