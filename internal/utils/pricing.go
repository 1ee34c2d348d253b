package utils

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// LateFeeRate is the share of the daily rental rate charged per late day.
// It is a platform-wide policy constant, not configurable per product.
var LateFeeRate = decimal.NewFromFloat(0.10)

// ParseDate converts a yyyy-mm-dd string into a UTC calendar date
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd: %w", err)
	}
	return t, nil
}

// FormatDate renders a calendar date as yyyy-mm-dd
func FormatDate(t time.Time) string {
	return DateOnly(t).Format(dateLayout)
}

// DateOnly truncates t to midnight UTC of its UTC calendar day
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from start to end.
// The result is negative when end is before start.
func DaysBetween(start, end time.Time) int {
	return int(DateOnly(end).Sub(DateOnly(start)).Hours() / 24)
}

// RentalDays counts the days of a rental window, both ends included.
// A window starting and ending on the same day is one day.
func RentalDays(start, end time.Time) int {
	days := DaysBetween(start, end) + 1
	if days < 1 {
		return 1
	}
	return days
}

// LateDays returns how many calendar days returnDate is past rentalEnd, never negative
func LateDays(rentalEnd, returnDate time.Time) int {
	days := DaysBetween(rentalEnd, returnDate)
	if days < 0 {
		return 0
	}
	return days
}

// DailyRate spreads the subtotal evenly over the rental window
func DailyRate(subtotal decimal.Decimal, start, end time.Time) decimal.Decimal {
	return subtotal.Div(decimal.NewFromInt(int64(RentalDays(start, end))))
}

// LateFeeBreakdown is the outcome of a late-fee calculation
type LateFeeBreakdown struct {
	LateDays  int
	DailyRate decimal.Decimal
	Fee       decimal.Decimal
}

// CalculateLateFee applies lateDays * dailyRate * LateFeeRate, rounded to cents.
// The same calculation serves both the overdue estimate and the final return settlement.
func CalculateLateFee(subtotal decimal.Decimal, rentalStart, rentalEnd, returnDate time.Time) LateFeeBreakdown {
	lateDays := LateDays(rentalEnd, returnDate)
	rentalDays := decimal.NewFromInt(int64(RentalDays(rentalStart, rentalEnd)))

	// multiply before dividing so uneven daily rates do not lose precision
	fee := subtotal.
		Mul(decimal.NewFromInt(int64(lateDays))).
		Mul(LateFeeRate).
		Div(rentalDays).
		Round(2)

	return LateFeeBreakdown{
		LateDays:  lateDays,
		DailyRate: subtotal.Div(rentalDays).Round(2),
		Fee:       fee,
	}
}
