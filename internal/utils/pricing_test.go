package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func TestParseDate(t *testing.T) {
	t.Run("Valid date", func(t *testing.T) {
		date, err := ParseDate("2024-01-15")
		assert.NoError(t, err)
		assert.Equal(t, 2024, date.Year())
		assert.Equal(t, time.January, date.Month())
		assert.Equal(t, 15, date.Day())
		assert.Equal(t, time.UTC, date.Location())
	})

	t.Run("Invalid format", func(t *testing.T) {
		_, err := ParseDate("2024/01/15")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid date format")
	})

	t.Run("Invalid month", func(t *testing.T) {
		_, err := ParseDate("2024-13-15")
		assert.Error(t, err)
	})
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	in := time.Date(2024, 3, 10, 1, 30, 0, 0, loc) // 2024-03-09 23:30 UTC

	got := DateOnly(in)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), got)
}

func TestRentalDays(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected int
	}{
		{"same day", "2024-01-01", "2024-01-01", 1},
		{"one week", "2024-01-01", "2024-01-07", 7},
		{"across month", "2024-01-30", "2024-02-02", 4},
		{"leap day", "2024-02-28", "2024-03-01", 3},
		{"inverted window", "2024-01-05", "2024-01-01", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RentalDays(day(t, tt.start), day(t, tt.end)))
		})
	}
}

func TestLateDays(t *testing.T) {
	end := day(t, "2024-01-07")

	assert.Equal(t, 0, LateDays(end, day(t, "2024-01-05")))
	assert.Equal(t, 0, LateDays(end, day(t, "2024-01-07")))
	assert.Equal(t, 0, LateDays(end, end.Add(15*time.Hour)))
	assert.Equal(t, 1, LateDays(end, day(t, "2024-01-08")))
	assert.Equal(t, 3, LateDays(end, day(t, "2024-01-10").Add(10*time.Hour)))
}

func TestCalculateLateFee(t *testing.T) {
	t.Run("Seven day rental returned three days late", func(t *testing.T) {
		start := day(t, "2024-01-01")
		end := day(t, "2024-01-07")
		returned := day(t, "2024-01-10")

		res := CalculateLateFee(decimal.NewFromInt(700), start, end, returned)
		assert.Equal(t, 3, res.LateDays)
		assert.True(t, res.DailyRate.Equal(decimal.NewFromInt(100)), "daily rate %s", res.DailyRate)
		assert.True(t, res.Fee.Equal(decimal.NewFromInt(30)), "fee %s", res.Fee)
	})

	t.Run("On time return has no fee", func(t *testing.T) {
		res := CalculateLateFee(decimal.NewFromInt(700), day(t, "2024-01-01"), day(t, "2024-01-07"), day(t, "2024-01-07"))
		assert.Equal(t, 0, res.LateDays)
		assert.True(t, res.Fee.IsZero())
	})

	t.Run("Single day window uses one day as duration", func(t *testing.T) {
		d := day(t, "2024-01-01")
		res := CalculateLateFee(decimal.NewFromInt(50), d, d, day(t, "2024-01-03"))
		assert.Equal(t, 2, res.LateDays)
		assert.True(t, res.Fee.Equal(decimal.NewFromInt(10)), "fee %s", res.Fee)
	})

	t.Run("Uneven rate rounds to cents", func(t *testing.T) {
		// 100 over 3 days, 1 day late: 100 * 1 * 0.10 / 3 = 3.333...
		res := CalculateLateFee(decimal.NewFromInt(100), day(t, "2024-01-01"), day(t, "2024-01-03"), day(t, "2024-01-04"))
		assert.Equal(t, "3.33", res.Fee.StringFixed(2))
	})
}
