package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"rentaldesk-backend/internal/domain"
)

func TestParseDate(t *testing.T) {
	t.Run("Valid date", func(t *testing.T) {
		date, err := ParseDate("2024-01-15")
		assert.NoError(t, err)
		assert.Equal(t, Date{Year: 2024, Month: 1, Day: 15}, date)
		assert.Equal(t, "2024-01-15", date.String())
	})

	t.Run("Invalid format", func(t *testing.T) {
		_, err := ParseDate("2024/01/15")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid date format")
	})

	t.Run("Invalid month", func(t *testing.T) {
		_, err := ParseDate("2024-13-15")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "month must be between 1 and 12")
	})

	t.Run("Day past end of month", func(t *testing.T) {
		_, err := ParseDate("2023-02-29")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "day must be between 1 and 28")
	})
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year     int
		month    int
		expected int
	}{
		{2024, 1, 31},
		{2024, 2, 29},
		{2023, 2, 28},
		{2024, 4, 30},
		{2024, 11, 30},
		{2024, 12, 31},
		{2000, 2, 29},
		{1900, 2, 28},
	}

	for _, tt := range tests {
		t.Run(Date{Year: tt.year, Month: tt.month, Day: 1}.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysInMonth(tt.year, tt.month))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC)

	t.Run("Same date is one day", func(t *testing.T) {
		assert.Equal(t, int32(1), DaysBetween(base, base))
		assert.Equal(t, int32(1), DaysBetween(base, base.Add(13*time.Hour)))
	})

	t.Run("Next date is one day", func(t *testing.T) {
		assert.Equal(t, int32(1), DaysBetween(base, base.AddDate(0, 0, 1)))
	})

	t.Run("Two dates later is two days", func(t *testing.T) {
		assert.Equal(t, int32(2), DaysBetween(base, base.AddDate(0, 0, 2)))
	})

	t.Run("Time of day is ignored", func(t *testing.T) {
		start := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)
		end := time.Date(2024, 3, 12, 0, 1, 0, 0, time.UTC)
		assert.Equal(t, int32(3), DaysBetween(start, end))
	})

	t.Run("Across a DST change", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Skip("tzdata not available")
		}
		start := time.Date(2024, 3, 9, 9, 0, 0, 0, loc)
		end := time.Date(2024, 3, 11, 9, 0, 0, 0, loc)
		assert.Equal(t, int32(2), DaysBetween(start, end))
	})

	t.Run("End before start is clamped", func(t *testing.T) {
		assert.Equal(t, int32(1), DaysBetween(base, base.AddDate(0, 0, -3)))
	})
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		qty      int32
		price    int64
		days     int32
		expected int64
	}{
		{1, 1000, 1, 1000},
		{3, 250, 4, 3000},
		{0, 999, 7, 0},
		{5, 0, 2, 0},
		{2, 1999, 30, 119940},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, LineTotal(tt.qty, tt.price, tt.days))
		assert.Equal(t, int64(tt.qty)*tt.price*int64(tt.days), LineTotal(tt.qty, tt.price, tt.days))
	}
}

func TestCalculateTotals(t *testing.T) {
	items := []domain.OrderItem{
		{Quantity: 2, PricePerDayCents: 1000},
		{Quantity: 1, PricePerDayCents: 550},
	}
	RepriceItems(items, 3)

	t.Run("Tax disabled", func(t *testing.T) {
		totals := CalculateTotals(items, domain.TaxSettings{Enabled: false, RatePercent: decimal.NewFromInt(10)})
		assert.Equal(t, int64(7650), totals.SubtotalCents)
		assert.Equal(t, int64(0), totals.TaxCents)
		assert.Equal(t, int64(7650), totals.GrandTotalCents)
	})

	t.Run("Percentage rate", func(t *testing.T) {
		totals := CalculateTotals(items, domain.TaxSettings{Enabled: true, RatePercent: decimal.NewFromInt(10)})
		assert.Equal(t, int64(765), totals.TaxCents)
		assert.Equal(t, int64(8415), totals.GrandTotalCents)
	})

	t.Run("Rate rounds half away from zero", func(t *testing.T) {
		// 7650 * 7.5% = 573.75
		totals := CalculateTotals(items, domain.TaxSettings{Enabled: true, RatePercent: decimal.RequireFromString("7.5")})
		assert.Equal(t, int64(574), totals.TaxCents)
		assert.Equal(t, totals.SubtotalCents+totals.TaxCents, totals.GrandTotalCents)
	})

	t.Run("Fixed amount when no rate", func(t *testing.T) {
		totals := CalculateTotals(items, domain.TaxSettings{Enabled: true, FixedAmountCents: 300})
		assert.Equal(t, int64(300), totals.TaxCents)
		assert.Equal(t, int64(7950), totals.GrandTotalCents)
	})

	t.Run("Empty order has no tax", func(t *testing.T) {
		totals := CalculateTotals(nil, domain.TaxSettings{Enabled: true, FixedAmountCents: 300})
		assert.Equal(t, domain.OrderTotals{}, totals)
	})
}

func TestRepriceItems_EndDateChange(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	items := []domain.OrderItem{
		{Quantity: 1, PricePerDayCents: 1000},
		{Quantity: 4, PricePerDayCents: 125},
	}

	RepriceItems(items, DaysBetween(start, start.AddDate(0, 0, 2)))
	before := CalculateTotals(items, domain.TaxSettings{})
	assert.Equal(t, int64(3000), before.SubtotalCents)

	RepriceItems(items, DaysBetween(start, start.AddDate(0, 0, 5)))
	after := CalculateTotals(items, domain.TaxSettings{})
	for _, item := range items {
		assert.Equal(t, int32(5), item.Days)
		assert.Equal(t, LineTotal(item.Quantity, item.PricePerDayCents, 5), item.LineTotalCents)
	}
	assert.Equal(t, int64(7500), after.SubtotalCents)
	assert.Equal(t, after.SubtotalCents, after.GrandTotalCents)
}
