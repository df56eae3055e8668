package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rentaldesk-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Date represents a calendar date
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate converts a yyyy-mm-dd formatted string into a Date struct
func ParseDate(dateStr string) (Date, error) {
	parts := strings.Split(dateStr, "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, fmt.Errorf("invalid year: %v", err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Date{}, fmt.Errorf("invalid month: %v", err)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return Date{}, fmt.Errorf("invalid day: %v", err)
	}

	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("month must be between 1 and 12")
	}
	if day < 1 || day > DaysInMonth(year, month) {
		return Date{}, fmt.Errorf("day must be between 1 and %d", DaysInMonth(year, month))
	}

	return Date{Year: year, Month: month, Day: day}, nil
}

// DateOf strips the time of day from t, keeping the calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the date as yyyy-mm-dd.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// DaysInMonth returns the number of days in a given month
func DaysInMonth(year, month int) int {
	if month == 2 {
		if (year%4 == 0 && year%100 != 0) || (year%400 == 0) {
			return 29
		}
		return 28
	}
	if month == 4 || month == 6 || month == 9 || month == 11 {
		return 30
	}
	return 31
}

// DaysBetween returns the number of rental days from start to end. Both
// instants are reduced to calendar dates first; the result is never below 1,
// so same-day and next-day rentals are both one day.
func DaysBetween(start, end time.Time) int32 {
	// Midnight UTC has no DST gaps, so the hour difference is an exact multiple of 24.
	diff := int32(DateOf(end).Time().Sub(DateOf(start).Time()).Hours() / 24)
	if diff < 1 {
		return 1
	}
	return diff
}

// LineTotal prices one order line.
func LineTotal(quantity int32, pricePerDayCents int64, days int32) int64 {
	return int64(quantity) * pricePerDayCents * int64(days)
}

// RepriceItems sets every item's day count and recomputes its line total.
func RepriceItems(items []domain.OrderItem, days int32) {
	for i := range items {
		items[i].Days = days
		items[i].LineTotalCents = LineTotal(items[i].Quantity, items[i].PricePerDayCents, days)
	}
}

// Subtotal sums the line totals of items.
func Subtotal(items []domain.OrderItem) int64 {
	var subtotal int64
	for _, item := range items {
		subtotal += item.LineTotalCents
	}
	return subtotal
}

// CalculateTax returns the tax owed on subtotal. A configured rate is applied
// as a percentage rounded half away from zero to whole cents; without a rate
// the fixed amount is charged on any non-empty order.
func CalculateTax(subtotalCents int64, tax domain.TaxSettings) int64 {
	if !tax.Enabled || subtotalCents <= 0 {
		return 0
	}
	if tax.RatePercent.IsPositive() {
		return decimal.NewFromInt(subtotalCents).Mul(tax.RatePercent).Div(hundred).Round(0).IntPart()
	}
	if tax.FixedAmountCents > 0 {
		return tax.FixedAmountCents
	}
	return 0
}

// CalculateTotals derives subtotal, tax and grand total from the items' line totals.
func CalculateTotals(items []domain.OrderItem, tax domain.TaxSettings) domain.OrderTotals {
	subtotal := Subtotal(items)
	taxCents := CalculateTax(subtotal, tax)
	return domain.OrderTotals{
		SubtotalCents:   subtotal,
		TaxCents:        taxCents,
		GrandTotalCents: subtotal + taxCents,
	}
}
