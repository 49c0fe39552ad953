package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProRataPrice is the discounted price for a partial billing month.
type ProRataPrice struct {
	DiscountPercentage int             `json:"discountPercentage"`
	FinalPrice         decimal.Decimal `json:"finalPrice"`
}

var hundred = decimal.NewFromInt(100)

// CalculateProRataPrice discounts basePrice by the share of the month that
// has already elapsed on referenceDate. Day 1 carries no discount and the
// discount never reaches 100%, so the last day of a 31-day month is 96%.
// The final price is rounded to cents.
func CalculateProRataPrice(basePrice decimal.Decimal, referenceDate time.Time) ProRataPrice {
	if basePrice.IsNegative() {
		basePrice = decimal.Zero
	}

	discount := ProRataDiscount(referenceDate)
	final := basePrice.
		Mul(decimal.NewFromInt(int64(100 - discount))).
		Div(hundred).
		Round(2)

	return ProRataPrice{DiscountPercentage: discount, FinalPrice: final}
}

// ProRataDiscount returns floor(100 * elapsedDays / daysInMonth) where
// elapsedDays counts the full days before referenceDate. The reference day
// itself is billed, so the 15th of a 30-day month gives 46% rather than a
// flat half month, and no day of any month reaches 100%.
func ProRataDiscount(referenceDate time.Time) int {
	elapsed := referenceDate.Day() - 1
	return elapsed * 100 / DaysInMonth(referenceDate)
}

// DaysInMonth returns the number of days in the month of t.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
