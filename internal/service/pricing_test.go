package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestCalculateProRataPriceExamples(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		date     time.Time
		discount int
		final    string
	}{
		{"first day", "100", day(2025, time.April, 1), 0, "100.00"},
		{"mid month of 30 days", "100", day(2025, time.April, 15), 46, "54.00"},
		{"last day of 30 days", "100", day(2025, time.April, 30), 96, "4.00"},
		{"last day of 31 days", "100", day(2025, time.January, 31), 96, "4.00"},
		{"leap february end", "299.99", day(2024, time.February, 29), 96, "12.00"},
		{"rounding to cents", "349.99", day(2025, time.June, 10), 30, "244.99"},
		{"zero price", "0", day(2025, time.June, 20), 63, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateProRataPrice(decimal.RequireFromString(tt.base), tt.date)
			assert.Equal(t, tt.discount, got.DiscountPercentage)
			assert.Equal(t, tt.final, got.FinalPrice.StringFixed(2))
		})
	}
}

func TestCalculateProRataPriceBoundedAndMonotonic(t *testing.T) {
	base := decimal.RequireFromString("1234.56")

	for year := 2023; year <= 2025; year++ {
		for month := time.January; month <= time.December; month++ {
			prev := -1
			for d := 1; d <= DaysInMonth(day(year, month, 1)); d++ {
				got := CalculateProRataPrice(base, day(year, month, d))

				assert.GreaterOrEqual(t, got.DiscountPercentage, 0)
				assert.Less(t, got.DiscountPercentage, 100)
				assert.GreaterOrEqual(t, got.DiscountPercentage, prev, "%d-%02d-%02d", year, month, d)
				prev = got.DiscountPercentage

				factor := decimal.NewFromInt(int64(100 - got.DiscountPercentage)).Div(decimal.NewFromInt(100))
				want := base.Mul(factor).Round(2)
				assert.True(t, want.Equal(got.FinalPrice), "%s != %s", want, got.FinalPrice)
				assert.True(t, got.FinalPrice.IsPositive())
			}
		}
	}
}

func TestCalculateProRataPriceClampsNegativeBase(t *testing.T) {
	got := CalculateProRataPrice(decimal.NewFromInt(-50), day(2025, time.May, 1))
	assert.True(t, got.FinalPrice.IsZero())
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(day(2025, time.January, 9)))
	assert.Equal(t, 28, DaysInMonth(day(2025, time.February, 1)))
	assert.Equal(t, 29, DaysInMonth(day(2024, time.February, 1)))
	assert.Equal(t, 30, DaysInMonth(day(2025, time.November, 30)))
	assert.Equal(t, 31, DaysInMonth(day(2025, time.December, 31)))
}
