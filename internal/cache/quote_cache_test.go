package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embire2/DayResellers-sub000/internal/config"
)

func newTestCache(t *testing.T) (*QuoteCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := NewRedisClient(&config.RedisConfig{Host: mr.Host(), Port: mr.Port()})
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })
	return NewQuoteCache(rc), mr
}

func sampleQuote(productID, group int) *Quote {
	return &Quote{
		ProductID:          productID,
		ResellerGroup:      group,
		ReferenceDate:      "2025-04-15",
		BasePrice:          decimal.NewFromInt(100),
		DiscountPercentage: 46,
		FinalPrice:         decimal.RequireFromString("54.00"),
	}
}

func TestQuoteCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, 1, 0, "2025-04-15")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, sampleQuote(1, 0)))

	got, err := c.Get(ctx, 1, 0, "2025-04-15")
	require.NoError(t, err)
	assert.Equal(t, 46, got.DiscountPercentage)
	assert.True(t, got.FinalPrice.Equal(decimal.NewFromInt(54)))
}

func TestQuoteCacheExpiresAtEndOfDay(t *testing.T) {
	c, mr := newTestCache(t)
	c.now = func() time.Time { return time.Date(2025, time.April, 15, 23, 0, 0, 0, BillingZone) }

	require.NoError(t, c.Set(context.Background(), sampleQuote(1, 0)))

	ttl := mr.TTL("quote:1:0:2025-04-15")
	assert.Equal(t, 59*time.Minute+59*time.Second, ttl)

	mr.FastForward(time.Hour)
	_, err := c.Get(context.Background(), 1, 0, "2025-04-15")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestQuoteCacheInvalidateProduct(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, sampleQuote(1, 0)))
	require.NoError(t, c.Set(ctx, sampleQuote(1, 2)))
	require.NoError(t, c.Set(ctx, sampleQuote(10, 0)))

	require.NoError(t, c.InvalidateProduct(ctx, 1))

	_, err := c.Get(ctx, 1, 0, "2025-04-15")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = c.Get(ctx, 1, 2, "2025-04-15")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = c.Get(ctx, 10, 0, "2025-04-15")
	assert.NoError(t, err)
}
