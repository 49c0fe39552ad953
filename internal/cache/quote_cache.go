package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BillingZone is the timezone billing days are counted in (SAST, UTC+2).
var BillingZone = time.FixedZone("SAST", 2*3600)

// Quote is a cached pro-rata price for one product and reseller group on
// one billing day.
type Quote struct {
	ProductID          int             `json:"productId"`
	ResellerGroup      int             `json:"resellerGroup"`
	ReferenceDate      string          `json:"referenceDate"`
	BasePrice          decimal.Decimal `json:"basePrice"`
	DiscountPercentage int             `json:"discountPercentage"`
	FinalPrice         decimal.Decimal `json:"finalPrice"`
	CachedAt           time.Time       `json:"cachedAt"`
}

// QuoteCache stores quotes until the end of their billing day.
type QuoteCache struct {
	redis *RedisClient
	now   func() time.Time
}

// NewQuoteCache creates a new QuoteCache.
func NewQuoteCache(redis *RedisClient) *QuoteCache {
	return &QuoteCache{redis: redis, now: time.Now}
}

// calculateTTL returns the time left until 23:59:59 of the current billing day.
func (c *QuoteCache) calculateTTL() time.Duration {
	now := c.now().In(BillingZone)
	eod := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, BillingZone)
	ttl := eod.Sub(now)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func (c *QuoteCache) key(productID, group int, date string) string {
	return fmt.Sprintf("quote:%d:%d:%s", productID, group, date)
}

// Get returns the cached quote or ErrMiss.
func (c *QuoteCache) Get(ctx context.Context, productID, group int, date string) (*Quote, error) {
	raw, err := c.redis.Get(ctx, c.key(productID, group, date))
	if err != nil {
		return nil, err
	}
	var q Quote
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}
	return &q, nil
}

// Set stores q until the end of the current billing day.
func (c *QuoteCache) Set(ctx context.Context, q *Quote) error {
	q.CachedAt = c.now()
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}
	return c.redis.Set(ctx, c.key(q.ProductID, q.ResellerGroup, q.ReferenceDate), string(payload), c.calculateTTL())
}

// InvalidateProduct drops every cached quote of productID.
func (c *QuoteCache) InvalidateProduct(ctx context.Context, productID int) error {
	_, err := c.redis.DeleteByPattern(ctx, fmt.Sprintf("quote:%d:*", productID))
	return err
}
