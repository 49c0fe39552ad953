package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/embire2/DayResellers-sub000/internal/cache"
	"github.com/embire2/DayResellers-sub000/internal/metrics"
	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

const quoteDateLayout = "2006-01-02"

// QuoteStore caches computed quotes.
type QuoteStore interface {
	Get(ctx context.Context, productID, group int, date string) (*cache.Quote, error)
	Set(ctx context.Context, q *cache.Quote) error
}

// QuoteService prices products for resellers on a given billing day.
type QuoteService struct {
	products ProductReader
	users    UserReader
	quotes   QuoteStore
	now      func() time.Time
}

// NewQuoteService constructs a QuoteService. quotes may be nil, in which
// case every quote is computed.
func NewQuoteService(products ProductReader, users UserReader, quotes QuoteStore) *QuoteService {
	return &QuoteService{products: products, users: users, quotes: quotes, now: time.Now}
}

// QuoteRequest selects the day and, for admins, the reseller to price for.
type QuoteRequest struct {
	Date       string `form:"date"`
	ResellerID int    `form:"resellerId"`
}

// Quote returns the pro-rata price of a product for the reseller's group.
func (s *QuoteService) Quote(ctx context.Context, actor Actor, productID int, req QuoteRequest) (*cache.Quote, error) {
	day := s.now().In(cache.BillingZone)
	if req.Date != "" {
		parsed, err := time.ParseInLocation(quoteDateLayout, req.Date, cache.BillingZone)
		if err != nil {
			return nil, utils.ValidationError("INVALID_DATE", "date must be formatted as YYYY-MM-DD")
		}
		day = parsed
	}
	date := day.Format(quoteDateLayout)

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, storeError("load_product", "PRODUCT_NOT_FOUND", err)
	}
	if !actor.IsAdmin() && product.Status != models.ProductStatusActive {
		return nil, utils.NotFoundError("PRODUCT_NOT_FOUND", "product not found")
	}

	group, err := s.resellerGroup(ctx, actor, req.ResellerID)
	if err != nil {
		return nil, err
	}

	if q := s.cached(ctx, productID, group, date); q != nil {
		return q, nil
	}

	base := product.PriceForGroup(group)
	price := CalculateProRataPrice(base, day)
	q := &cache.Quote{
		ProductID:          productID,
		ResellerGroup:      group,
		ReferenceDate:      date,
		BasePrice:          base,
		DiscountPercentage: price.DiscountPercentage,
		FinalPrice:         price.FinalPrice,
	}
	if s.quotes != nil {
		if err := s.quotes.Set(ctx, q); err != nil {
			log.Warn().Err(err).Int("product_id", productID).Msg("Failed to cache quote")
		}
	}
	return q, nil
}

func (s *QuoteService) resellerGroup(ctx context.Context, actor Actor, resellerID int) (int, error) {
	userID := actor.UserID
	if actor.IsAdmin() {
		if resellerID == 0 {
			return models.ResellerGroupDefault, nil
		}
		userID = resellerID
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, storeError("load_user", "USER_NOT_FOUND", err)
	}
	return user.ResellerGroup, nil
}

func (s *QuoteService) cached(ctx context.Context, productID, group int, date string) *cache.Quote {
	if s.quotes == nil {
		return nil
	}
	q, err := s.quotes.Get(ctx, productID, group, date)
	switch {
	case err == nil:
		metrics.QuoteCacheLookups.WithLabelValues("hit").Inc()
		return q
	case errors.Is(err, cache.ErrMiss):
		metrics.QuoteCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.QuoteCacheLookups.WithLabelValues("error").Inc()
		log.Warn().Err(err).Int("product_id", productID).Msg("Quote cache lookup failed")
	}
	return nil
}
