package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/repository"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// BillingStore maintains credit balances and the ledger.
type BillingStore interface {
	Adjust(ctx context.Context, userID int, amount decimal.Decimal, description string) (*models.BillingTransaction, error)
	ListByUser(ctx context.Context, userID int, page repository.Page) ([]models.BillingTransaction, int, error)
}

// BillingService adjusts reseller credit and exposes the ledger.
type BillingService struct {
	billing BillingStore
}

func NewBillingService(billing BillingStore) *BillingService {
	return &BillingService{billing: billing}
}

// AdjustCreditRequest credits (positive) or debits (negative) a user.
type AdjustCreditRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"required"`
}

// AdjustCredit applies a manual credit change. Debits below zero fail with
// ErrInsufficientCredit.
func (s *BillingService) AdjustCredit(ctx context.Context, actor Actor, userID int, req *AdjustCreditRequest) (*models.BillingTransaction, error) {
	if err := requireAdmin(actor, "adjust credit"); err != nil {
		return nil, err
	}
	if req.Amount.IsZero() {
		return nil, utils.ValidationError("INVALID_AMOUNT", "amount must not be zero")
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, utils.ValidationError("DESCRIPTION_REQUIRED", "description is required")
	}

	entry, err := s.billing.Adjust(ctx, userID, req.Amount.Round(2), description)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientCredit) {
			return nil, utils.NewError(utils.ErrInsufficientCredit, "INSUFFICIENT_CREDIT", "debit exceeds the available credit").Wrap(err)
		}
		return nil, storeError("adjust_credit", "USER_NOT_FOUND", err)
	}

	log.Info().
		Int("user_id", userID).
		Str("amount", entry.Amount.StringFixed(2)).
		Str("balance", entry.BalanceAfter.StringFixed(2)).
		Int("admin_id", actor.UserID).
		Msg("Credit adjusted")
	return entry, nil
}

// Transactions lists the ledger of userID. Resellers only see their own.
func (s *BillingService) Transactions(ctx context.Context, actor Actor, userID int, page, limit int) ([]models.BillingTransaction, int, error) {
	if !actor.canAccess(userID) {
		return nil, 0, utils.ForbiddenError("cannot read another user's ledger")
	}
	entries, total, err := s.billing.ListByUser(ctx, userID, repository.Page{Page: page, Limit: limit})
	if err != nil {
		return nil, 0, utils.PersistenceError("list_transactions", err)
	}
	return entries, total, nil
}
