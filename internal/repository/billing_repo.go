package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/embire2/DayResellers-sub000/internal/database"
	"github.com/embire2/DayResellers-sub000/internal/models"
)

const billingColumns = `id, user_id, amount, type, description, order_id, balance_after, created_at`

// BillingRepository maintains user credit balances and their ledger.
type BillingRepository struct {
	db *sqlx.DB
}

// NewBillingRepository creates a new BillingRepository.
func NewBillingRepository(db *sqlx.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

// Adjust applies a signed amount to the user's credit and records it in
// the ledger, in one transaction.
func (r *BillingRepository) Adjust(ctx context.Context, userID int, amount decimal.Decimal, description string) (*models.BillingTransaction, error) {
	var entry *models.BillingTransaction
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		entry, err = applyCredit(ctx, tx, userID, amount, description, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListByUser returns the newest ledger entries of a user first.
func (r *BillingRepository) ListByUser(ctx context.Context, userID int, page Page) ([]models.BillingTransaction, int, error) {
	page = page.normalize()

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM billing_transactions WHERE user_id = $1`, userID); err != nil {
		return nil, 0, err
	}

	entries := []models.BillingTransaction{}
	err := r.db.SelectContext(ctx, &entries,
		`SELECT `+billingColumns+` FROM billing_transactions WHERE user_id = $1
         ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		userID, page.Limit, page.offset())
	return entries, total, err
}

// applyCredit locks the user row, applies amount and writes a ledger entry.
// A resulting negative balance returns ErrInsufficientCredit.
func applyCredit(ctx context.Context, tx *sqlx.Tx, userID int, amount decimal.Decimal, description string, orderID *int) (*models.BillingTransaction, error) {
	var balance decimal.Decimal
	if err := tx.GetContext(ctx, &balance, `SELECT credit FROM users WHERE id = $1 FOR UPDATE`, userID); err != nil {
		return nil, err
	}

	newBalance := balance.Add(amount)
	if newBalance.IsNegative() {
		return nil, fmt.Errorf("%w: balance %s, charge %s", ErrInsufficientCredit, balance.StringFixed(2), amount.Neg().StringFixed(2))
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET credit = $1, updated_at = NOW() WHERE id = $2`, newBalance, userID); err != nil {
		return nil, err
	}

	entry := &models.BillingTransaction{
		UserID:       userID,
		Amount:       amount,
		Type:         models.BillingCredit,
		Description:  description,
		OrderID:      orderID,
		BalanceAfter: newBalance,
	}
	if amount.IsNegative() {
		entry.Type = models.BillingDebit
	}
	if err := models.Validate(entry); err != nil {
		return nil, err
	}

	err := tx.QueryRowxContext(ctx,
		`INSERT INTO billing_transactions (user_id, amount, type, description, order_id, balance_after)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING id, created_at`,
		entry.UserID, entry.Amount, entry.Type, entry.Description, entry.OrderID, entry.BalanceAfter,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}
	return entry, nil
}
