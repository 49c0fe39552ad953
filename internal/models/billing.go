package models

import (
    "time"

    "github.com/shopspring/decimal"
)

type BillingType string

const (
    BillingCredit BillingType = "credit"
    BillingDebit  BillingType = "debit"
)

// BillingTransaction is one entry of a user's credit ledger. Amount is
// signed: credits are positive, debits negative.
type BillingTransaction struct {
    ID           int             `db:"id" json:"id"`
    UserID       int             `db:"user_id" json:"userId" validate:"gt=0"`
    Amount       decimal.Decimal `db:"amount" json:"amount"`
    Type         BillingType     `db:"type" json:"type" validate:"required,oneof=credit debit"`
    Description  string          `db:"description" json:"description" validate:"required,max=500"`
    OrderID      *int            `db:"order_id" json:"orderId,omitempty"`
    BalanceAfter decimal.Decimal `db:"balance_after" json:"balanceAfter"`
    CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}
