package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/embire2/DayResellers-sub000/internal/database"
	"github.com/embire2/DayResellers-sub000/internal/models"
)

const orderColumns = `id, reseller_id, client_id, product_id, status, provision_method, sim_number,
    address, contact_name, contact_phone, country, rejection_reason, created_at, updated_at`

// ProductOrderRepository provides data access for product orders.
type ProductOrderRepository struct {
	db *sqlx.DB
}

// NewProductOrderRepository creates a new ProductOrderRepository.
func NewProductOrderRepository(db *sqlx.DB) *ProductOrderRepository {
	return &ProductOrderRepository{db: db}
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	ResellerID *int
	Status     *models.OrderStatus
	Page       Page
}

// ApproveParams carries the optional credit charge taken on approval.
type ApproveParams struct {
	Charge     decimal.Decimal
	ChargeNote string
}

// ApproveResult holds every row written by Approve.
type ApproveResult struct {
	Order       *models.ProductOrder
	UserProduct *models.UserProduct
	Charge      *models.BillingTransaction
}

// Create inserts a pending order after validating it.
func (r *ProductOrderRepository) Create(ctx context.Context, o *models.ProductOrder) error {
	if err := models.Validate(o); err != nil {
		return err
	}
	query := `INSERT INTO product_orders (reseller_id, client_id, product_id, status, provision_method,
                  sim_number, address, contact_name, contact_phone, country)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
              RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		o.ResellerID, o.ClientID, o.ProductID, o.Status, o.ProvisionMethod,
		o.SimNumber, o.Address, o.ContactName, o.ContactPhone, o.Country,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	return mapConstraintError(err)
}

// GetByID returns one order.
func (r *ProductOrderRepository) GetByID(ctx context.Context, id int) (*models.ProductOrder, error) {
	var o models.ProductOrder
	if err := r.db.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM product_orders WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns orders matching filter, newest first, plus the total count.
func (r *ProductOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.ProductOrder, int, error) {
	baseQ := ` FROM product_orders WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.ResellerID != nil {
		baseQ += fmt.Sprintf(" AND reseller_id = $%d", argIdx)
		args = append(args, *filter.ResellerID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseQ += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*)"+baseQ, args...); err != nil {
		return nil, 0, err
	}

	page := filter.Page.normalize()
	selectQ := fmt.Sprintf(`SELECT %s%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, baseQ, argIdx, argIdx+1)
	args = append(args, page.Limit, page.offset())

	orders := []models.ProductOrder{}
	if err := r.db.SelectContext(ctx, &orders, selectQ, args...); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Approve moves a pending order to active and provisions its user product
// in one transaction. The status change is conditional on the order still
// being pending, so of several concurrent approvals exactly one succeeds;
// the others get ErrOrderNotPending. A positive Charge is debited from the
// reseller in the same transaction.
func (r *ProductOrderRepository) Approve(ctx context.Context, id int, params ApproveParams) (*ApproveResult, error) {
	result := &ApproveResult{}

	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var order models.ProductOrder
		err := tx.QueryRowxContext(ctx,
			`UPDATE product_orders SET status = 'active', updated_at = NOW()
             WHERE id = $1 AND status = 'pending'
             RETURNING `+orderColumns, id,
		).StructScan(&order)
		if errors.Is(err, sql.ErrNoRows) {
			return missingOrNotPending(ctx, tx, id)
		}
		if err != nil {
			return &StageError{Stage: StageTransition, Err: err}
		}

		up := models.NewUserProductFromOrder(&order)
		if err := insertUserProduct(ctx, tx, up); err != nil {
			return &StageError{Stage: StageProvision, Err: err}
		}

		if params.Charge.IsPositive() {
			entry, err := applyCredit(ctx, tx, order.ResellerID, params.Charge.Neg(), params.ChargeNote, &order.ID)
			if err != nil {
				if errors.Is(err, ErrInsufficientCredit) {
					return err
				}
				return &StageError{Stage: StageCharge, Err: err}
			}
			result.Charge = entry
		}

		result.Order = &order
		result.UserProduct = up
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reject moves a pending order to rejected with a reason.
func (r *ProductOrderRepository) Reject(ctx context.Context, id int, reason string) (*models.ProductOrder, error) {
	var order models.ProductOrder
	err := r.db.QueryRowxContext(ctx,
		`UPDATE product_orders SET status = 'rejected', rejection_reason = $2, updated_at = NOW()
         WHERE id = $1 AND status = 'pending'
         RETURNING `+orderColumns, id, reason,
	).StructScan(&order)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, missingOrNotPending(ctx, r.db, id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CountPendingOlderThan counts pending orders created before cutoff.
func (r *ProductOrderRepository) CountPendingOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM product_orders WHERE status = 'pending' AND created_at < $1`, cutoff)
	return n, err
}

// missingOrNotPending explains why a conditional transition matched no row.
func missingOrNotPending(ctx context.Context, q sqlx.QueryerContext, id int) error {
	var status models.OrderStatus
	err := sqlx.GetContext(ctx, q, &status, `SELECT status FROM product_orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: status is %s", ErrOrderNotPending, status)
}
