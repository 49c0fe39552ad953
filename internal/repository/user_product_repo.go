package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/embire2/DayResellers-sub000/internal/models"
)

const userProductColumns = `id, user_id, product_id, order_id, username, msisdn, sim_number, status, comments, created_at, updated_at`

const endpointColumns = `id, user_product_id, api_setting_id, endpoint_path, custom_parameters, created_at`

// UserProductRepository provides data access for provisioned products and
// their endpoints.
type UserProductRepository struct {
	db *sqlx.DB
}

// NewUserProductRepository creates a new UserProductRepository.
func NewUserProductRepository(db *sqlx.DB) *UserProductRepository {
	return &UserProductRepository{db: db}
}

// Create inserts a manually assigned user product.
func (r *UserProductRepository) Create(ctx context.Context, up *models.UserProduct) error {
	return insertUserProduct(ctx, r.db, up)
}

// insertUserProduct validates and inserts up using q, which may be a
// transaction.
func insertUserProduct(ctx context.Context, q sqlx.QueryerContext, up *models.UserProduct) error {
	if err := models.Validate(up); err != nil {
		return err
	}
	query := `INSERT INTO user_products (user_id, product_id, order_id, username, msisdn, sim_number, status, comments)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
              RETURNING id, created_at, updated_at`

	return q.QueryRowxContext(ctx, query,
		up.UserID, up.ProductID, up.OrderID, up.Username, up.MSISDN, up.SimNumber, up.Status, up.Comments,
	).Scan(&up.ID, &up.CreatedAt, &up.UpdatedAt)
}

// GetByID returns one user product.
func (r *UserProductRepository) GetByID(ctx context.Context, id int) (*models.UserProduct, error) {
	var up models.UserProduct
	if err := r.db.GetContext(ctx, &up, `SELECT `+userProductColumns+` FROM user_products WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &up, nil
}

// ListByUser returns the products owned by a user.
func (r *UserProductRepository) ListByUser(ctx context.Context, userID int) ([]models.UserProduct, error) {
	items := []models.UserProduct{}
	err := r.db.SelectContext(ctx, &items,
		`SELECT `+userProductColumns+` FROM user_products WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	return items, err
}

// List returns all user products.
func (r *UserProductRepository) List(ctx context.Context) ([]models.UserProduct, error) {
	items := []models.UserProduct{}
	err := r.db.SelectContext(ctx, &items, `SELECT `+userProductColumns+` FROM user_products ORDER BY created_at DESC`)
	return items, err
}

// Update writes the editable fields of a user product.
func (r *UserProductRepository) Update(ctx context.Context, up *models.UserProduct) error {
	if err := models.Validate(up); err != nil {
		return err
	}
	query := `UPDATE user_products
              SET username = $1, msisdn = $2, sim_number = $3, status = $4, comments = $5, updated_at = NOW()
              WHERE id = $6
              RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, query,
		up.Username, up.MSISDN, up.SimNumber, up.Status, up.Comments, up.ID,
	).Scan(&up.UpdatedAt)
}

// Delete removes a user product and, by cascade, its endpoints.
func (r *UserProductRepository) Delete(ctx context.Context, id int) error {
	return execAffectingOne(ctx, r.db, `DELETE FROM user_products WHERE id = $1`, id)
}

// CreateEndpoint attaches an endpoint to a user product.
func (r *UserProductRepository) CreateEndpoint(ctx context.Context, ep *models.UserProductEndpoint) error {
	if ep.CustomParameters == nil {
		ep.CustomParameters = models.Parameters{}
	}
	if err := models.Validate(ep); err != nil {
		return err
	}
	return r.db.QueryRowxContext(ctx,
		`INSERT INTO user_product_endpoints (user_product_id, api_setting_id, endpoint_path, custom_parameters)
         VALUES ($1, $2, $3, $4)
         RETURNING id, created_at`,
		ep.UserProductID, ep.APISettingID, ep.EndpointPath, ep.CustomParameters,
	).Scan(&ep.ID, &ep.CreatedAt)
}

// GetEndpoint returns one endpoint. Stored parameters that are not a JSON
// object of strings fail the scan.
func (r *UserProductRepository) GetEndpoint(ctx context.Context, id int) (*models.UserProductEndpoint, error) {
	var ep models.UserProductEndpoint
	if err := r.db.GetContext(ctx, &ep, `SELECT `+endpointColumns+` FROM user_product_endpoints WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &ep, nil
}

// ListEndpoints returns the endpoints of a user product.
func (r *UserProductRepository) ListEndpoints(ctx context.Context, userProductID int) ([]models.UserProductEndpoint, error) {
	items := []models.UserProductEndpoint{}
	err := r.db.SelectContext(ctx, &items,
		`SELECT `+endpointColumns+` FROM user_product_endpoints WHERE user_product_id = $1 ORDER BY id`, userProductID)
	return items, err
}

// DeleteEndpoint removes an endpoint.
func (r *UserProductRepository) DeleteEndpoint(ctx context.Context, id int) error {
	return execAffectingOne(ctx, r.db, `DELETE FROM user_product_endpoints WHERE id = $1`, id)
}
