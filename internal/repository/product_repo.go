package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/embire2/DayResellers-sub000/internal/models"
)

const productSelect = `SELECT p.id, p.name, p.description, p.base_price, p.group1_price, p.group2_price,
        p.category_id, p.api_identifier, p.status, p.created_at, p.updated_at, c.master_category
    FROM products p
    JOIN product_categories c ON c.id = p.category_id`

const categoryColumns = `id, name, master_category, created_at`

// ProductRepository provides data access for products and categories.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID returns a product joined with its master category.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	if err := r.db.GetContext(ctx, &p, productSelect+` WHERE p.id = $1`, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns products, optionally only active ones.
func (r *ProductRepository) List(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	products := []models.Product{}
	query := productSelect
	if activeOnly {
		query += ` WHERE p.status = 'active'`
	}
	query += ` ORDER BY c.master_category, p.name`
	err := r.db.SelectContext(ctx, &products, query)
	return products, err
}

// Create inserts a product.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if err := models.Validate(p); err != nil {
		return err
	}
	query := `INSERT INTO products (name, description, base_price, group1_price, group2_price, category_id, api_identifier, status)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
              RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		p.Name, p.Description, p.BasePrice, p.Group1Price, p.Group2Price, p.CategoryID, p.APIIdentifier, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update writes all editable product fields.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	if err := models.Validate(p); err != nil {
		return err
	}
	query := `UPDATE products
              SET name = $1, description = $2, base_price = $3, group1_price = $4, group2_price = $5,
                  category_id = $6, api_identifier = $7, status = $8, updated_at = NOW()
              WHERE id = $9
              RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, query,
		p.Name, p.Description, p.BasePrice, p.Group1Price, p.Group2Price, p.CategoryID, p.APIIdentifier, p.Status, p.ID,
	).Scan(&p.UpdatedAt)
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	return execAffectingOne(ctx, r.db, `DELETE FROM products WHERE id = $1`, id)
}

// GetCategory returns one category.
func (r *ProductRepository) GetCategory(ctx context.Context, id int) (*models.ProductCategory, error) {
	var c models.ProductCategory
	if err := r.db.GetContext(ctx, &c, `SELECT `+categoryColumns+` FROM product_categories WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns all categories.
func (r *ProductRepository) ListCategories(ctx context.Context) ([]models.ProductCategory, error) {
	categories := []models.ProductCategory{}
	err := r.db.SelectContext(ctx, &categories,
		`SELECT `+categoryColumns+` FROM product_categories ORDER BY master_category, name`)
	return categories, err
}

// CreateCategory inserts a category.
func (r *ProductRepository) CreateCategory(ctx context.Context, c *models.ProductCategory) error {
	if err := models.Validate(c); err != nil {
		return err
	}
	return r.db.QueryRowxContext(ctx,
		`INSERT INTO product_categories (name, master_category) VALUES ($1, $2) RETURNING id, created_at`,
		c.Name, c.MasterCategory,
	).Scan(&c.ID, &c.CreatedAt)
}

// UpdateCategory renames or re-parents a category.
func (r *ProductRepository) UpdateCategory(ctx context.Context, c *models.ProductCategory) error {
	if err := models.Validate(c); err != nil {
		return err
	}
	return execAffectingOne(ctx, r.db,
		`UPDATE product_categories SET name = $1, master_category = $2 WHERE id = $3`,
		c.Name, c.MasterCategory, c.ID)
}

// DeleteCategory removes a category without products.
func (r *ProductRepository) DeleteCategory(ctx context.Context, id int) error {
	return execAffectingOne(ctx, r.db, `DELETE FROM product_categories WHERE id = $1`, id)
}
