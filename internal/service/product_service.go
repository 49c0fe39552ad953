package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/repository"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// QuoteInvalidator drops cached quotes of a product.
type QuoteInvalidator interface {
	InvalidateProduct(ctx context.Context, productID int) error
}

// ProductService manages the catalog: categories and products.
type ProductService struct {
	productRepo *repository.ProductRepository
	quotes      QuoteInvalidator
}

// NewProductService constructs a ProductService. quotes may be nil.
func NewProductService(productRepo *repository.ProductRepository, quotes QuoteInvalidator) *ProductService {
	return &ProductService{productRepo: productRepo, quotes: quotes}
}

// ProductRequest creates or updates a product. Nil fields are left
// unchanged on update.
type ProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	BasePrice     *decimal.Decimal `json:"basePrice"`
	Group1Price   *decimal.Decimal `json:"group1Price"`
	Group2Price   *decimal.Decimal `json:"group2Price"`
	CategoryID    *int             `json:"categoryId"`
	APIIdentifier *string          `json:"apiIdentifier"`
	Status        *string          `json:"status"`
}

type CategoryRequest struct {
	Name           string `json:"name" binding:"required"`
	MasterCategory string `json:"masterCategory" binding:"required"`
}

// ListProducts returns the catalog. Only admins see inactive products.
func (s *ProductService) ListProducts(ctx context.Context, actor Actor) ([]models.Product, error) {
	products, err := s.productRepo.List(ctx, !actor.IsAdmin())
	if err != nil {
		return nil, utils.PersistenceError("list_products", err)
	}
	return products, nil
}

// GetProduct returns one product. Inactive products are hidden from
// resellers.
func (s *ProductService) GetProduct(ctx context.Context, actor Actor, id int) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("load_product", "PRODUCT_NOT_FOUND", err)
	}
	if !actor.IsAdmin() && product.Status != models.ProductStatusActive {
		return nil, utils.NotFoundError("PRODUCT_NOT_FOUND", "product not found")
	}
	return product, nil
}

// CreateProduct adds a product to an existing category.
func (s *ProductService) CreateProduct(ctx context.Context, actor Actor, req *ProductRequest) (*models.Product, error) {
	if err := requireAdmin(actor, "manage products"); err != nil {
		return nil, err
	}
	product := &models.Product{Status: models.ProductStatusActive}
	applyProductRequest(product, req)
	if product.Name == "" || product.CategoryID == 0 {
		return nil, utils.ValidationError("VALIDATION_ERROR", "name and categoryId are required")
	}
	if err := s.ensureCategory(ctx, product.CategoryID); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, storeError("create_product", "PRODUCT_NOT_FOUND", err)
	}
	log.Info().Int("product_id", product.ID).Str("name", product.Name).Msg("Product created")
	return s.reload(ctx, product)
}

// UpdateProduct changes a product and drops its cached quotes.
func (s *ProductService) UpdateProduct(ctx context.Context, actor Actor, id int, req *ProductRequest) (*models.Product, error) {
	if err := requireAdmin(actor, "manage products"); err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("load_product", "PRODUCT_NOT_FOUND", err)
	}
	applyProductRequest(product, req)
	if req.CategoryID != nil {
		if err := s.ensureCategory(ctx, product.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, storeError("update_product", "PRODUCT_NOT_FOUND", err)
	}
	s.invalidateQuotes(ctx, id)
	log.Info().Int("product_id", id).Msg("Product updated")
	return s.reload(ctx, product)
}

// DeleteProduct removes a product that was never ordered.
func (s *ProductService) DeleteProduct(ctx context.Context, actor Actor, id int) error {
	if err := requireAdmin(actor, "manage products"); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return storeError("delete_product", "PRODUCT_NOT_FOUND", err)
	}
	s.invalidateQuotes(ctx, id)
	log.Info().Int("product_id", id).Msg("Product deleted")
	return nil
}

func (s *ProductService) ListCategories(ctx context.Context) ([]models.ProductCategory, error) {
	categories, err := s.productRepo.ListCategories(ctx)
	if err != nil {
		return nil, utils.PersistenceError("list_categories", err)
	}
	return categories, nil
}

func (s *ProductService) CreateCategory(ctx context.Context, actor Actor, req *CategoryRequest) (*models.ProductCategory, error) {
	if err := requireAdmin(actor, "manage categories"); err != nil {
		return nil, err
	}
	category := &models.ProductCategory{
		Name:           strings.TrimSpace(req.Name),
		MasterCategory: models.MasterCategory(req.MasterCategory),
	}
	if err := s.productRepo.CreateCategory(ctx, category); err != nil {
		return nil, storeError("create_category", "CATEGORY_NOT_FOUND", err)
	}
	return category, nil
}

func (s *ProductService) UpdateCategory(ctx context.Context, actor Actor, id int, req *CategoryRequest) (*models.ProductCategory, error) {
	if err := requireAdmin(actor, "manage categories"); err != nil {
		return nil, err
	}
	category := &models.ProductCategory{
		ID:             id,
		Name:           strings.TrimSpace(req.Name),
		MasterCategory: models.MasterCategory(req.MasterCategory),
	}
	if err := s.productRepo.UpdateCategory(ctx, category); err != nil {
		return nil, storeError("update_category", "CATEGORY_NOT_FOUND", err)
	}
	return category, nil
}

func (s *ProductService) DeleteCategory(ctx context.Context, actor Actor, id int) error {
	if err := requireAdmin(actor, "manage categories"); err != nil {
		return err
	}
	if err := s.productRepo.DeleteCategory(ctx, id); err != nil {
		return storeError("delete_category", "CATEGORY_NOT_FOUND", err)
	}
	return nil
}

func (s *ProductService) ensureCategory(ctx context.Context, id int) error {
	if _, err := s.productRepo.GetCategory(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return utils.ValidationError("CATEGORY_NOT_FOUND", "categoryId does not exist")
		}
		return utils.PersistenceError("load_category", err)
	}
	return nil
}

// reload fetches the product again so the joined master category is set.
func (s *ProductService) reload(ctx context.Context, product *models.Product) (*models.Product, error) {
	fresh, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		return product, nil
	}
	return fresh, nil
}

func (s *ProductService) invalidateQuotes(ctx context.Context, productID int) {
	if s.quotes == nil {
		return
	}
	if err := s.quotes.InvalidateProduct(ctx, productID); err != nil {
		log.Warn().Err(err).Int("product_id", productID).Msg("Failed to invalidate cached quotes")
	}
}

func applyProductRequest(p *models.Product, req *ProductRequest) {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.BasePrice != nil {
		p.BasePrice = req.BasePrice.Round(2)
	}
	if req.Group1Price != nil {
		p.Group1Price = req.Group1Price.Round(2)
	}
	if req.Group2Price != nil {
		p.Group2Price = req.Group2Price.Round(2)
	}
	if req.CategoryID != nil {
		p.CategoryID = *req.CategoryID
	}
	if req.APIIdentifier != nil {
		p.APIIdentifier = strings.TrimSpace(*req.APIIdentifier)
	}
	if req.Status != nil {
		p.Status = models.ProductStatus(*req.Status)
	}
}
