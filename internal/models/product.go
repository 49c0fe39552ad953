package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MasterCategory is the top-level product grouping. It selects the
// Broadband.is credentials used for a product.
type MasterCategory string

const (
	MasterCategoryFixed MasterCategory = "MTN Fixed"
	MasterCategoryGSM   MasterCategory = "MTN GSM"
)

// ProductStatus enumerates catalog availability.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// ProductCategory groups products under a master category.
type ProductCategory struct {
	ID             int            `db:"id" json:"id"`
	Name           string         `db:"name" json:"name" validate:"required,max=255"`
	MasterCategory MasterCategory `db:"master_category" json:"masterCategory" validate:"required,oneof='MTN Fixed' 'MTN GSM'"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
}

// Product is a catalog item that can be ordered and provisioned.
type Product struct {
	ID            int             `db:"id" json:"id"`
	Name          string          `db:"name" json:"name" validate:"required,max=255"`
	Description   string          `db:"description" json:"description"`
	BasePrice     decimal.Decimal `db:"base_price" json:"basePrice" validate:"gte=0"`
	Group1Price   decimal.Decimal `db:"group1_price" json:"group1Price" validate:"gte=0"`
	Group2Price   decimal.Decimal `db:"group2_price" json:"group2Price" validate:"gte=0"`
	CategoryID    int             `db:"category_id" json:"categoryId" validate:"gt=0"`
	APIIdentifier string          `db:"api_identifier" json:"apiIdentifier" validate:"max=255"`
	Status        ProductStatus   `db:"status" json:"status" validate:"required,oneof=active inactive"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`

	// Joined from product_categories
	MasterCategory MasterCategory `db:"master_category" json:"masterCategory,omitempty"`
}

// PriceForGroup returns the reseller group price, falling back to the base
// price when the group has no price of its own.
func (p *Product) PriceForGroup(group int) decimal.Decimal {
	switch group {
	case ResellerGroup1:
		if p.Group1Price.IsPositive() {
			return p.Group1Price
		}
	case ResellerGroup2:
		if p.Group2Price.IsPositive() {
			return p.Group2Price
		}
	}
	return p.BasePrice
}
