package models

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus is the lifecycle state of a product order. Active and
// rejected are terminal.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusActive   OrderStatus = "active"
	OrderStatusRejected OrderStatus = "rejected"
)

// ProvisionMethod selects how the SIM reaches the customer.
type ProvisionMethod string

const (
	ProvisionCourier ProvisionMethod = "courier"
	ProvisionSelf    ProvisionMethod = "self"
)

// DefaultCountry is used for courier orders that do not name one.
const DefaultCountry = "South Africa"

// ProductOrder is a reseller's request to provision a product for a client.
// Exactly one payload is populated: SimNumber for self provisioning, the
// courier block for courier delivery.
type ProductOrder struct {
	ID              int             `db:"id" json:"id"`
	ResellerID      int             `db:"reseller_id" json:"resellerId" validate:"gt=0"`
	ClientID        int             `db:"client_id" json:"clientId" validate:"gt=0"`
	ProductID       int             `db:"product_id" json:"productId" validate:"gt=0"`
	Status          OrderStatus     `db:"status" json:"status" validate:"required,oneof=pending active rejected"`
	ProvisionMethod ProvisionMethod `db:"provision_method" json:"provisionMethod" validate:"required,oneof=courier self"`
	SimNumber       *string         `db:"sim_number" json:"simNumber,omitempty" validate:"omitempty,max=64"`
	Address         *string         `db:"address" json:"address,omitempty" validate:"omitempty,max=500"`
	ContactName     *string         `db:"contact_name" json:"contactName,omitempty" validate:"omitempty,max=255"`
	ContactPhone    *string         `db:"contact_phone" json:"contactPhone,omitempty" validate:"omitempty,max=32"`
	Country         *string         `db:"country" json:"country,omitempty" validate:"omitempty,max=100"`
	RejectionReason *string         `db:"rejection_reason" json:"rejectionReason,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// IsTerminal reports whether the order can no longer transition.
func (o *ProductOrder) IsTerminal() bool {
	return o.Status == OrderStatusActive || o.Status == OrderStatusRejected
}

// ProvisioningProblem returns a description of the first mismatch between
// ProvisionMethod and the populated payload, or "" when they agree.
func (o *ProductOrder) ProvisioningProblem() string {
	hasSim := present(o.SimNumber)
	courier := []struct {
		name string
		val  *string
	}{
		{"address", o.Address},
		{"contactName", o.ContactName},
		{"contactPhone", o.ContactPhone},
	}
	var setCourier, missingCourier []string
	for _, f := range courier {
		if present(f.val) {
			setCourier = append(setCourier, f.name)
		} else {
			missingCourier = append(missingCourier, f.name)
		}
	}

	switch o.ProvisionMethod {
	case ProvisionSelf:
		if !hasSim {
			return "simNumber is required for self provisioning"
		}
		if len(setCourier) > 0 || present(o.Country) {
			return "courier details must be empty for self provisioning"
		}
	case ProvisionCourier:
		if hasSim {
			return "simNumber must be empty for courier provisioning"
		}
		if len(missingCourier) > 0 {
			return fmt.Sprintf("%s required for courier provisioning", strings.Join(missingCourier, ", "))
		}
	default:
		return fmt.Sprintf("unknown provision method %q", o.ProvisionMethod)
	}
	return ""
}

// ProvisionedComment is the comment stamped on a user product created from
// an approved order.
func ProvisionedComment(orderID int) string {
	return fmt.Sprintf("Auto-provisioned from order #%d", orderID)
}

// NewUserProductFromOrder builds the active user product an approved order
// provisions. The reseller owns it.
func NewUserProductFromOrder(o *ProductOrder) *UserProduct {
	comment := ProvisionedComment(o.ID)
	orderID := o.ID
	up := &UserProduct{
		UserID:    o.ResellerID,
		ProductID: o.ProductID,
		OrderID:   &orderID,
		Status:    UserProductActive,
		Comments:  &comment,
	}
	if present(o.SimNumber) {
		sim := *o.SimNumber
		up.SimNumber = &sim
	}
	return up
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
