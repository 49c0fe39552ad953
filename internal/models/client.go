package models

import "time"

// Client is an end customer managed by a reseller.
type Client struct {
	ID         int       `db:"id" json:"id"`
	ResellerID int       `db:"reseller_id" json:"resellerId" validate:"gt=0"`
	Name       string    `db:"name" json:"name" validate:"required,max=255"`
	Email      *string   `db:"email" json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string   `db:"phone" json:"phone,omitempty" validate:"omitempty,max=32"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
