package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserRole is the access role of a platform user.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleReseller UserRole = "reseller"
)

// Reseller pricing groups. Group 0 means the base price applies.
const (
	ResellerGroupDefault = 0
	ResellerGroup1       = 1
	ResellerGroup2       = 2
)

// User is an admin or reseller account.
type User struct {
	ID            int             `db:"id" json:"id"`
	Username      string          `db:"username" json:"username" validate:"required,min=3,max=64"`
	PasswordHash  string          `db:"password_hash" json:"-" validate:"required"`
	Role          UserRole        `db:"role" json:"role" validate:"required,oneof=admin reseller"`
	ResellerGroup int             `db:"reseller_group" json:"resellerGroup" validate:"gte=0,lte=2"`
	Credit        decimal.Decimal `db:"credit" json:"credit"`
	IsActive      bool            `db:"is_active" json:"isActive"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
