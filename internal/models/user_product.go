package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// UserProductStatus is the state of a provisioned product.
type UserProductStatus string

const (
	UserProductActive    UserProductStatus = "active"
	UserProductPending   UserProductStatus = "pending"
	UserProductSuspended UserProductStatus = "suspended"
	UserProductCancelled UserProductStatus = "cancelled"
)

// UserProduct is a provisioned product instance owned by one user.
type UserProduct struct {
	ID        int               `db:"id" json:"id"`
	UserID    int               `db:"user_id" json:"userId" validate:"gt=0"`
	ProductID int               `db:"product_id" json:"productId" validate:"gt=0"`
	OrderID   *int              `db:"order_id" json:"orderId,omitempty"`
	Username  string            `db:"username" json:"username" validate:"max=255"`
	MSISDN    string            `db:"msisdn" json:"msisdn" validate:"max=32"`
	SimNumber *string           `db:"sim_number" json:"simNumber,omitempty" validate:"omitempty,max=64"`
	Status    UserProductStatus `db:"status" json:"status" validate:"required,oneof=active pending suspended cancelled"`
	Comments  *string           `db:"comments" json:"comments,omitempty"`
	CreatedAt time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time         `db:"updated_at" json:"updatedAt"`
}

// Parameters is the custom key/value bag stored with an endpoint. It is
// persisted as a JSON object and must decode as one.
type Parameters map[string]string

// Value implements driver.Valuer.
func (p Parameters) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(p))
}

// Scan implements sql.Scanner. Anything other than a JSON object of strings
// is rejected.
func (p *Parameters) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = Parameters{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("custom parameters: unsupported type %T", src)
	}

	out := map[string]string{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("custom parameters: %w", err)
	}
	*p = out
	return nil
}

// Merge returns a copy of p with extra applied on top.
func (p Parameters) Merge(extra map[string]string) Parameters {
	out := make(Parameters, len(p)+len(extra))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// UserProductEndpoint attaches a configured external API call to a user
// product.
type UserProductEndpoint struct {
	ID               int        `db:"id" json:"id"`
	UserProductID    int        `db:"user_product_id" json:"userProductId" validate:"gt=0"`
	APISettingID     int        `db:"api_setting_id" json:"apiSettingId" validate:"gt=0"`
	EndpointPath     string     `db:"endpoint_path" json:"endpointPath" validate:"max=500"`
	CustomParameters Parameters `db:"custom_parameters" json:"customParameters" validate:"dive,keys,required,max=100,endkeys,max=1000"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
}
