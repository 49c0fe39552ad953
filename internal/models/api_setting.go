package models

import "time"

// APISetting is a reusable template for a Broadband.is API call.
type APISetting struct {
	ID             int            `db:"id" json:"id"`
	Name           string         `db:"name" json:"name" validate:"required,max=255"`
	MasterCategory MasterCategory `db:"master_category" json:"masterCategory" validate:"required,oneof='MTN Fixed' 'MTN GSM'"`
	Method         string         `db:"method" json:"method" validate:"required,oneof=GET POST PUT DELETE"`
	EndpointPath   string         `db:"endpoint_path" json:"endpointPath" validate:"required,startswith=/,max=500"`
	Description    string         `db:"description" json:"description"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}
