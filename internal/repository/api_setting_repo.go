package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/embire2/DayResellers-sub000/internal/models"
)

const apiSettingColumns = `id, name, master_category, method, endpoint_path, description, created_at, updated_at`

// APISettingRepository provides data access for API call templates.
type APISettingRepository struct {
	db *sqlx.DB
}

// NewAPISettingRepository creates a new APISettingRepository.
func NewAPISettingRepository(db *sqlx.DB) *APISettingRepository {
	return &APISettingRepository{db: db}
}

func (r *APISettingRepository) GetByID(ctx context.Context, id int) (*models.APISetting, error) {
	var s models.APISetting
	if err := r.db.GetContext(ctx, &s, `SELECT `+apiSettingColumns+` FROM api_settings WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *APISettingRepository) List(ctx context.Context) ([]models.APISetting, error) {
	items := []models.APISetting{}
	err := r.db.SelectContext(ctx, &items, `SELECT `+apiSettingColumns+` FROM api_settings ORDER BY master_category, name`)
	return items, err
}

func (r *APISettingRepository) Create(ctx context.Context, s *models.APISetting) error {
	if err := models.Validate(s); err != nil {
		return err
	}
	return r.db.QueryRowxContext(ctx,
		`INSERT INTO api_settings (name, master_category, method, endpoint_path, description)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, created_at, updated_at`,
		s.Name, s.MasterCategory, s.Method, s.EndpointPath, s.Description,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *APISettingRepository) Update(ctx context.Context, s *models.APISetting) error {
	if err := models.Validate(s); err != nil {
		return err
	}
	return r.db.QueryRowxContext(ctx,
		`UPDATE api_settings
         SET name = $1, master_category = $2, method = $3, endpoint_path = $4, description = $5, updated_at = NOW()
         WHERE id = $6
         RETURNING updated_at`,
		s.Name, s.MasterCategory, s.Method, s.EndpointPath, s.Description, s.ID,
	).Scan(&s.UpdatedAt)
}

func (r *APISettingRepository) Delete(ctx context.Context, id int) error {
	return execAffectingOne(ctx, r.db, `DELETE FROM api_settings WHERE id = $1`, id)
}
