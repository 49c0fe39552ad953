package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/embire2/DayResellers-sub000/internal/models"
)

const userColumns = `id, username, password_hash, role, reseller_group, credit, is_active, created_at, updated_at`

// UserRepository provides data access methods for the users table.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) getBy(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE `+where+` LIMIT 1`, arg); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID finds a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

// GetByUsername finds a user by login name.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username = $1", username)
}

// Create inserts a user. A taken username returns ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if err := models.Validate(u); err != nil {
		return err
	}
	query := `INSERT INTO users (username, password_hash, role, reseller_group, credit, is_active)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		u.Username, u.PasswordHash, u.Role, u.ResellerGroup, u.Credit, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapConstraintError(err)
}

// Update writes the mutable profile fields. Credit is changed only through
// the billing repository.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	if err := models.Validate(u); err != nil {
		return err
	}
	query := `UPDATE users
              SET username = $1, password_hash = $2, role = $3, reseller_group = $4, is_active = $5, updated_at = NOW()
              WHERE id = $6
              RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		u.Username, u.PasswordHash, u.Role, u.ResellerGroup, u.IsActive, u.ID,
	).Scan(&u.UpdatedAt)
	return mapConstraintError(err)
}

// List returns all users ordered by username, optionally filtered by role.
func (r *UserRepository) List(ctx context.Context, role *models.UserRole) ([]models.User, error) {
	users := []models.User{}
	var err error
	if role != nil {
		err = r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY username`, *role)
	} else {
		err = r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY username`)
	}
	return users, err
}

// CountAdmins returns the number of admin accounts.
func (r *UserRepository) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE role = 'admin'`)
	return n, err
}

// mapConstraintError converts Postgres unique and foreign key violations
// into ErrDuplicate and ErrInUse.
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505":
		return ErrDuplicate
	case "23503":
		return ErrInUse
	}
	return err
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
