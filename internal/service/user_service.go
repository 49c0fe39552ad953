package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

const minPasswordLength = 8

// UserService manages admin and reseller accounts.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// CreateUserRequest creates an account. A blank password generates a
// temporary one that is returned once.
type CreateUserRequest struct {
	Username      string `json:"username" binding:"required"`
	Password      string `json:"password"`
	Role          string `json:"role" binding:"required"`
	ResellerGroup int    `json:"resellerGroup"`
	IsActive      *bool  `json:"isActive"`
}

type UpdateUserRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	ResellerGroup *int   `json:"resellerGroup"`
	IsActive      *bool  `json:"isActive"`
}

// CreatedUser carries the new account and, when generated, its temporary
// password.
type CreatedUser struct {
	User              *models.User `json:"user"`
	TemporaryPassword string       `json:"temporaryPassword,omitempty"`
}

// Create adds a user account.
func (s *UserService) Create(ctx context.Context, actor Actor, req *CreateUserRequest) (*CreatedUser, error) {
	if err := requireAdmin(actor, "create users"); err != nil {
		return nil, err
	}

	out := &CreatedUser{}
	password := req.Password
	if password == "" {
		temp, err := utils.GenerateTemporaryPassword()
		if err != nil {
			return nil, err
		}
		password = temp
		out.TemporaryPassword = temp
	}
	if len(password) < minPasswordLength {
		return nil, utils.ValidationError("WEAK_PASSWORD", "password must be at least 8 characters")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:      strings.TrimSpace(req.Username),
		PasswordHash:  hash,
		Role:          models.UserRole(req.Role),
		ResellerGroup: req.ResellerGroup,
		IsActive:      true,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError("create_user", "USER_NOT_FOUND", err)
	}

	log.Info().Int("user_id", user.ID).Str("role", string(user.Role)).Int("admin_id", actor.UserID).Msg("User created")
	out.User = user
	return out, nil
}

// Get returns a user. Non-admins can only read themselves.
func (s *UserService) Get(ctx context.Context, actor Actor, id int) (*models.User, error) {
	if !actor.canAccess(id) {
		return nil, utils.ForbiddenError("cannot read another user")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("load_user", "USER_NOT_FOUND", err)
	}
	return user, nil
}

// List returns users, optionally filtered by role.
func (s *UserService) List(ctx context.Context, actor Actor, role string) ([]models.User, error) {
	if err := requireAdmin(actor, "list users"); err != nil {
		return nil, err
	}
	var filter *models.UserRole
	if role != "" {
		r := models.UserRole(role)
		if r != models.RoleAdmin && r != models.RoleReseller {
			return nil, utils.ValidationError("INVALID_ROLE", "role must be admin or reseller")
		}
		filter = &r
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, utils.PersistenceError("list_users", err)
	}
	return users, nil
}

// Update changes profile fields. Credit is adjusted through billing.
func (s *UserService) Update(ctx context.Context, actor Actor, id int, req *UpdateUserRequest) (*models.User, error) {
	if err := requireAdmin(actor, "update users"); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("load_user", "USER_NOT_FOUND", err)
	}

	if req.Username != "" {
		user.Username = strings.TrimSpace(req.Username)
	}
	if req.Role != "" {
		user.Role = models.UserRole(req.Role)
	}
	if req.ResellerGroup != nil {
		user.ResellerGroup = *req.ResellerGroup
	}
	if req.IsActive != nil {
		if !*req.IsActive && id == actor.UserID {
			return nil, utils.ValidationError("SELF_DEACTIVATION", "admins cannot deactivate their own account")
		}
		user.IsActive = *req.IsActive
	}
	if req.Password != "" {
		if len(req.Password) < minPasswordLength {
			return nil, utils.ValidationError("WEAK_PASSWORD", "password must be at least 8 characters")
		}
		if user.PasswordHash, err = hashPassword(req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError("update_user", "USER_NOT_FOUND", err)
	}
	log.Info().Int("user_id", user.ID).Int("admin_id", actor.UserID).Msg("User updated")
	return user, nil
}
