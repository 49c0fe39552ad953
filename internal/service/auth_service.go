package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/repository"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// UserStore persists platform users.
type UserStore interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	List(ctx context.Context, role *models.UserRole) ([]models.User, error)
	CountAdmins(ctx context.Context) (int, error)
}

type AuthService struct {
	users UserStore
	jwt   *utils.JWTManager
}

func NewAuthService(users UserStore, jwt *utils.JWTManager) *AuthService {
	return &AuthService{users: users, jwt: jwt}
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Login verifies the credentials and issues a JWT.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	log.Debug().Str("username", username).Msg("Login attempt")

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !repository.IsNotFound(err) {
			return nil, utils.PersistenceError("load_user", err)
		}
		log.Warn().Str("username", username).Msg("Login for unknown user")
		return nil, utils.NewError(utils.ErrInvalidCredentials, "", "invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("username", username).Msg("Password verification failed")
		return nil, utils.NewError(utils.ErrInvalidCredentials, "", "invalid username or password")
	}

	if !user.IsActive {
		log.Warn().Str("username", username).Msg("Account is inactive")
		return nil, utils.NewError(utils.ErrInactiveAccount, "", "account is inactive")
	}

	token, expiresAt, err := s.jwt.GenerateJWT(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, err
	}

	log.Info().Int("user_id", user.ID).Str("role", string(user.Role)).Msg("Login successful")
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// EnsureAdmin creates the bootstrap admin when no admin account exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	n, err := s.users.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if username == "" || password == "" {
		log.Warn().Msg("No admin account exists and BOOTSTRAP_ADMIN_USERNAME/PASSWORD are not set")
		return nil
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}
	log.Info().Int("user_id", admin.ID).Str("username", username).Msg("Bootstrap admin created")
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
