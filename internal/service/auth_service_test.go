package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/repository"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

type memUserStore struct {
	mu    sync.Mutex
	users map[int]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[int]*models.User{}}
}

func (m *memUserStore) GetByID(_ context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memUserStore) Create(_ context.Context, u *models.User) error {
	if err := models.Validate(u); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	u.ID = len(m.users) + 1
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserStore) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserStore) List(_ context.Context, role *models.UserRole) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		if role == nil || u.Role == *role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUserStore) CountAdmins(ctx context.Context) (int, error) {
	role := models.RoleAdmin
	admins, _ := m.List(ctx, &role)
	return len(admins), nil
}

func TestEnsureAdminAndLogin(t *testing.T) {
	store := newMemUserStore()
	jwt := utils.NewJWTManager("secret", time.Hour)
	svc := NewAuthService(store, jwt)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "root", "correct-horse"))
	require.NoError(t, svc.EnsureAdmin(ctx, "second", "correct-horse"))
	n, _ := store.CountAdmins(ctx)
	assert.Equal(t, 1, n)

	res, err := svc.Login(ctx, "root", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.User.Role)

	claims, err := jwt.ValidateJWT(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestLoginFailures(t *testing.T) {
	store := newMemUserStore()
	svc := NewAuthService(store, utils.NewJWTManager("secret", time.Hour))
	users := NewUserService(store)
	ctx := context.Background()

	inactive := false
	_, err := users.Create(ctx, admin, &CreateUserRequest{Username: "dormant", Password: "password1", Role: "reseller", IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "nobody", "password1")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "dormant", "wrong-password")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "dormant", "password1")
	assert.ErrorIs(t, err, utils.ErrInactiveAccount)
}

func TestCreateUserGeneratesTemporaryPassword(t *testing.T) {
	store := newMemUserStore()
	users := NewUserService(store)
	auth := NewAuthService(store, utils.NewJWTManager("secret", time.Hour))
	ctx := context.Background()

	created, err := users.Create(ctx, admin, &CreateUserRequest{Username: "reseller1", Role: "reseller", ResellerGroup: 2})
	require.NoError(t, err)
	require.NotEmpty(t, created.TemporaryPassword)
	assert.True(t, created.User.Credit.Equal(decimal.Zero))

	_, err = auth.Login(ctx, "reseller1", created.TemporaryPassword)
	assert.NoError(t, err)

	_, err = users.Create(ctx, admin, &CreateUserRequest{Username: "reseller1", Password: "password1", Role: "reseller"})
	assert.Equal(t, "DUPLICATE", utils.CodeOf(err))

	_, err = users.Create(ctx, admin, &CreateUserRequest{Username: "reseller2", Password: "short", Role: "reseller"})
	assert.Equal(t, "WEAK_PASSWORD", utils.CodeOf(err))

	_, err = users.Create(ctx, admin, &CreateUserRequest{Username: "reseller3", Password: "password1", Role: "owner"})
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = users.Create(ctx, reseller, &CreateUserRequest{Username: "sneaky", Password: "password1", Role: "admin"})
	assert.ErrorIs(t, err, utils.ErrForbidden)
}

func TestUpdateUserGuardsSelfDeactivation(t *testing.T) {
	store := newMemUserStore()
	users := NewUserService(store)
	ctx := context.Background()

	created, err := users.Create(ctx, admin, &CreateUserRequest{Username: "boss", Password: "password1", Role: "admin"})
	require.NoError(t, err)

	off := false
	self := Actor{UserID: created.User.ID, Role: models.RoleAdmin}
	_, err = users.Update(ctx, self, created.User.ID, &UpdateUserRequest{IsActive: &off})
	assert.Equal(t, "SELF_DEACTIVATION", utils.CodeOf(err))

	group := 1
	otherAdmin := Actor{UserID: created.User.ID + 1, Role: models.RoleAdmin}
	updated, err := users.Update(ctx, otherAdmin, created.User.ID, &UpdateUserRequest{ResellerGroup: &group, IsActive: &off})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 1, updated.ResellerGroup)
}
