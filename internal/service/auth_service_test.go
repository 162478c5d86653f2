package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/retail_api/internal/models"
	"github.com/GTDGit/retail_api/internal/utils"
)

type memoryUsers struct {
	users   map[string]*models.User
	touched []int
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memoryUsers) Create(ctx context.Context, u *models.User) error {
	if m.users == nil {
		m.users = map[string]*models.User{}
	}
	u.ID = len(m.users) + 1
	m.users[u.Email] = u
	return nil
}

func (m *memoryUsers) TouchLastLogin(ctx context.Context, id int) error {
	m.touched = append(m.touched, id)
	return nil
}

func newUser(t *testing.T, password string, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{ID: 1, CompanyID: "T1", Email: "gerant@boutique.sn", PasswordHash: string(hash), IsActive: active}
}

func TestAuthService_Login(t *testing.T) {
	utils.SetJWTConfig("test-secret", time.Hour)
	users := &memoryUsers{users: map[string]*models.User{"gerant@boutique.sn": newUser(t, "s3cret", true)}}
	svc := NewAuthService(users, nil)

	token, user, err := svc.Login(context.Background(), " Gerant@Boutique.sn ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "T1", user.CompanyID)
	assert.Equal(t, []int{1}, users.touched)

	claims, err := utils.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "T1", claims.CompanyID)
}

func TestAuthService_LoginFailures(t *testing.T) {
	utils.SetJWTConfig("test-secret", time.Hour)
	users := &memoryUsers{users: map[string]*models.User{"gerant@boutique.sn": newUser(t, "s3cret", true)}}
	svc := NewAuthService(users, nil)

	_, _, err := svc.Login(context.Background(), "gerant@boutique.sn", "wrong")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "inconnu@boutique.sn", "s3cret")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	users.users["gerant@boutique.sn"].IsActive = false
	_, _, err = svc.Login(context.Background(), "gerant@boutique.sn", "s3cret")
	assert.ErrorIs(t, err, utils.ErrAccountInactive)
	assert.Empty(t, users.touched)
}

func TestAuthService_EnsureUser(t *testing.T) {
	users := &memoryUsers{}
	svc := NewAuthService(users, nil)

	created, err := svc.EnsureUser(context.Background(), "T1", "Admin@Boutique.sn", "pw", "Admin")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureUser(context.Background(), "T1", "admin@boutique.sn", "pw", "Admin")
	require.NoError(t, err)
	assert.False(t, created)

	u := users.users["admin@boutique.sn"]
	require.NotNil(t, u)
	assert.Equal(t, models.RoleManager, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw")))
}
