package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/retail_api/internal/models"
)

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).
		WithArgs("gerant@boutique.sn").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "company_id", "email", "password_hash", "name", "role", "is_active", "last_login_at", "created_at", "updated_at",
		}).AddRow(1, "T1", "gerant@boutique.sn", "hash", "Awa", "manager", true, nil, now, now))

	user, err := repo.GetByEmail(context.Background(), "gerant@boutique.sn")
	require.NoError(t, err)
	assert.Equal(t, "T1", user.CompanyID)
	assert.Nil(t, user.LastLoginAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "x@y.z")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), &models.User{CompanyID: "T1", Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepository_TouchLastLogin(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET last_login_at = NOW() WHERE id = $1`)).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.TouchLastLogin(context.Background(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}
