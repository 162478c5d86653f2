package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/retail_api/internal/models"
)

var categoryColumns = []string{"id", "company_id", "name", "created_at", "updated_at"}

func TestCategoryRepository_GetByName_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM categories WHERE company_id = $1 AND name = $2`)).
		WithArgs("T1", "Boissons").
		WillReturnRows(sqlmock.NewRows(categoryColumns))

	c, err := repo.GetByName(context.Background(), "T1", "Boissons")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Nil(t, c)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_CreateIfAbsent_Created(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCategoryRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO categories (company_id, name)`)).
		WithArgs("T1", "Boissons").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

	c := &models.Category{CompanyID: "T1", Name: "Boissons"}
	created, err := repo.CreateIfAbsent(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 7, c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_CreateIfAbsent_AlreadyExists(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCategoryRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO categories (company_id, name)`)).
		WithArgs("T1", "Boissons").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM categories WHERE company_id = $1 AND name = $2`)).
		WithArgs("T1", "Boissons").
		WillReturnRows(sqlmock.NewRows(categoryColumns).AddRow(4, "T1", "Boissons", now, now))

	c := &models.Category{CompanyID: "T1", Name: "Boissons"}
	created, err := repo.CreateIfAbsent(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 4, c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_ListByCompany(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCategoryRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`COUNT(p.id) AS product_count`)).
		WithArgs("T1", "").
		WillReturnRows(sqlmock.NewRows(append(categoryColumns, "product_count")).
			AddRow(1, "T1", "Boissons", now, now, 12).
			AddRow(2, "T1", "Céréales", now, now, 0))

	categories, err := repo.ListByCompany(context.Background(), "T1", "")
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, 12, categories[0].ProductCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
