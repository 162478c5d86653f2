package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/retail_api/internal/models"
)

// CategoryRepository handles data access for categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetByName returns the company's category with exactly this name, or sql.ErrNoRows.
func (r *CategoryRepository) GetByName(ctx context.Context, companyID, name string) (*models.Category, error) {
	const q = `SELECT id, company_id, name, created_at, updated_at FROM categories WHERE company_id = $1 AND name = $2 LIMIT 1`

	var c models.Category
	if err := r.db.GetContext(ctx, &c, q, companyID, name); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateIfAbsent inserts the category unless the company already has one with
// the same name, in which case c is filled from the existing row and created
// is false.
func (r *CategoryRepository) CreateIfAbsent(ctx context.Context, c *models.Category) (bool, error) {
	const q = `
        INSERT INTO categories (company_id, name)
        VALUES ($1, $2)
        ON CONFLICT (company_id, name) DO NOTHING
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, q, c.CompanyID, c.Name).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	existing, err := r.GetByName(ctx, c.CompanyID, c.Name)
	if err != nil {
		return false, err
	}
	*c = *existing
	return false, nil
}

// ListByCompany returns the company's categories with their product counts.
func (r *CategoryRepository) ListByCompany(ctx context.Context, companyID, search string) ([]models.Category, error) {
	const q = `
        SELECT c.id, c.company_id, c.name, c.created_at, c.updated_at,
               COUNT(p.id) AS product_count
        FROM categories c
        LEFT JOIN products p ON p.category_id = c.id
        WHERE c.company_id = $1
        AND ($2 = '' OR c.name ILIKE '%' || $2 || '%')
        GROUP BY c.id
        ORDER BY c.name`

	categories := []models.Category{}
	if err := r.db.SelectContext(ctx, &categories, q, companyID, search); err != nil {
		return nil, err
	}
	return categories, nil
}
