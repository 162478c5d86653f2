package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/retail_api/internal/models"
)

// bulkInsertChunk bounds the rows per INSERT statement; PostgreSQL accepts at
// most 65535 bind parameters per statement.
const bulkInsertChunk = 500

var productInsertColumns = []string{
	"company_id", "category_id", "name", "barcode", "description",
	"unit_price", "unit", "purchase_price", "half_wholesale_price", "wholesale_price",
	"stock_min", "quantity", "is_active", "expiration_date",
}

// ProductRepository handles data access for products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindIdentities returns the name and barcode of every product of the company
// whose name is in names or whose barcode is in barcodes.
func (r *ProductRepository) FindIdentities(ctx context.Context, companyID string, names, barcodes []string) ([]models.ProductIdentity, error) {
	const q = `
        SELECT name, barcode FROM products
        WHERE company_id = $1
        AND (name = ANY($2) OR barcode = ANY($3))`

	var out []models.ProductIdentity
	if err := r.db.SelectContext(ctx, &out, q, companyID, pq.Array(names), pq.Array(barcodes)); err != nil {
		return nil, err
	}
	return out, nil
}

// BulkCreate inserts products in one transaction. Rows violating a unique
// index (company name or barcode) are skipped; the names of the rows actually
// inserted are returned.
func (r *ProductRepository) BulkCreate(ctx context.Context, products []*models.Product) ([]string, error) {
	if len(products) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	inserted := make([]string, 0, len(products))
	for start := 0; start < len(products); start += bulkInsertChunk {
		end := start + bulkInsertChunk
		if end > len(products) {
			end = len(products)
		}
		names, err := insertProductChunk(ctx, tx, products[start:end])
		if err != nil {
			return nil, err
		}
		inserted = append(inserted, names...)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return inserted, nil
}

func insertProductChunk(ctx context.Context, tx *sqlx.Tx, chunk []*models.Product) ([]string, error) {
	cols := len(productInsertColumns)
	values := make([]string, 0, len(chunk))
	args := make([]interface{}, 0, len(chunk)*cols)
	for i, p := range chunk {
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", i*cols+j+1)
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
		args = append(args,
			p.CompanyID,
			p.CategoryID,
			p.Name,
			p.Barcode,
			p.Description,
			p.UnitPrice,
			p.Unit,
			p.PurchasePrice,
			p.HalfWholesalePrice,
			p.WholesalePrice,
			p.StockMin,
			p.Quantity,
			p.IsActive,
			p.ExpirationDate,
		)
	}

	query := `INSERT INTO products (` + strings.Join(productInsertColumns, ", ") + `)
              VALUES ` + strings.Join(values, ", ") + `
              ON CONFLICT DO NOTHING
              RETURNING name`

	var names []string
	if err := tx.SelectContext(ctx, &names, query, args...); err != nil {
		return nil, fmt.Errorf("insert products: %w", err)
	}
	return names, nil
}

// ProductFilter holds filters for company product listings.
type ProductFilter struct {
	CategoryID int
	Search     string
	IsActive   *bool
	Page       int
	Limit      int
}

// ProductPage contains paginated product results.
type ProductPage struct {
	Products   []models.Product
	TotalItems int
	TotalPages int
	Page       int
	Limit      int
}

// ListByCompany returns the company's products with filters and pagination.
func (r *ProductRepository) ListByCompany(ctx context.Context, companyID string, filter *ProductFilter) (*ProductPage, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	offset := (filter.Page - 1) * filter.Limit

	where := `WHERE p.company_id = $1`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.CategoryID > 0 {
		where += fmt.Sprintf(" AND p.category_id = $%d", argIdx)
		args = append(args, filter.CategoryID)
		argIdx++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.barcode ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}
	if filter.IsActive != nil {
		where += fmt.Sprintf(" AND p.is_active = $%d", argIdx)
		args = append(args, *filter.IsActive)
		argIdx++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM products p `+where, args...); err != nil {
		return nil, err
	}

	listQuery := fmt.Sprintf(`
		SELECT p.*, c.name AS category_name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		%s
		ORDER BY p.name
		LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, listQuery, args...); err != nil {
		return nil, err
	}

	return &ProductPage{
		Products:   products,
		TotalItems: total,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}
