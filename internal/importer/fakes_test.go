package importer

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/retail_api/internal/models"
)

// memoryProducts is an in-memory ProductStore enforcing the same uniqueness
// rules and column constraints as the products table. Like the real insert, a
// single constraint violation fails the whole batch.
type memoryProducts struct {
	products    []*models.Product
	lookups     int
	bulkCalls   int
	bulkErr     error
	lookupErr   error
	beforeWrite func() // runs inside BulkCreate before inserting
}

func (m *memoryProducts) FindIdentities(_ context.Context, companyID string, names, barcodes []string) ([]models.ProductIdentity, error) {
	m.lookups++
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	wantName := make(map[string]bool, len(names))
	for _, n := range names {
		wantName[n] = true
	}
	wantBarcode := make(map[string]bool, len(barcodes))
	for _, b := range barcodes {
		wantBarcode[b] = true
	}
	var out []models.ProductIdentity
	for _, p := range m.products {
		if p.CompanyID != companyID {
			continue
		}
		if wantName[p.Name] || (p.Barcode != nil && wantBarcode[*p.Barcode]) {
			out = append(out, models.ProductIdentity{Name: p.Name, Barcode: p.Barcode})
		}
	}
	return out, nil
}

func (m *memoryProducts) BulkCreate(_ context.Context, products []*models.Product) ([]string, error) {
	m.bulkCalls++
	if m.bulkErr != nil {
		return nil, m.bulkErr
	}
	if m.beforeWrite != nil {
		m.beforeWrite()
	}
	for _, p := range products {
		if err := checkProductColumns(p); err != nil {
			return nil, err
		}
	}
	var inserted []string
	for _, p := range products {
		if m.conflicts(p) {
			continue
		}
		p.ID = len(m.products) + 1
		m.products = append(m.products, p)
		inserted = append(inserted, p.Name)
	}
	return inserted, nil
}

func (m *memoryProducts) conflicts(p *models.Product) bool {
	for _, e := range m.products {
		if e.CompanyID != p.CompanyID {
			continue
		}
		if e.Name == p.Name {
			return true
		}
		if p.Barcode != nil && e.Barcode != nil && *p.Barcode == *e.Barcode {
			return true
		}
	}
	return false
}

var (
	numeric14x2Max = decimal.New(1, 12)
	errConstraint  = errors.New("pq: value violates column constraint")
)

func checkProductColumns(p *models.Product) error {
	if utf8.RuneCountInString(p.Name) > 255 || utf8.RuneCountInString(p.Unit) > 32 {
		return errConstraint
	}
	if p.Barcode != nil && utf8.RuneCountInString(*p.Barcode) > 64 {
		return errConstraint
	}
	if !p.UnitPrice.IsPositive() || !fitsNumeric14x2(p.UnitPrice) {
		return errConstraint
	}
	for _, d := range []decimal.NullDecimal{p.PurchasePrice, p.HalfWholesalePrice, p.WholesalePrice} {
		if d.Valid && !fitsNumeric14x2(d.Decimal) {
			return errConstraint
		}
	}
	if p.StockMin < 0 || p.StockMin > math.MaxInt32 || p.Quantity < 0 || p.Quantity > math.MaxInt32 {
		return errConstraint
	}
	return nil
}

// fitsNumeric14x2 reports whether d is stored without loss or overflow.
func fitsNumeric14x2(d decimal.Decimal) bool {
	return d.Abs().LessThan(numeric14x2Max) && d.Equal(d.Round(2))
}

func (m *memoryProducts) names(companyID string) []string {
	var out []string
	for _, p := range m.products {
		if p.CompanyID == companyID {
			out = append(out, p.Name)
		}
	}
	return out
}

type memoryCategories struct {
	categories []*models.Category
	gets       int
	creates    int
	createErr  error
	getErr     error
}

func (m *memoryCategories) GetByName(_ context.Context, companyID, name string) (*models.Category, error) {
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, c := range m.categories {
		if c.CompanyID == companyID && c.Name == name {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryCategories) CreateIfAbsent(_ context.Context, c *models.Category) (bool, error) {
	m.creates++
	if m.createErr != nil {
		return false, m.createErr
	}
	if utf8.RuneCountInString(c.Name) > 255 {
		return false, errConstraint
	}
	for _, e := range m.categories {
		if e.CompanyID == c.CompanyID && e.Name == c.Name {
			c.ID = e.ID
			return false, nil
		}
	}
	c.ID = len(m.categories) + 1
	m.categories = append(m.categories, c)
	return true, nil
}

func (m *memoryCategories) add(companyID, name string) *models.Category {
	c := &models.Category{ID: len(m.categories) + 1, CompanyID: companyID, Name: name}
	m.categories = append(m.categories, c)
	return c
}

func (m *memoryCategories) count(companyID, name string) int {
	n := 0
	for _, c := range m.categories {
		if c.CompanyID == companyID && c.Name == name {
			n++
		}
	}
	return n
}

var errStore = errors.New("connection reset by peer")

func strPtr(s string) *string { return &s }
