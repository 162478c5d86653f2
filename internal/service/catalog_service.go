package service

import (
	"context"

	"github.com/GTDGit/retail_api/internal/models"
	"github.com/GTDGit/retail_api/internal/repository"
)

// ProductLister reads company products.
type ProductLister interface {
	ListByCompany(ctx context.Context, companyID string, filter *repository.ProductFilter) (*repository.ProductPage, error)
}

// CategoryLister reads company categories.
type CategoryLister interface {
	ListByCompany(ctx context.Context, companyID, search string) ([]models.Category, error)
}

// CatalogService serves read-only product and category listings.
type CatalogService struct {
	products   ProductLister
	categories CategoryLister
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(products ProductLister, categories CategoryLister) *CatalogService {
	return &CatalogService{products: products, categories: categories}
}

// ListProducts returns a page of the company's products.
func (s *CatalogService) ListProducts(ctx context.Context, companyID string, filter *repository.ProductFilter) (*repository.ProductPage, error) {
	page, err := s.products.ListByCompany(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	if page.Products == nil {
		page.Products = []models.Product{}
	}
	return page, nil
}

// ListCategories returns the company's categories with product counts.
func (s *CatalogService) ListCategories(ctx context.Context, companyID, search string) ([]models.Category, error) {
	return s.categories.ListByCompany(ctx, companyID, search)
}
