package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/retail_api/internal/middleware"
	"github.com/GTDGit/retail_api/internal/models"
	"github.com/GTDGit/retail_api/internal/repository"
	"github.com/GTDGit/retail_api/internal/utils"
)

// Catalog serves company-scoped listings.
type Catalog interface {
	ListProducts(ctx context.Context, companyID string, filter *repository.ProductFilter) (*repository.ProductPage, error)
	ListCategories(ctx context.Context, companyID, search string) ([]models.Category, error)
}

// CatalogHandler handles read-only product and category endpoints.
type CatalogHandler struct {
	catalog Catalog
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalog Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListProducts handles GET /v1/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filter := &repository.ProductFilter{
		Search: c.Query("search"),
		Page:   1,
		Limit:  50,
	}
	if v := c.Query("categoryId"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.CategoryID = id
		}
	}
	if page := c.Query("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil {
			filter.Page = p
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			filter.Limit = l
		}
	}
	if isActive := c.Query("isActive"); isActive != "" {
		active := isActive == "true"
		filter.IsActive = &active
	}

	result, err := h.catalog.ListProducts(c.Request.Context(), c.GetString(middleware.CtxCompanyID), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve products")
		return
	}

	utils.SuccessWithPagination(c, 200, "Products retrieved", result.Products, result.Page, result.Limit, result.TotalItems)
}

// ListCategories handles GET /v1/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context(), c.GetString(middleware.CtxCompanyID), c.Query("search"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve categories")
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}

	utils.Success(c, 200, "Categories retrieved", categories)
}
