package importer

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/retail_api/internal/models"
)

// CategoryResolver maps category names to ids for one company, creating
// missing categories. Its cache lives for a single batch.
type CategoryResolver struct {
	store     CategoryStore
	companyID string
	cache     map[string]int
	created   map[string]struct{}
}

// NewCategoryResolver constructs a resolver with an empty cache.
func NewCategoryResolver(store CategoryStore, companyID string) *CategoryResolver {
	return &CategoryResolver{
		store:     store,
		companyID: companyID,
		cache:     make(map[string]int),
		created:   make(map[string]struct{}),
	}
}

// Resolve returns the id of the category called name, creating it when the
// company has none. Names match exactly.
func (r *CategoryResolver) Resolve(ctx context.Context, name string) (int, error) {
	if id, ok := r.cache[name]; ok {
		return id, nil
	}

	existing, err := r.store.GetByName(ctx, r.companyID, name)
	switch {
	case err == nil:
		r.cache[name] = existing.ID
		return existing.ID, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, &CategoryProvisionError{Name: name, Err: err}
	}

	category := &models.Category{CompanyID: r.companyID, Name: name}
	created, err := r.store.CreateIfAbsent(ctx, category)
	if err != nil {
		return 0, &CategoryProvisionError{Name: name, Err: err}
	}
	if created {
		r.created[name] = struct{}{}
		log.Debug().Str("company_id", r.companyID).Str("category", name).Int("category_id", category.ID).Msg("Category created during import")
	}
	r.cache[name] = category.ID
	return category.ID, nil
}

// NewCategories returns the names created by this resolver, sorted.
func (r *CategoryResolver) NewCategories() []string {
	names := make([]string, 0, len(r.created))
	for name := range r.created {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
