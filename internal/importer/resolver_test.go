package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/retail_api/internal/models"
)

func TestCategoryResolver_CachesWithinBatch(t *testing.T) {
	store := &memoryCategories{}
	r := NewCategoryResolver(store, "T1")

	first, err := r.Resolve(context.Background(), "Boissons")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "Boissons")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.gets)
	assert.Equal(t, 1, store.creates)
	assert.Equal(t, []string{"Boissons"}, r.NewCategories())
}

func TestCategoryResolver_ExactMatchOnly(t *testing.T) {
	store := &memoryCategories{}
	store.add("T1", "Boissons")
	r := NewCategoryResolver(store, "T1")

	_, err := r.Resolve(context.Background(), "boissons")
	require.NoError(t, err)

	assert.Equal(t, []string{"boissons"}, r.NewCategories())
	assert.Len(t, store.categories, 2)
}

// racingCategories simulates another batch creating the category between
// the existence check and the insert.
type racingCategories struct {
	memoryCategories
}

func (r *racingCategories) GetByName(ctx context.Context, companyID, name string) (*models.Category, error) {
	c, err := r.memoryCategories.GetByName(ctx, companyID, name)
	if err == nil {
		return c, nil
	}
	r.add(companyID, name)
	return nil, err
}

func TestCategoryResolver_LostCreateRaceIsNotNew(t *testing.T) {
	store := &racingCategories{}
	r := NewCategoryResolver(store, "T1")

	id, err := r.Resolve(context.Background(), "Boissons")
	require.NoError(t, err)

	assert.Equal(t, store.categories[0].ID, id)
	assert.Empty(t, r.NewCategories())
	assert.Equal(t, 1, store.count("T1", "Boissons"))
}

func TestCategoryResolver_NewCategoriesSorted(t *testing.T) {
	r := NewCategoryResolver(&memoryCategories{}, "T1")
	for _, name := range []string{"Épicerie", "Boissons", "Céréales", "Boissons"} {
		_, err := r.Resolve(context.Background(), name)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"Boissons", "Céréales", "Épicerie"}, r.NewCategories())
}

func TestDuplicateDetector_SkipsLookupWithoutDrafts(t *testing.T) {
	products := &memoryProducts{}
	d, err := NewDuplicateDetector(context.Background(), products, "T1", nil)
	require.NoError(t, err)

	dup, _ := d.IsDuplicate(&ProductDraft{Name: "Riz"})
	assert.False(t, dup)
	assert.Zero(t, products.lookups)
}

func TestDuplicateDetector_NameAndBarcodeAreIndependent(t *testing.T) {
	products := &memoryProducts{products: []*models.Product{
		{ID: 1, CompanyID: "T1", Name: "Riz", Barcode: strPtr("B1")},
	}}
	drafts := []*ProductDraft{
		{Name: "Riz"},
		{Name: "Autre", Barcode: strPtr("B1")},
		{Name: "Nouveau", Barcode: strPtr("B2")},
	}
	d, err := NewDuplicateDetector(context.Background(), products, "T1", drafts)
	require.NoError(t, err)

	dup, reason := d.IsDuplicate(drafts[0])
	assert.True(t, dup)
	assert.Equal(t, ReasonDuplicateName, reason)

	dup, reason = d.IsDuplicate(drafts[1])
	assert.True(t, dup)
	assert.Equal(t, ReasonDuplicateBarcode, reason)

	dup, _ = d.IsDuplicate(drafts[2])
	assert.False(t, dup)

	d.Remember(drafts[2])
	dup, reason = d.IsDuplicate(&ProductDraft{Name: "Encore", Barcode: strPtr("B2")})
	assert.True(t, dup)
	assert.Equal(t, ReasonDuplicateBarcode, reason)
	assert.Equal(t, 1, products.lookups)
}
