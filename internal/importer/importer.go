// Package importer merges spreadsheet product rows into a company's inventory
// without creating duplicate products or orphaned categories.
package importer

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/retail_api/internal/models"
)

// ProductLookup finds persisted products of a company matching any of the
// given names or barcodes.
type ProductLookup interface {
	FindIdentities(ctx context.Context, companyID string, names, barcodes []string) ([]models.ProductIdentity, error)
}

// ProductWriter inserts products in bulk. It returns the names of the rows it
// actually inserted; rows rejected by a uniqueness constraint are skipped.
type ProductWriter interface {
	BulkCreate(ctx context.Context, products []*models.Product) ([]string, error)
}

// ProductStore is the product persistence used by the importer.
type ProductStore interface {
	ProductLookup
	ProductWriter
}

// CategoryStore looks up and creates categories.
type CategoryStore interface {
	// GetByName returns sql.ErrNoRows when the company has no such category.
	GetByName(ctx context.Context, companyID, name string) (*models.Category, error)
	// CreateIfAbsent inserts c unless (company, name) already exists. Either
	// way c.ID is set; created reports whether this call inserted the row.
	CreateIfAbsent(ctx context.Context, c *models.Category) (created bool, err error)
}

// Importer runs product import batches.
type Importer struct {
	products   ProductStore
	categories CategoryStore
}

// New constructs an Importer.
func New(products ProductStore, categories CategoryStore) *Importer {
	return &Importer{products: products, categories: categories}
}

// Option configures a single Import call.
type Option func(*importOptions)

type importOptions struct {
	lines []int
}

// WithLineNumbers makes rejections report lines[i] as the row number of
// rows[i] instead of its 1-based position. It is ignored unless lines has
// exactly one entry per row.
func WithLineNumbers(lines []int) Option {
	return func(o *importOptions) {
		o.lines = lines
	}
}

func (o *importOptions) rowNumber(index, total int) int {
	if len(o.lines) == total {
		return o.lines[index]
	}
	return index + 1
}

type pendingDraft struct {
	draft *ProductDraft
	index int
}

// Import processes rows in order for companyID and performs one bulk insert
// of the accepted drafts. Invalid and colliding rows are reported in the
// outcome; category and bulk write failures abort the batch.
func (im *Importer) Import(ctx context.Context, rows []Row, companyID string, opts ...Option) (*ImportOutcome, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}
	if strings.TrimSpace(companyID) == "" {
		return nil, ErrMissingCompany
	}
	start := time.Now()
	var o importOptions
	for _, opt := range opts {
		opt(&o)
	}
	rowNumber := func(index int) int { return o.rowNumber(index, len(rows)) }

	outcome := &ImportOutcome{
		Rejected:      make([]Rejection, 0),
		NewCategories: make([]string, 0),
	}

	valid := make([]pendingDraft, 0, len(rows))
	for i, row := range rows {
		draft, err := Normalize(row, companyID)
		if err != nil {
			rejection := Rejection{Kind: RejectionInvalid, Reason: ReasonMissingRequiredField, RowNumber: rowNumber(i), Row: row}
			var verr *ValidationError
			if errors.As(err, &verr) {
				rejection.Reason = verr.Reason
				rejection.Field = verr.Field
			}
			outcome.Rejected = append(outcome.Rejected, rejection)
			log.Debug().Str("company_id", companyID).Int("row", rejection.RowNumber).Str("reason", rejection.Reason).Str("field", rejection.Field).Msg("Import row rejected")
			continue
		}
		valid = append(valid, pendingDraft{draft: draft, index: i})
	}

	drafts := make([]*ProductDraft, len(valid))
	for i := range valid {
		drafts[i] = valid[i].draft
	}
	detector, err := NewDuplicateDetector(ctx, im.products, companyID, drafts)
	if err != nil {
		return nil, err
	}
	resolver := NewCategoryResolver(im.categories, companyID)

	accepted := make([]pendingDraft, 0, len(valid))
	for _, p := range valid {
		if dup, reason := detector.IsDuplicate(p.draft); dup {
			outcome.Rejected = append(outcome.Rejected, Rejection{
				Kind:      RejectionDuplicate,
				Reason:    reason,
				RowNumber: rowNumber(p.index),
				Row:       rows[p.index],
			})
			log.Debug().Str("company_id", companyID).Int("row", rowNumber(p.index)).Str("reason", reason).Str("name", p.draft.Name).Msg("Import row skipped as duplicate")
			continue
		}
		categoryID, err := resolver.Resolve(ctx, p.draft.CategoryName)
		if err != nil {
			return nil, err
		}
		p.draft.CategoryID = categoryID
		detector.Remember(p.draft)
		accepted = append(accepted, p)
	}

	if len(accepted) > 0 {
		products := make([]*models.Product, len(accepted))
		for i := range accepted {
			products[i] = accepted[i].draft.Product()
		}
		inserted, err := im.products.BulkCreate(ctx, products)
		if err != nil {
			return nil, &BulkWriteError{Count: len(products), Err: err}
		}

		insertedNames := make(map[string]struct{}, len(inserted))
		for _, name := range inserted {
			insertedNames[name] = struct{}{}
		}
		for _, p := range accepted {
			if _, ok := insertedNames[p.draft.Name]; ok {
				outcome.Created++
				continue
			}
			outcome.Rejected = append(outcome.Rejected, Rejection{
				Kind:      RejectionDuplicate,
				Reason:    ReasonDuplicateOnWrite,
				RowNumber: rowNumber(p.index),
				Row:       rows[p.index],
			})
			log.Warn().Str("company_id", companyID).Int("row", rowNumber(p.index)).Str("name", p.draft.Name).Msg("Product rejected by uniqueness constraint on write")
		}
	}
	sort.SliceStable(outcome.Rejected, func(i, j int) bool {
		return outcome.Rejected[i].RowNumber < outcome.Rejected[j].RowNumber
	})

	outcome.NewCategories = resolver.NewCategories()

	log.Info().
		Str("company_id", companyID).
		Int("rows", len(rows)).
		Int("created", outcome.Created).
		Int("invalid", outcome.InvalidCount()).
		Int("duplicates", outcome.DuplicateCount()).
		Strs("new_categories", outcome.NewCategories).
		Dur("latency", time.Since(start)).
		Msg("Product import completed")

	return outcome, nil
}
