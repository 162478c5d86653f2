package importer

import (
	"context"
	"fmt"
)

// DuplicateDetector decides whether a draft collides with a product of the
// company, either already persisted or accepted earlier in the same batch.
// It is scoped to one batch and one company.
type DuplicateDetector struct {
	companyID string
	names     map[string]struct{}
	barcodes  map[string]struct{}
}

// NewDuplicateDetector loads, in one query, the persisted identities of the
// company that share a name or barcode with any of the drafts.
func NewDuplicateDetector(ctx context.Context, lookup ProductLookup, companyID string, drafts []*ProductDraft) (*DuplicateDetector, error) {
	d := &DuplicateDetector{
		companyID: companyID,
		names:     make(map[string]struct{}, len(drafts)),
		barcodes:  make(map[string]struct{}),
	}
	if len(drafts) == 0 {
		return d, nil
	}

	names := make([]string, 0, len(drafts))
	barcodes := make([]string, 0, len(drafts))
	for _, draft := range drafts {
		names = append(names, draft.Name)
		if draft.Barcode != nil {
			barcodes = append(barcodes, *draft.Barcode)
		}
	}

	existing, err := lookup.FindIdentities(ctx, companyID, names, barcodes)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing products: %w", err)
	}
	for _, p := range existing {
		d.names[p.Name] = struct{}{}
		if p.Barcode != nil && *p.Barcode != "" {
			d.barcodes[*p.Barcode] = struct{}{}
		}
	}
	return d, nil
}

// IsDuplicate reports whether the draft collides by name or, when it has one,
// by barcode. The returned reason tells which key matched.
func (d *DuplicateDetector) IsDuplicate(draft *ProductDraft) (bool, string) {
	if _, ok := d.names[draft.Name]; ok {
		return true, ReasonDuplicateName
	}
	if draft.Barcode != nil {
		if _, ok := d.barcodes[*draft.Barcode]; ok {
			return true, ReasonDuplicateBarcode
		}
	}
	return false, ""
}

// Remember marks an accepted draft so later drafts of the batch collide with it.
func (d *DuplicateDetector) Remember(draft *ProductDraft) {
	d.names[draft.Name] = struct{}{}
	if draft.Barcode != nil {
		d.barcodes[*draft.Barcode] = struct{}{}
	}
}
