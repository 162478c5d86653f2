package importer

import "encoding/json"

// RejectionKind tells why a row was not imported.
type RejectionKind string

const (
	RejectionInvalid   RejectionKind = "invalid"
	RejectionDuplicate RejectionKind = "duplicate"
)

// Rejection records a row that was not imported. Row is the original record.
type Rejection struct {
	Kind      RejectionKind `json:"kind"`
	Reason    string        `json:"reason"`
	Field     string        `json:"field,omitempty"`
	RowNumber int           `json:"rowNumber"`
	Row       Row           `json:"row"`
}

// ImportOutcome summarises one batch.
type ImportOutcome struct {
	Created       int         `json:"created"`
	Rejected      []Rejection `json:"rejected"`
	NewCategories []string    `json:"newCategories"`
}

// Duplicates returns the original rows of every rejection in input order.
func (o *ImportOutcome) Duplicates() []Row {
	rows := make([]Row, len(o.Rejected))
	for i := range o.Rejected {
		rows[i] = o.Rejected[i].Row
	}
	return rows
}

// InvalidCount returns the number of rows rejected by validation.
func (o *ImportOutcome) InvalidCount() int {
	return o.count(RejectionInvalid)
}

// DuplicateCount returns the number of rows rejected as collisions.
func (o *ImportOutcome) DuplicateCount() int {
	return o.count(RejectionDuplicate)
}

func (o *ImportOutcome) count(kind RejectionKind) int {
	n := 0
	for i := range o.Rejected {
		if o.Rejected[i].Kind == kind {
			n++
		}
	}
	return n
}

// MarshalJSON adds the derived duplicates list and counts.
func (o *ImportOutcome) MarshalJSON() ([]byte, error) {
	type alias ImportOutcome
	return json.Marshal(struct {
		*alias
		Duplicates     []Row `json:"duplicates"`
		InvalidCount   int   `json:"invalidCount"`
		DuplicateCount int   `json:"duplicateCount"`
	}{
		alias:          (*alias)(o),
		Duplicates:     o.Duplicates(),
		InvalidCount:   o.InvalidCount(),
		DuplicateCount: o.DuplicateCount(),
	})
}
