package importer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/GTDGit/retail_api/internal/models"
)

// ProductDraft is a validated, not yet persisted product built from one row.
type ProductDraft struct {
	CompanyID          string
	Name               string
	CategoryName       string
	CategoryID         int
	UnitPrice          decimal.Decimal
	Unit               string
	Barcode            *string
	Description        *string
	PurchasePrice      decimal.NullDecimal
	HalfWholesalePrice decimal.NullDecimal
	WholesalePrice     decimal.NullDecimal
	StockMin           int
	Quantity           int
	IsActive           bool
	ExpirationDate     *time.Time
}

// Product converts the draft into the persisted model. CategoryID must be resolved.
func (d *ProductDraft) Product() *models.Product {
	return &models.Product{
		CompanyID:          d.CompanyID,
		CategoryID:         d.CategoryID,
		Name:               d.Name,
		Barcode:            d.Barcode,
		Description:        d.Description,
		UnitPrice:          d.UnitPrice,
		Unit:               d.Unit,
		PurchasePrice:      d.PurchasePrice,
		HalfWholesalePrice: d.HalfWholesalePrice,
		WholesalePrice:     d.WholesalePrice,
		StockMin:           d.StockMin,
		Quantity:           d.Quantity,
		IsActive:           d.IsActive,
		ExpirationDate:     d.ExpirationDate,
	}
}

// dateLayouts are tried in order for textual expiration dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006/01/02",
}

// Column bounds of the products and categories tables.
const (
	MaxNameLength     = 255
	MaxCategoryLength = 255
	MaxBarcodeLength  = 64
	MaxUnitLength     = 32
	priceScale        = 2
)

var (
	// maxPrice is the exclusive upper bound of a NUMERIC(14,2) column.
	maxPrice = decimal.New(1, 12)
	maxCount = decimal.NewFromInt(math.MaxInt32)
)

// Normalize turns a raw row into a draft for companyID. It returns a
// *ValidationError when a required field is missing or unparseable, or when
// a value does not fit its column.
func Normalize(row Row, companyID string) (*ProductDraft, error) {
	name, err := requiredText(row, ColName, MaxNameLength)
	if err != nil {
		return nil, err
	}
	category, err := requiredText(row, ColCategory, MaxCategoryLength)
	if err != nil {
		return nil, err
	}
	price, ok := decimalValue(row[ColUnitPrice])
	if !ok {
		return nil, &ValidationError{Field: ColUnitPrice, Reason: ReasonMissingRequiredField}
	}
	price = price.Round(priceScale)
	if !price.IsPositive() {
		return nil, &ValidationError{Field: ColUnitPrice, Reason: ReasonInvalidUnitPrice}
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return nil, &ValidationError{Field: ColUnitPrice, Reason: ReasonValueOutOfRange}
	}
	unit, err := requiredText(row, ColUnit, MaxUnitLength)
	if err != nil {
		return nil, err
	}

	d := &ProductDraft{
		CompanyID:    companyID,
		Name:         name,
		CategoryName: category,
		UnitPrice:    price,
		Unit:         unit,
		IsActive:     activeValue(row[ColActive]),
	}
	if v, ok := textValue(row[ColBarcode]); ok {
		if utf8.RuneCountInString(v) > MaxBarcodeLength {
			return nil, &ValidationError{Field: ColBarcode, Reason: ReasonValueTooLong}
		}
		d.Barcode = &v
	}
	if v, ok := textValue(row[ColDescription]); ok {
		d.Description = &v
	}
	if d.PurchasePrice, err = optionalPrice(row, ColPurchasePrice); err != nil {
		return nil, err
	}
	if d.HalfWholesalePrice, err = optionalPrice(row, ColHalfWholesalePrice); err != nil {
		return nil, err
	}
	if d.WholesalePrice, err = optionalPrice(row, ColWholesalePrice); err != nil {
		return nil, err
	}
	if d.StockMin, err = optionalCount(row, ColStockMin); err != nil {
		return nil, err
	}
	if d.Quantity, err = optionalCount(row, ColQuantity); err != nil {
		return nil, err
	}
	d.ExpirationDate = dateValue(row[ColExpirationDate])
	return d, nil
}

func requiredText(row Row, field string, maxLen int) (string, error) {
	v, ok := textValue(row[field])
	if !ok {
		return "", &ValidationError{Field: field, Reason: ReasonMissingRequiredField}
	}
	if utf8.RuneCountInString(v) > maxLen {
		return "", &ValidationError{Field: field, Reason: ReasonValueTooLong}
	}
	return v, nil
}

// textValue renders a cell as trimmed text; ok is false for absent or blank values.
func textValue(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(t), 'f', -1, 32)
	case time.Time:
		s = t.Format("2006-01-02")
	default:
		s = fmt.Sprint(t)
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func decimalValue(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(t), true
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case int32:
		return decimal.NewFromInt32(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case string:
		return parseDecimalText(t)
	}
	return decimal.Zero, false
}

// parseDecimalText accepts "1000", "1 000", "12.5" and "12,5".
func parseDecimalText(s string) (decimal.Decimal, bool) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, false
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// optionalPrice is absent for unparseable or negative values and is rounded
// to the column scale otherwise.
func optionalPrice(row Row, field string) (decimal.NullDecimal, error) {
	d, ok := decimalValue(row[field])
	if !ok || d.IsNegative() {
		return decimal.NullDecimal{}, nil
	}
	d = d.Round(priceScale)
	if d.GreaterThanOrEqual(maxPrice) {
		return decimal.NullDecimal{}, &ValidationError{Field: field, Reason: ReasonValueOutOfRange}
	}
	return decimal.NewNullDecimal(d), nil
}

// optionalCount defaults to 0 for unparseable, fractional or negative values.
// Counts beyond the INTEGER column are rejected.
func optionalCount(row Row, field string) (int, error) {
	d, ok := decimalValue(row[field])
	if !ok || !d.IsInteger() || d.IsNegative() {
		return 0, nil
	}
	if d.GreaterThan(maxCount) {
		return 0, &ValidationError{Field: field, Reason: ReasonValueOutOfRange}
	}
	return int(d.IntPart()), nil
}

// activeValue is false only for a literal false or the exact string "false".
func activeValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "false"
	}
	return true
}

// dateValue parses an expiration date. Numbers are spreadsheet date serials.
func dateValue(v any) *time.Time {
	var d time.Time
	switch t := v.(type) {
	case time.Time:
		d = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		parsed := false
		for _, layout := range dateLayouts {
			if p, err := time.Parse(layout, s); err == nil {
				d, parsed = p, true
				break
			}
		}
		if !parsed {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil
			}
			return serialDate(f)
		}
	case float64:
		return serialDate(t)
	case int:
		return serialDate(float64(t))
	case int64:
		return serialDate(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil
		}
		return serialDate(f)
	default:
		return nil
	}
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return &day
}

func serialDate(f float64) *time.Time {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return nil
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &day
}
