package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product of a company's inventory.
// Fields are tagged for both DB scanning and JSON serialization.
type Product struct {
	ID                 int                 `db:"id" json:"id"`
	CompanyID          string              `db:"company_id" json:"companyId"`
	CategoryID         int                 `db:"category_id" json:"categoryId"`
	Name               string              `db:"name" json:"name"`
	Barcode            *string             `db:"barcode" json:"barcode,omitempty"`
	Description        *string             `db:"description" json:"description,omitempty"`
	UnitPrice          decimal.Decimal     `db:"unit_price" json:"unitPrice"`
	Unit               string              `db:"unit" json:"unit"`
	PurchasePrice      decimal.NullDecimal `db:"purchase_price" json:"purchasePrice"`
	HalfWholesalePrice decimal.NullDecimal `db:"half_wholesale_price" json:"halfWholesalePrice"`
	WholesalePrice     decimal.NullDecimal `db:"wholesale_price" json:"wholesalePrice"`
	StockMin           int                 `db:"stock_min" json:"stockMin"`
	Quantity           int                 `db:"quantity" json:"quantity"`
	IsActive           bool                `db:"is_active" json:"isActive"`
	ExpirationDate     *time.Time          `db:"expiration_date" json:"expirationDate,omitempty"`
	CreatedAt          time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time           `db:"updated_at" json:"updatedAt"`

	// Joined from categories when listing.
	CategoryName *string `db:"category_name" json:"categoryName,omitempty"`
}

// ProductIdentity holds the columns that make a product unique within a company.
type ProductIdentity struct {
	Name    string  `db:"name"`
	Barcode *string `db:"barcode"`
}
