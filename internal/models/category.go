package models

import "time"

// Category groups products of a company. Names are unique per company.
type Category struct {
	ID        int       `db:"id" json:"id"`
	CompanyID string    `db:"company_id" json:"companyId"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	ProductCount int `db:"product_count" json:"productCount"`
}
