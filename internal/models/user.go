package models

import "time"

// User roles.
const (
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// User represents a back-office user. Every user belongs to one company.
type User struct {
	ID           int        `db:"id" json:"id"`
	CompanyID    string     `db:"company_id" json:"companyId"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}
