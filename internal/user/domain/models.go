package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleSeller     Role = "seller"
	RoleViewer     Role = "viewer"
	RoleAccountant Role = "accountant"
)

// User is an operator of the system. Per-resource limits gate how much
// a non-admin user may create (customers all-time, documents per month).
type User struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Email          string       `gorm:"uniqueIndex;not null" json:"email"`
	Username       string       `gorm:"uniqueIndex;not null" json:"username"`
	FullName       string       `gorm:"not null" json:"full_name"`
	HashedPassword string       `gorm:"not null" json:"-"`
	IsActive       bool         `gorm:"not null;default:true" json:"is_active"`
	IsSuperuser    bool         `gorm:"not null;default:false" json:"is_superuser"`
	Role           Role         `gorm:"type:text;not null;default:'seller'" json:"role"`

	MaxCustomers int `gorm:"not null;default:10" json:"max_customers"`
	MaxQuotes    int `gorm:"not null;default:20" json:"max_quotes"`
	MaxOrders    int `gorm:"not null;default:15" json:"max_orders"`
	MaxInvoices  int `gorm:"not null;default:10" json:"max_invoices"`

	CanManageDeposits      bool `gorm:"not null;default:false" json:"can_manage_deposits"`
	CanManageTourismRegime bool `gorm:"not null;default:false" json:"can_manage_tourism_regime"`

	Department *string `gorm:"type:text" json:"department,omitempty"`
	Notes      *string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Unlimited reports whether the user bypasses every usage quota.
func (u User) Unlimited() bool {
	return u.IsSuperuser || u.Role == RoleAdmin
}
