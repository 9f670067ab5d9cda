package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type DepositType string

const (
	TypeAnticipo DepositType = "ANTICIPO"
	TypeSena     DepositType = "SEÑA"
	TypeGarantia DepositType = "GARANTIA"
	TypeCaucion  DepositType = "CAUCION"
	TypeParcial  DepositType = "PARCIAL"
)

type DepositStatus string

const (
	StatusActivo   DepositStatus = "ACTIVO"
	StatusAplicado DepositStatus = "APLICADO"
	StatusDevuelto DepositStatus = "DEVUELTO"
	StatusVencido  DepositStatus = "VENCIDO"
)

// Deposit is customer money held before invoicing. The three amounts
// satisfy amount = applied + available + refunded at all times, with
// refunded derived rather than stored.
type Deposit struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	DepositNumber string       `gorm:"uniqueIndex;not null" json:"deposit_number"`
	CustomerID    snowflake.ID `gorm:"index;not null" json:"customer_id"`

	Type     DepositType   `gorm:"type:text;not null;default:'ANTICIPO'" json:"type"`
	Status   DepositStatus `gorm:"type:text;not null;default:'ACTIVO'" json:"status"`
	Currency string        `gorm:"type:text;not null;default:'PYG'" json:"currency"`

	Amount          decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	AppliedAmount   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"applied_amount"`
	AvailableAmount decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"available_amount"`

	ReceivedDate  time.Time  `gorm:"not null" json:"received_date"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	PaymentMethod *string    `gorm:"type:text" json:"payment_method,omitempty"`
	Reference     *string    `gorm:"type:text" json:"reference,omitempty"`
	Notes         *string    `gorm:"type:text" json:"notes,omitempty"`

	CreatedByID snowflake.ID `gorm:"index;not null" json:"created_by_id"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Deposit) TableName() string { return "deposits" }

// RefundedAmount is whatever left the deposit without being applied.
func (d Deposit) RefundedAmount() decimal.Decimal {
	return d.Amount.Sub(d.AppliedAmount).Sub(d.AvailableAmount)
}

// DepositApplication records one draw from a deposit against an invoice.
type DepositApplication struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	DepositID snowflake.ID `gorm:"index;not null" json:"deposit_id"`
	InvoiceID snowflake.ID `gorm:"index;not null" json:"invoice_id"`

	Amount decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	Notes  *string         `gorm:"type:text" json:"notes,omitempty"`

	AppliedByID snowflake.ID `gorm:"not null" json:"applied_by_id"`
	AppliedAt   time.Time    `gorm:"not null" json:"applied_at"`
}

func (DepositApplication) TableName() string { return "deposit_applications" }

// DepositRefund records money returned to the customer from a deposit.
type DepositRefund struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	DepositID snowflake.ID `gorm:"index;not null" json:"deposit_id"`

	Amount decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	Reason *string         `gorm:"type:text" json:"reason,omitempty"`
	Method *string         `gorm:"type:text" json:"method,omitempty"`

	RefundedByID snowflake.ID `gorm:"not null" json:"refunded_by_id"`
	RefundedAt   time.Time    `gorm:"not null" json:"refunded_at"`
}

func (DepositRefund) TableName() string { return "deposit_refunds" }

// CustomerDepositSummary is the per-customer, per-currency aggregate
// kept in step with the deposit rows. It is always recomputed from the
// rows, never adjusted incrementally.
type CustomerDepositSummary struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"uniqueIndex:ux_deposit_summary_customer_currency,priority:1;not null" json:"customer_id"`
	Currency   string       `gorm:"type:text;uniqueIndex:ux_deposit_summary_customer_currency,priority:2;not null" json:"currency"`

	TotalAvailable decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"total_available"`
	TotalApplied   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"total_applied"`
	TotalRefunded  decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"total_refunded"`
	ActiveCount    int             `gorm:"not null;default:0" json:"active_count"`

	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CustomerDepositSummary) TableName() string { return "customer_deposit_summary" }
