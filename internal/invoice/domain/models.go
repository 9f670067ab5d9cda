// Package domain contains persistence models for fiscal invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusPending       InvoiceStatus = "PENDING"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

// CondicionVenta is the sale condition printed on the invoice.
type CondicionVenta string

const (
	CondicionContado CondicionVenta = "CONTADO"
	CondicionCredito CondicionVenta = "CREDITO"
)

// Invoice is a legal sales document. The fiscal identity of the issuer
// (RUC, timbrado, punto de expedición) is copied onto the row at
// creation: later settings changes must not rewrite issued documents.
type Invoice struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceNumber string       `gorm:"uniqueIndex;not null" json:"invoice_number"`
	CustomerID    snowflake.ID `gorm:"index;not null" json:"customer_id"`

	Status         InvoiceStatus  `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	CondicionVenta CondicionVenta `gorm:"type:text;not null;default:'CONTADO'" json:"condicion_venta"`
	Currency       string         `gorm:"type:text;not null;default:'PYG'" json:"currency"`

	EmitterRUC         string     `gorm:"not null" json:"emitter_ruc"`
	EmitterRazonSocial string     `gorm:"not null" json:"emitter_razon_social"`
	Timbrado           string     `gorm:"not null" json:"timbrado"`
	TimbradoExpiry     *time.Time `json:"timbrado_expiry,omitempty"`
	PuntoExpedicion    string     `gorm:"not null" json:"punto_expedicion"`

	SubtotalGravado10 decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"subtotal_gravado_10"`
	SubtotalGravado5  decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"subtotal_gravado_5"`
	SubtotalExento    decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"subtotal_exento"`
	IVA10             decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"iva_10"`
	IVA5              decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"iva_5"`
	TotalIVA          decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"total_iva"`
	Subtotal          decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"subtotal"`
	Total             decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"total"`

	TourismRegimeApplied bool            `gorm:"not null;default:false" json:"tourism_regime_applied"`
	TourismDiscount      decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"tourism_discount"`

	PaidAmount decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"paid_amount"`
	BalanceDue decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"balance_due"`

	IssueDate time.Time  `gorm:"not null" json:"issue_date"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Notes     *string    `gorm:"type:text" json:"notes,omitempty"`

	CreatedByID snowflake.ID `gorm:"index;not null" json:"created_by_id"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Lines []InvoiceLine `gorm:"-" json:"lines,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceLine is a line on an invoice. LineTotal is quantity times
// unit price, IVA excluded; the category drives the breakdown.
type InvoiceLine struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"index;not null" json:"invoice_id"`

	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"line_total"`
	IVACategory string          `gorm:"type:text;not null;default:'10'" json:"iva_category"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceLine) TableName() string { return "invoice_lines" }

// InvoicePayment is a direct payment against an invoice. Deposit
// applications are tracked separately in the deposit ledger.
type InvoicePayment struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"index;not null" json:"invoice_id"`

	Amount    decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	Method    *string         `gorm:"type:text" json:"method,omitempty"`
	Reference *string         `gorm:"type:text" json:"reference,omitempty"`
	Notes     *string         `gorm:"type:text" json:"notes,omitempty"`

	ReceivedByID snowflake.ID `gorm:"not null" json:"received_by_id"`
	PaidAt       time.Time    `gorm:"not null" json:"paid_at"`
}

// TableName sets the database table name.
func (InvoicePayment) TableName() string { return "invoice_payments" }
