// Package domain contains persistence models for the pre-sale flow:
// quotes and the sales orders they convert into.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "PENDING"
	QuoteStatusAccepted  QuoteStatus = "ACCEPTED"
	QuoteStatusRejected  QuoteStatus = "REJECTED"
	QuoteStatusConverted QuoteStatus = "CONVERTED"
	QuoteStatusExpired   QuoteStatus = "EXPIRED"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusInvoiced  OrderStatus = "INVOICED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Quote is a non-fiscal offer. It carries the same IVA breakdown an
// invoice would, so the customer sees the final numbers up front, but
// it consumes no timbrado and has its own counter.
type Quote struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	QuoteNumber string       `gorm:"uniqueIndex;not null" json:"quote_number"`
	CustomerID  snowflake.ID `gorm:"index;not null" json:"customer_id"`

	Status   QuoteStatus `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	Currency string      `gorm:"type:text;not null;default:'PYG'" json:"currency"`

	SubtotalGravado10 decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"subtotal_gravado_10"`
	SubtotalGravado5  decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"subtotal_gravado_5"`
	SubtotalExento    decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"subtotal_exento"`
	IVA10             decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"iva_10"`
	IVA5              decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"iva_5"`
	TotalIVA          decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"total_iva"`
	Subtotal          decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"subtotal"`
	Total             decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"total"`

	ValidUntil *time.Time `json:"valid_until,omitempty"`
	Notes      *string    `gorm:"type:text" json:"notes,omitempty"`

	CreatedByID snowflake.ID `gorm:"index;not null" json:"created_by_id"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Lines []QuoteLine `gorm:"-" json:"lines,omitempty"`
}

// TableName sets the database table name.
func (Quote) TableName() string { return "quotes" }

type QuoteLine struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	QuoteID snowflake.ID `gorm:"index;not null" json:"quote_id"`

	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"line_total"`
	IVACategory string          `gorm:"type:text;not null;default:'10'" json:"iva_category"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (QuoteLine) TableName() string { return "quote_lines" }

// SalesOrder is a confirmed quote awaiting invoicing.
type SalesOrder struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrderNumber string        `gorm:"uniqueIndex;not null" json:"order_number"`
	QuoteID     *snowflake.ID `gorm:"index" json:"quote_id,omitempty"`
	CustomerID  snowflake.ID  `gorm:"index;not null" json:"customer_id"`

	Status   OrderStatus `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	Currency string      `gorm:"type:text;not null;default:'PYG'" json:"currency"`

	Subtotal decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"subtotal"`
	TotalIVA decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"total_iva"`
	Total    decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"total"`

	Notes *string `gorm:"type:text" json:"notes,omitempty"`

	CreatedByID snowflake.ID `gorm:"index;not null" json:"created_by_id"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Lines []SalesOrderLine `gorm:"-" json:"lines,omitempty"`
}

// TableName sets the database table name.
func (SalesOrder) TableName() string { return "sales_orders" }

type SalesOrderLine struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	SalesOrderID snowflake.ID `gorm:"index;not null" json:"sales_order_id"`

	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"line_total"`
	IVACategory string          `gorm:"type:text;not null;default:'10'" json:"iva_category"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (SalesOrderLine) TableName() string { return "sales_order_lines" }
