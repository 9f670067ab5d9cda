package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CompanySettings is the single active fiscal configuration of the
// tenant. The invoice and quote counters on this row are the source of
// truth for legal document numbering: exactly one row has is_active set
// at any time, and every successful issuance increments one counter by
// exactly 1.
type CompanySettings struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`

	RazonSocial      string  `gorm:"type:text;not null" json:"razon_social"`
	NombreComercial  *string `gorm:"type:text" json:"nombre_comercial,omitempty"`
	RUC              string  `gorm:"type:text;not null;uniqueIndex" json:"ruc"`
	RUCCheckDigit    string  `gorm:"column:ruc_dv;type:text" json:"ruc_dv"`
	Timbrado         string  `gorm:"type:text;not null" json:"timbrado"`
	TimbradoExpiry   *time.Time `gorm:"column:timbrado_expiry" json:"timbrado_expiry,omitempty"`
	PuntoExpedicion  string  `gorm:"type:text;not null;default:'001'" json:"punto_expedicion"`

	Direccion string `gorm:"type:text;not null" json:"direccion"`
	Ciudad    string `gorm:"type:text;not null;default:'Asunción'" json:"ciudad"`
	Telefono  *string `gorm:"type:text" json:"telefono,omitempty"`
	Email     *string `gorm:"type:text" json:"email,omitempty"`

	DefaultCurrency string          `gorm:"type:text;not null;default:'PYG'" json:"default_currency"`
	IVA10Rate       decimal.Decimal `gorm:"column:iva_10_rate;type:numeric(5,2);not null;default:10" json:"iva_10_rate"`
	IVA5Rate        decimal.Decimal `gorm:"column:iva_5_rate;type:numeric(5,2);not null;default:5" json:"iva_5_rate"`

	InvoiceNumberStart   int64 `gorm:"not null;default:1" json:"invoice_number_start"`
	InvoiceNumberCurrent int64 `gorm:"not null;default:1" json:"invoice_number_current"`
	QuoteNumberStart     int64 `gorm:"not null;default:1" json:"quote_number_start"`
	QuoteNumberCurrent   int64 `gorm:"not null;default:1" json:"quote_number_current"`

	RegimenTributario string `gorm:"type:text;not null;default:'GENERAL'" json:"regimen_tributario"`
	ContribuyenteIVA  bool   `gorm:"not null;default:true" json:"contribuyente_iva"`

	IsActive       bool `gorm:"column:is_active;not null;default:true" json:"is_active"`
	ConfigComplete bool `gorm:"column:config_complete;not null;default:false" json:"config_complete"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CompanySettings) TableName() string { return "company_settings" }
