package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	// Get returns the active settings; ErrConfigurationMissing when
	// none exists.
	Get(ctx context.Context) (*CompanySettings, error)
	Create(ctx context.Context, req CreateRequest) (*CompanySettings, error)
	Update(ctx context.Context, req UpdateRequest) (*CompanySettings, error)
	// MarkComplete verifies the required fiscal fields are present and
	// flags the configuration as ready for document issuance.
	MarkComplete(ctx context.Context) (*CompanySettings, error)
}

type CreateRequest struct {
	RazonSocial     string     `json:"razon_social"`
	NombreComercial *string    `json:"nombre_comercial,omitempty"`
	RUC             string     `json:"ruc"`
	Timbrado        string     `json:"timbrado"`
	TimbradoExpiry  *time.Time `json:"timbrado_expiry,omitempty"`
	PuntoExpedicion string     `json:"punto_expedicion"`
	Direccion       string     `json:"direccion"`
	Ciudad          string     `json:"ciudad"`
	Telefono        *string    `json:"telefono,omitempty"`
	Email           *string    `json:"email,omitempty"`
	DefaultCurrency string     `json:"default_currency"`

	IVA10Rate *decimal.Decimal `json:"iva_10_rate,omitempty"`
	IVA5Rate  *decimal.Decimal `json:"iva_5_rate,omitempty"`

	InvoiceNumberStart int64 `json:"invoice_number_start"`
	QuoteNumberStart   int64 `json:"quote_number_start"`
}

type UpdateRequest struct {
	RazonSocial     *string    `json:"razon_social,omitempty"`
	NombreComercial *string    `json:"nombre_comercial,omitempty"`
	RUC             *string    `json:"ruc,omitempty"`
	Timbrado        *string    `json:"timbrado,omitempty"`
	TimbradoExpiry  *time.Time `json:"timbrado_expiry,omitempty"`
	PuntoExpedicion *string    `json:"punto_expedicion,omitempty"`
	Direccion       *string    `json:"direccion,omitempty"`
	Ciudad          *string    `json:"ciudad,omitempty"`
	Telefono        *string    `json:"telefono,omitempty"`
	Email           *string    `json:"email,omitempty"`
	DefaultCurrency *string    `json:"default_currency,omitempty"`

	IVA10Rate *decimal.Decimal `json:"iva_10_rate,omitempty"`
	IVA5Rate  *decimal.Decimal `json:"iva_5_rate,omitempty"`
}
