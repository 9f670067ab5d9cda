package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type DocumentType string

const (
	DocumentRUC      DocumentType = "RUC"
	DocumentCedula   DocumentType = "CI"
	DocumentPassport DocumentType = "PASAPORTE"
)

type Customer struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"not null" json:"name"`
	RazonSocial  *string      `gorm:"type:text" json:"razon_social,omitempty"`
	DocumentType DocumentType `gorm:"type:text;not null;default:'RUC'" json:"document_type"`
	TaxID        *string      `gorm:"index" json:"tax_id,omitempty"`

	Email   *string `gorm:"type:text" json:"email,omitempty"`
	Phone   *string `gorm:"type:text" json:"phone,omitempty"`
	Address *string `gorm:"type:text" json:"address,omitempty"`
	Ciudad  *string `gorm:"type:text" json:"ciudad,omitempty"`

	// Tourism regime grants an IVA exemption to qualifying foreign
	// buyers. The flag alone is not enough: eligibility also requires
	// a stored certificate and an unexpired validity date.
	TourismRegime       bool       `gorm:"not null;default:false" json:"tourism_regime"`
	TourismRegimePDF    *string    `gorm:"type:text" json:"tourism_regime_pdf,omitempty"`
	TourismRegimeExpiry *time.Time `json:"tourism_regime_expiry,omitempty"`

	CreditLimit decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"credit_limit"`
	Notes       *string         `gorm:"type:text" json:"notes,omitempty"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`

	CreatedByID snowflake.ID `gorm:"index;not null" json:"created_by_id"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

// TourismEligible reports whether the customer qualifies for the
// tourism IVA exemption on the given day. The flag, the certificate
// and an unexpired validity date must all hold; expiry is compared at
// day granularity in UTC, so a certificate stays valid through its
// expiry date.
func (c Customer) TourismEligible(today time.Time) bool {
	if !c.TourismRegime {
		return false
	}
	if c.TourismRegimePDF == nil || *c.TourismRegimePDF == "" {
		return false
	}
	if c.TourismRegimeExpiry == nil {
		return false
	}
	return !truncateToDay(*c.TourismRegimeExpiry).Before(truncateToDay(today))
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
