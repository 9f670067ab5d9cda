package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	userdomain "github.com/vendepy/vendepy/internal/user/domain"
	"github.com/vendepy/vendepy/pkg/db/pagination"
)

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
	ErrDuplicateTaxID     = errors.New("duplicate_tax_id")
	ErrForbidden          = errors.New("forbidden")
	ErrCertificateMissing = errors.New("tourism_certificate_missing")
)

type CreateCustomerRequest struct {
	Actor userdomain.User

	Name         string
	RazonSocial  *string
	DocumentType DocumentType
	TaxID        *string
	Email        *string
	Phone        *string
	Address      *string
	Ciudad       *string
	CreditLimit  *decimal.Decimal
	Notes        *string
}

type UpdateCustomerRequest struct {
	ID string

	Name        *string
	RazonSocial *string
	Email       *string
	Phone       *string
	Address     *string
	Ciudad      *string
	CreditLimit *decimal.Decimal
	Notes       *string
	IsActive    *bool
}

// SetTourismRegimeRequest enables or disables the tourism exemption
// for a customer. Enabling requires the certificate path and expiry.
type SetTourismRegimeRequest struct {
	Actor userdomain.User

	ID      string
	Enabled bool
	PDFPath *string
	Expiry  *time.Time
}

type ListCustomerRequest struct {
	PageToken     string
	PageSize      int
	Name          string
	TaxID         string
	TourismRegime *bool
	ActiveOnly    bool
}

type ListCustomerFilter struct {
	Name          string
	TaxID         string
	TourismRegime *bool
	ActiveOnly    bool
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) (Customer, error)
	SetTourismRegime(context.Context, SetTourismRegimeRequest) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
}
