package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	userdomain "github.com/vendepy/vendepy/internal/user/domain"
	"github.com/vendepy/vendepy/pkg/db/pagination"
)

var (
	ErrNotFound         = errors.New("invoice_not_found")
	ErrInvalidID        = errors.New("invalid_id")
	ErrNoLines          = errors.New("invoice_without_lines")
	ErrInvalidLine      = errors.New("invalid_invoice_line")
	ErrInvalidCondicion = errors.New("invalid_condicion_venta")
	ErrCustomerInactive = errors.New("customer_inactive")
	ErrNotPending       = errors.New("invoice_not_pending")
	ErrOverpayment      = errors.New("payment_exceeds_balance")
)

// OverpaymentError reports a payment larger than the open balance.
type OverpaymentError struct {
	BalanceDue decimal.Decimal
	Requested  decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment exceeds balance: due %s, paid %s",
		e.BalanceDue.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *OverpaymentError) Unwrap() error { return ErrOverpayment }

type LineInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IVACategory string          `json:"iva_category"`
}

type CreateInvoiceRequest struct {
	Actor userdomain.User

	CustomerID     string
	CondicionVenta CondicionVenta
	Currency       string
	DueDate        *time.Time
	Notes          *string
	Lines          []LineInput
}

type RegisterPaymentRequest struct {
	Actor userdomain.User

	InvoiceID string
	Amount    decimal.Decimal
	Method    *string
	Reference *string
	Notes     *string
}

type ListInvoiceRequest struct {
	PageToken  string
	PageSize   int
	CustomerID string
	Status     InvoiceStatus
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	// Create issues a legal invoice: numbering, IVA breakdown and the
	// fiscal snapshot all happen inside one transaction.
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	RegisterPayment(context.Context, RegisterPaymentRequest) (Invoice, error)
	// Cancel voids a pending invoice that has no payments against it.
	Cancel(ctx context.Context, actor userdomain.User, id string) (Invoice, error)
}
