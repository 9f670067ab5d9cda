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
	ErrQuoteNotFound    = errors.New("quote_not_found")
	ErrOrderNotFound    = errors.New("order_not_found")
	ErrInvalidID        = errors.New("invalid_id")
	ErrNoLines          = errors.New("quote_without_lines")
	ErrInvalidLine      = errors.New("invalid_quote_line")
	ErrQuoteNotPending  = errors.New("quote_not_pending")
	ErrQuoteExpired     = errors.New("quote_expired")
	ErrOrderNotPending  = errors.New("order_not_pending")
	ErrCustomerInactive = errors.New("customer_inactive")
)

type LineInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IVACategory string          `json:"iva_category"`
}

type CreateQuoteRequest struct {
	Actor userdomain.User

	CustomerID string
	Currency   string
	ValidUntil *time.Time
	Notes      *string
	Lines      []LineInput
}

type ListQuoteRequest struct {
	PageToken  string
	PageSize   int
	CustomerID string
	Status     QuoteStatus
}

type ListQuoteResponse struct {
	pagination.PageInfo
	Quotes []Quote `json:"quotes"`
}

type Service interface {
	CreateQuote(context.Context, CreateQuoteRequest) (Quote, error)
	GetQuote(ctx context.Context, id string) (Quote, error)
	ListQuotes(context.Context, ListQuoteRequest) (ListQuoteResponse, error)
	// UpdateQuoteStatus moves a pending quote to ACCEPTED or REJECTED.
	UpdateQuoteStatus(ctx context.Context, actor userdomain.User, id string, status QuoteStatus) (Quote, error)

	// ConvertToOrder turns a pending or accepted, unexpired quote into
	// a sales order and marks the quote CONVERTED.
	ConvertToOrder(ctx context.Context, actor userdomain.User, quoteID string) (SalesOrder, error)

	// ExpireQuotes marks open quotes whose valid_until has passed as
	// EXPIRED and returns how many changed.
	ExpireQuotes(ctx context.Context) (int64, error)
	GetOrder(ctx context.Context, id string) (SalesOrder, error)
	CancelOrder(ctx context.Context, actor userdomain.User, id string) (SalesOrder, error)
}
