package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	userdomain "github.com/vendepy/vendepy/internal/user/domain"
)

type CreateDepositRequest struct {
	Actor userdomain.User

	CustomerID    string
	Type          DepositType
	Currency      string
	Amount        decimal.Decimal
	ReceivedDate  *time.Time
	ExpiryDate    *time.Time
	PaymentMethod *string
	Reference     *string
	Notes         *string
}

type ApplyRequest struct {
	Actor userdomain.User

	DepositID string
	InvoiceID string
	Amount    decimal.Decimal
	Notes     *string
}

type RefundRequest struct {
	Actor userdomain.User

	DepositID string
	// Amount left zero refunds the full available balance.
	Amount decimal.Decimal
	Reason *string
	Method *string
}

type Service interface {
	Create(context.Context, CreateDepositRequest) (Deposit, error)
	GetByID(ctx context.Context, id string) (Deposit, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Deposit, error)

	// ApplyToInvoice draws from an active deposit to pay down an
	// invoice. Deposit, application row, invoice balance and customer
	// summary all move in one transaction.
	ApplyToInvoice(context.Context, ApplyRequest) (Deposit, error)

	// Refund returns available money to the customer. Whenever a
	// refund empties the deposit it moves to DEVUELTO, regardless of
	// how much was applied before.
	Refund(context.Context, RefundRequest) (Deposit, error)

	// ExpireDeposits marks active deposits whose expiry date has
	// passed as VENCIDO and returns how many changed.
	ExpireDeposits(ctx context.Context) (int64, error)

	Summary(ctx context.Context, customerID string) ([]CustomerDepositSummary, error)
}
