package domain

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("deposit_not_found")
	ErrInvoiceNotFound   = errors.New("invoice_not_found")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidType       = errors.New("invalid_deposit_type")
	ErrDepositNotActive  = errors.New("deposit_not_active")
	ErrCustomerMismatch  = errors.New("deposit_customer_mismatch")
	ErrCurrencyMismatch  = errors.New("deposit_currency_mismatch")
	ErrInsufficientFunds = errors.New("deposit_insufficient_funds")
	ErrExceedsBalance    = errors.New("exceeds_invoice_balance")
	ErrForbidden         = errors.New("forbidden")
)

// NotActiveError carries the status that blocked the operation.
type NotActiveError struct {
	Status DepositStatus
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("deposit not active: status is %s", e.Status)
}

func (e *NotActiveError) Unwrap() error { return ErrDepositNotActive }

// CustomerMismatchError reports an application against an invoice that
// belongs to a different customer than the deposit.
type CustomerMismatchError struct {
	DepositCustomerID snowflake.ID
	InvoiceCustomerID snowflake.ID
}

func (e *CustomerMismatchError) Error() string {
	return fmt.Sprintf("deposit belongs to customer %s, invoice to customer %s",
		e.DepositCustomerID, e.InvoiceCustomerID)
}

func (e *CustomerMismatchError) Unwrap() error { return ErrCustomerMismatch }

// CurrencyMismatchError reports an application across currencies.
type CurrencyMismatchError struct {
	DepositCurrency string
	InvoiceCurrency string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("deposit currency %s does not match invoice currency %s",
		e.DepositCurrency, e.InvoiceCurrency)
}

func (e *CurrencyMismatchError) Unwrap() error { return ErrCurrencyMismatch }

// InsufficientFundsError reports how far the requested draw overshoots
// what the deposit still holds.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient deposit funds: available %s, requested %s",
		e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// ExceedsBalanceError reports an application larger than what the
// invoice still owes.
type ExceedsBalanceError struct {
	BalanceDue decimal.Decimal
	Requested  decimal.Decimal
}

func (e *ExceedsBalanceError) Error() string {
	return fmt.Sprintf("application exceeds invoice balance: due %s, requested %s",
		e.BalanceDue.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *ExceedsBalanceError) Unwrap() error { return ErrExceedsBalance }
