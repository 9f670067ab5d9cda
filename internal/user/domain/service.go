package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound           = errors.New("user_not_found")
	ErrInvalidID          = errors.New("invalid_user_id")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidUsername    = errors.New("invalid_username")
	ErrWeakPassword       = errors.New("password_too_short")
	ErrDuplicateLogin     = errors.New("email_or_username_taken")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrForbidden          = errors.New("forbidden")
)

type CreateUserRequest struct {
	Actor User

	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// UpdateLimitsRequest adjusts per-resource quotas. Nil fields keep the
// current value.
type UpdateLimitsRequest struct {
	Actor User
	ID    string

	MaxCustomers *int `json:"max_customers,omitempty"`
	MaxQuotes    *int `json:"max_quotes,omitempty"`
	MaxOrders    *int `json:"max_orders,omitempty"`
	MaxInvoices  *int `json:"max_invoices,omitempty"`

	CanManageDeposits      *bool `json:"can_manage_deposits,omitempty"`
	CanManageTourismRegime *bool `json:"can_manage_tourism_regime,omitempty"`
}

type Service interface {
	Create(context.Context, CreateUserRequest) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Authenticate(ctx context.Context, login, password string) (User, error)
	UpdateLimits(context.Context, UpdateLimitsRequest) (User, error)
	List(ctx context.Context) ([]User, error)
}
