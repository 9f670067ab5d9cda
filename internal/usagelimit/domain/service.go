package domain

import (
	"context"
	"errors"
	"fmt"

	userdomain "github.com/vendepy/vendepy/internal/user/domain"
)

var ErrLimitExceeded = errors.New("limit_exceeded")

// Resource identifies which quota a creation draws from.
type Resource string

const (
	ResourceCustomers Resource = "customers"
	ResourceQuotes    Resource = "quotes"
	ResourceOrders    Resource = "orders"
	ResourceInvoices  Resource = "invoices"
)

// LimitExceededError reports a quota refusal with the counts that
// produced it, so callers can surface them instead of a bare denial.
type LimitExceededError struct {
	Resource Resource
	Current  int64
	Max      int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s limit exceeded: %d of %d used", e.Resource, e.Current, e.Max)
}

func (e *LimitExceededError) Unwrap() error { return ErrLimitExceeded }

// ResourceUsage pairs consumption against its ceiling for one resource.
type ResourceUsage struct {
	Current   int64 `json:"current"`
	Max       int   `json:"max"`
	Unlimited bool  `json:"unlimited"`
}

// Summary is the per-user usage report. Customer counts are all-time;
// document counts cover the current calendar month.
type Summary struct {
	Customers ResourceUsage `json:"customers"`
	Quotes    ResourceUsage `json:"quotes"`
	Orders    ResourceUsage `json:"orders"`
	Invoices  ResourceUsage `json:"invoices"`
}

type Service interface {
	// CheckCanCreate returns nil when the user may create one more of
	// the resource, or a *LimitExceededError when the quota is spent.
	CheckCanCreate(ctx context.Context, user userdomain.User, resource Resource) error

	UsageSummary(ctx context.Context, user userdomain.User) (Summary, error)
}
