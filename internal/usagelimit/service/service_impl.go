package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vendepy/vendepy/internal/clock"
	usagedomain "github.com/vendepy/vendepy/internal/usagelimit/domain"
	userdomain "github.com/vendepy/vendepy/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewService(p ServiceParam) usagedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("usagelimit.service"),
		clock: p.Clock,
	}
}

// resourceTables maps each quota to the table its consumption is
// counted from. Rows are attributed to the creating user, never the
// customer, so one seller cannot spend another's quota.
var resourceTables = map[usagedomain.Resource]string{
	usagedomain.ResourceCustomers: "customers",
	usagedomain.ResourceQuotes:    "quotes",
	usagedomain.ResourceOrders:    "sales_orders",
	usagedomain.ResourceInvoices:  "invoices",
}

func (s *Service) CheckCanCreate(ctx context.Context, user userdomain.User, resource usagedomain.Resource) error {
	if user.Unlimited() {
		return nil
	}

	max, err := limitFor(user, resource)
	if err != nil {
		return err
	}

	current, err := s.count(ctx, user, resource)
	if err != nil {
		return err
	}

	if current >= int64(max) {
		s.log.Info("usage limit refused creation",
			zap.String("user_id", user.ID.String()),
			zap.String("resource", string(resource)),
			zap.Int64("current", current),
			zap.Int("max", max),
		)
		return &usagedomain.LimitExceededError{Resource: resource, Current: current, Max: max}
	}
	return nil
}

func (s *Service) UsageSummary(ctx context.Context, user userdomain.User) (usagedomain.Summary, error) {
	var summary usagedomain.Summary

	fill := func(dst *usagedomain.ResourceUsage, resource usagedomain.Resource, max int) error {
		current, err := s.count(ctx, user, resource)
		if err != nil {
			return err
		}
		*dst = usagedomain.ResourceUsage{
			Current:   current,
			Max:       max,
			Unlimited: user.Unlimited(),
		}
		return nil
	}

	if err := fill(&summary.Customers, usagedomain.ResourceCustomers, user.MaxCustomers); err != nil {
		return usagedomain.Summary{}, err
	}
	if err := fill(&summary.Quotes, usagedomain.ResourceQuotes, user.MaxQuotes); err != nil {
		return usagedomain.Summary{}, err
	}
	if err := fill(&summary.Orders, usagedomain.ResourceOrders, user.MaxOrders); err != nil {
		return usagedomain.Summary{}, err
	}
	if err := fill(&summary.Invoices, usagedomain.ResourceInvoices, user.MaxInvoices); err != nil {
		return usagedomain.Summary{}, err
	}
	return summary, nil
}

// count returns the user's consumption of a resource. Customers are
// counted all-time; documents only within the current calendar month,
// so monthly quotas replenish without any bookkeeping job.
func (s *Service) count(ctx context.Context, user userdomain.User, resource usagedomain.Resource) (int64, error) {
	table, ok := resourceTables[resource]
	if !ok {
		return 0, fmt.Errorf("unknown resource %q", resource)
	}

	query := `SELECT COUNT(*) FROM ` + table + ` WHERE created_by_id = ?`
	args := []any{user.ID}

	if resource != usagedomain.ResourceCustomers {
		monthStart, nextMonth := monthBounds(s.clock.Now())
		query += ` AND created_at >= ? AND created_at < ?`
		args = append(args, monthStart, nextMonth)
	}

	var current int64
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&current).Error; err != nil {
		return 0, err
	}
	return current, nil
}

func limitFor(user userdomain.User, resource usagedomain.Resource) (int, error) {
	switch resource {
	case usagedomain.ResourceCustomers:
		return user.MaxCustomers, nil
	case usagedomain.ResourceQuotes:
		return user.MaxQuotes, nil
	case usagedomain.ResourceOrders:
		return user.MaxOrders, nil
	case usagedomain.ResourceInvoices:
		return user.MaxInvoices, nil
	default:
		return 0, fmt.Errorf("unknown resource %q", resource)
	}
}

func monthBounds(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
