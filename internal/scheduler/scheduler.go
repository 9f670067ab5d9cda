// Package scheduler runs periodic maintenance jobs: expiring deposits
// past their expiry date and quotes past their validity window. Both
// sweeps are idempotent, so an overlapping or repeated run is harmless.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vendepy/vendepy/internal/clock"
	depositdomain "github.com/vendepy/vendepy/internal/deposit/domain"
	salesdomain "github.com/vendepy/vendepy/internal/sales/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler_invalid_config")

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	DepositSvc depositdomain.Service
	SalesSvc   salesdomain.Service
	Config     Config `optional:"true"`
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	depositSvc depositdomain.Service
	salesSvc   salesdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.DepositSvc == nil || p.SalesSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:        p.Log.Named("scheduler"),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		depositSvc: p.DepositSvc,
		salesSvc:   p.SalesSvc,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) (int64, error)) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	start := s.clock.Now()
	changed, err := fn(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			s.log.Warn("job timed out",
				zap.String("job", name),
				zap.Duration("timeout", s.cfg.JobTimeout),
			)
			return nil
		}
		return fmt.Errorf("%s: %w", name, err)
	}

	if changed > 0 {
		s.log.Info("job finished",
			zap.String("job", name),
			zap.Int64("changed", changed),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return nil
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	var errs []error

	if err := s.runJob(ctx, "expire_deposits", s.depositSvc.ExpireDeposits); err != nil {
		errs = append(errs, err)
	}
	if err := s.runJob(ctx, "expire_quotes", s.salesSvc.ExpireQuotes); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
