package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vendepy/vendepy/internal/clock"
	depositdomain "github.com/vendepy/vendepy/internal/deposit/domain"
	salesdomain "github.com/vendepy/vendepy/internal/sales/domain"
	userdomain "github.com/vendepy/vendepy/internal/user/domain"
	"go.uber.org/zap"
)

type fakeDepositService struct {
	depositdomain.Service
	calls int
	err   error
}

func (f *fakeDepositService) ExpireDeposits(ctx context.Context) (int64, error) {
	f.calls++
	return 2, f.err
}

type fakeSalesService struct {
	salesdomain.Service
	calls int
	err   error
}

func (f *fakeSalesService) ExpireQuotes(ctx context.Context) (int64, error) {
	f.calls++
	return 1, f.err
}

func (f *fakeSalesService) ConvertToOrder(context.Context, userdomain.User, string) (salesdomain.SalesOrder, error) {
	return salesdomain.SalesOrder{}, nil
}

func newTestScheduler(t *testing.T, deposits *fakeDepositService, sales *fakeSalesService) *Scheduler {
	t.Helper()
	sched, err := New(Params{
		Log:        zap.NewNop(),
		Clock:      clock.NewFakeClock(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)),
		DepositSvc: deposits,
		SalesSvc:   sales,
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return sched
}

func TestRunOnceRunsAllJobs(t *testing.T) {
	deposits := &fakeDepositService{}
	sales := &fakeSalesService{}
	sched := newTestScheduler(t, deposits, sales)

	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if deposits.calls != 1 || sales.calls != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", deposits.calls, sales.calls)
	}
}

func TestRunOnceFailureDoesNotSkipOtherJobs(t *testing.T) {
	deposits := &fakeDepositService{err: errors.New("db down")}
	sales := &fakeSalesService{}
	sched := newTestScheduler(t, deposits, sales)

	err := sched.RunOnce(context.Background())
	if err == nil {
		t.Fatalf("expected error from failing job")
	}
	if sales.calls != 1 {
		t.Fatalf("sales sweep skipped after deposit failure")
	}
}

func TestNewValidatesDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
}
