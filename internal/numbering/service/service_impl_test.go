package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/vendepy/vendepy/internal/clock"
	numberingdomain "github.com/vendepy/vendepy/internal/numbering/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupNumbering(t *testing.T) (numberingdomain.Service, *gorm.DB, snowflake.ID) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error

	if err := db.Exec(`CREATE TABLE company_settings (
		id BIGINT PRIMARY KEY,
		invoice_number_start BIGINT NOT NULL DEFAULT 1,
		invoice_number_current BIGINT NOT NULL DEFAULT 1,
		quote_number_start BIGINT NOT NULL DEFAULT 1,
		quote_number_current BIGINT NOT NULL DEFAULT 1,
		is_active BOOLEAN NOT NULL DEFAULT true,
		updated_at DATETIME NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create company_settings: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	settingsID := node.Generate()
	if err := db.Exec(
		`INSERT INTO company_settings (id, invoice_number_current, quote_number_current, is_active, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		settingsID, 1, 1, true, time.Now().UTC(),
	).Error; err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)),
	})
	return svc, db, settingsID
}

func TestNextInvoiceNumberSequential(t *testing.T) {
	svc, _, settingsID := setupNumbering(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := svc.NextInvoiceNumber(ctx, nil, settingsID)
		if err != nil {
			t.Fatalf("next invoice number: %v", err)
		}
		if got != want {
			t.Fatalf("issued %d, want %d", got, want)
		}
	}
}

func TestInvoiceAndQuoteCountersIndependent(t *testing.T) {
	svc, _, settingsID := setupNumbering(t)
	ctx := context.Background()

	if _, err := svc.NextInvoiceNumber(ctx, nil, settingsID); err != nil {
		t.Fatalf("next invoice number: %v", err)
	}
	if _, err := svc.NextInvoiceNumber(ctx, nil, settingsID); err != nil {
		t.Fatalf("next invoice number: %v", err)
	}

	got, err := svc.NextQuoteNumber(ctx, nil, settingsID)
	if err != nil {
		t.Fatalf("next quote number: %v", err)
	}
	if got != 1 {
		t.Fatalf("quote counter = %d, want 1", got)
	}
}

func TestNextNumberConcurrentNoDuplicatesNoGaps(t *testing.T) {
	svc, _, settingsID := setupNumbering(t)
	ctx := context.Background()

	const n = 50
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		issued = make(map[int64]int, n)
	)
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := svc.NextInvoiceNumber(ctx, nil, settingsID)
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			issued[num]++
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent issuance: %v", err)
	}

	if len(issued) != n {
		t.Fatalf("expected %d distinct numbers, got %d", n, len(issued))
	}
	for want := int64(1); want <= n; want++ {
		if issued[want] != 1 {
			t.Fatalf("number %d issued %d times", want, issued[want])
		}
	}
}

func TestNextNumberConfigurationMissing(t *testing.T) {
	svc, db, settingsID := setupNumbering(t)
	ctx := context.Background()

	if err := db.Exec(`UPDATE company_settings SET is_active = ? WHERE id = ?`, false, settingsID).Error; err != nil {
		t.Fatalf("deactivate settings: %v", err)
	}

	if _, err := svc.NextInvoiceNumber(ctx, nil, settingsID); !errors.Is(err, numberingdomain.ErrConfigurationMissing) {
		t.Fatalf("expected configuration missing, got %v", err)
	}
}

func TestNextNumberRollsBackWithTransaction(t *testing.T) {
	svc, db, settingsID := setupNumbering(t)
	ctx := context.Background()

	sentinel := errors.New("creation failed")
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.NextInvoiceNumber(ctx, tx, settingsID); err != nil {
			t.Fatalf("next invoice number in tx: %v", err)
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}

	// The aborted creation must not have consumed a number.
	got, err := svc.NextInvoiceNumber(ctx, nil, settingsID)
	if err != nil {
		t.Fatalf("next invoice number: %v", err)
	}
	if got != 1 {
		t.Fatalf("issued %d after rollback, want 1", got)
	}
}

func TestResetNumbering(t *testing.T) {
	svc, _, settingsID := setupNumbering(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.NextInvoiceNumber(ctx, nil, settingsID); err != nil {
			t.Fatalf("next invoice number: %v", err)
		}
	}

	if err := svc.Reset(ctx, settingsID, 100, numberingdomain.TargetInvoices); err != nil {
		t.Fatalf("reset: %v", err)
	}

	got, err := svc.NextInvoiceNumber(ctx, nil, settingsID)
	if err != nil {
		t.Fatalf("next invoice number: %v", err)
	}
	if got != 100 {
		t.Fatalf("issued %d after reset, want 100", got)
	}
}

func TestResetValidation(t *testing.T) {
	svc, _, settingsID := setupNumbering(t)
	ctx := context.Background()

	if err := svc.Reset(ctx, settingsID, 0, numberingdomain.TargetInvoices); !errors.Is(err, numberingdomain.ErrInvalidStartNumber) {
		t.Fatalf("expected invalid start number, got %v", err)
	}
	if err := svc.Reset(ctx, settingsID, 1, numberingdomain.Target("payments")); !errors.Is(err, numberingdomain.ErrInvalidTarget) {
		t.Fatalf("expected invalid target, got %v", err)
	}
}
