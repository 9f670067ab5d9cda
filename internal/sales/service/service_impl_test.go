package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/vendepy/vendepy/internal/clock"
	companydomain "github.com/vendepy/vendepy/internal/company/domain"
	companyrepo "github.com/vendepy/vendepy/internal/company/repository"
	companyservice "github.com/vendepy/vendepy/internal/company/service"
	customerdomain "github.com/vendepy/vendepy/internal/customer/domain"
	customerrepo "github.com/vendepy/vendepy/internal/customer/repository"
	numberingservice "github.com/vendepy/vendepy/internal/numbering/service"
	"github.com/vendepy/vendepy/internal/sales/domain"
	usagedomain "github.com/vendepy/vendepy/internal/usagelimit/domain"
	usageservice "github.com/vendepy/vendepy/internal/usagelimit/service"
	userdomain "github.com/vendepy/vendepy/internal/user/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type salesFixture struct {
	svc      domain.Service
	db       *gorm.DB
	clock    *clock.FakeClock
	node     *snowflake.Node
	actor    userdomain.User
	customer customerdomain.Customer
}

func prepareSalesSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	stmts := []string{
		`CREATE TABLE company_settings (
			id BIGINT PRIMARY KEY,
			razon_social TEXT NOT NULL,
			nombre_comercial TEXT,
			ruc TEXT NOT NULL,
			ruc_dv TEXT,
			timbrado TEXT NOT NULL,
			timbrado_expiry DATETIME,
			punto_expedicion TEXT NOT NULL DEFAULT '001',
			direccion TEXT NOT NULL,
			ciudad TEXT NOT NULL DEFAULT 'Asunción',
			telefono TEXT,
			email TEXT,
			default_currency TEXT NOT NULL DEFAULT 'PYG',
			iva_10_rate NUMERIC NOT NULL DEFAULT 10,
			iva_5_rate NUMERIC NOT NULL DEFAULT 5,
			invoice_number_start BIGINT NOT NULL DEFAULT 1,
			invoice_number_current BIGINT NOT NULL DEFAULT 1,
			quote_number_start BIGINT NOT NULL DEFAULT 1,
			quote_number_current BIGINT NOT NULL DEFAULT 1,
			regimen_tributario TEXT NOT NULL DEFAULT 'GENERAL',
			contribuyente_iva BOOLEAN NOT NULL DEFAULT true,
			is_active BOOLEAN NOT NULL DEFAULT true,
			config_complete BOOLEAN NOT NULL DEFAULT false,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE customers (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			razon_social TEXT,
			document_type TEXT NOT NULL DEFAULT 'RUC',
			tax_id TEXT,
			email TEXT,
			phone TEXT,
			address TEXT,
			ciudad TEXT,
			tourism_regime BOOLEAN NOT NULL DEFAULT false,
			tourism_regime_pdf TEXT,
			tourism_regime_expiry DATETIME,
			credit_limit NUMERIC NOT NULL DEFAULT 0,
			notes TEXT,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_by_id BIGINT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE quotes (
			id BIGINT PRIMARY KEY,
			quote_number TEXT NOT NULL UNIQUE,
			customer_id BIGINT NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING',
			currency TEXT NOT NULL DEFAULT 'PYG',
			subtotal_gravado10 NUMERIC NOT NULL DEFAULT 0,
			subtotal_gravado5 NUMERIC NOT NULL DEFAULT 0,
			subtotal_exento NUMERIC NOT NULL DEFAULT 0,
			iva10 NUMERIC NOT NULL DEFAULT 0,
			iva5 NUMERIC NOT NULL DEFAULT 0,
			total_iva NUMERIC NOT NULL DEFAULT 0,
			subtotal NUMERIC NOT NULL DEFAULT 0,
			total NUMERIC NOT NULL DEFAULT 0,
			valid_until DATETIME,
			notes TEXT,
			created_by_id BIGINT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE quote_lines (
			id BIGINT PRIMARY KEY,
			quote_id BIGINT NOT NULL,
			description TEXT NOT NULL,
			quantity NUMERIC NOT NULL,
			unit_price NUMERIC NOT NULL,
			line_total NUMERIC NOT NULL,
			iva_category TEXT NOT NULL DEFAULT '10',
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE sales_orders (
			id BIGINT PRIMARY KEY,
			order_number TEXT NOT NULL UNIQUE,
			quote_id BIGINT,
			customer_id BIGINT NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING',
			currency TEXT NOT NULL DEFAULT 'PYG',
			subtotal NUMERIC NOT NULL DEFAULT 0,
			total_iva NUMERIC NOT NULL DEFAULT 0,
			total NUMERIC NOT NULL DEFAULT 0,
			notes TEXT,
			created_by_id BIGINT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE sales_order_lines (
			id BIGINT PRIMARY KEY,
			sales_order_id BIGINT NOT NULL,
			description TEXT NOT NULL,
			quantity NUMERIC NOT NULL,
			unit_price NUMERIC NOT NULL,
			line_total NUMERIC NOT NULL,
			iva_category TEXT NOT NULL DEFAULT '10',
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE invoices (
			id BIGINT PRIMARY KEY,
			created_by_id BIGINT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema: %v", err)
		}
	}
}

func setupSales(t *testing.T) salesFixture {
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

	prepareSalesSchema(t, db)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	fc := clock.NewFakeClock(time.Date(2025, time.June, 10, 14, 0, 0, 0, time.UTC))
	logger := zap.NewNop()

	companySvc := companyservice.NewService(companyservice.ServiceParam{
		Log:   logger,
		GenID: node,
		Clock: fc,
		Repo:  companyrepo.NewRepository(db),
	})
	expiry := fc.Now().AddDate(1, 0, 0)
	if _, err := companySvc.Create(context.Background(), companydomain.CreateRequest{
		RazonSocial:    "VendePY Demo SA",
		RUC:            "80012345-3",
		Timbrado:       "12345678",
		TimbradoExpiry: &expiry,
		Direccion:      "Palma 555",
	}); err != nil {
		t.Fatalf("create company settings: %v", err)
	}

	actor := userdomain.User{ID: node.Generate(), Role: userdomain.RoleAdmin}

	custRepo := customerrepo.NewRepository()
	customer := customerdomain.Customer{
		ID:          node.Generate(),
		Name:        "Importadora Este SA",
		IsActive:    true,
		CreatedByID: actor.ID,
		CreatedAt:   fc.Now(),
		UpdatedAt:   fc.Now(),
	}
	if err := custRepo.Insert(context.Background(), db, &customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	svc := NewService(ServiceParam{
		DB:        db,
		Log:       logger,
		GenID:     node,
		Clock:     fc,
		Company:   companySvc,
		Customers: custRepo,
		Numbering: numberingservice.NewService(numberingservice.ServiceParam{DB: db, Log: logger, Clock: fc}),
		Limits:    usageservice.NewService(usageservice.ServiceParam{DB: db, Log: logger, Clock: fc}),
	})

	return salesFixture{svc: svc, db: db, clock: fc, node: node, actor: actor, customer: customer}
}

func (f salesFixture) createQuote(t *testing.T, validUntil *time.Time) domain.Quote {
	t.Helper()
	quote, err := f.svc.CreateQuote(context.Background(), domain.CreateQuoteRequest{
		Actor:      f.actor,
		CustomerID: f.customer.ID.String(),
		ValidUntil: validUntil,
		Lines: []domain.LineInput{
			{
				Description: "Notebook 14 pulgadas",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   decimal.NewFromInt(3500000),
				IVACategory: "10",
			},
		},
	})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	return quote
}

func TestCreateQuoteNumberingAndBreakdown(t *testing.T) {
	f := setupSales(t)

	quote := f.createQuote(t, nil)
	if quote.QuoteNumber != "PRE-0000001" {
		t.Fatalf("quote number = %s, want PRE-0000001", quote.QuoteNumber)
	}
	if !quote.Subtotal.Equal(decimal.NewFromInt(7000000)) {
		t.Fatalf("subtotal = %s, want 7000000", quote.Subtotal)
	}
	if !quote.IVA10.Equal(decimal.NewFromInt(700000)) {
		t.Fatalf("iva 10 = %s, want 700000", quote.IVA10)
	}
	if !quote.Total.Equal(decimal.NewFromInt(7700000)) {
		t.Fatalf("total = %s, want 7700000", quote.Total)
	}

	second := f.createQuote(t, nil)
	if second.QuoteNumber != "PRE-0000002" {
		t.Fatalf("second quote number = %s, want PRE-0000002", second.QuoteNumber)
	}

	// Quote issuance must not touch the invoice counter.
	var invoiceCurrent int64
	if err := f.db.Raw(`SELECT invoice_number_current FROM company_settings`).Scan(&invoiceCurrent).Error; err != nil {
		t.Fatalf("read invoice counter: %v", err)
	}
	if invoiceCurrent != 1 {
		t.Fatalf("invoice counter = %d, want untouched 1", invoiceCurrent)
	}
}

func TestConvertQuoteToOrder(t *testing.T) {
	f := setupSales(t)
	quote := f.createQuote(t, nil)

	order, err := f.svc.ConvertToOrder(context.Background(), f.actor, quote.ID.String())
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if order.OrderNumber != "ORD2025060001" {
		t.Fatalf("order number = %s, want ORD2025060001", order.OrderNumber)
	}
	if !order.Total.Equal(quote.Total) {
		t.Fatalf("order total = %s, want %s", order.Total, quote.Total)
	}
	if len(order.Lines) != 1 {
		t.Fatalf("order lines = %d, want 1", len(order.Lines))
	}

	converted, err := f.svc.GetQuote(context.Background(), quote.ID.String())
	if err != nil {
		t.Fatalf("get quote: %v", err)
	}
	if converted.Status != domain.QuoteStatusConverted {
		t.Fatalf("quote status = %s, want CONVERTED", converted.Status)
	}

	// A converted quote cannot be converted again.
	if _, err := f.svc.ConvertToOrder(context.Background(), f.actor, quote.ID.String()); !errors.Is(err, domain.ErrQuoteNotPending) {
		t.Fatalf("expected quote not pending, got %v", err)
	}
}

func TestConvertExpiredQuote(t *testing.T) {
	f := setupSales(t)
	validUntil := f.clock.Now().AddDate(0, 0, 15)
	quote := f.createQuote(t, &validUntil)

	f.clock.Advance(16 * 24 * time.Hour)
	_, err := f.svc.ConvertToOrder(context.Background(), f.actor, quote.ID.String())
	if !errors.Is(err, domain.ErrQuoteExpired) {
		t.Fatalf("expected quote expired, got %v", err)
	}

	reloaded, err := f.svc.GetQuote(context.Background(), quote.ID.String())
	if err != nil {
		t.Fatalf("get quote: %v", err)
	}
	if reloaded.Status != domain.QuoteStatusExpired {
		t.Fatalf("quote status = %s, want EXPIRED", reloaded.Status)
	}
}

func TestUpdateQuoteStatus(t *testing.T) {
	f := setupSales(t)
	quote := f.createQuote(t, nil)

	accepted, err := f.svc.UpdateQuoteStatus(context.Background(), f.actor, quote.ID.String(), domain.QuoteStatusAccepted)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != domain.QuoteStatusAccepted {
		t.Fatalf("status = %s, want ACCEPTED", accepted.Status)
	}

	// Accepted quotes can still convert, but cannot be re-decided.
	if _, err := f.svc.UpdateQuoteStatus(context.Background(), f.actor, quote.ID.String(), domain.QuoteStatusRejected); !errors.Is(err, domain.ErrQuoteNotPending) {
		t.Fatalf("expected quote not pending, got %v", err)
	}
	if _, err := f.svc.ConvertToOrder(context.Background(), f.actor, quote.ID.String()); err != nil {
		t.Fatalf("convert accepted quote: %v", err)
	}
}

func TestCancelOrder(t *testing.T) {
	f := setupSales(t)
	quote := f.createQuote(t, nil)
	order, err := f.svc.ConvertToOrder(context.Background(), f.actor, quote.ID.String())
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	cancelled, err := f.svc.CancelOrder(context.Background(), f.actor, order.ID.String())
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.OrderStatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}
	if _, err := f.svc.CancelOrder(context.Background(), f.actor, order.ID.String()); !errors.Is(err, domain.ErrOrderNotPending) {
		t.Fatalf("expected order not pending, got %v", err)
	}
}

func TestExpireQuotesSweep(t *testing.T) {
	f := setupSales(t)
	soon := f.clock.Now().AddDate(0, 0, 5)
	later := f.clock.Now().AddDate(0, 0, 60)
	expiring := f.createQuote(t, &soon)
	keeping := f.createQuote(t, &later)
	open := f.createQuote(t, nil)

	f.clock.Advance(10 * 24 * time.Hour)
	n, err := f.svc.ExpireQuotes(context.Background())
	if err != nil {
		t.Fatalf("expire quotes: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired = %d, want 1", n)
	}

	for _, check := range []struct {
		id   string
		want domain.QuoteStatus
	}{
		{expiring.ID.String(), domain.QuoteStatusExpired},
		{keeping.ID.String(), domain.QuoteStatusPending},
		{open.ID.String(), domain.QuoteStatusPending},
	} {
		quote, err := f.svc.GetQuote(context.Background(), check.id)
		if err != nil {
			t.Fatalf("get quote: %v", err)
		}
		if quote.Status != check.want {
			t.Fatalf("quote %s status = %s, want %s", check.id, quote.Status, check.want)
		}
	}
}

func TestCreateQuoteUsageLimit(t *testing.T) {
	f := setupSales(t)
	seller := userdomain.User{
		ID:        f.node.Generate(),
		Role:      userdomain.RoleSeller,
		MaxQuotes: 1,
	}

	if _, err := f.svc.CreateQuote(context.Background(), domain.CreateQuoteRequest{
		Actor:      seller,
		CustomerID: f.customer.ID.String(),
		Lines: []domain.LineInput{
			{Description: "Item", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1000)},
		},
	}); err != nil {
		t.Fatalf("first quote: %v", err)
	}

	_, err := f.svc.CreateQuote(context.Background(), domain.CreateQuoteRequest{
		Actor:      seller,
		CustomerID: f.customer.ID.String(),
		Lines: []domain.LineInput{
			{Description: "Item", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1000)},
		},
	})
	if !errors.Is(err, usagedomain.ErrLimitExceeded) {
		t.Fatalf("expected limit exceeded, got %v", err)
	}
}
