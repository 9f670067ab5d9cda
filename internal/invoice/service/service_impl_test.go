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
	"github.com/vendepy/vendepy/internal/fiscal"
	"github.com/vendepy/vendepy/internal/invoice/domain"
	numberingservice "github.com/vendepy/vendepy/internal/numbering/service"
	usageservice "github.com/vendepy/vendepy/internal/usagelimit/service"
	userdomain "github.com/vendepy/vendepy/internal/user/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type invoiceFixture struct {
	svc      domain.Service
	company  companydomain.Service
	db       *gorm.DB
	clock    *clock.FakeClock
	node     *snowflake.Node
	actor    userdomain.User
	customer customerdomain.Customer
}

func prepareInvoiceSchema(t *testing.T, db *gorm.DB) {
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
		`CREATE TABLE invoices (
			id BIGINT PRIMARY KEY,
			invoice_number TEXT NOT NULL UNIQUE,
			customer_id BIGINT NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING',
			condicion_venta TEXT NOT NULL DEFAULT 'CONTADO',
			currency TEXT NOT NULL DEFAULT 'PYG',
			emitter_ruc TEXT NOT NULL,
			emitter_razon_social TEXT NOT NULL,
			timbrado TEXT NOT NULL,
			timbrado_expiry DATETIME,
			punto_expedicion TEXT NOT NULL,
			subtotal_gravado10 NUMERIC NOT NULL DEFAULT 0,
			subtotal_gravado5 NUMERIC NOT NULL DEFAULT 0,
			subtotal_exento NUMERIC NOT NULL DEFAULT 0,
			iva10 NUMERIC NOT NULL DEFAULT 0,
			iva5 NUMERIC NOT NULL DEFAULT 0,
			total_iva NUMERIC NOT NULL DEFAULT 0,
			subtotal NUMERIC NOT NULL DEFAULT 0,
			total NUMERIC NOT NULL DEFAULT 0,
			tourism_regime_applied BOOLEAN NOT NULL DEFAULT false,
			tourism_discount NUMERIC NOT NULL DEFAULT 0,
			paid_amount NUMERIC NOT NULL DEFAULT 0,
			balance_due NUMERIC NOT NULL DEFAULT 0,
			issue_date DATETIME NOT NULL,
			due_date DATETIME,
			notes TEXT,
			created_by_id BIGINT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE invoice_lines (
			id BIGINT PRIMARY KEY,
			invoice_id BIGINT NOT NULL,
			description TEXT NOT NULL,
			quantity NUMERIC NOT NULL,
			unit_price NUMERIC NOT NULL,
			line_total NUMERIC NOT NULL,
			iva_category TEXT NOT NULL DEFAULT '10',
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE invoice_payments (
			id BIGINT PRIMARY KEY,
			invoice_id BIGINT NOT NULL,
			amount NUMERIC NOT NULL,
			method TEXT,
			reference TEXT,
			notes TEXT,
			received_by_id BIGINT NOT NULL,
			paid_at DATETIME NOT NULL
		)`,
		`CREATE TABLE quotes (
			id BIGINT PRIMARY KEY,
			created_by_id BIGINT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE sales_orders (
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

func setupInvoice(t *testing.T) invoiceFixture {
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

	prepareInvoiceSchema(t, db)

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
		RazonSocial:     "VendePY Demo SA",
		RUC:             "80012345-3",
		Timbrado:        "12345678",
		TimbradoExpiry:  &expiry,
		PuntoExpedicion: "001",
		Direccion:       "Avda. Mcal. López 1234",
		Ciudad:          "Asunción",
		DefaultCurrency: "PYG",
	}); err != nil {
		t.Fatalf("create company settings: %v", err)
	}
	if _, err := companySvc.MarkComplete(context.Background()); err != nil {
		t.Fatalf("mark settings complete: %v", err)
	}

	actor := userdomain.User{ID: node.Generate(), Role: userdomain.RoleAdmin}

	custRepo := customerrepo.NewRepository()
	customer := customerdomain.Customer{
		ID:          node.Generate(),
		Name:        "Distribuidora Sur SRL",
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

	return invoiceFixture{
		svc:      svc,
		company:  companySvc,
		db:       db,
		clock:    fc,
		node:     node,
		actor:    actor,
		customer: customer,
	}
}

func (f invoiceFixture) createInvoice(t *testing.T, lines []domain.LineInput) domain.Invoice {
	t.Helper()
	invoice, err := f.svc.Create(context.Background(), domain.CreateInvoiceRequest{
		Actor:      f.actor,
		CustomerID: f.customer.ID.String(),
		Lines:      lines,
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return invoice
}

func standardLines() []domain.LineInput {
	return []domain.LineInput{
		{
			Description: "Servicio de consultoría",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.NewFromInt(100000),
			IVACategory: "10",
		},
		{
			Description: "Libros técnicos",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.NewFromInt(50000),
			IVACategory: "EXENTO",
		},
	}
}

func TestCreateInvoiceBreakdownAndNumbering(t *testing.T) {
	f := setupInvoice(t)

	invoice := f.createInvoice(t, standardLines())

	if invoice.InvoiceNumber != "001-0000001" {
		t.Fatalf("invoice number = %s, want 001-0000001", invoice.InvoiceNumber)
	}
	if !invoice.IVA10.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("iva 10 = %s, want 10000", invoice.IVA10)
	}
	if !invoice.SubtotalExento.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("exento = %s, want 50000", invoice.SubtotalExento)
	}
	if !invoice.Subtotal.Equal(decimal.NewFromInt(150000)) {
		t.Fatalf("subtotal = %s, want 150000", invoice.Subtotal)
	}
	if !invoice.Total.Equal(decimal.NewFromInt(160000)) {
		t.Fatalf("total = %s, want 160000", invoice.Total)
	}
	if !invoice.BalanceDue.Equal(invoice.Total) {
		t.Fatalf("balance due = %s, want %s", invoice.BalanceDue, invoice.Total)
	}
	if invoice.EmitterRUC != "80012345-3" || invoice.Timbrado != "12345678" {
		t.Fatalf("fiscal snapshot missing: ruc=%s timbrado=%s", invoice.EmitterRUC, invoice.Timbrado)
	}
	if len(invoice.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(invoice.Lines))
	}

	second := f.createInvoice(t, standardLines())
	if second.InvoiceNumber != "001-0000002" {
		t.Fatalf("second invoice number = %s, want 001-0000002", second.InvoiceNumber)
	}
}

func TestCreateInvoiceExpiredTimbrado(t *testing.T) {
	f := setupInvoice(t)

	past := f.clock.Now().AddDate(0, 0, -10)
	if err := f.db.Exec(
		`UPDATE company_settings SET timbrado_expiry = ?`, past,
	).Error; err != nil {
		t.Fatalf("expire timbrado: %v", err)
	}

	_, err := f.svc.Create(context.Background(), domain.CreateInvoiceRequest{
		Actor:      f.actor,
		CustomerID: f.customer.ID.String(),
		Lines:      standardLines(),
	})
	if !errors.Is(err, fiscal.ErrTimbradoExpired) {
		t.Fatalf("expected timbrado expired, got %v", err)
	}

	var expiredErr *fiscal.ExpiredError
	if !errors.As(err, &expiredErr) || expiredErr.DaysExpired != 10 {
		t.Fatalf("expected ExpiredError with 10 days, got %v", err)
	}

	// The refused invoice must not burn a sequence number.
	var current int64
	if err := f.db.Raw(`SELECT invoice_number_current FROM company_settings`).Scan(&current).Error; err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if current != 1 {
		t.Fatalf("counter = %d, want untouched 1", current)
	}
}

func TestCreateInvoiceTourismRegime(t *testing.T) {
	f := setupInvoice(t)

	pdf := "/certificates/tour.pdf"
	certExpiry := f.clock.Now().AddDate(0, 6, 0)
	if err := f.db.Exec(
		`UPDATE customers SET tourism_regime = true, tourism_regime_pdf = ?, tourism_regime_expiry = ? WHERE id = ?`,
		pdf, certExpiry, f.customer.ID,
	).Error; err != nil {
		t.Fatalf("enable tourism: %v", err)
	}

	invoice := f.createInvoice(t, standardLines())

	if !invoice.TourismRegimeApplied {
		t.Fatal("expected tourism regime applied")
	}
	if !invoice.TotalIVA.IsZero() {
		t.Fatalf("total iva = %s, want 0 under tourism regime", invoice.TotalIVA)
	}
	if !invoice.TourismDiscount.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("tourism discount = %s, want 10000", invoice.TourismDiscount)
	}
	// The taxable base is untouched; only the tax is forgiven.
	if !invoice.Total.Equal(decimal.NewFromInt(150000)) {
		t.Fatalf("total = %s, want 150000", invoice.Total)
	}
}

func TestCreateInvoiceConfigurationMissing(t *testing.T) {
	f := setupInvoice(t)

	if err := f.db.Exec(`UPDATE company_settings SET is_active = false`).Error; err != nil {
		t.Fatalf("deactivate settings: %v", err)
	}

	_, err := f.svc.Create(context.Background(), domain.CreateInvoiceRequest{
		Actor:      f.actor,
		CustomerID: f.customer.ID.String(),
		Lines:      standardLines(),
	})
	if !errors.Is(err, companydomain.ErrConfigurationMissing) {
		t.Fatalf("expected configuration missing, got %v", err)
	}
}

func TestCreateInvoiceValidation(t *testing.T) {
	f := setupInvoice(t)

	_, err := f.svc.Create(context.Background(), domain.CreateInvoiceRequest{
		Actor:      f.actor,
		CustomerID: f.customer.ID.String(),
	})
	if !errors.Is(err, domain.ErrNoLines) {
		t.Fatalf("expected no lines error, got %v", err)
	}

	_, err = f.svc.Create(context.Background(), domain.CreateInvoiceRequest{
		Actor:      f.actor,
		CustomerID: f.customer.ID.String(),
		Lines: []domain.LineInput{
			{Description: "x", Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(100)},
		},
	})
	if !errors.Is(err, domain.ErrInvalidLine) {
		t.Fatalf("expected invalid line, got %v", err)
	}

	_, err = f.svc.Create(context.Background(), domain.CreateInvoiceRequest{
		Actor:          f.actor,
		CustomerID:     f.customer.ID.String(),
		CondicionVenta: domain.CondicionVenta("LEASING"),
		Lines:          standardLines(),
	})
	if !errors.Is(err, domain.ErrInvalidCondicion) {
		t.Fatalf("expected invalid condicion, got %v", err)
	}
}

func TestRegisterPaymentLifecycle(t *testing.T) {
	f := setupInvoice(t)
	invoice := f.createInvoice(t, standardLines())

	paid, err := f.svc.RegisterPayment(context.Background(), domain.RegisterPaymentRequest{
		Actor:     f.actor,
		InvoiceID: invoice.ID.String(),
		Amount:    decimal.NewFromInt(60000),
	})
	if err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	if paid.Status != domain.InvoiceStatusPartiallyPaid {
		t.Fatalf("status = %s, want PARTIALLY_PAID", paid.Status)
	}
	if !paid.BalanceDue.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("balance = %s, want 100000", paid.BalanceDue)
	}

	_, err = f.svc.RegisterPayment(context.Background(), domain.RegisterPaymentRequest{
		Actor:     f.actor,
		InvoiceID: invoice.ID.String(),
		Amount:    decimal.NewFromInt(150000),
	})
	var overpay *domain.OverpaymentError
	if !errors.As(err, &overpay) {
		t.Fatalf("expected OverpaymentError, got %v", err)
	}
	if !overpay.BalanceDue.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("balance in error = %s, want 100000", overpay.BalanceDue)
	}

	paid, err = f.svc.RegisterPayment(context.Background(), domain.RegisterPaymentRequest{
		Actor:     f.actor,
		InvoiceID: invoice.ID.String(),
		Amount:    decimal.NewFromInt(100000),
	})
	if err != nil {
		t.Fatalf("final payment: %v", err)
	}
	if paid.Status != domain.InvoiceStatusPaid {
		t.Fatalf("status = %s, want PAID", paid.Status)
	}

	_, err = f.svc.RegisterPayment(context.Background(), domain.RegisterPaymentRequest{
		Actor:     f.actor,
		InvoiceID: invoice.ID.String(),
		Amount:    decimal.NewFromInt(1),
	})
	if !errors.Is(err, domain.ErrNotPending) {
		t.Fatalf("expected not pending on paid invoice, got %v", err)
	}
}

func TestCancelInvoice(t *testing.T) {
	f := setupInvoice(t)
	invoice := f.createInvoice(t, standardLines())

	cancelled, err := f.svc.Cancel(context.Background(), f.actor, invoice.ID.String())
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.InvoiceStatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}
	if !cancelled.BalanceDue.IsZero() {
		t.Fatalf("balance = %s, want 0 after cancel", cancelled.BalanceDue)
	}

	other := f.createInvoice(t, standardLines())
	if _, err := f.svc.RegisterPayment(context.Background(), domain.RegisterPaymentRequest{
		Actor:     f.actor,
		InvoiceID: other.ID.String(),
		Amount:    decimal.NewFromInt(1000),
	}); err != nil {
		t.Fatalf("payment: %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), f.actor, other.ID.String()); !errors.Is(err, domain.ErrNotPending) {
		t.Fatalf("expected not pending for partially paid invoice, got %v", err)
	}
}

func TestListInvoicesByStatus(t *testing.T) {
	f := setupInvoice(t)
	first := f.createInvoice(t, standardLines())
	f.createInvoice(t, standardLines())

	if _, err := f.svc.RegisterPayment(context.Background(), domain.RegisterPaymentRequest{
		Actor:     f.actor,
		InvoiceID: first.ID.String(),
		Amount:    first.Total,
	}); err != nil {
		t.Fatalf("payment: %v", err)
	}

	resp, err := f.svc.List(context.Background(), domain.ListInvoiceRequest{
		Status: domain.InvoiceStatusPaid,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(resp.Invoices) != 1 {
		t.Fatalf("paid invoices = %d, want 1", len(resp.Invoices))
	}
	if resp.Invoices[0].InvoiceNumber != first.InvoiceNumber {
		t.Fatalf("unexpected invoice %s", resp.Invoices[0].InvoiceNumber)
	}
}
