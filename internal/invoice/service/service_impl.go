package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/vendepy/vendepy/internal/clock"
	companydomain "github.com/vendepy/vendepy/internal/company/domain"
	customerdomain "github.com/vendepy/vendepy/internal/customer/domain"
	"github.com/vendepy/vendepy/internal/fiscal"
	"github.com/vendepy/vendepy/internal/invoice/domain"
	"github.com/vendepy/vendepy/internal/iva"
	numberingdomain "github.com/vendepy/vendepy/internal/numbering/domain"
	usagedomain "github.com/vendepy/vendepy/internal/usagelimit/domain"
	userdomain "github.com/vendepy/vendepy/internal/user/domain"
	"github.com/vendepy/vendepy/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Company   companydomain.Service
	Customers customerdomain.Repository
	Numbering numberingdomain.Service
	Limits    usagedomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	company   companydomain.Service
	customers customerdomain.Repository
	numbering numberingdomain.Service
	limits    usagedomain.Service
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		company:   p.Company,
		customers: p.Customers,
		numbering: p.Numbering,
		limits:    p.Limits,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	if err := s.limits.CheckCanCreate(ctx, req.Actor, usagedomain.ResourceInvoices); err != nil {
		return domain.Invoice{}, err
	}

	condicion := req.CondicionVenta
	if condicion == "" {
		condicion = domain.CondicionContado
	}
	if condicion != domain.CondicionContado && condicion != domain.CondicionCredito {
		return domain.Invoice{}, domain.ErrInvalidCondicion
	}

	if len(req.Lines) == 0 {
		return domain.Invoice{}, domain.ErrNoLines
	}
	for _, line := range req.Lines {
		if strings.TrimSpace(line.Description) == "" ||
			!line.Quantity.IsPositive() ||
			line.UnitPrice.IsNegative() {
			return domain.Invoice{}, domain.ErrInvalidLine
		}
	}

	settings, err := s.company.Get(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}
	if !settings.ConfigComplete {
		return domain.Invoice{}, companydomain.ErrIncompleteSettings
	}

	now := s.clock.Now()
	timbrado, err := fiscal.ValidateTimbrado(settings.Timbrado, settings.TimbradoExpiry, now)
	if err != nil {
		return domain.Invoice{}, err
	}
	if timbrado.ExpiryWarning {
		s.log.Warn("timbrado close to expiry",
			zap.String("timbrado", timbrado.Number),
			zap.Int("days_to_expire", timbrado.DaysToExpire),
		)
	}

	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.Invoice{}, err
	}
	customer, err := s.customers.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if customer == nil {
		return domain.Invoice{}, customerdomain.ErrNotFound
	}
	if !customer.IsActive {
		return domain.Invoice{}, domain.ErrCustomerInactive
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = settings.DefaultCurrency
	}

	lines := make([]domain.InvoiceLine, 0, len(req.Lines))
	calcLines := make([]iva.Line, 0, len(req.Lines))
	for _, in := range req.Lines {
		lineTotal := in.Quantity.Mul(in.UnitPrice)
		category := iva.NormalizeCategory(in.IVACategory)
		lines = append(lines, domain.InvoiceLine{
			ID:          s.genID.Generate(),
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			LineTotal:   lineTotal,
			IVACategory: category,
			CreatedAt:   now,
		})
		calcLines = append(calcLines, iva.Line{LineTotal: lineTotal, Category: category})
	}

	breakdown := iva.CalculateBreakdown(calcLines, settings.IVA10Rate, settings.IVA5Rate)
	tourism := customer.TourismEligible(now)
	if tourism {
		breakdown = iva.ApplyTourismRegime(breakdown, decimal.NewFromInt(100))
	}

	invoice := domain.Invoice{
		ID:             s.genID.Generate(),
		CustomerID:     customerID,
		Status:         domain.InvoiceStatusPending,
		CondicionVenta: condicion,
		Currency:       currency,

		EmitterRUC:         settings.RUC,
		EmitterRazonSocial: settings.RazonSocial,
		Timbrado:           settings.Timbrado,
		TimbradoExpiry:     settings.TimbradoExpiry,
		PuntoExpedicion:    settings.PuntoExpedicion,

		SubtotalGravado10: breakdown.Gravado10,
		SubtotalGravado5:  breakdown.Gravado5,
		SubtotalExento:    breakdown.Exento,
		IVA10:             breakdown.IVA10,
		IVA5:              breakdown.IVA5,
		TotalIVA:          breakdown.TotalIVA,
		Subtotal:          breakdown.Subtotal,
		Total:             breakdown.Total,

		TourismRegimeApplied: tourism,
		TourismDiscount:      breakdown.TourismDiscount,

		PaidAmount: decimal.Zero,
		BalanceDue: breakdown.Total,

		IssueDate: now,
		DueDate:   req.DueDate,
		Notes:     req.Notes,

		CreatedByID: req.Actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := s.numbering.NextInvoiceNumber(ctx, tx, settings.ID)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = fiscal.FormatDocumentNumber(seq, settings.PuntoExpedicion)

		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].InvoiceID = invoice.ID
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice.Lines = lines

	s.log.Info("invoice issued",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("customer_id", customerID.String()),
		zap.String("total", invoice.Total.StringFixed(2)),
		zap.Bool("tourism_regime", tourism),
	)
	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return domain.Invoice{}, err
	}

	var invoice domain.Invoice
	if err := s.db.WithContext(ctx).
		Where("id = ?", invoiceID).
		Limit(1).
		Find(&invoice).Error; err != nil {
		return domain.Invoice{}, err
	}
	if invoice.ID == 0 {
		return domain.Invoice{}, domain.ErrNotFound
	}

	if err := s.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("id asc").
		Find(&invoice.Lines).Error; err != nil {
		return domain.Invoice{}, err
	}
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	stmt := s.db.WithContext(ctx).Model(&domain.Invoice{})
	if req.CustomerID != "" {
		customerID, err := parseID(req.CustomerID)
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
		stmt = stmt.Where("customer_id = ?", customerID)
	}
	if req.Status != "" {
		stmt = stmt.Where("status = ?", req.Status)
	}

	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
		createdAt, err := time.Parse(time.RFC3339, cursor.CreatedAt)
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
		stmt = stmt.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			createdAt, createdAt, id,
		)
	}

	var items []*domain.Invoice
	if err := stmt.
		Order("created_at desc, id desc").
		Limit(pageSize + 1).
		Find(&items).Error; err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		invoices = append(invoices, *item)
	}

	return domain.ListInvoiceResponse{
		PageInfo: pageInfo,
		Invoices: invoices,
	}, nil
}

func (s *Service) RegisterPayment(ctx context.Context, req domain.RegisterPaymentRequest) (domain.Invoice, error) {
	invoiceID, err := parseID(req.InvoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if !req.Amount.IsPositive() {
		return domain.Invoice{}, domain.ErrInvalidLine
	}

	var updated domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := lockInvoice(tx, invoiceID)
		if err != nil {
			return err
		}

		if invoice.Status == domain.InvoiceStatusCancelled || invoice.Status == domain.InvoiceStatusPaid {
			return domain.ErrNotPending
		}
		if invoice.BalanceDue.LessThan(req.Amount) {
			return &domain.OverpaymentError{
				BalanceDue: invoice.BalanceDue,
				Requested:  req.Amount,
			}
		}

		now := s.clock.Now()
		invoice.PaidAmount = invoice.PaidAmount.Add(req.Amount)
		invoice.BalanceDue = invoice.BalanceDue.Sub(req.Amount)
		if invoice.BalanceDue.IsZero() {
			invoice.Status = domain.InvoiceStatusPaid
		} else {
			invoice.Status = domain.InvoiceStatusPartiallyPaid
		}
		invoice.UpdatedAt = now
		if err := tx.Save(invoice).Error; err != nil {
			return err
		}

		payment := domain.InvoicePayment{
			ID:           s.genID.Generate(),
			InvoiceID:    invoice.ID,
			Amount:       req.Amount,
			Method:       req.Method,
			Reference:    req.Reference,
			Notes:        req.Notes,
			ReceivedByID: req.Actor.ID,
			PaidAt:       now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		updated = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice payment registered",
		zap.String("invoice_number", updated.InvoiceNumber),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

func (s *Service) Cancel(ctx context.Context, actor userdomain.User, id string) (domain.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return domain.Invoice{}, err
	}

	var cancelled domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := lockInvoice(tx, invoiceID)
		if err != nil {
			return err
		}

		// Paid money has to be unwound before voiding; only untouched
		// pending invoices can be cancelled.
		if invoice.Status != domain.InvoiceStatusPending || invoice.PaidAmount.IsPositive() {
			return domain.ErrNotPending
		}

		invoice.Status = domain.InvoiceStatusCancelled
		invoice.BalanceDue = decimal.Zero
		invoice.UpdatedAt = s.clock.Now()
		if err := tx.Save(invoice).Error; err != nil {
			return err
		}

		cancelled = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice cancelled",
		zap.String("invoice_number", cancelled.InvoiceNumber),
		zap.String("cancelled_by", actor.ID.String()),
	)
	return cancelled, nil
}

// lockInvoice takes the row lock before reading so the balance the
// validation sees cannot move under a concurrent payment.
func lockInvoice(tx *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	result := tx.Exec(`UPDATE invoices SET updated_at = updated_at WHERE id = ?`, id)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}

	var invoice domain.Invoice
	if err := tx.Where("id = ?", id).Limit(1).Find(&invoice).Error; err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, domain.ErrNotFound
	}
	return &invoice, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
