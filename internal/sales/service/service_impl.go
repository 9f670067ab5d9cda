package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/vendepy/vendepy/internal/clock"
	companydomain "github.com/vendepy/vendepy/internal/company/domain"
	customerdomain "github.com/vendepy/vendepy/internal/customer/domain"
	"github.com/vendepy/vendepy/internal/iva"
	numberingdomain "github.com/vendepy/vendepy/internal/numbering/domain"
	"github.com/vendepy/vendepy/internal/sales/domain"
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
		log:       p.Log.Named("sales.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		company:   p.Company,
		customers: p.Customers,
		numbering: p.Numbering,
		limits:    p.Limits,
	}
}

func (s *Service) CreateQuote(ctx context.Context, req domain.CreateQuoteRequest) (domain.Quote, error) {
	if err := s.limits.CheckCanCreate(ctx, req.Actor, usagedomain.ResourceQuotes); err != nil {
		return domain.Quote{}, err
	}

	if len(req.Lines) == 0 {
		return domain.Quote{}, domain.ErrNoLines
	}
	for _, line := range req.Lines {
		if strings.TrimSpace(line.Description) == "" ||
			!line.Quantity.IsPositive() ||
			line.UnitPrice.IsNegative() {
			return domain.Quote{}, domain.ErrInvalidLine
		}
	}

	// Quotes are not fiscal documents: they need the active settings
	// for rates and numbering, but no timbrado check.
	settings, err := s.company.Get(ctx)
	if err != nil {
		return domain.Quote{}, err
	}

	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.Quote{}, err
	}
	customer, err := s.customers.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Quote{}, err
	}
	if customer == nil {
		return domain.Quote{}, customerdomain.ErrNotFound
	}
	if !customer.IsActive {
		return domain.Quote{}, domain.ErrCustomerInactive
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = settings.DefaultCurrency
	}

	now := s.clock.Now()
	lines := make([]domain.QuoteLine, 0, len(req.Lines))
	calcLines := make([]iva.Line, 0, len(req.Lines))
	for _, in := range req.Lines {
		lineTotal := in.Quantity.Mul(in.UnitPrice)
		category := iva.NormalizeCategory(in.IVACategory)
		lines = append(lines, domain.QuoteLine{
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

	quote := domain.Quote{
		ID:         s.genID.Generate(),
		CustomerID: customerID,
		Status:     domain.QuoteStatusPending,
		Currency:   currency,

		SubtotalGravado10: breakdown.Gravado10,
		SubtotalGravado5:  breakdown.Gravado5,
		SubtotalExento:    breakdown.Exento,
		IVA10:             breakdown.IVA10,
		IVA5:              breakdown.IVA5,
		TotalIVA:          breakdown.TotalIVA,
		Subtotal:          breakdown.Subtotal,
		Total:             breakdown.Total,

		ValidUntil: req.ValidUntil,
		Notes:      req.Notes,

		CreatedByID: req.Actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := s.numbering.NextQuoteNumber(ctx, tx, settings.ID)
		if err != nil {
			return err
		}
		quote.QuoteNumber = fmt.Sprintf("PRE-%07d", seq)

		if err := tx.Create(&quote).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].QuoteID = quote.ID
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		return domain.Quote{}, err
	}
	quote.Lines = lines

	s.log.Info("quote created",
		zap.String("quote_number", quote.QuoteNumber),
		zap.String("customer_id", customerID.String()),
		zap.String("total", quote.Total.StringFixed(2)),
	)
	return quote, nil
}

func (s *Service) GetQuote(ctx context.Context, id string) (domain.Quote, error) {
	quoteID, err := parseID(id)
	if err != nil {
		return domain.Quote{}, err
	}

	var quote domain.Quote
	if err := s.db.WithContext(ctx).
		Where("id = ?", quoteID).
		Limit(1).
		Find(&quote).Error; err != nil {
		return domain.Quote{}, err
	}
	if quote.ID == 0 {
		return domain.Quote{}, domain.ErrQuoteNotFound
	}

	if err := s.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("id asc").
		Find(&quote.Lines).Error; err != nil {
		return domain.Quote{}, err
	}
	return quote, nil
}

func (s *Service) ListQuotes(ctx context.Context, req domain.ListQuoteRequest) (domain.ListQuoteResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	stmt := s.db.WithContext(ctx).Model(&domain.Quote{})
	if req.CustomerID != "" {
		customerID, err := parseID(req.CustomerID)
		if err != nil {
			return domain.ListQuoteResponse{}, err
		}
		stmt = stmt.Where("customer_id = ?", customerID)
	}
	if req.Status != "" {
		stmt = stmt.Where("status = ?", req.Status)
	}

	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListQuoteResponse{}, err
		}
		createdAt, err := time.Parse(time.RFC3339, cursor.CreatedAt)
		if err != nil {
			return domain.ListQuoteResponse{}, err
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return domain.ListQuoteResponse{}, err
		}
		stmt = stmt.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			createdAt, createdAt, id,
		)
	}

	var items []*domain.Quote
	if err := stmt.
		Order("created_at desc, id desc").
		Limit(pageSize + 1).
		Find(&items).Error; err != nil {
		return domain.ListQuoteResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(quote *domain.Quote) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        quote.ID.String(),
			CreatedAt: quote.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})

	quotes := make([]domain.Quote, 0, len(items))
	for _, item := range items {
		quotes = append(quotes, *item)
	}

	return domain.ListQuoteResponse{
		PageInfo: pageInfo,
		Quotes:   quotes,
	}, nil
}

func (s *Service) UpdateQuoteStatus(ctx context.Context, actor userdomain.User, id string, status domain.QuoteStatus) (domain.Quote, error) {
	if status != domain.QuoteStatusAccepted && status != domain.QuoteStatusRejected {
		return domain.Quote{}, domain.ErrQuoteNotPending
	}

	quoteID, err := parseID(id)
	if err != nil {
		return domain.Quote{}, err
	}

	var updated domain.Quote
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quote, err := s.lockQuote(tx, quoteID)
		if err != nil {
			return err
		}
		if quote.Status != domain.QuoteStatusPending {
			return domain.ErrQuoteNotPending
		}

		quote.Status = status
		quote.UpdatedAt = s.clock.Now()
		if err := tx.Save(quote).Error; err != nil {
			return err
		}
		updated = *quote
		return nil
	})
	if err != nil {
		return domain.Quote{}, err
	}

	s.log.Info("quote status updated",
		zap.String("quote_number", updated.QuoteNumber),
		zap.String("status", string(updated.Status)),
		zap.String("updated_by", actor.ID.String()),
	)
	return updated, nil
}

func (s *Service) ConvertToOrder(ctx context.Context, actor userdomain.User, quoteID string) (domain.SalesOrder, error) {
	if err := s.limits.CheckCanCreate(ctx, actor, usagedomain.ResourceOrders); err != nil {
		return domain.SalesOrder{}, err
	}

	id, err := parseID(quoteID)
	if err != nil {
		return domain.SalesOrder{}, err
	}

	var order domain.SalesOrder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quote, err := s.lockQuote(tx, id)
		if err != nil {
			return err
		}

		if quote.Status != domain.QuoteStatusPending && quote.Status != domain.QuoteStatusAccepted {
			return domain.ErrQuoteNotPending
		}
		now := s.clock.Now()
		if quote.ValidUntil != nil && quote.ValidUntil.Before(now) {
			quote.Status = domain.QuoteStatusExpired
			quote.UpdatedAt = now
			if err := tx.Save(quote).Error; err != nil {
				return err
			}
			return domain.ErrQuoteExpired
		}

		var quoteLines []domain.QuoteLine
		if err := tx.Where("quote_id = ?", quote.ID).Order("id asc").Find(&quoteLines).Error; err != nil {
			return err
		}

		number, err := s.nextOrderNumber(ctx, tx, now)
		if err != nil {
			return err
		}

		quoteRef := quote.ID
		order = domain.SalesOrder{
			ID:          s.genID.Generate(),
			OrderNumber: number,
			QuoteID:     &quoteRef,
			CustomerID:  quote.CustomerID,
			Status:      domain.OrderStatusPending,
			Currency:    quote.Currency,
			Subtotal:    quote.Subtotal,
			TotalIVA:    quote.TotalIVA,
			Total:       quote.Total,
			Notes:       quote.Notes,
			CreatedByID: actor.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		orderLines := make([]domain.SalesOrderLine, 0, len(quoteLines))
		for _, line := range quoteLines {
			orderLines = append(orderLines, domain.SalesOrderLine{
				ID:           s.genID.Generate(),
				SalesOrderID: order.ID,
				Description:  line.Description,
				Quantity:     line.Quantity,
				UnitPrice:    line.UnitPrice,
				LineTotal:    line.LineTotal,
				IVACategory:  line.IVACategory,
				CreatedAt:    now,
			})
		}
		if len(orderLines) > 0 {
			if err := tx.Create(&orderLines).Error; err != nil {
				return err
			}
		}
		order.Lines = orderLines

		quote.Status = domain.QuoteStatusConverted
		quote.UpdatedAt = now
		return tx.Save(quote).Error
	})
	if err != nil {
		return domain.SalesOrder{}, err
	}

	s.log.Info("quote converted to order",
		zap.String("order_number", order.OrderNumber),
		zap.String("quote_id", quoteID),
	)
	return order, nil
}

func (s *Service) ExpireQuotes(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Exec(
		`UPDATE quotes SET status = ?, updated_at = ? WHERE status IN (?, ?) AND valid_until IS NOT NULL AND valid_until < ?`,
		domain.QuoteStatusExpired,
		s.clock.Now(),
		domain.QuoteStatusPending,
		domain.QuoteStatusAccepted,
		s.clock.Now(),
	)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		s.log.Info("quotes expired", zap.Int64("count", result.RowsAffected))
	}
	return result.RowsAffected, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.SalesOrder, error) {
	orderID, err := parseID(id)
	if err != nil {
		return domain.SalesOrder{}, err
	}

	var order domain.SalesOrder
	if err := s.db.WithContext(ctx).
		Where("id = ?", orderID).
		Limit(1).
		Find(&order).Error; err != nil {
		return domain.SalesOrder{}, err
	}
	if order.ID == 0 {
		return domain.SalesOrder{}, domain.ErrOrderNotFound
	}

	if err := s.db.WithContext(ctx).
		Where("sales_order_id = ?", orderID).
		Order("id asc").
		Find(&order.Lines).Error; err != nil {
		return domain.SalesOrder{}, err
	}
	return order, nil
}

func (s *Service) CancelOrder(ctx context.Context, actor userdomain.User, id string) (domain.SalesOrder, error) {
	orderID, err := parseID(id)
	if err != nil {
		return domain.SalesOrder{}, err
	}

	var cancelled domain.SalesOrder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(`UPDATE sales_orders SET updated_at = updated_at WHERE id = ?`, orderID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrOrderNotFound
		}

		var order domain.SalesOrder
		if err := tx.Where("id = ?", orderID).Limit(1).Find(&order).Error; err != nil {
			return err
		}
		if order.ID == 0 {
			return domain.ErrOrderNotFound
		}
		if order.Status != domain.OrderStatusPending {
			return domain.ErrOrderNotPending
		}

		order.Status = domain.OrderStatusCancelled
		order.UpdatedAt = s.clock.Now()
		if err := tx.Save(&order).Error; err != nil {
			return err
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return domain.SalesOrder{}, err
	}

	s.log.Info("sales order cancelled",
		zap.String("order_number", cancelled.OrderNumber),
		zap.String("cancelled_by", actor.ID.String()),
	)
	return cancelled, nil
}

// nextOrderNumber issues ORD<yyyymm><seq> numbers, restarting each
// month; the unique index on order_number catches collisions.
func (s *Service) nextOrderNumber(ctx context.Context, tx *gorm.DB, now time.Time) (string, error) {
	prefix := fmt.Sprintf("ORD%04d%02d", now.UTC().Year(), int(now.UTC().Month()))

	var count int64
	if err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM sales_orders WHERE order_number LIKE ?`,
		prefix+"%",
	).Scan(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

func (s *Service) lockQuote(tx *gorm.DB, id snowflake.ID) (*domain.Quote, error) {
	result := tx.Exec(`UPDATE quotes SET updated_at = updated_at WHERE id = ?`, id)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrQuoteNotFound
	}

	var quote domain.Quote
	if err := tx.Where("id = ?", id).Limit(1).Find(&quote).Error; err != nil {
		return nil, err
	}
	if quote.ID == 0 {
		return nil, domain.ErrQuoteNotFound
	}
	return &quote, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
