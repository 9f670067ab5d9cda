package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/vendepy/vendepy/internal/clock"
	customerdomain "github.com/vendepy/vendepy/internal/customer/domain"
	"github.com/vendepy/vendepy/internal/deposit/domain"
	userdomain "github.com/vendepy/vendepy/internal/user/domain"
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
	Customers customerdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	customers customerdomain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("deposit.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		customers: p.Customers,
	}
}

var validTypes = map[domain.DepositType]bool{
	domain.TypeAnticipo: true,
	domain.TypeSena:     true,
	domain.TypeGarantia: true,
	domain.TypeCaucion:  true,
	domain.TypeParcial:  true,
}

func (s *Service) Create(ctx context.Context, req domain.CreateDepositRequest) (domain.Deposit, error) {
	if err := canManage(req.Actor); err != nil {
		return domain.Deposit{}, err
	}

	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.Deposit{}, err
	}
	if !req.Amount.IsPositive() {
		return domain.Deposit{}, domain.ErrInvalidAmount
	}

	depositType := req.Type
	if depositType == "" {
		depositType = domain.TypeAnticipo
	}
	if !validTypes[depositType] {
		return domain.Deposit{}, domain.ErrInvalidType
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "PYG"
	}

	customer, err := s.customers.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Deposit{}, err
	}
	if customer == nil {
		return domain.Deposit{}, customerdomain.ErrNotFound
	}

	now := s.clock.Now()
	received := now
	if req.ReceivedDate != nil {
		received = req.ReceivedDate.UTC()
	}

	deposit := domain.Deposit{
		ID:              s.genID.Generate(),
		CustomerID:      customerID,
		Type:            depositType,
		Status:          domain.StatusActivo,
		Currency:        currency,
		Amount:          req.Amount,
		AppliedAmount:   decimal.Zero,
		AvailableAmount: req.Amount,
		ReceivedDate:    received,
		ExpiryDate:      req.ExpiryDate,
		PaymentMethod:   req.PaymentMethod,
		Reference:       req.Reference,
		Notes:           req.Notes,
		CreatedByID:     req.Actor.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.nextDepositNumber(ctx, tx, now)
		if err != nil {
			return err
		}
		deposit.DepositNumber = number

		if err := tx.Create(&deposit).Error; err != nil {
			return err
		}
		return s.recomputeSummary(ctx, tx, customerID)
	})
	if err != nil {
		return domain.Deposit{}, err
	}

	s.log.Info("deposit created",
		zap.String("deposit_number", deposit.DepositNumber),
		zap.String("customer_id", customerID.String()),
		zap.String("amount", deposit.Amount.StringFixed(2)),
		zap.String("currency", currency),
	)
	return deposit, nil
}

// nextDepositNumber issues DEP<yyyymm><seq> numbers. The sequence
// restarts each month; the unique index on deposit_number catches the
// rare collision between concurrent creators.
func (s *Service) nextDepositNumber(ctx context.Context, tx *gorm.DB, now time.Time) (string, error) {
	prefix := fmt.Sprintf("DEP%04d%02d", now.UTC().Year(), int(now.UTC().Month()))

	var count int64
	if err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM deposits WHERE deposit_number LIKE ?`,
		prefix+"%",
	).Scan(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Deposit, error) {
	depositID, err := parseID(id)
	if err != nil {
		return domain.Deposit{}, err
	}

	var deposit domain.Deposit
	if err := s.db.WithContext(ctx).
		Where("id = ?", depositID).
		Limit(1).
		Find(&deposit).Error; err != nil {
		return domain.Deposit{}, err
	}
	if deposit.ID == 0 {
		return domain.Deposit{}, domain.ErrNotFound
	}
	return deposit, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]domain.Deposit, error) {
	id, err := parseID(customerID)
	if err != nil {
		return nil, err
	}

	var deposits []domain.Deposit
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", id).
		Order("received_date desc, id desc").
		Find(&deposits).Error; err != nil {
		return nil, err
	}
	return deposits, nil
}

// invoiceBalance is the slice of the invoice row the apply flow needs.
type invoiceBalance struct {
	ID         snowflake.ID
	CustomerID snowflake.ID
	Currency   string
	Total      decimal.Decimal
	PaidAmount decimal.Decimal
	BalanceDue decimal.Decimal
}

func (s *Service) ApplyToInvoice(ctx context.Context, req domain.ApplyRequest) (domain.Deposit, error) {
	if err := canManage(req.Actor); err != nil {
		return domain.Deposit{}, err
	}

	depositID, err := parseID(req.DepositID)
	if err != nil {
		return domain.Deposit{}, err
	}
	invoiceID, err := parseID(req.InvoiceID)
	if err != nil {
		return domain.Deposit{}, err
	}
	if !req.Amount.IsPositive() {
		return domain.Deposit{}, domain.ErrInvalidAmount
	}

	var applied domain.Deposit
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deposit, err := s.lockDeposit(ctx, tx, depositID)
		if err != nil {
			return err
		}

		var invoice invoiceBalance
		if err := tx.Raw(
			`SELECT id, customer_id, currency, total, paid_amount, balance_due
			 FROM invoices WHERE id = ?`,
			invoiceID,
		).Scan(&invoice).Error; err != nil {
			return err
		}
		if invoice.ID == 0 {
			return domain.ErrInvoiceNotFound
		}

		// Validation order matters for the error the caller sees:
		// state, ownership, currency, then the two amount checks.
		if deposit.Status != domain.StatusActivo {
			return &domain.NotActiveError{Status: deposit.Status}
		}
		if deposit.CustomerID != invoice.CustomerID {
			return &domain.CustomerMismatchError{
				DepositCustomerID: deposit.CustomerID,
				InvoiceCustomerID: invoice.CustomerID,
			}
		}
		if deposit.Currency != invoice.Currency {
			return &domain.CurrencyMismatchError{
				DepositCurrency: deposit.Currency,
				InvoiceCurrency: invoice.Currency,
			}
		}
		if deposit.AvailableAmount.LessThan(req.Amount) {
			return &domain.InsufficientFundsError{
				Available: deposit.AvailableAmount,
				Requested: req.Amount,
			}
		}
		if invoice.BalanceDue.LessThan(req.Amount) {
			return &domain.ExceedsBalanceError{
				BalanceDue: invoice.BalanceDue,
				Requested:  req.Amount,
			}
		}

		now := s.clock.Now()
		deposit.AppliedAmount = deposit.AppliedAmount.Add(req.Amount)
		deposit.AvailableAmount = deposit.AvailableAmount.Sub(req.Amount)
		if deposit.AvailableAmount.IsZero() {
			deposit.Status = domain.StatusAplicado
		}
		deposit.UpdatedAt = now
		if err := tx.Save(deposit).Error; err != nil {
			return err
		}

		application := domain.DepositApplication{
			ID:          s.genID.Generate(),
			DepositID:   deposit.ID,
			InvoiceID:   invoice.ID,
			Amount:      req.Amount,
			Notes:       req.Notes,
			AppliedByID: req.Actor.ID,
			AppliedAt:   now,
		}
		if err := tx.Create(&application).Error; err != nil {
			return err
		}

		newPaid := invoice.PaidAmount.Add(req.Amount)
		newBalance := invoice.BalanceDue.Sub(req.Amount)
		status := "PENDING"
		if newBalance.IsZero() {
			status = "PAID"
		} else if newPaid.IsPositive() {
			status = "PARTIALLY_PAID"
		}
		if err := tx.Exec(
			`UPDATE invoices
			 SET paid_amount = ?, balance_due = ?, status = ?, updated_at = ?
			 WHERE id = ?`,
			newPaid, newBalance, status, now, invoice.ID,
		).Error; err != nil {
			return err
		}

		if err := s.recomputeSummary(ctx, tx, deposit.CustomerID); err != nil {
			return err
		}

		applied = *deposit
		return nil
	})
	if err != nil {
		return domain.Deposit{}, err
	}

	s.log.Info("deposit applied to invoice",
		zap.String("deposit_number", applied.DepositNumber),
		zap.String("invoice_id", invoiceID.String()),
		zap.String("amount", req.Amount.StringFixed(2)),
	)
	return applied, nil
}

func (s *Service) Refund(ctx context.Context, req domain.RefundRequest) (domain.Deposit, error) {
	if err := canManage(req.Actor); err != nil {
		return domain.Deposit{}, err
	}

	depositID, err := parseID(req.DepositID)
	if err != nil {
		return domain.Deposit{}, err
	}
	if req.Amount.IsNegative() {
		return domain.Deposit{}, domain.ErrInvalidAmount
	}

	var refunded domain.Deposit
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deposit, err := s.lockDeposit(ctx, tx, depositID)
		if err != nil {
			return err
		}

		// Expired and fully applied deposits can still reach the
		// refund path; only an already returned one is a dead end. A
		// drained APLICADO deposit falls out below with the funds
		// check, which names the amounts.
		if deposit.Status == domain.StatusDevuelto {
			return &domain.NotActiveError{Status: deposit.Status}
		}

		amount := req.Amount
		if amount.IsZero() {
			amount = deposit.AvailableAmount
		}
		if !amount.IsPositive() || deposit.AvailableAmount.LessThan(amount) {
			return &domain.InsufficientFundsError{
				Available: deposit.AvailableAmount,
				Requested: amount,
			}
		}

		now := s.clock.Now()
		deposit.AvailableAmount = deposit.AvailableAmount.Sub(amount)
		if deposit.AvailableAmount.IsZero() {
			deposit.Status = domain.StatusDevuelto
		}

		note := fmt.Sprintf("Devolución %s %s el %s",
			deposit.Currency, amount.StringFixed(2), now.Format("2006-01-02"))
		if req.Reason != nil && strings.TrimSpace(*req.Reason) != "" {
			note += ": " + strings.TrimSpace(*req.Reason)
		}
		if deposit.Notes != nil && *deposit.Notes != "" {
			note = *deposit.Notes + "\n" + note
		}
		deposit.Notes = &note
		deposit.UpdatedAt = now

		if err := tx.Save(deposit).Error; err != nil {
			return err
		}

		refund := domain.DepositRefund{
			ID:           s.genID.Generate(),
			DepositID:    deposit.ID,
			Amount:       amount,
			Reason:       req.Reason,
			Method:       req.Method,
			RefundedByID: req.Actor.ID,
			RefundedAt:   now,
		}
		if err := tx.Create(&refund).Error; err != nil {
			return err
		}

		if err := s.recomputeSummary(ctx, tx, deposit.CustomerID); err != nil {
			return err
		}

		refunded = *deposit
		return nil
	})
	if err != nil {
		return domain.Deposit{}, err
	}

	s.log.Info("deposit refunded",
		zap.String("deposit_number", refunded.DepositNumber),
		zap.String("status", string(refunded.Status)),
	)
	return refunded, nil
}

func (s *Service) ExpireDeposits(ctx context.Context) (int64, error) {
	var expired int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()

		var customerIDs []snowflake.ID
		if err := tx.Raw(
			`SELECT DISTINCT customer_id FROM deposits
			 WHERE status = ? AND expiry_date IS NOT NULL AND expiry_date < ?`,
			domain.StatusActivo, now,
		).Scan(&customerIDs).Error; err != nil {
			return err
		}

		result := tx.Exec(
			`UPDATE deposits SET status = ?, updated_at = ?
			 WHERE status = ? AND expiry_date IS NOT NULL AND expiry_date < ?`,
			domain.StatusVencido, now, domain.StatusActivo, now,
		)
		if result.Error != nil {
			return result.Error
		}
		expired = result.RowsAffected

		for _, customerID := range customerIDs {
			if err := s.recomputeSummary(ctx, tx, customerID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		s.log.Info("deposits expired", zap.Int64("count", expired))
	}
	return expired, nil
}

func (s *Service) Summary(ctx context.Context, customerID string) ([]domain.CustomerDepositSummary, error) {
	id, err := parseID(customerID)
	if err != nil {
		return nil, err
	}

	var summaries []domain.CustomerDepositSummary
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", id).
		Order("currency asc").
		Find(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

// lockDeposit takes the row lock before reading, so the amounts the
// validation sees cannot move under a concurrent apply or refund.
func (s *Service) lockDeposit(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Deposit, error) {
	result := tx.Exec(
		`UPDATE deposits SET updated_at = updated_at WHERE id = ?`, id,
	)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}

	var deposit domain.Deposit
	if err := tx.Where("id = ?", id).Limit(1).Find(&deposit).Error; err != nil {
		return nil, err
	}
	if deposit.ID == 0 {
		return nil, domain.ErrNotFound
	}
	return &deposit, nil
}

// recomputeSummary rebuilds the per-currency aggregate rows for one
// customer from the deposit rows. Deleting and re-inserting keeps the
// summary honest even after expiry sweeps change many rows at once.
func (s *Service) recomputeSummary(ctx context.Context, tx *gorm.DB, customerID snowflake.ID) error {
	type aggregate struct {
		Currency       string
		TotalAvailable decimal.Decimal
		AllAvailable   decimal.Decimal
		TotalApplied   decimal.Decimal
		TotalAmount    decimal.Decimal
		ActiveCount    int
	}

	var rows []aggregate
	if err := tx.WithContext(ctx).Raw(
		`SELECT currency,
		        COALESCE(SUM(CASE WHEN status = ? THEN available_amount ELSE 0 END), 0) AS total_available,
		        COALESCE(SUM(available_amount), 0) AS all_available,
		        COALESCE(SUM(applied_amount), 0) AS total_applied,
		        COALESCE(SUM(amount), 0) AS total_amount,
		        COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS active_count
		 FROM deposits
		 WHERE customer_id = ?
		 GROUP BY currency`,
		domain.StatusActivo, domain.StatusActivo, customerID,
	).Scan(&rows).Error; err != nil {
		return err
	}

	if err := tx.Exec(
		`DELETE FROM customer_deposit_summary WHERE customer_id = ?`, customerID,
	).Error; err != nil {
		return err
	}

	now := s.clock.Now()
	for _, row := range rows {
		refunded := row.TotalAmount.Sub(row.TotalApplied).Sub(row.AllAvailable)

		summary := domain.CustomerDepositSummary{
			ID:             s.genID.Generate(),
			CustomerID:     customerID,
			Currency:       row.Currency,
			TotalAvailable: row.TotalAvailable,
			TotalApplied:   row.TotalApplied,
			TotalRefunded:  refunded,
			ActiveCount:    row.ActiveCount,
			UpdatedAt:      now,
		}
		if err := tx.Create(&summary).Error; err != nil {
			return err
		}
	}
	return nil
}

func canManage(actor userdomain.User) error {
	if actor.Unlimited() || actor.CanManageDeposits {
		return nil
	}
	return domain.ErrForbidden
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
