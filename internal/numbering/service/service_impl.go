package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/vendepy/vendepy/internal/clock"
	numberingdomain "github.com/vendepy/vendepy/internal/numbering/domain"
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

func NewService(p ServiceParam) numberingdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("numbering.service"),
		clock: p.Clock,
	}
}

func (s *Service) NextInvoiceNumber(ctx context.Context, tx *gorm.DB, settingsID snowflake.ID) (int64, error) {
	return s.next(ctx, tx, settingsID, "invoice_number_current")
}

func (s *Service) NextQuoteNumber(ctx context.Context, tx *gorm.DB, settingsID snowflake.ID) (int64, error) {
	return s.next(ctx, tx, settingsID, "quote_number_current")
}

// next performs the atomic read-modify-write on the active settings
// row. The guarded UPDATE takes the row lock first, so the SELECT that
// follows reads our own increment and concurrent issuers queue behind
// us until the surrounding transaction commits. Issued number is the
// counter value before the increment.
func (s *Service) next(ctx context.Context, tx *gorm.DB, settingsID snowflake.ID, column string) (int64, error) {
	if tx == nil {
		tx = s.db
	}

	var issued int64
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(
			`UPDATE company_settings
			 SET `+column+` = `+column+` + 1, updated_at = ?
			 WHERE id = ? AND is_active = ?`,
			s.clock.Now(),
			settingsID,
			true,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return numberingdomain.ErrConfigurationMissing
		}

		var current int64
		if err := tx.Raw(
			`SELECT `+column+` FROM company_settings WHERE id = ?`,
			settingsID,
		).Scan(&current).Error; err != nil {
			return err
		}

		issued = current - 1
		return nil
	})
	if err != nil {
		return 0, err
	}
	return issued, nil
}

func (s *Service) Reset(ctx context.Context, settingsID snowflake.ID, start int64, target numberingdomain.Target) error {
	if start <= 0 {
		return numberingdomain.ErrInvalidStartNumber
	}

	var currentCol, startCol string
	switch target {
	case numberingdomain.TargetInvoices:
		currentCol, startCol = "invoice_number_current", "invoice_number_start"
	case numberingdomain.TargetQuotes:
		currentCol, startCol = "quote_number_current", "quote_number_start"
	default:
		return numberingdomain.ErrInvalidTarget
	}

	result := s.db.WithContext(ctx).Exec(
		`UPDATE company_settings
		 SET `+currentCol+` = ?, `+startCol+` = ?, updated_at = ?
		 WHERE id = ? AND is_active = ?`,
		start,
		start,
		s.clock.Now(),
		settingsID,
		true,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return numberingdomain.ErrConfigurationMissing
	}

	s.log.Warn("document numbering reset",
		zap.String("settings_id", settingsID.String()),
		zap.String("target", string(target)),
		zap.Int64("start", start),
	)
	return nil
}
