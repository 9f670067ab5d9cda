package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	// ErrConfigurationMissing means no active company settings row
	// backs the counter. Issuance must fail hard: a fallback number
	// invented outside the counter can collide with a real one.
	ErrConfigurationMissing = errors.New("configuration_missing")
	ErrInvalidStartNumber   = errors.New("invalid_start_number")
	ErrInvalidTarget        = errors.New("invalid_target")
)

// Target selects which document counter an operation addresses.
type Target string

const (
	TargetInvoices Target = "invoices"
	TargetQuotes   Target = "quotes"
)

// Service issues gap-free sequential document numbers from the active
// company settings row. Next* must be called with the transaction the
// document is created in, so a failed creation rolls the counter back
// with it; the row stays locked until that transaction ends, which is
// what serializes concurrent issuers.
type Service interface {
	NextInvoiceNumber(ctx context.Context, tx *gorm.DB, settingsID snowflake.ID) (int64, error)
	NextQuoteNumber(ctx context.Context, tx *gorm.DB, settingsID snowflake.ID) (int64, error)

	// Reset rewinds (or fast-forwards) a counter. Resetting below
	// already-issued numbers produces duplicates; only start > 0 is
	// validated.
	Reset(ctx context.Context, settingsID snowflake.ID, start int64, target Target) error
}
