package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	// GetActive returns the one active settings row, or nil when the
	// tenant has not been configured yet.
	GetActive(ctx context.Context) (*CompanySettings, error)
	FindByID(ctx context.Context, id snowflake.ID) (*CompanySettings, error)
	Create(ctx context.Context, settings *CompanySettings) error
	Update(ctx context.Context, settings *CompanySettings) error
}
