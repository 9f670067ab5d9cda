package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/vendepy/vendepy/internal/company/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) companydomain.Repository {
	return &repository{db: db}
}

func (r *repository) GetActive(ctx context.Context) (*companydomain.CompanySettings, error) {
	var settings companydomain.CompanySettings
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Limit(1).
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	if settings.ID == 0 {
		return nil, nil
	}
	return &settings, nil
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*companydomain.CompanySettings, error) {
	var settings companydomain.CompanySettings
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	if settings.ID == 0 {
		return nil, nil
	}
	return &settings, nil
}

func (r *repository) Create(ctx context.Context, settings *companydomain.CompanySettings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *repository) Update(ctx context.Context, settings *companydomain.CompanySettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
