// Package seed bootstraps a fresh database with the records the
// application cannot run without: an admin user, and in development a
// sample fiscal configuration.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	companydomain "github.com/vendepy/vendepy/internal/company/domain"
	userdomain "github.com/vendepy/vendepy/internal/user/domain"
	"github.com/vendepy/vendepy/internal/user/password"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@vendepy.local"
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin1234"
	defaultAdminDisplay  = "Administrador"
)

// EnsureAdminUser creates the default admin account if no user exists.
func EnsureAdminUser(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ensureAdminUserTx(ctx, tx, node)
	})
}

// EnsureDevData seeds the admin user plus a sample company
// configuration so a development install can issue documents
// immediately. Never called in production.
func EnsureDevData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureAdminUserTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureCompanySettingsTx(ctx, tx, node)
	})
}

func ensureAdminUserTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&userdomain.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := password.Hash(defaultAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := userdomain.User{
		ID:             node.Generate(),
		Email:          defaultAdminEmail,
		Username:       defaultAdminUsername,
		FullName:       defaultAdminDisplay,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    true,
		Role:           userdomain.RoleAdmin,

		MaxCustomers: 10,
		MaxQuotes:    20,
		MaxOrders:    15,
		MaxInvoices:  10,

		CanManageDeposits:      true,
		CanManageTourismRegime: true,

		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&admin).Error
}

func ensureCompanySettingsTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&companydomain.CompanySettings{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	expiry := now.AddDate(1, 0, 0)
	settings := companydomain.CompanySettings{
		ID:              node.Generate(),
		RazonSocial:     "Empresa Demo SA",
		RUC:             "80012345-3",
		RUCCheckDigit:   "3",
		Timbrado:        "12345678",
		TimbradoExpiry:  &expiry,
		PuntoExpedicion: "001",
		Direccion:       "Avda. Mcal. López 1234",
		Ciudad:          "Asunción",
		DefaultCurrency: "PYG",

		IVA10Rate: decimal.NewFromInt(10),
		IVA5Rate:  decimal.NewFromInt(5),

		InvoiceNumberStart:   1,
		InvoiceNumberCurrent: 1,
		QuoteNumberStart:     1,
		QuoteNumberCurrent:   1,

		RegimenTributario: "GENERAL",
		ContribuyenteIVA:  true,
		IsActive:          true,
		ConfigComplete:    true,

		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&settings).Error
}
