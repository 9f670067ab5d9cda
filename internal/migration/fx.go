package migration

import (
	"github.com/vendepy/vendepy/internal/config"
	"github.com/vendepy/vendepy/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB, cfg.DBType); err != nil {
			return err
		}

		if cfg.SeedEnabled && !cfg.IsProduction() {
			return seed.EnsureDevData(conn)
		}
		return seed.EnsureAdminUser(conn)
	}),
)
