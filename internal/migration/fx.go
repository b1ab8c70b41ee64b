package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/hydrocore/waterworks/internal/config"
	"github.com/hydrocore/waterworks/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else if err := AutoMigrate(conn); err != nil {
			return err
		}

		return seed.EnsureDefaults(conn, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
	}),
)
