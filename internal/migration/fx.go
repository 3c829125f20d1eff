package migration

import (
	"context"
	"strings"

	"github.com/smallbiznis/polarops/internal/config"
	"github.com/smallbiznis/polarops/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, catalog config.PlanCatalog, log *zap.Logger) error {
		if strings.EqualFold(strings.TrimSpace(cfg.DBType), "postgres") {
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

		created, err := seed.EnsurePlans(context.Background(), conn, catalog)
		if err != nil {
			return err
		}
		if created > 0 {
			log.Info("seeded subscription plans", zap.Int("created", created))
		}

		return config.WatchPlanCatalog(cfg, func(updated config.PlanCatalog, err error) {
			if err != nil {
				log.Warn("plan catalog reload ignored", zap.Error(err))
				return
			}
			created, err := seed.EnsurePlans(context.Background(), conn, updated)
			if err != nil {
				log.Warn("plan catalog reseed failed", zap.Error(err))
				return
			}
			log.Info("plan catalog reloaded", zap.Int("created", created))
		})
	}),
)
