package migration

import (
	auditdomain "github.com/smallbiznis/worksuite/internal/audit/domain"
	"github.com/smallbiznis/worksuite/internal/config"
	invoicedomain "github.com/smallbiznis/worksuite/internal/invoice/domain"
	lifecycledomain "github.com/smallbiznis/worksuite/internal/lifecycle/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite and mysql are dev/test setups; let gorm derive the schema
			return conn.AutoMigrate(
				&lifecycledomain.EntityRecord{},
				&invoicedomain.Invoice{},
				&invoicedomain.InvoiceItem{},
				&invoicedomain.Payment{},
				&auditdomain.AuditLog{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
