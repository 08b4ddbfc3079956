package migration

import (
	customerdomain "github.com/vagaparlabs/vagapark/internal/customer/domain"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
	ticketdomain "github.com/vagaparlabs/vagapark/internal/ticket/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		// Local sqlite databases have no advisory locks and no migrate
		// driver wired here, so they take the AutoMigrate path instead.
		if conn.Dialector.Name() == "sqlite" {
			return conn.AutoMigrate(
				&ratedomain.Rate{},
				&ratedomain.TimeWindow{},
				&ratedomain.RateThreshold{},
				&ratedomain.PricingRule{},
				&ticketdomain.Ticket{},
				&customerdomain.Customer{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
