// Package db opens the shared gorm handle from DATABASE_URL-style config.
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"github.com/vagaparlabs/vagapark/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormprometheus "gorm.io/plugin/prometheus"
)

func New(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	url := strings.TrimSpace(cfg.Database.URL)
	if url == "" {
		return nil, fmt.Errorf("database url is required")
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(url, "file:") || strings.HasSuffix(url, ".db") {
		dialector = sqlite.Open(url)
	} else {
		dialector = postgres.Open(url)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		return nil, fmt.Errorf("register otelgorm plugin: %w", err)
	}
	if err := db.Use(gormprometheus.New(gormprometheus.Config{
		DBName:          "vagapark",
		RefreshInterval: 15,
	})); err != nil {
		log.Warn("gorm prometheus plugin not registered", zap.Error(err))
	}

	return db, nil
}

func registerLifecycle(lc fx.Lifecycle, db *gorm.DB, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			log.Info("closing database handle")
			return sqlDB.Close()
		},
	})
}

var Module = fx.Module("db",
	fx.Provide(New),
	fx.Invoke(registerLifecycle),
)
