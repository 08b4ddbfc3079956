package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cobra"
	"github.com/vagaparlabs/vagapark/internal/clock"
	"github.com/vagaparlabs/vagapark/internal/config"
	"github.com/vagaparlabs/vagapark/internal/customer"
	"github.com/vagaparlabs/vagapark/internal/migration"
	"github.com/vagaparlabs/vagapark/internal/observability"
	"github.com/vagaparlabs/vagapark/internal/pricing"
	"github.com/vagaparlabs/vagapark/internal/rate"
	"github.com/vagaparlabs/vagapark/internal/receipt"
	"github.com/vagaparlabs/vagapark/internal/redis"
	"github.com/vagaparlabs/vagapark/internal/seed"
	"github.com/vagaparlabs/vagapark/internal/server"
	"github.com/vagaparlabs/vagapark/internal/ticket"
	"github.com/vagaparlabs/vagapark/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "vagapark",
		Short:   "Vagapark parking operations CLI",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gate and pricing API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			runServe()
			return nil
		},
	}
}

func runMigrate() error {
	app := fx.New(
		observability.Module,
		config.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	app := fx.New(
		observability.Module,
		config.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		fx.Invoke(ensureSeedData),
		rate.Module,
		pricing.Module,
		ticket.Module,
		customer.Module,
		receipt.Module,
		server.Module,
	)
	app.Run()
}

func ensureSeedData(conn *gorm.DB) error {
	return seed.EnsureDefaultRates(conn)
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
