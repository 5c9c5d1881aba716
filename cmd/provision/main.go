// Command provision applies the alarm schema and classifies point severity
// levels from point names. Run it once before starting the worker, and again
// whenever points are added or renamed.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"plc-alarm-worker/internal/config"
	"plc-alarm-worker/internal/db"
	"plc-alarm-worker/internal/logging"
	"plc-alarm-worker/internal/provision"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.ServiceName + "-provision")
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("database unreachable", zap.Error(err))
	}

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("schema migration failed", zap.Error(err))
	}
	logger.Info("alarm schema applied")

	if err := provision.NewProvisioner(pool, logger).Reclassify(ctx); err != nil {
		logger.Fatal("point reclassification failed", zap.Error(err))
	}
}
