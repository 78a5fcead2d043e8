// Command dbhealth verifies database connectivity and reports the number of
// stored extraction runs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claimspipe/billamounts/internal/common"
	"github.com/claimspipe/billamounts/internal/repository"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		logger.Error("DB_URL is required")
		os.Exit(1)
	}

	ctx, cancel := common.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := repository.Open(ctx, repository.Config{
		DSN:         cfg.Database.DSN,
		MaxConns:    2,
		MinConns:    1,
		DialTimeout: cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("cannot open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("ping failed", "error", err)
		os.Exit(1)
	}

	var count int64
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM extraction_run`).Scan(&count); err != nil {
		logger.Warn("run table not readable (schema may not exist yet)", "error", err)
		fmt.Println("database: ok (no run table)")
		return
	}
	fmt.Printf("database: ok, %d runs stored\n", count)
}
