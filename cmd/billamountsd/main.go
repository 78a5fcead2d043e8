// Command billamountsd watches an inbox directory for bill images, runs each
// through the extraction pipeline, and persists results to Postgres.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/claimspipe/billamounts/constants"
	"github.com/claimspipe/billamounts/internal/async"
	"github.com/claimspipe/billamounts/internal/classify"
	"github.com/claimspipe/billamounts/internal/common"
	"github.com/claimspipe/billamounts/internal/ingest"
	"github.com/claimspipe/billamounts/internal/ocr"
	"github.com/claimspipe/billamounts/internal/pipeline"
	"github.com/claimspipe/billamounts/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("starting billamountsd")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Database.DSN == "" {
		logger.Error("DB_URL is required")
		os.Exit(1)
	}

	pool, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("cannot open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	repo := repository.NewPGRunRepository(pool, logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("cannot bootstrap schema", "error", err)
		os.Exit(1)
	}

	rules := classify.DefaultRules()
	if cfg.Pipeline.RulesPath != "" {
		if rules, err = classify.LoadRules(cfg.Pipeline.RulesPath); err != nil {
			logger.Error("cannot load rules", "path", cfg.Pipeline.RulesPath, "error", err)
			os.Exit(1)
		}
	}

	engine := ocr.NewTesseract(ocr.Config{
		Tesseract:           cfg.OCR.Tesseract,
		TesseractLang:       cfg.OCR.TesseractLang,
		TessdataDir:         cfg.OCR.TessdataDir,
		PSM:                 cfg.OCR.PSM,
		OEM:                 cfg.OCR.OEM,
		EnableTSVConfidence: cfg.OCR.EnableTSVConfidence,
		ArtifactCacheDir:    cfg.OCR.ArtifactCacheDir,
	}, logger)

	currency, _ := constants.ParseCurrency(cfg.Pipeline.DefaultCurrency)
	runner := pipeline.New(pipeline.Config{
		DefaultCurrency:  currency,
		MinOCRConfidence: cfg.Pipeline.MinOCRConfidence,
		MaxAmountCeiling: cfg.Pipeline.MaxAmountCeiling,
		ValidateSchema:   cfg.Pipeline.ValidateSchema,
	}, engine, rules, logger)

	proc := &fileProcessor{runner: runner, repo: repo, logger: logger}
	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.Ingest.Workers),
		async.WithQueueSize(cfg.Ingest.QueueSize),
	)

	logger.Info("watching inbox",
		"dir", cfg.Ingest.InboxDir,
		"interval", cfg.Ingest.ScanInterval.String(),
		"workers", cfg.Ingest.Workers,
	)

	seen := map[string]struct{}{}
	scan := func() {
		paths, stats, err := ingest.ScanDirectory(cfg.Ingest.InboxDir, nil, true)
		if err != nil {
			logger.Error("inbox scan failed", "error", err)
			return
		}
		queued := 0
		for _, p := range paths {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			_ = queue.Enqueue(ctx, async.Job{
				Path:        p,
				SubmittedAt: time.Now(),
				TraceID:     uuid.NewString(),
			})
			queued++
		}
		if queued > 0 {
			logger.Info("inbox scan", "scanned", stats.Scanned, "matched", stats.Matched, "queued", queued)
		}
	}

	scan()
	ticker := time.NewTicker(cfg.Ingest.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			queue.Shutdown(shutdownCtx)
			cancel()
			logger.Info("billamountsd stopped")
			return
		case <-ticker.C:
			scan()
		}
	}
}

// fileProcessor runs one bill image through the pipeline and stores the
// outcome, whatever its status.
type fileProcessor struct {
	runner *pipeline.Runner
	repo   repository.RunRepository
	logger *slog.Logger
}

func (p *fileProcessor) ProcessPath(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res, err := p.runner.Run(ctx, pipeline.Input{Image: data})
	if err != nil {
		return common.GRPCStatus(err)
	}

	run := repository.Run{
		ID:         uuid.New(),
		SourceName: filepath.Base(path),
		Currency:   res.Currency,
		Status:     string(res.Status),
		Confidence: res.Confidence,
		CreatedAt:  time.Now().UTC(),
	}
	amounts := make([]repository.RunAmount, 0, len(res.Amounts))
	for _, a := range res.Amounts {
		amounts = append(amounts, repository.RunAmount{
			RunID:  run.ID,
			Type:   a.Type,
			Value:  a.Value,
			Source: a.Source,
		})
	}
	if err := p.repo.SaveRun(ctx, run, amounts); err != nil {
		return err
	}
	p.logger.Info("bill processed",
		"path", path,
		"run_id", run.ID,
		"status", res.Status,
		"amounts", len(amounts),
		"trace_id", common.TraceIDFromContext(ctx),
	)
	return nil
}
