// Command billamounts runs the amount-extraction pipeline once, from the
// command line, and prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/claimspipe/billamounts/constants"
	"github.com/claimspipe/billamounts/internal/classify"
	"github.com/claimspipe/billamounts/internal/common"
	"github.com/claimspipe/billamounts/internal/export"
	"github.com/claimspipe/billamounts/internal/ocr"
	"github.com/claimspipe/billamounts/internal/pipeline"
	"github.com/claimspipe/billamounts/internal/repository"
)

func main() {
	var (
		textArg    = flag.String("text", "", "bill text to process")
		imageArg   = flag.String("image", "", "path to a bill image to OCR and process")
		rulesArg   = flag.String("rules", "", "optional YAML rules file (overrides RULES_PATH)")
		storeArg   = flag.String("store", "", "sqlite path to persist the run (overrides LOCAL_DB_PATH; empty disables)")
		exportArg  = flag.String("export", "", "write stored runs to this XLSX file and exit")
		prettyArg  = flag.Bool("pretty", false, "indent the JSON output")
		timeoutArg = flag.Duration("timeout", 2*time.Minute, "overall deadline")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		fatal(logger, "invalid configuration", err)
	}

	ctx, cancel := common.WithTimeout(context.Background(), *timeoutArg)
	defer cancel()

	if *exportArg != "" {
		if err := runExport(ctx, cfg, logger, *storeArg, *exportArg); err != nil {
			fatal(logger, "export failed", err)
		}
		return
	}

	rulesPath := cfg.Pipeline.RulesPath
	if *rulesArg != "" {
		rulesPath = *rulesArg
	}
	rules := classify.DefaultRules()
	if rulesPath != "" {
		var err error
		if rules, err = classify.LoadRules(rulesPath); err != nil {
			fatal(logger, "cannot load rules", err)
		}
	}

	in := pipeline.Input{Text: *textArg}
	var engine ocr.Engine
	if *imageArg != "" {
		data, err := os.ReadFile(*imageArg)
		if err != nil {
			fatal(logger, "cannot read image", err)
		}
		in.Image = data
		engine = ocr.NewTesseract(ocr.Config{
			Tesseract:           cfg.OCR.Tesseract,
			TesseractLang:       cfg.OCR.TesseractLang,
			TessdataDir:         cfg.OCR.TessdataDir,
			PSM:                 cfg.OCR.PSM,
			OEM:                 cfg.OCR.OEM,
			EnableTSVConfidence: cfg.OCR.EnableTSVConfidence,
			ArtifactCacheDir:    cfg.OCR.ArtifactCacheDir,
		}, logger)
	}

	currency, _ := constants.ParseCurrency(cfg.Pipeline.DefaultCurrency)
	runner := pipeline.New(pipeline.Config{
		DefaultCurrency:  currency,
		MinOCRConfidence: cfg.Pipeline.MinOCRConfidence,
		MaxAmountCeiling: cfg.Pipeline.MaxAmountCeiling,
		ValidateSchema:   cfg.Pipeline.ValidateSchema,
	}, engine, rules, logger)

	res, err := runner.Run(ctx, in)
	if err != nil {
		fatal(logger, "pipeline failed", err)
	}

	var out []byte
	if *prettyArg {
		out, err = json.MarshalIndent(res, "", "  ")
	} else {
		out, err = json.Marshal(res)
	}
	if err != nil {
		fatal(logger, "cannot encode result", err)
	}
	fmt.Println(string(out))

	if *storeArg != "" {
		if err := persistRun(ctx, logger, *storeArg, *imageArg, res); err != nil {
			fatal(logger, "cannot persist run", err)
		}
	}
}

func persistRun(ctx context.Context, logger *slog.Logger, storePath, imagePath string, res pipeline.Result) error {
	store, err := repository.OpenLocal(storePath, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run := repository.Run{
		ID:         uuid.New(),
		SourceName: filepath.Base(imagePath),
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
	if err := store.SaveRun(ctx, run, amounts); err != nil {
		return err
	}
	logger.Info("run persisted", "run_id", run.ID, "store", storePath)
	return nil
}

func runExport(ctx context.Context, cfg *common.Config, logger *slog.Logger, storePath, outPath string) error {
	if storePath == "" {
		storePath = cfg.Database.LocalPath
	}
	store, err := repository.OpenLocal(storePath, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	svc := export.NewService(store, logger)
	data, err := svc.ExportRunsXLSX(ctx, nil, nil)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}
	logger.Info("export written", "path", outPath, "bytes", len(data))
	return nil
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
