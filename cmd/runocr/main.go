// Command runocr runs the OCR stage alone on one image, for debugging
// recognition quality before the rest of the pipeline gets involved.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claimspipe/billamounts/internal/common"
	"github.com/claimspipe/billamounts/internal/ocr"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: runocr <image-path>")
		os.Exit(2)
	}
	path := os.Args[1]

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := common.LoadConfig()

	engine := ocr.NewTesseract(ocr.Config{
		Tesseract:           cfg.OCR.Tesseract,
		TesseractLang:       cfg.OCR.TesseractLang,
		TessdataDir:         cfg.OCR.TessdataDir,
		PSM:                 cfg.OCR.PSM,
		OEM:                 cfg.OCR.OEM,
		EnableTSVConfidence: cfg.OCR.EnableTSVConfidence,
		ArtifactCacheDir:    cfg.OCR.ArtifactCacheDir,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := engine.RecognizeFile(ctx, path)
	if err != nil {
		logger.Error("recognition failed", "error", err)
		os.Exit(1)
	}

	logger.Info("recognition complete",
		"chars", len(res.Text),
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds(),
		"warnings", len(res.Warnings),
	)
	for _, w := range res.Warnings {
		logger.Warn("ocr warning", "warning", w)
	}
	fmt.Println(res.Text)
}
