// Package pipeline orchestrates extraction, normalization and classification
// into the final provenance-tagged result.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/claimspipe/billamounts/constants"
	"github.com/claimspipe/billamounts/internal/classify"
	"github.com/claimspipe/billamounts/internal/common"
	"github.com/claimspipe/billamounts/internal/extract"
	"github.com/claimspipe/billamounts/internal/normalize"
	"github.com/claimspipe/billamounts/internal/ocr"
)

// Input carries exactly one of Text or Image.
type Input struct {
	Text  string
	Image []byte
}

// Config holds thresholds and behavior flags for a pipeline runner.
type Config struct {
	DefaultCurrency  constants.CurrencyCode
	MinOCRConfidence float64 // default 0.5
	MaxAmountCeiling float64
	ValidateSchema   bool
}

// Runner is stateless across invocations; concurrent Run calls are fully
// independent.
type Runner struct {
	cfg    Config
	engine ocr.Engine
	rules  *classify.RuleSet
	logger *slog.Logger
}

func New(cfg Config, engine ocr.Engine, rules *classify.RuleSet, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = constants.DefaultCurrency
	}
	if cfg.MinOCRConfidence <= 0 {
		cfg.MinOCRConfidence = 0.5
	}
	if cfg.MaxAmountCeiling <= 0 {
		cfg.MaxAmountCeiling = normalize.DefaultCeiling
	}
	if rules == nil {
		rules = classify.DefaultRules()
	}
	return &Runner{cfg: cfg, engine: engine, rules: rules, logger: logger}
}

// Run executes the full pipeline. Guardrail outcomes come back as Result
// statuses; only input errors and stage failures surface as errors.
func (r *Runner) Run(ctx context.Context, in Input) (Result, error) {
	hasText := strings.TrimSpace(in.Text) != ""
	hasImage := len(in.Image) > 0
	if hasText == hasImage {
		return Result{}, common.NewAppError("INVALID_INPUT",
			"exactly one of text or image must be provided", common.ErrInvalidInput)
	}

	rawText := in.Text
	ocrConf := 1.0
	if hasImage {
		if r.engine == nil {
			return Result{}, common.NewAppError("OCR_UNAVAILABLE",
				"no ocr engine configured for image input", common.ErrOCR)
		}
		rec, err := r.engine.Recognize(ctx, in.Image)
		if err != nil {
			r.logger.Error("pipeline.ocr.failed", "error", err)
			return Result{}, common.NewAppError("OCR_FAILED", "image recognition failed", err)
		}
		r.logger.Info("pipeline.ocr.ok",
			"bytes", len(rec.Text),
			"confidence", rec.Confidence,
			"duration_ms", rec.Duration.Milliseconds(),
		)
		if strings.TrimSpace(rec.Text) == "" {
			return Result{
				Status: constants.StatusNoAmountsFound,
				Reason: "no text detected in image",
			}, nil
		}
		rawText = rec.Text
		ocrConf = rec.Confidence
	}

	ext := extract.Extract(rawText, r.cfg.DefaultCurrency)
	if len(ext.Tokens) == 0 {
		r.logger.Info("pipeline.extract.empty")
		return Result{
			Status: constants.StatusNoAmountsFound,
			Reason: "no numeric tokens found in document text",
		}, nil
	}
	if hasImage && ocrConf < r.cfg.MinOCRConfidence {
		return Result{
			Status:     constants.StatusLowConfidence,
			Reason:     fmt.Sprintf("ocr confidence %.2f below minimum %.2f", ocrConf, r.cfg.MinOCRConfidence),
			Confidence: round2(ocrConf),
		}, nil
	}

	norm := normalize.Normalize(ext.Tokens)
	if err := normalize.Validate(norm.Amounts, r.cfg.MaxAmountCeiling); err != nil {
		r.logger.Info("pipeline.normalize.rejected", "reason", err.Error(), "tokens", len(ext.Tokens))
		return Result{
			Status:     constants.StatusInvalidAmounts,
			Reason:     err.Error(),
			Confidence: norm.Confidence,
		}, nil
	}

	cls := r.rules.Classify(norm.Amounts, rawText)
	for _, w := range classify.CheckConsistency(cls.Amounts) {
		r.logger.Warn("pipeline.consistency.warning", "warning", w)
	}

	amounts := make([]Amount, 0, len(cls.Amounts))
	for _, ca := range cls.Amounts {
		if !constants.IsOutputCategory(ca.Category) {
			continue
		}
		amounts = append(amounts, Amount{
			Type:   string(ca.Category),
			Value:  ca.Value,
			Source: ca.Source,
		})
	}

	res := Result{
		Currency:   string(ext.Currency),
		Amounts:    amounts,
		Status:     constants.StatusOK,
		Confidence: cls.Confidence,
	}
	if r.cfg.ValidateSchema {
		if err := ValidateResult(res); err != nil {
			return Result{}, common.NewAppError("RESULT_SCHEMA",
				"result failed schema validation", err)
		}
	}
	r.logger.Info("pipeline.run.ok",
		"currency", res.Currency,
		"amounts", len(res.Amounts),
		"confidence", res.Confidence,
	)
	return res, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
