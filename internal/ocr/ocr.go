package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/claimspipe/billamounts/constants"
)

// RecognitionResult is what the pipeline consumes: recognized text plus a
// scalar confidence in [0,1].
type RecognitionResult struct {
	Text       string
	Confidence float64
	Duration   time.Duration
	Warnings   []string
}

// Engine is the OCR capability the pipeline treats as a black box.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (RecognitionResult, error)
}

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string

	EnableTSVConfidence bool

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default

	ArtifactCacheDir string
}

// Tesseract shells out to the tesseract binary and implements Engine.
type Tesseract struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseract(cfg Config, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.ArtifactCacheDir == "" {
		cfg.ArtifactCacheDir = "./tmp"
	}
	return &Tesseract{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Recognize writes the image bytes to a scratch file and runs tesseract on it.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (RecognitionResult, error) {
	start := time.Now()
	if len(image) == 0 {
		return RecognitionResult{}, fmt.Errorf("empty image")
	}

	if err := os.MkdirAll(t.cfg.ArtifactCacheDir, 0o755); err != nil {
		return RecognitionResult{}, fmt.Errorf("artifact dir: %w", err)
	}
	tmp, err := os.CreateTemp(t.cfg.ArtifactCacheDir, "bill-*.img")
	if err != nil {
		return RecognitionResult{}, fmt.Errorf("scratch file: %w", err)
	}
	path := tmp.Name()
	defer func() { _ = os.Remove(path) }()
	if _, err := tmp.Write(image); err != nil {
		_ = tmp.Close()
		return RecognitionResult{}, fmt.Errorf("scratch write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return RecognitionResult{}, fmt.Errorf("scratch close: %w", err)
	}

	res, err := t.RecognizeFile(ctx, path)
	res.Duration = time.Since(start)
	return res, err
}

// RecognizeFile runs tesseract on an image already on disk.
func (t *Tesseract) RecognizeFile(ctx context.Context, path string) (RecognitionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	t.logger.Debug("starting ocr recognition", "path", path, "ext", ext)

	txt, warn, err := t.tesseractOCR(ctx, path)
	if err != nil {
		return RecognitionResult{Warnings: warn, Duration: time.Since(start)}, err
	}
	txt = CleanupText(txt)

	// compute confidence
	var ocrConf float64
	if t.cfg.EnableTSVConfidence {
		if c, w, err2 := t.tesseractTSVConfidence(ctx, path); err2 == nil {
			ocrConf = c
			warn = append(warn, w...)
		} else {
			warn = append(warn, err2.Error())
		}
	}
	heurConf := heuristicConfidence(txt)

	// blend: weight measured OCR confidence higher if present
	conf := heurConf
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}

	return RecognitionResult{
		Text:       txt,
		Confidence: conf,
		Duration:   time.Since(start),
		Warnings:   warn,
	}, nil
}
