package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"
)

// Runner abstracts the tesseract process call so recognition can be exercised
// without the binary installed.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// execRunner shells out for real bill images. Tesseract takes the image path
// as its first argument, and that path is what operators need in the logs.
type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	image := ""
	if len(args) > 0 {
		image = args[0]
	}
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if err != nil {
		r.logger.Error("ocr.exec.failed",
			"cmd", name,
			"image", image,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr", clipStderr(errb.Bytes()),
		)
		return out.Bytes(), errb.Bytes(), err
	}

	r.logger.Debug("ocr.exec.ok",
		"cmd", name,
		"image", image,
		"duration_ms", time.Since(start).Milliseconds(),
		"stdout_bytes", out.Len(),
	)
	return out.Bytes(), errb.Bytes(), nil
}

// clipStderr bounds the log record; tesseract gets chatty about fonts and dpi
// on noisy scans.
func clipStderr(b []byte) string {
	const maxLen = 4 << 10
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "...(clipped)"
}
