package ocr

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestExecRunnerCapturesStdout(t *testing.T) {
	r := execRunner{logger: slog.Default()}
	out, _, err := r.Run(context.Background(), "echo", "scan-001.jpg")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "scan-001.jpg" {
		t.Errorf("stdout = %q, want scan-001.jpg", got)
	}
}

func TestExecRunnerReportsCommandFailure(t *testing.T) {
	r := execRunner{logger: slog.Default()}
	if _, _, err := r.Run(context.Background(), "false"); err == nil {
		t.Error("expected error for a failing command")
	}
}

func TestClipStderr(t *testing.T) {
	short := []byte("warning: invalid resolution")
	if got := clipStderr(short); got != string(short) {
		t.Errorf("clipStderr(short) = %q", got)
	}
	long := make([]byte, 5<<10)
	for i := range long {
		long[i] = 'x'
	}
	got := clipStderr(long)
	if len(got) >= len(long) {
		t.Errorf("long stderr not clipped, len %d", len(got))
	}
	if !strings.HasSuffix(got, "...(clipped)") {
		t.Errorf("clipped stderr should be marked, got suffix %q", got[len(got)-20:])
	}
}
