package async

import (
	"context"
	"time"
)

// Job is the smallest useful unit: one bill file waiting for extraction.
type Job struct {
	Path        string
	Force       bool // enqueue even if already seen
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
