package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingProcessor struct {
	mu    sync.Mutex
	paths []string
	fail  map[string]bool
}

func (p *recordingProcessor) ProcessPath(_ context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, path)
	if p.fail[path] {
		return errors.New("simulated failure")
	}
	return nil
}

func (p *recordingProcessor) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.paths))
	copy(out, p.paths)
	return out
}

func TestQueueProcessesAllJobs(t *testing.T) {
	proc := &recordingProcessor{}
	q := NewProcessorQueue(proc, nil, WithWorkers(3), WithQueueSize(16))

	want := []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"}
	for _, p := range want {
		if err := q.Enqueue(context.Background(), Job{Path: p, SubmittedAt: time.Now()}); err != nil {
			t.Fatalf("Enqueue(%s): %v", p, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	got := proc.seen()
	if len(got) != len(want) {
		t.Fatalf("processed %d jobs %v, want %d", len(got), got, len(want))
	}
	index := map[string]bool{}
	for _, p := range got {
		index[p] = true
	}
	for _, p := range want {
		if !index[p] {
			t.Errorf("job %s never processed", p)
		}
	}
}

func TestQueueSurvivesProcessorErrors(t *testing.T) {
	proc := &recordingProcessor{fail: map[string]bool{"bad.jpg": true}}
	q := NewProcessorQueue(proc, nil, WithWorkers(1))

	for _, p := range []string{"bad.jpg", "good.jpg"} {
		if err := q.Enqueue(context.Background(), Job{Path: p}); err != nil {
			t.Fatalf("Enqueue(%s): %v", p, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	if got := proc.seen(); len(got) != 2 {
		t.Errorf("processed %v, a failing job must not stop the worker", got)
	}
}

func TestQueueEnqueueAfterShutdown(t *testing.T) {
	proc := &recordingProcessor{}
	q := NewProcessorQueue(proc, nil, WithWorkers(1))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	if err := q.Enqueue(context.Background(), Job{Path: "late.jpg"}); err != nil {
		t.Fatalf("Enqueue after shutdown: %v", err)
	}
	if got := proc.seen(); len(got) != 0 {
		t.Errorf("processed %v, want nothing after shutdown", got)
	}
}

func TestQueueShutdownIdempotent(t *testing.T) {
	q := NewProcessorQueue(&recordingProcessor{}, nil, WithWorkers(1))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)
	q.Shutdown(ctx) // second call must not panic on a closed channel
}
