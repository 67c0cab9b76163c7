package worker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Priya8975/keyword-pager/internal/domain"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type handlerFunc func(ctx context.Context, ev domain.InboundEvent) error

func (f handlerFunc) HandleEvent(ctx context.Context, ev domain.InboundEvent) error {
	return f(ctx, ev)
}

func TestWorkerPool_ProcessesJobs(t *testing.T) {
	var processed atomic.Int32
	handler := handlerFunc(func(ctx context.Context, ev domain.InboundEvent) error {
		processed.Add(1)
		return nil
	})

	pool := NewPool(3, 10, 0, handler, testLogger())
	pool.Start(context.Background())

	for i := 0; i < 5; i++ {
		id, err := pool.Submit(domain.InboundEvent{Kind: domain.EventChannelPost, Text: "go"})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if id == "" {
			t.Error("Submit should return a job id")
		}
	}

	pool.Stop()

	if processed.Load() != 5 {
		t.Errorf("expected 5 jobs processed, got %d", processed.Load())
	}
}

func TestWorkerPool_HandlerErrorsDoNotStopWorkers(t *testing.T) {
	var processed atomic.Int32
	handler := handlerFunc(func(ctx context.Context, ev domain.InboundEvent) error {
		processed.Add(1)
		if ev.Text == "fail" {
			return errors.New("store fault")
		}
		if ev.Text == "panic" {
			panic("boom")
		}
		return nil
	})

	pool := NewPool(1, 10, 0, handler, testLogger())
	pool.Start(context.Background())

	for _, text := range []string{"fail", "panic", "ok"} {
		if _, err := pool.Submit(domain.InboundEvent{Text: text}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	pool.Stop()

	if processed.Load() != 3 {
		t.Errorf("expected 3 jobs processed, got %d", processed.Load())
	}
}

func TestWorkerPool_SubmitWhenFull(t *testing.T) {
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(1)
	var once sync.Once
	handler := handlerFunc(func(ctx context.Context, ev domain.InboundEvent) error {
		once.Do(started.Done)
		<-release
		return nil
	})

	pool := NewPool(1, 1, 0, handler, testLogger())
	pool.Start(context.Background())

	// first job occupies the worker, second fills the queue
	pool.Submit(domain.InboundEvent{Text: "a"})
	started.Wait()
	if _, err := pool.Submit(domain.InboundEvent{Text: "b"}); err != nil {
		t.Fatalf("second Submit should fit in the queue: %v", err)
	}

	if _, err := pool.Submit(domain.InboundEvent{Text: "c"}); !errors.Is(err, ErrPoolFull) {
		t.Errorf("expected ErrPoolFull, got %v", err)
	}
	if depth := pool.QueueDepth(); depth != 1 {
		t.Errorf("queue depth = %d, want 1", depth)
	}

	close(release)
	pool.Stop()
}

func TestWorkerPool_SubmitAfterStop(t *testing.T) {
	pool := NewPool(2, 2, 0, handlerFunc(func(context.Context, domain.InboundEvent) error { return nil }), testLogger())
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	if _, err := pool.Submit(domain.InboundEvent{}); !errors.Is(err, ErrPoolStopped) {
		t.Errorf("expected ErrPoolStopped, got %v", err)
	}
}

func TestWorkerPool_JobContextUsesConfiguredTimeout(t *testing.T) {
	deadlines := make(chan time.Duration, 1)
	handler := handlerFunc(func(ctx context.Context, ev domain.InboundEvent) error {
		deadline, ok := ctx.Deadline()
		if !ok {
			deadlines <- 0
			return nil
		}
		deadlines <- time.Until(deadline)
		return nil
	})

	pool := NewPool(1, 1, 5*time.Minute, handler, testLogger())
	pool.Start(context.Background())
	pool.Submit(domain.InboundEvent{})
	pool.Stop()

	remaining := <-deadlines
	if remaining <= 4*time.Minute || remaining > 5*time.Minute {
		t.Errorf("job deadline %v away, want about 5m", remaining)
	}
}

func TestNewPool_DefaultJobTimeout(t *testing.T) {
	pool := NewPool(1, 1, 0, handlerFunc(func(context.Context, domain.InboundEvent) error { return nil }), testLogger())
	if pool.timeout != DefaultJobTimeout {
		t.Errorf("timeout = %v, want %v", pool.timeout, DefaultJobTimeout)
	}
}
