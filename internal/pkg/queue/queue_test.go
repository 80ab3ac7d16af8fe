package queue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPool_RunsSubmittedJobs(t *testing.T) {
	p := New(testLogger(), 3, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	var completed atomic.Int32
	for i := 0; i < 5; i++ {
		ok := p.Submit("count", func(ctx context.Context) error {
			completed.Add(1)
			return nil
		})
		if !ok {
			t.Fatalf("submit %d rejected", i)
		}
	}

	if err := p.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if completed.Load() != 5 {
		t.Fatalf("expected 5 completed jobs, got %d", completed.Load())
	}
	if s := p.Stats(); s.Submitted != 5 || s.Succeeded != 5 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestPool_ResultHookSeesFailuresAndPanics(t *testing.T) {
	p := New(testLogger(), 2, 5)

	var mu sync.Mutex
	results := map[string]error{}
	p.OnResult(func(name string, err error) {
		mu.Lock()
		results[name] = err
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	p.Submit("ok", func(context.Context) error { return nil })
	p.Submit("fail", func(context.Context) error { return errors.New("boom") })
	p.Submit("panic", func(context.Context) error { panic("kaboom") })

	if err := p.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if results["ok"] != nil {
		t.Fatalf("ok job reported error: %v", results["ok"])
	}
	if results["fail"] == nil || results["panic"] == nil {
		t.Fatalf("expected failures reported, got %+v", results)
	}
	s := p.Stats()
	if s.Failed != 2 || s.Panics != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestPool_FullDropsJob(t *testing.T) {
	p := New(testLogger(), 1, 1)
	// not started: the single slot fills and the next submit is dropped
	if !p.Submit("first", func(context.Context) error { return nil }) {
		t.Fatalf("first submit should fit")
	}
	if p.Submit("second", func(context.Context) error { return nil }) {
		t.Fatalf("second submit should be dropped")
	}
	if s := p.Stats(); s.Dropped != 1 || s.Pending != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := New(testLogger(), 1, 1)
	p.Start(context.Background())
	if err := p.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if p.Submit("late", func(context.Context) error { return nil }) {
		t.Fatalf("submit after shutdown should be rejected")
	}
	if err := p.SubmitWait(context.Background(), "late", func(context.Context) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := p.Shutdown(time.Second); err != nil {
		t.Fatalf("second shutdown should be a no-op: %v", err)
	}
}

func TestPool_SubmitWaitHonoursContext(t *testing.T) {
	p := New(testLogger(), 1, 1)
	p.Submit("fill", func(context.Context) error { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.SubmitWait(ctx, "blocked", func(context.Context) error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
