package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
)

type mapResolver struct {
	texts map[string]string
	errs  map[string]error
	calls atomic.Int32
}

func (m *mapResolver) Resolve(_ context.Context, videoID string) (string, error) {
	m.calls.Add(1)
	if err, ok := m.errs[videoID]; ok {
		return "", err
	}
	return m.texts[videoID], nil
}

// gatedResolver blocks every call until the gate closes and tracks how many
// calls run at once.
type gatedResolver struct {
	gate    chan struct{}
	entered chan struct{}
	active  atomic.Int32
	maxSeen atomic.Int32
	calls   atomic.Int32
}

func newGatedResolver() *gatedResolver {
	return &gatedResolver{
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 64),
	}
}

func (g *gatedResolver) Resolve(_ context.Context, videoID string) (string, error) {
	g.calls.Add(1)
	now := g.active.Add(1)
	for {
		seen := g.maxSeen.Load()
		if now <= seen || g.maxSeen.CompareAndSwap(seen, now) {
			break
		}
	}
	g.entered <- struct{}{}
	<-g.gate
	g.active.Add(-1)
	return "done:" + videoID, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPoolResolvesAndPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	res := &mapResolver{
		texts: map[string]string{"ok": "Hello world"},
		errs:  map[string]error{"bad": boom},
	}
	pool := New(res, 2, 4, testLogger())
	pool.Start()
	defer pool.Stop()

	text, err := pool.Resolve(context.Background(), "ok")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if text != "Hello world" {
		t.Fatalf("unexpected text: %q", text)
	}

	if _, err := pool.Resolve(context.Background(), "bad"); !errors.Is(err, boom) {
		t.Fatalf("Resolve() error = %v, want %v", err, boom)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	res := newGatedResolver()
	pool := New(res, 2, 16, testLogger())
	pool.Start()
	defer pool.Stop()

	const jobs = 6
	var wg sync.WaitGroup
	results := make([]string, jobs)
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text, err := pool.Resolve(context.Background(), "vid")
			if err != nil {
				t.Errorf("Resolve() error = %v", err)
				return
			}
			results[i] = text
		}(i)
	}

	// Both workers must be busy before anything is released.
	<-res.entered
	<-res.entered
	close(res.gate)
	wg.Wait()

	if got := res.maxSeen.Load(); got > 2 {
		t.Fatalf("observed %d concurrent resolutions with 2 workers", got)
	}
	if got := res.calls.Load(); got != jobs {
		t.Fatalf("expected %d resolutions, got %d", jobs, got)
	}
	for i, text := range results {
		if text != "done:vid" {
			t.Fatalf("job %d returned %q", i, text)
		}
	}
}

func TestPoolResolveCanceledWhileQueued(t *testing.T) {
	res := newGatedResolver()
	pool := New(res, 1, 4, testLogger())
	pool.Start()

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		if _, err := pool.Resolve(context.Background(), "held"); err != nil {
			t.Errorf("first Resolve() error = %v", err)
		}
	}()
	<-res.entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pool.Resolve(ctx, "queued"); !errors.Is(err, context.Canceled) {
		t.Fatalf("queued Resolve() error = %v, want context.Canceled", err)
	}

	close(res.gate)
	<-firstDone
	pool.Stop()

	// The canceled job is dropped by the worker without resolving.
	if got := res.calls.Load(); got != 1 {
		t.Fatalf("expected 1 resolution, got %d", got)
	}
}

func TestPoolStopWaitsForWorkers(t *testing.T) {
	res := newGatedResolver()
	pool := New(res, 1, 0, testLogger())
	pool.Start()

	type outcome struct {
		text string
		err  error
	}
	resultCh := make(chan outcome, 1)
	go func() {
		text, err := pool.Resolve(context.Background(), "slow")
		resultCh <- outcome{text: text, err: err}
	}()
	<-res.entered

	close(res.gate)
	pool.Stop()

	got := <-resultCh
	if got.err != nil {
		t.Fatalf("Resolve() error = %v", got.err)
	}
	if got.text != "done:slow" {
		t.Fatalf("unexpected text: %q", got.text)
	}
}
