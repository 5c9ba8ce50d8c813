package worker

import (
	"context"
	"log/slog"
	"sync"
)

type Resolver interface {
	Resolve(ctx context.Context, videoID string) (string, error)
}

type result struct {
	text string
	err  error
}

type job struct {
	ctx     context.Context
	videoID string
	out     chan result
}

// Pool runs transcript resolutions on a fixed number of goroutines so a
// burst of requests cannot fan out into unbounded scraping concurrency.
type Pool struct {
	resolver Resolver
	logger   *slog.Logger
	jobs     chan job
	size     int
	wg       sync.WaitGroup
}

func New(resolver Resolver, size, queueSize int, logger *slog.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		resolver: resolver,
		logger:   logger,
		jobs:     make(chan job, queueSize),
		size:     size,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
}

// Stop closes the queue and waits for in-flight resolutions to finish.
// Callers must not submit after Stop.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Resolve queues the video id and waits for a worker to resolve it. If ctx
// ends while the job is still queued, the caller gets ctx's error and the
// job is skipped when a worker eventually picks it up.
func (p *Pool) Resolve(ctx context.Context, videoID string) (string, error) {
	j := job{ctx: ctx, videoID: videoID, out: make(chan result, 1)}

	select {
	case p.jobs <- j:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case r := <-j.out:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *Pool) run(id int) {
	defer p.wg.Done()
	p.logger.Debug("resolver worker started", "worker", id)

	for j := range p.jobs {
		if err := j.ctx.Err(); err != nil {
			j.out <- result{err: err}
			continue
		}
		text, err := p.resolver.Resolve(j.ctx, j.videoID)
		j.out <- result{text: text, err: err}
	}

	p.logger.Debug("resolver worker stopped", "worker", id)
}
