package pipeclient

import (
	"errors"
	"sync"
)

var ErrPoolClosed = errors.New("pipe worker pool is closed")

// Pool keeps a fixed set of Workers and hands them out one at a time, so an
// embedding process can serve concurrent callers over N subprocesses.
type Pool struct {
	mu      sync.Mutex
	workers chan *Worker
}

// NewPool starts size workers via the factory. If any fail to start, the
// already-started ones are closed and the error is returned.
func NewPool(size int, factory func() (*Worker, error)) (*Pool, error) {
	if size <= 0 {
		return nil, errors.New("pool size must be positive")
	}

	p := &Pool{workers: make(chan *Worker, size)}
	for i := 0; i < size; i++ {
		w, err := factory()
		if err != nil {
			p.Close()
			return nil, err
		}
		p.workers <- w
	}
	return p, nil
}

// Get borrows a worker, blocking until one is free.
func (p *Pool) Get() (*Worker, error) {
	p.mu.Lock()
	ch := p.workers
	p.mu.Unlock()
	if ch == nil {
		return nil, ErrPoolClosed
	}
	w, ok := <-ch
	if !ok {
		return nil, ErrPoolClosed
	}
	return w, nil
}

// Put returns a borrowed worker. Workers handed to a closed or full pool are
// closed instead.
func (p *Pool) Put(w *Worker) {
	if w == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.workers == nil {
		_ = w.Close()
		return
	}
	select {
	case p.workers <- w:
	default:
		_ = w.Close()
	}
}

// Close shuts down every idle worker. Borrowed workers are closed as they
// come back through Put.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.workers == nil {
		return
	}
	close(p.workers)
	for w := range p.workers {
		_ = w.Close()
	}
	p.workers = nil
}

// GetTranscript borrows a worker for a single request.
func (p *Pool) GetTranscript(videoID string) (string, error) {
	w, err := p.Get()
	if err != nil {
		return "", err
	}
	defer p.Put(w)
	return w.GetTranscript(videoID)
}
