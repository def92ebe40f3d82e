package patta2pdf

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("exporter pool is closed")

// ExporterPool hands out Exporters for parallel batch exports. Each
// Exporter owns its own browser. Exporters are created lazily on first
// acquire to avoid startup delay.
type ExporterPool struct {
	size    int
	newFn   func() (*Exporter, error)
	idle    chan *Exporter
	mu      sync.Mutex
	all     []*Exporter
	created int
	closed  bool
}

// NewExporterPool creates a pool of up to n Exporters built with opts.
func NewExporterPool(n int, opts ...Option) *ExporterPool {
	return newExporterPool(n, func() (*Exporter, error) { return NewExporter(opts...) })
}

func newExporterPool(n int, newFn func() (*Exporter, error)) *ExporterPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &ExporterPool{
		size:  n,
		newFn: newFn,
		idle:  make(chan *Exporter, n),
	}
}

// Acquire returns an idle Exporter, creates one if the pool is not full,
// or waits for a release. It fails when ctx ends or the pool is closed.
func (p *ExporterPool) Acquire(ctx context.Context) (*Exporter, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}

	select {
	case e, ok := <-p.idle:
		if !ok {
			return nil, ErrPoolClosed
		}
		return e, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create outside the lock; asset loading touches the filesystem.
		e, err := p.newFn()
		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			p.created--
			return nil, err
		}
		if p.closed {
			_ = e.Close()
			return nil, ErrPoolClosed
		}
		p.all = append(p.all, e)
		return e, nil
	}
	p.mu.Unlock()

	select {
	case e, ok := <-p.idle:
		if !ok {
			return nil, ErrPoolClosed
		}
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns e to the pool.
func (p *ExporterPool) Release(e *Exporter) {
	if e == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	// Never blocks: at most size exporters exist.
	p.idle <- e
}

// Close releases every browser. Returns the joined close errors.
func (p *ExporterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.idle)
	all := p.all
	p.mu.Unlock()

	var errs []error
	for _, e := range all {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ExporterPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		if workers > MaxPoolSize {
			return MaxPoolSize
		}
		return workers
	}

	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
