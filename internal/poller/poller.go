// Package poller implements client-side polling of a bulk order's status
// until the split pipeline reaches a terminal state.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/printware/printdesk/internal/domain/model"
)

// ErrDisposed is returned by Refetch after the poller has been stopped.
var ErrDisposed = errors.New("poller disposed")

// FetchFunc performs a single status fetch for the watched bulk order.
type FetchFunc func(ctx context.Context) (*model.BulkStatus, error)

// DefaultInterval is the reference polling interval.
const DefaultInterval = 5 * time.Second

// Poller repeatedly fetches a bulk order's status at a fixed interval until a
// terminal status is observed, then stops on its own. The transport error
// signal is kept separate from the status signal: a failed fetch means "status
// unknown right now", never "the split failed".
//
// A poller owns a single subject and has no concurrent writers besides its own
// loop and explicit Refetch calls; last response observed wins.
type Poller struct {
	fetch    FetchFunc
	interval time.Duration
	onChange func(*model.BulkStatus)
	logger   *slog.Logger

	mu       sync.Mutex
	status   *model.BulkStatus
	err      error
	disposed bool
	started  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// Option configures optional poller behaviour.
type Option func(*Poller)

// WithOnChange registers a callback invoked for every applied status whose
// value differs from the previously observed one.
func WithOnChange(fn func(*model.BulkStatus)) Option {
	return func(p *Poller) { p.onChange = fn }
}

// New constructs a poller for one bulk order.
func New(fetch FetchFunc, interval time.Duration, logger *slog.Logger, opts ...Option) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Poller{fetch: fetch, interval: interval, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the polling loop. The first fetch is issued immediately, not
// after the first interval. Start is a no-op on a disposed or already started
// poller.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.disposed || p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go p.loop(runCtx)
}

// Stop disposes the poller synchronously: no fetch is issued after Stop
// returns and any response still in flight is discarded, not applied. Stop is
// idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

// Refetch performs exactly one fetch irrespective of interval state and
// returns the fresh snapshot. Concurrent refetches are not deduplicated.
func (p *Poller) Refetch(ctx context.Context) (*model.BulkStatus, error) {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return nil, ErrDisposed
	}
	p.mu.Unlock()

	status, err := p.fetch(ctx)
	p.apply(status, err)
	return status, err
}

// Status returns the last applied snapshot, or nil while none was observed.
func (p *Poller) Status() *model.BulkStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Err returns the last transport error, cleared by any successful fetch.
func (p *Poller) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if p.pollOnce(ctx) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// pollOnce issues one scheduled fetch and reports whether the loop should end.
func (p *Poller) pollOnce(ctx context.Context) bool {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return true
	}
	p.mu.Unlock()

	status, err := p.fetch(ctx)
	if ctx.Err() != nil {
		return true
	}
	p.apply(status, err)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("bulk status fetch failed", slog.String("error", err.Error()))
		}
		return false
	}
	return status.Status.IsTerminal()
}

func (p *Poller) apply(status *model.BulkStatus, err error) {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}

	var changed bool
	if err != nil {
		p.err = err
	} else {
		p.err = nil
		changed = p.status == nil || p.status.Status != status.Status
		p.status = status
	}
	onChange := p.onChange
	p.mu.Unlock()

	if changed && onChange != nil {
		onChange(status)
	}
}
