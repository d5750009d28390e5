package board

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval is the refresh period of queue and dashboard views
const DefaultPollInterval = 30 * time.Second

// Poller runs a refresh function immediately and then at a fixed interval
// until stopped. It only refreshes; it never coordinates writers.
type Poller struct {
	interval time.Duration
	refresh  func(ctx context.Context) error
	onError  func(error)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a poller. A non-positive interval falls back to DefaultPollInterval.
func NewPoller(interval time.Duration, refresh func(ctx context.Context) error, onError func(error)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if onError == nil {
		onError = func(error) {}
	}
	return &Poller{interval: interval, refresh: refresh, onError: onError}
}

// Interval returns the refresh period
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start launches the refresh loop. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx, p.done)
}

// Stop ends the loop and waits for the in-flight refresh to return
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if err := p.refresh(ctx); err != nil && ctx.Err() == nil {
		p.onError(err)
	}
}
