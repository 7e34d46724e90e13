package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"roadside-rescue/pkg/logger"
)

// Func is one poll. Errors are reported, never fatal to the loop.
type Func func(ctx context.Context) error

// Poller runs Func immediately on Start and then every interval until its
// context ends or Stop is called. Trigger runs it early.
type Poller struct {
	name     string
	interval time.Duration
	fn       Func
	logger   *logger.Logger
	onError  func(error)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	trigger chan struct{}
}

type Option func(*Poller)

// OnError receives every failed or panicking tick.
func OnError(fn func(error)) Option {
	return func(p *Poller) { p.onError = fn }
}

func New(name string, interval time.Duration, fn Func, log *logger.Logger, opts ...Option) *Poller {
	p := &Poller{
		name:     name,
		interval: interval,
		fn:       fn,
		logger:   log,
		trigger:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start is a no-op if the poller is already running.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, p.done)
}

// Stop cancels the loop and waits for the current tick to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Trigger asks for an immediate tick. Extra triggers while one is pending
// are dropped.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer func() {
		ticker.Stop()
		p.mu.Lock()
		if p.done == done {
			p.cancel = nil
			p.done = nil
		}
		p.mu.Unlock()
		close(done)
		p.logger.WithField("poller", p.name).Debug("Poller stopped")
	}()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		case <-p.trigger:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			p.report(fmt.Errorf("poller %s panicked: %v", p.name, rec))
		}
	}()
	if err := p.fn(ctx); err != nil && ctx.Err() == nil {
		p.report(err)
	}
}

func (p *Poller) report(err error) {
	p.logger.WithField("poller", p.name).WithError(err).Warn("Poll failed")
	if p.onError != nil {
		p.onError(err)
	}
}
