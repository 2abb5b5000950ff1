package poll

import (
	"context"
	"sync"
	"time"

	"github.com/subcue/subcue/internal/logging"
	"github.com/subcue/subcue/internal/subtitle"
)

// retrieves the current cue collection for a project from the backend
type FetchFunc func(ctx context.Context, projectID string) ([]subtitle.Subtitle, error)

// receives each successfully fetched batch
type ApplyFunc func(cues []subtitle.Subtitle)

// Poller is the pull-based fallback used while a long-running server
// operation (translation) is in progress and push delivery cannot be
// trusted. It polls one project at a fixed interval; an in-flight guard
// ensures overlapping polls never occur when a request is slow.
type Poller struct {
	mu        sync.Mutex
	interval  time.Duration
	fetch     FetchFunc
	apply     ApplyFunc
	logger    *logging.Logger
	projectID string
	stop      chan struct{}
	inFlight  bool
	running   bool
}

func New(interval time.Duration, fetch FetchFunc, apply ApplyFunc, logger *logging.Logger) *Poller {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Poller{
		interval: interval,
		fetch:    fetch,
		apply:    apply,
		logger:   logger,
	}
}

// Start begins polling the project. Starting an already running poller is
// a no-op.
func (p *Poller) Start(projectID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.projectID = projectID
	p.stop = make(chan struct{})
	go p.loop(projectID, p.stop)
	p.logger.Debugw("polling fallback started", "project_id", projectID)
}

// Stop halts polling immediately. A poll already in flight finishes but
// its result is discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	close(p.stop)
	p.logger.Debugw("polling fallback stopped", "project_id", p.projectID)
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// PollNow performs one immediate poll, respecting the in-flight guard.
// Reports whether a poll was actually issued.
func (p *Poller) PollNow(ctx context.Context, projectID string) bool {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return false
	}
	p.inFlight = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	cues, err := p.fetch(ctx, projectID)
	if err != nil {
		p.logger.Warnw("poll failed", "project_id", projectID, "error", err)
		return true
	}

	p.mu.Lock()
	discard := !p.running || p.projectID != projectID
	p.mu.Unlock()
	if discard {
		return true
	}

	p.apply(cues)
	return true
}

func (p *Poller) loop(projectID string, stop chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), p.interval*2)
			p.PollNow(ctx, projectID)
			cancel()
		}
	}
}
