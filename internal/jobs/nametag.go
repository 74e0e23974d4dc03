package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TagRefresher re-renders name tags for connected players
type TagRefresher interface {
	Refresh(ctx context.Context, players ...string) (int, error)
}

// NameTagRefresher periodically re-renders every connected player's name tag
// so health and guild changes show up even without a membership event.
type NameTagRefresher struct {
	tags       TagRefresher
	interval   time.Duration
	startDelay time.Duration
	stopCh     chan struct{}
	wg         sync.WaitGroup
	running    bool
	mu         sync.Mutex
}

// NewNameTagRefresher creates a new name tag refresh job
func NewNameTagRefresher(tags TagRefresher, interval time.Duration) *NameTagRefresher {
	if interval == 0 {
		interval = 5 * time.Second
	}
	return &NameTagRefresher{
		tags:       tags,
		interval:   interval,
		startDelay: time.Second,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the refresh loop
func (p *NameTagRefresher) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
	slog.Info("name tag refresher started", slog.Duration("interval", p.interval))
}

// Stop gracefully stops the refresh loop
func (p *NameTagRefresher) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
	slog.Info("name tag refresher stopped")
}

func (p *NameTagRefresher) run() {
	defer p.wg.Done()

	// let the host push its first presence snapshot
	select {
	case <-time.After(p.startDelay):
	case <-p.stopCh:
		return
	}
	p.refresh()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.refresh()
		case <-p.stopCh:
			return
		}
	}
}

func (p *NameTagRefresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()

	n, err := p.tags.Refresh(ctx)
	if err != nil {
		slog.Warn("name tag refresh failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		slog.Debug("name tags pushed", slog.Int("count", n))
	}
}

// RunOnce refreshes every tag once (for testing or manual trigger)
func (p *NameTagRefresher) RunOnce(ctx context.Context) (int, error) {
	return p.tags.Refresh(ctx)
}

// IsRunning returns whether the refresher is running
func (p *NameTagRefresher) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
