// Package dashboard periodically refreshes the read-only aggregate widgets:
// the payer list, the alert feed, and system statistics. It is best-effort
// telemetry, fully independent of the chat flow, and a failed refresh only
// ever means the previous snapshot stays on screen a little longer.
package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/meridianclaims/payerkb/pkg/kb"
)

// DefaultInterval is how often the dashboard refreshes.
const DefaultInterval = 30 * time.Second

// DefaultAlertLimit bounds the alert feed.
const DefaultAlertLimit = 10

// Snapshot is one consistent view of the dashboard. Refreshes replace the
// whole snapshot; fields are never merged across fetches, so a widget can
// never show data from two different refresh rounds.
type Snapshot struct {
	Payers []kb.Payer
	Alerts []kb.Alert
	Stats  *kb.Stats
	Taken  time.Time
}

// Fetcher is the read-only slice of the API the poller needs. *kb.Client
// satisfies it.
type Fetcher interface {
	Payers(ctx context.Context) ([]kb.Payer, error)
	Alerts(ctx context.Context, unreadOnly bool, limit int) ([]kb.Alert, error)
	Stats(ctx context.Context) (*kb.Stats, error)
}

// Config tunes a Poller. Zero values fall back to the defaults above.
type Config struct {
	Interval   time.Duration
	AlertLimit int
	UnreadOnly bool
}

// Poller refreshes dashboard snapshots on a fixed interval.
type Poller struct {
	fetcher Fetcher
	config  Config
	logger  *zap.Logger

	mu     sync.RWMutex
	latest Snapshot

	updates chan Snapshot
}

// NewPoller creates a Poller. Run must be called to start refreshing.
func NewPoller(fetcher Fetcher, config Config, logger *zap.Logger) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.AlertLimit <= 0 {
		config.AlertLimit = DefaultAlertLimit
	}
	return &Poller{
		fetcher: fetcher,
		config:  config,
		logger:  logger,
		updates: make(chan Snapshot, 1),
	}
}

// Updates delivers each new snapshot. Only the most recent snapshot is
// retained if the consumer lags; replacement is idempotent so dropped
// intermediate snapshots lose nothing.
func (p *Poller) Updates() <-chan Snapshot { return p.updates }

// Latest returns the most recent snapshot, which is zero-valued until the
// first successful refresh.
func (p *Poller) Latest() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// Run refreshes immediately, then on every interval tick until ctx is
// cancelled. It never pauses for chat activity and never surfaces an error:
// a failed refresh is logged and the previous snapshot stands.
func (p *Poller) Run(ctx context.Context) {
	p.refresh(ctx)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

// refresh fetches all three widgets and replaces the snapshot wholesale.
// Any fetch failure abandons the whole round so a partial snapshot is never
// published.
func (p *Poller) refresh(ctx context.Context) {
	payers, err := p.fetcher.Payers(ctx)
	if err != nil {
		p.logger.Warn("dashboard refresh failed", zap.String("widget", "payers"), zap.Error(err))
		return
	}

	alerts, err := p.fetcher.Alerts(ctx, p.config.UnreadOnly, p.config.AlertLimit)
	if err != nil {
		p.logger.Warn("dashboard refresh failed", zap.String("widget", "alerts"), zap.Error(err))
		return
	}

	stats, err := p.fetcher.Stats(ctx)
	if err != nil {
		p.logger.Warn("dashboard refresh failed", zap.String("widget", "stats"), zap.Error(err))
		return
	}

	snap := Snapshot{
		Payers: payers,
		Alerts: alerts,
		Stats:  stats,
		Taken:  time.Now(),
	}

	p.mu.Lock()
	p.latest = snap
	p.mu.Unlock()

	// Keep only the newest snapshot in the channel.
	select {
	case <-p.updates:
	default:
	}
	p.updates <- snap
}
