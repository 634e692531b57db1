package dashboard

import (
	"context"
	"time"

	"github.com/linnemanlabs/triageboard/internal/patient"
)

// DefaultInterval is the board refresh cadence.
const DefaultInterval = 2 * time.Second

const minFetchTimeout = 500 * time.Millisecond

// Fetcher reads the full record snapshot from the server.
type Fetcher interface {
	Query(ctx context.Context) ([]*patient.Record, error)
}

// Poller fetches snapshots on a fixed cadence, starting immediately.
type Poller struct {
	fetcher    Fetcher
	interval   time.Duration
	onSnapshot func([]*patient.Record)
	onError    func(error)
	refresh    chan struct{}
}

// NewPoller creates a poller. A non-positive interval uses DefaultInterval.
// onSnapshot receives each successful result; onError each failure, after
// which the previous snapshot stays in place.
func NewPoller(f Fetcher, interval time.Duration, onSnapshot func([]*patient.Record), onError func(error)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if onSnapshot == nil {
		onSnapshot = func([]*patient.Record) {}
	}
	if onError == nil {
		onError = func(error) {}
	}
	return &Poller{
		fetcher:    f,
		interval:   interval,
		onSnapshot: onSnapshot,
		onError:    onError,
		refresh:    make(chan struct{}, 1),
	}
}

// Interval returns the poll cadence.
func (p *Poller) Interval() time.Duration { return p.interval }

// FetchTimeout bounds a single fetch so it finishes before the next tick.
func (p *Poller) FetchTimeout() time.Duration {
	timeout := p.interval - 500*time.Millisecond
	if timeout < minFetchTimeout {
		timeout = minFetchTimeout
	}
	return timeout
}

// Refresh requests an out-of-band fetch. Requests made while one is
// already pending are merged.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Run polls until ctx is cancelled, then returns nil.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.poll(ctx)
		case <-p.refresh:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	fctx, cancel := context.WithTimeout(ctx, p.FetchTimeout())
	defer cancel()

	records, err := p.fetcher.Query(fctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.onError(err)
		return
	}
	p.onSnapshot(records)
}
