/*
scheduler.go - Draft eviction scheduler

PURPOSE:
  Drafts live in memory. The sweeper periodically drops drafts nobody
  touched for a while and closed drafts already saved to the repository.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Uses the handler's clock so tests can move time
  - Start and Stop are idempotent

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 10 minutes)
  - TTL: Idle time after which a draft is dropped (default: 24 hours)
  - Enabled: Whether the sweeper is active (default: true)

USAGE:
  sweeper := NewDraftSweeper(handler)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - drafts.go: DraftStore.Sweep
*/
package api

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DraftSweeper evicts idle drafts.
type DraftSweeper struct {
	Handler       *Handler
	CheckInterval time.Duration
	TTL           time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewDraftSweeper creates a new sweeper.
func NewDraftSweeper(handler *Handler) *DraftSweeper {
	return &DraftSweeper{
		Handler:       handler,
		CheckInterval: 10 * time.Minute,
		TTL:           24 * time.Hour,
		Enabled:       true,
	}
}

// Start begins the sweeper.
func (ds *DraftSweeper) Start() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !ds.Enabled {
		log.Info("draft sweeper disabled, not starting")
		return
	}
	if ds.ticker != nil {
		return
	}

	ds.ticker = time.NewTicker(ds.CheckInterval)
	ds.stop = make(chan struct{})
	ds.wg.Add(1)

	go ds.run(ds.ticker, ds.stop)

	log.Infof("draft sweeper started: interval %v, ttl %v", ds.CheckInterval, ds.TTL)
}

// Stop stops the sweeper.
func (ds *DraftSweeper) Stop() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.ticker != nil {
		ds.ticker.Stop()
		close(ds.stop)
		ds.wg.Wait()
		ds.ticker = nil
		log.Info("draft sweeper stopped")
	}
}

func (ds *DraftSweeper) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer ds.wg.Done()

	for {
		select {
		case <-ticker.C:
			ds.SweepOnce()
		case <-stop:
			return
		}
	}
}

// SweepOnce runs a single eviction pass and returns the evicted ids.
func (ds *DraftSweeper) SweepOnce() []string {
	cutoff := ds.Handler.Clock.Now().Add(-ds.TTL)
	evicted := ds.Handler.Drafts.Sweep(cutoff)
	if len(evicted) > 0 {
		log.WithField("count", len(evicted)).Info("evicted drafts")
	}
	return evicted
}
