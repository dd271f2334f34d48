/*
scheduler.go - Periodic plan builder

PURPOSE:
  Rebuilds and archives the plan on a fixed interval so an operator always
  finds a current plan in the archive without calling POST /api/plans.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Each tick recomputes from scratch using the server's base rules and
    the current date; nothing carries over between ticks
  - Failures are logged and the next tick tries again

USAGE:
  scheduler := NewPlanScheduler(handler, 24*time.Hour)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunPlan (shared with CreatePlan)
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/warp/outreach-engine/factory"
)

// PlanScheduler builds a plan every Interval.
type PlanScheduler struct {
	Handler  *Handler
	Interval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPlanScheduler creates a scheduler. An interval <= 0 disables it.
func NewPlanScheduler(handler *Handler, interval time.Duration) *PlanScheduler {
	return &PlanScheduler{
		Handler:  handler,
		Interval: interval,
	}
}

// Start begins the scheduler. It builds one plan immediately.
func (ps *PlanScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.Interval <= 0 {
		ps.Handler.Log.Info("plan scheduler disabled")
		return
	}
	if ps.ticker != nil {
		return
	}

	ps.ticker = time.NewTicker(ps.Interval)
	ps.stop = make(chan struct{})
	ps.wg.Add(1)

	go ps.run(ps.ticker, ps.stop)

	ps.Handler.Log.Info("plan scheduler started", "interval", ps.Interval)
}

// Stop stops the scheduler and waits for a running build to finish.
func (ps *PlanScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.ticker == nil {
		return
	}
	ps.ticker.Stop()
	close(ps.stop)
	ps.wg.Wait()
	ps.ticker = nil
	ps.Handler.Log.Info("plan scheduler stopped")
}

func (ps *PlanScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer ps.wg.Done()

	ps.tick()

	for {
		select {
		case <-ticker.C:
			ps.tick()
		case <-stop:
			return
		}
	}
}

func (ps *PlanScheduler) tick() {
	ctx := context.Background()

	settings, err := ps.Handler.RunFactory.Resolve(factory.RunJSON{})
	if err != nil {
		ps.Handler.Log.Error("scheduled plan: invalid settings", "error", err)
		return
	}
	if _, err := ps.Handler.RunPlan(ctx, settings); err != nil {
		ps.Handler.Log.Error("scheduled plan failed", "error", err)
	}
}
