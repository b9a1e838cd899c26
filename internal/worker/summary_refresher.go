package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SummaryRefresher rewrites the debt overview on a fixed interval.
type SummaryRefresher struct {
	worker   *ExportWorker
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSummaryRefresher(w *ExportWorker, interval time.Duration) *SummaryRefresher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SummaryRefresher{worker: w, interval: interval}
}

// Start begins the refresh loop. Returns an error if already running.
func (r *SummaryRefresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("summary refresher is already running")
	}
	r.running = true
	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	r.stopCh, r.doneCh = stopCh, doneCh
	r.mu.Unlock()

	go r.runLoop(ctx, stopCh, doneCh)

	slog.InfoContext(ctx, "Summary refresher started", "interval", r.interval)
	return nil
}

// Stop signals the loop and waits for it to finish or for ctx to expire.
func (r *SummaryRefresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	stopCh, doneCh := r.stopCh, r.doneCh
	r.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Summary refresher stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Summary refresher stop timed out")
		return ctx.Err()
	}
}

func (r *SummaryRefresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// runLoop owns the channels of one Start; a later Start must not touch them.
func (r *SummaryRefresher) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.worker.RefreshSummaries(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic summary refresh failed", "error", err)
			}
		}
	}
}
