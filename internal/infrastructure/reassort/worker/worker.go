package worker

import (
	"context"
	"sync"
	"time"

	appReassort "github.com/boutiqa/storefront/internal/application/reassort"
	"github.com/boutiqa/storefront/internal/observability"
)

// Worker is the recurring-reorder scheduler: it periodically scans for due
// configs and lets the reassort service run them.
type Worker struct {
	service  *appReassort.Service
	interval time.Duration
	log      observability.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

func New(service *appReassort.Service, interval time.Duration, tel observability.Telemetry) *Worker {
	if tel == nil {
		tel = observability.Nop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Worker{
		service:  service,
		interval: interval,
		log:      tel.Logger().With(observability.F("component", "reassort_worker")),
		done:     make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
		w.cancel = cancel
		go w.loop(bg)
		w.log.Info("reassort_worker_started",
			observability.F("interval", w.interval.String()),
		)
	})
}

// Stop cancels the scan loop and waits for it to finish.
func (w *Worker) Stop(ctx context.Context) {
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		select {
		case <-w.done:
		case <-ctx.Done():
		}
		w.log.Info("reassort_worker_stopped")
	})
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := w.service.RunDue(ctx, now.UTC()); err != nil {
				w.log.Error("reassort_scan_failed",
					observability.F("error", err.Error()),
				)
			}
		}
	}
}
