package registry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/canopy-network/powerx/pkg/power"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultRefreshSpec refreshes the worker list every five minutes.
const DefaultRefreshSpec = "@every 5m"

// minMissRefresh bounds how often a lookup miss may trigger a live refresh.
const minMissRefresh = 10 * time.Second

// Workers keeps the explorer's worker list in memory. The list is refreshed on a cron
// schedule; a lookup for an unknown id refreshes it once more before giving up, so new
// workers are visible before the next tick.
type Workers struct {
	source power.WorkerLister
	logger *zap.Logger

	byID    *xsync.Map[string, power.Worker]
	list    atomic.Pointer[[]power.Worker]
	lastRun atomic.Int64 // unix nanos of the last refresh attempt

	refreshMu sync.Mutex

	// Cron triggers Refresh according to CronSpec.
	Cron     *cron.Cron
	CronSpec string
}

var (
	_ power.WorkerLister = (*Workers)(nil)
	_ power.WorkerFinder = (*Workers)(nil)
)

// NewWorkers creates an empty registry over source.
func NewWorkers(source power.WorkerLister, logger *zap.Logger) *Workers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workers{
		source: source,
		logger: logger.Named("workers"),
		byID:   xsync.NewMap[string, power.Worker](),
	}
}

// Refresh replaces the registry contents with the current worker list.
func (w *Workers) Refresh(ctx context.Context) error {
	w.refreshMu.Lock()
	defer w.refreshMu.Unlock()

	w.lastRun.Store(time.Now().UnixNano())
	workers, err := w.source.ListWorkers(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(workers))
	for _, wk := range workers {
		w.byID.Store(wk.ID, wk)
		seen[wk.ID] = struct{}{}
	}
	w.byID.Range(func(id string, _ power.Worker) bool {
		if _, ok := seen[id]; !ok {
			w.byID.Delete(id)
		}
		return true
	})
	w.list.Store(&workers)

	w.logger.Debug("Worker registry refreshed", zap.Int("workers", len(workers)))
	return nil
}

// ListWorkers returns the cached list, loading it on first use.
func (w *Workers) ListWorkers(ctx context.Context) ([]power.Worker, error) {
	if list := w.list.Load(); list != nil {
		return *list, nil
	}
	if err := w.Refresh(ctx); err != nil {
		return nil, err
	}
	return *w.list.Load(), nil
}

// FindWorker returns the worker with the given id. An unknown id triggers a live refresh
// unless one ran within the last few seconds.
func (w *Workers) FindWorker(ctx context.Context, id string) (power.Worker, bool, error) {
	if _, err := w.ListWorkers(ctx); err != nil {
		return power.Worker{}, false, err
	}
	if wk, ok := w.byID.Load(id); ok {
		return wk, true, nil
	}

	if time.Since(time.Unix(0, w.lastRun.Load())) < minMissRefresh {
		return power.Worker{}, false, nil
	}
	if err := w.Refresh(ctx); err != nil {
		return power.Worker{}, false, err
	}
	wk, ok := w.byID.Load(id)
	return wk, ok, nil
}

// Len is the number of known workers.
func (w *Workers) Len() int {
	return w.byID.Size()
}

// SetupScheduler registers the periodic refresh. Each run is bounded by timeout.
func (w *Workers) SetupScheduler(ctx context.Context, cronSpec string, timeout time.Duration) error {
	w.CronSpec = cronSpec
	w.Cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	_, err := w.Cron.AddFunc(cronSpec, func() {
		rctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := w.Refresh(rctx); err != nil {
			w.logger.Warn("Worker registry refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule worker refresh %q: %w", cronSpec, err)
	}
	return nil
}

// StartCron starts the scheduler.
func (w *Workers) StartCron() {
	if w.Cron == nil {
		return
	}
	w.Cron.Start()
	w.logger.Info("Worker refresh cron started", zap.String("cronSpec", w.CronSpec))
}

// StopCron stops the scheduler and waits for a running refresh.
func (w *Workers) StopCron() {
	if w.Cron != nil {
		<-w.Cron.Stop().Done()
	}
}
