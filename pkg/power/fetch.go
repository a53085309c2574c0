package power

import (
	"context"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/canopy-network/powerx/pkg/metrics"
	"go.uber.org/zap"
)

// SnapshotSource returns the newest snapshot of the filtered subject whose block time
// lies within [rangeStart, rangeEnd], or nil when the window holds no snapshot.
type SnapshotSource interface {
	FetchStep(ctx context.Context, filter EntityFilter, rangeStart, rangeEnd string) (*Snapshot, error)
}

// Fetcher runs one FetchStep per consecutive pair of interval boundaries.
type Fetcher struct {
	source  SnapshotSource
	pool    pond.Pool
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewFetcher creates a fetcher. With a nil pool the steps run sequentially.
func NewFetcher(source SnapshotSource, pool pond.Pool, logger *zap.Logger, m *metrics.Metrics) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{source: source, pool: pool, metrics: m, logger: logger.Named("fetcher")}
}

// Fetch returns the snapshots found for each window in interval order. Windows without
// data are skipped, so the result may be shorter than len(intervals)-1. The first
// source error, in interval order, is returned.
func (f *Fetcher) Fetch(ctx context.Context, filter EntityFilter, intervals []string) ([]Snapshot, error) {
	steps := len(intervals) - 1
	if steps <= 0 {
		return []Snapshot{}, nil
	}

	found := make([]*Snapshot, steps)
	errs := make([]error, steps)

	if f.pool == nil {
		for i := 1; i <= steps; i++ {
			found[i-1], errs[i-1] = f.step(ctx, filter, intervals[i-1], intervals[i])
			if errs[i-1] != nil {
				break
			}
		}
	} else {
		group := f.pool.NewGroupContext(ctx)
		groupCtx := group.Context()
		for i := 1; i <= steps; i++ {
			idx := i - 1
			rangeStart, rangeEnd := intervals[i-1], intervals[i]
			group.Submit(func() {
				if err := groupCtx.Err(); err != nil {
					errs[idx] = err
					return
				}
				found[idx], errs[idx] = f.step(groupCtx, filter, rangeStart, rangeEnd)
			})
		}
		if err := group.Wait(); err != nil {
			return nil, fmt.Errorf("fetch %s=%s snapshots: %w", filter.Field, filter.Value, err)
		}
	}

	out := make([]Snapshot, 0, steps)
	for i := range found {
		if errs[i] != nil {
			return nil, fmt.Errorf("fetch %s=%s snapshot [%s, %s]: %w",
				filter.Field, filter.Value, intervals[i], intervals[i+1], errs[i])
		}
		if found[i] != nil {
			out = append(out, *found[i])
		}
	}
	return out, nil
}

func (f *Fetcher) step(ctx context.Context, filter EntityFilter, rangeStart, rangeEnd string) (*Snapshot, error) {
	f.logger.Debug("Searching snapshot window",
		zap.String("field", filter.Field),
		zap.String("value", filter.Value),
		zap.String("from", rangeStart),
		zap.String("to", rangeEnd))

	start := time.Now()
	s, err := f.source.FetchStep(ctx, filter, rangeStart, rangeEnd)
	switch {
	case err != nil:
		f.metrics.FetchStep(filter.Field, "error", time.Since(start))
	case s == nil:
		f.metrics.FetchStep(filter.Field, "empty", time.Since(start))
	default:
		f.metrics.FetchStep(filter.Field, "found", time.Since(start))
	}
	return s, err
}
