package power

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// AccountResolver looks accounts up on the explorer node.
type AccountResolver interface {
	// ResolveAccount accepts an account id or name.
	ResolveAccount(ctx context.Context, idOrName string) (Account, error)
	// ResolveAccountName returns the display name of an account id.
	ResolveAccountName(ctx context.Context, id string) (string, error)
}

// WorkerLister lists the registered workers.
type WorkerLister interface {
	ListWorkers(ctx context.Context) ([]Worker, error)
}

// WorkerFinder is implemented by worker listers that can look a single worker up.
type WorkerFinder interface {
	FindWorker(ctx context.Context, id string) (Worker, bool, error)
}

// Deps are the collaborators of a Service.
type Deps struct {
	Logger        *zap.Logger
	Fetcher       *Fetcher
	Accounts      AccountResolver
	Workers       WorkerLister
	AccountCache  *Cache
	VoteableCache *Cache
}

// Service answers account power and voteable votes queries.
type Service struct {
	logger        *zap.Logger
	fetcher       *Fetcher
	accounts      AccountResolver
	workers       WorkerLister
	accountCache  *Cache
	voteableCache *Cache
}

// NewService validates deps and returns a ready Service.
func NewService(deps Deps) (*Service, error) {
	switch {
	case deps.Fetcher == nil:
		return nil, errors.New("power service: fetcher is required")
	case deps.Accounts == nil:
		return nil, errors.New("power service: account resolver is required")
	case deps.Workers == nil:
		return nil, errors.New("power service: worker lister is required")
	case deps.AccountCache == nil || deps.VoteableCache == nil:
		return nil, errors.New("power service: caches are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:        logger.Named("power"),
		fetcher:       deps.Fetcher,
		accounts:      deps.Accounts,
		workers:       deps.Workers,
		accountCache:  deps.AccountCache,
		voteableCache: deps.VoteableCache,
	}, nil
}

// GetAccountPower returns the power history of an account and, in breakdown mode, the
// proxies voting through it. Unknown accounts and malformed dates are reported as
// *RequestError, an unknown mode as ErrInvalidMode. Backend failures are returned as is.
func (s *Service) GetAccountPower(ctx context.Context, req Request) (*AccountPower, error) {
	req = req.normalized()
	mode, err := ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.ResolveAccount(ctx, req.Subject)
	if err != nil {
		s.logger.Warn("Unable to resolve account", zap.String("account", req.Subject), zap.Error(err))
		return nil, entityNotFound(req.Subject, "probably due to wrong account id", err)
	}

	snapshots, err := s.snapshots(ctx, s.accountCache, EntityFilter{Field: FieldAccount, Value: account.ID}, req)
	if err != nil {
		if errors.Is(err, ErrInvalidDateFormat) {
			return nil, invalidDate(account.ID, err)
		}
		return nil, err
	}

	out := &AccountPower{Account: account.ID, Name: account.Name, Mode: mode}
	if mode == ModeTotal {
		t := BuildTotals(snapshots)
		out.Blocks, out.BlockTime, out.SelfPowers, out.TotalPowers = t.Blocks, t.BlockTimes, t.SelfPowers, t.TotalPowers
		return out, nil
	}

	b := BuildBreakdown(snapshots, req.Datapoints)
	out.Blocks, out.BlockTime, out.SelfPowers = b.Blocks, b.BlockTimes, b.SelfPowers
	out.ProxyPowers = s.withDisplayNames(ctx, Merge(req.MergeBelowPct, len(b.Blocks), req.Datapoints, b.Powers, b.SelfPowers), req.MergeBelowPct)
	return out, nil
}

// GetVoteableVotes returns the votes a worker received and, in breakdown mode, the
// accounts that cast them. The worker id is resolved to its vote id first.
func (s *Service) GetVoteableVotes(ctx context.Context, req Request) (*VoteableVotes, error) {
	req = req.normalized()
	mode, err := ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	worker, found, err := s.findWorker(ctx, req.Subject)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, entityNotFound(req.Subject, "worker id does not exist", nil)
	}

	snapshots, err := s.snapshots(ctx, s.voteableCache, EntityFilter{Field: FieldVoteID, Value: worker.VoteTargetID}, req)
	if err != nil {
		if errors.Is(err, ErrInvalidDateFormat) {
			return nil, invalidDate(worker.ID, err)
		}
		return nil, err
	}

	out := &VoteableVotes{ID: worker.ID, VoteID: worker.VoteTargetID, Name: worker.Name, Mode: mode}
	if mode == ModeTotal {
		t := BuildTotals(snapshots)
		out.Blocks, out.BlockTime, out.TotalVotes = t.Blocks, t.BlockTimes, t.TotalPowers
		return out, nil
	}

	b := BuildBreakdown(snapshots, req.Datapoints)
	out.Blocks, out.BlockTime = b.Blocks, b.BlockTimes
	out.VotedBy = s.withDisplayNames(ctx, Merge(req.MergeBelowPct, len(b.Blocks), req.Datapoints, b.Powers, nil), req.MergeBelowPct)
	return out, nil
}

// snapshots serves the snapshot list for filter and req from cache, fetching and
// storing it on a miss.
func (s *Service) snapshots(ctx context.Context, cache *Cache, filter EntityFilter, req Request) ([]Snapshot, error) {
	key := CacheKey{Subject: filter.Value, Datapoints: req.Datapoints, FromDate: req.FromDate, ToDate: req.ToDate}
	if cached, ok := cache.Lookup(ctx, key); ok {
		return cached, nil
	}

	intervals, err := GenerateIntervals(req.FromDate, req.ToDate, req.Datapoints)
	if err != nil {
		return nil, err
	}

	snapshots, err := s.fetcher.Fetch(ctx, filter, intervals)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Fetched snapshots",
		zap.String("field", filter.Field),
		zap.String("value", filter.Value),
		zap.Int("datapoints", req.Datapoints),
		zap.Int("found", len(snapshots)))

	cache.Store(ctx, key, snapshots)
	return snapshots, nil
}

func (s *Service) findWorker(ctx context.Context, id string) (Worker, bool, error) {
	if finder, ok := s.workers.(WorkerFinder); ok {
		w, found, err := finder.FindWorker(ctx, id)
		if err != nil {
			return Worker{}, false, fmt.Errorf("find worker %s: %w", id, err)
		}
		return w, found, nil
	}

	workers, err := s.workers.ListWorkers(ctx)
	if err != nil {
		return Worker{}, false, fmt.Errorf("list workers: %w", err)
	}
	for _, w := range workers {
		if w.ID == id {
			return w, true, nil
		}
	}
	return Worker{}, false, nil
}

// withDisplayNames replaces sub-entity ids with account names. The merged bucket keeps its label.
func (s *Service) withDisplayNames(ctx context.Context, series []LabeledSeries, pct int) []LabeledSeries {
	merged := MergedLabel(pct)
	for i := range series {
		if series[i].Label == merged {
			continue
		}
		if name, ok := s.displayName(ctx, series[i].Label); ok {
			series[i].Label = name
		}
	}
	return series
}

// displayName resolves id to an account name. ok is false when the id has to be shown as is.
func (s *Service) displayName(ctx context.Context, id string) (string, bool) {
	name, err := s.accounts.ResolveAccountName(ctx, id)
	if err != nil || name == "" {
		s.logger.Debug("Keeping raw id as label", zap.String("id", id), zap.Error(err))
		return id, false
	}
	return name, true
}
