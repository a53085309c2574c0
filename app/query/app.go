package query

import (
	"context"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/canopy-network/powerx/app/query/types"
	"github.com/canopy-network/powerx/pkg/db/snapshots"
	"github.com/canopy-network/powerx/pkg/logging"
	"github.com/canopy-network/powerx/pkg/metrics"
	"github.com/canopy-network/powerx/pkg/power"
	"github.com/canopy-network/powerx/pkg/redis"
	"github.com/canopy-network/powerx/pkg/registry"
	"github.com/canopy-network/powerx/pkg/rpc"
	"github.com/canopy-network/powerx/pkg/utils"
	"go.uber.org/zap"
)

// Initialize initializes the application.
func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New("powerx-query")
	if err != nil {
		// nothing else to do here, we'll just log to stderr'
		panic(err)
	}

	store, err := snapshots.New(ctx, logger,
		utils.Env("SNAPSHOTS_DB", "explorer_stats"),
		utils.EnvBool("CLICKHOUSE_INIT_SCHEMA", false))
	if err != nil {
		logger.Fatal("Unable to initialize snapshot store", zap.Error(err))
	}

	explorer := rpc.NewExplorerClient(rpc.NewHTTPWithOpts(rpc.Opts{
		Endpoints: utils.EnvList("EXPLORER_RPC_URLS", []string{"http://localhost:5000"}),
		Timeout:   utils.EnvDuration("EXPLORER_RPC_TIMEOUT", 15*time.Second),
		RPS:       utils.EnvInt("EXPLORER_RPC_RPS", 20),
	}), logger)

	workers := registry.NewWorkers(explorer, logger)
	refreshSpec := utils.Env("WORKER_REFRESH_SPEC", registry.DefaultRefreshSpec)
	if err := workers.SetupScheduler(ctx, refreshSpec, 30*time.Second); err != nil {
		logger.Fatal("Unable to schedule worker refresh", zap.Error(err))
	}
	if err := workers.Refresh(ctx); err != nil {
		// The registry loads lazily on the first voteable request.
		logger.Warn("Initial worker refresh failed", zap.Error(err))
	}

	// Optional shared cache tier between replicas
	var redisClient *redis.Client
	if utils.EnvBool("REDIS_ENABLED", false) {
		redisClient, err = redis.NewClient(ctx, logger)
		if err != nil {
			logger.Warn("Failed to initialize Redis client - shared snapshot cache will be disabled",
				zap.Error(err))
			redisClient = nil
		} else {
			logger.Info("Redis client initialized for the shared snapshot cache")
		}
	} else {
		logger.Info("Redis disabled - snapshot lists are cached in process only")
	}

	m := metrics.New()
	cacheSize := utils.EnvInt("CACHE_SIZE", power.DefaultCacheSize)
	cacheOpts := []power.CacheOption{power.WithCacheMetrics(m)}
	if redisClient != nil {
		cacheOpts = append(cacheOpts, power.WithSharedTier(redisClient))
	}
	accountCache, err := power.NewCache("accounts", cacheSize, logger, cacheOpts...)
	if err != nil {
		logger.Fatal("Unable to create account cache", zap.Error(err))
	}
	voteableCache, err := power.NewCache("voteables", cacheSize, logger, cacheOpts...)
	if err != nil {
		logger.Fatal("Unable to create voteable cache", zap.Error(err))
	}

	// FETCH_PARALLELISM=1 keeps the window fetches sequential.
	var pool pond.Pool
	if parallelism := utils.EnvInt("FETCH_PARALLELISM", 4); parallelism > 1 {
		pool = pond.NewPool(parallelism)
	}

	svc, err := power.NewService(power.Deps{
		Logger:        logger,
		Fetcher:       power.NewFetcher(store, pool, logger, m),
		Accounts:      explorer,
		Workers:       workers,
		AccountCache:  accountCache,
		VoteableCache: voteableCache,
	})
	if err != nil {
		logger.Fatal("Unable to create power service", zap.Error(err))
	}

	checks := []types.HealthCheck{
		{Name: "clickhouse", Check: store.Ready},
		{Name: "explorer", Check: explorer.Health},
	}
	if redisClient != nil {
		checks = append(checks, types.HealthCheck{Name: "redis", Check: redisClient.Health})
	}

	return &types.App{
		Power:        svc,
		Store:        store,
		Workers:      workers,
		RedisClient:  redisClient,
		Pool:         pool,
		Metrics:      m,
		HealthChecks: checks,
		QueryTimeout: utils.EnvDuration("QUERY_TIMEOUT", 60*time.Second),
		Logger:       logger,
	}
}
