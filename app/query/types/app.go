package types

import (
	"context"
	"net/http"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/canopy-network/powerx/pkg/db/snapshots"
	"github.com/canopy-network/powerx/pkg/metrics"
	"github.com/canopy-network/powerx/pkg/power"
	"github.com/canopy-network/powerx/pkg/redis"
	"github.com/canopy-network/powerx/pkg/registry"
	"go.uber.org/zap"
)

// PowerService answers the account power and voteable votes queries.
type PowerService interface {
	GetAccountPower(ctx context.Context, req power.Request) (*power.AccountPower, error)
	GetVoteableVotes(ctx context.Context, req power.Request) (*power.VoteableVotes, error)
}

// HealthCheck is a named dependency probe reported by /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type App struct {
	Power PowerService

	Store       *snapshots.Store
	Workers     *registry.Workers
	RedisClient *redis.Client
	Pool        pond.Pool
	Metrics     *metrics.Metrics

	HealthChecks []HealthCheck
	// QueryTimeout bounds a single API request including every window fetch.
	QueryTimeout time.Duration

	// Zap Logger
	Logger *zap.Logger
	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server
}

// Start starts the application and blocks until ctx is done.
func (a *App) Start(ctx context.Context) {
	if a.Workers != nil {
		a.Workers.StartCron()
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = a.Server.Shutdown(shutdownCtx)

	if a.Workers != nil {
		a.Workers.StopCron()
	}
	if a.Pool != nil {
		a.Pool.StopAndWait()
	}

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Error("Failed to close database connection", zap.Error(err))
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
}
