package snapshots

import (
	"context"
	"fmt"

	"github.com/canopy-network/powerx/pkg/db/clickhouse"
	"go.uber.org/zap"
)

// Store reads voting and voteable statistics snapshots from ClickHouse.
// It implements power.SnapshotSource.
type Store struct {
	clickhouse.Client
	Name string
}

// New connects to ClickHouse for the statistics database. With initSchema the database and
// tables are created when missing, otherwise they must already exist.
func New(ctx context.Context, logger *zap.Logger, dbName string, initSchema bool) (*Store, error) {
	name := clickhouse.SanitizeName(dbName)

	client, err := clickhouse.New(ctx, logger.With(zap.String("db", name)), name, clickhouse.DefaultPoolConfig("query"))
	if err != nil {
		return nil, err
	}

	store := &Store{Client: client, Name: name}
	if initSchema {
		if err := store.InitializeDB(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	return store, nil
}

// InitializeDB creates the database and both statistics tables if they do not exist.
func (s *Store) InitializeDB(ctx context.Context) error {
	if err := s.CreateDbIfNotExists(ctx, s.Name); err != nil {
		return fmt.Errorf("failed to create database %s: %w", s.Name, err)
	}
	if err := s.initVotingStatistics(ctx); err != nil {
		return err
	}
	if err := s.initVoteableStatistics(ctx); err != nil {
		return err
	}
	s.Logger.Info("Statistics schema ready", zap.String("database", s.Name))
	return nil
}

// Ready reports whether the store can serve queries.
func (s *Store) Ready(ctx context.Context) error {
	if err := s.Ping(ctx); err != nil {
		return fmt.Errorf("ping clickhouse: %w", err)
	}
	return nil
}
