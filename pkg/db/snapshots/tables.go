package snapshots

import (
	"context"
	"fmt"

	"github.com/canopy-network/powerx/pkg/db/clickhouse"
	"github.com/canopy-network/powerx/pkg/db/models/statistics"
)

// initVotingStatistics creates the voting_statistics table.
// ReplacingMergeTree keyed by (account, block_number) collapses reruns of the statistics job.
func (s *Store) initVotingStatistics(ctx context.Context) error {
	query := createTableSQL(s.Name, statistics.VotingStatisticsTableName, s.OnCluster(),
		statistics.ColumnsToSchemaSQL(statistics.VotingStatisticColumns),
		clickhouse.Engine(clickhouse.ReplacingMergeTree, "block_number", s.Cluster != ""),
		"(account, block_number)")
	if err := s.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", statistics.VotingStatisticsTableName, err)
	}
	return nil
}

// initVoteableStatistics creates the voteable_statistics table.
func (s *Store) initVoteableStatistics(ctx context.Context) error {
	query := createTableSQL(s.Name, statistics.VoteableStatisticsTableName, s.OnCluster(),
		statistics.ColumnsToSchemaSQL(statistics.VoteableStatisticColumns),
		clickhouse.Engine(clickhouse.ReplacingMergeTree, "block_number", s.Cluster != ""),
		"(vote_id, block_number)")
	if err := s.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", statistics.VoteableStatisticsTableName, err)
	}
	return nil
}

func createTableSQL(database, table, onCluster, schemaSQL, engine, orderBy string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" %s (
			%s,
			INDEX idx_block_time block_time TYPE minmax GRANULARITY 4
		) ENGINE = %s
		ORDER BY %s
	`, database, table, onCluster, schemaSQL, engine, orderBy)
}
