package snapshots

import (
	"context"
	"fmt"
	"time"

	"github.com/canopy-network/powerx/pkg/db/clickhouse"
	"github.com/canopy-network/powerx/pkg/db/models/statistics"
	"github.com/canopy-network/powerx/pkg/power"
)

// FetchStep returns the snapshot with the highest block number whose block time falls
// within [rangeStart, rangeEnd], both given as YYYY-MM-DD and rangeEnd including its whole
// day. It returns nil when the window is empty.
func (s *Store) FetchStep(ctx context.Context, filter power.EntityFilter, rangeStart, rangeEnd string) (*power.Snapshot, error) {
	from, until, err := windowBounds(rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	switch filter.Field {
	case power.FieldAccount:
		var row statistics.VotingStatistic
		query := newestInWindowSQL(s.Name, statistics.VotingStatisticsTableName, statistics.VotingStatisticColumns, "account")
		if err := s.QueryRow(ctx, query, filter.Value, from, until).ScanStruct(&row); err != nil {
			if clickhouse.IsNoRows(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("query %s: %w", statistics.VotingStatisticsTableName, err)
		}
		return VotingSnapshot(&row)

	case power.FieldVoteID:
		var row statistics.VoteableStatistic
		query := newestInWindowSQL(s.Name, statistics.VoteableStatisticsTableName, statistics.VoteableStatisticColumns, "vote_id")
		if err := s.QueryRow(ctx, query, filter.Value, from, until).ScanStruct(&row); err != nil {
			if clickhouse.IsNoRows(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("query %s: %w", statistics.VoteableStatisticsTableName, err)
		}
		return VoteableSnapshot(&row)

	default:
		return nil, fmt.Errorf("unsupported snapshot filter field %q", filter.Field)
	}
}

func newestInWindowSQL(database, table string, columns []statistics.ColumnDef, keyColumn string) string {
	return fmt.Sprintf(`
		SELECT %s
		FROM "%s"."%s"
		WHERE %s = ? AND block_time >= ? AND block_time < ?
		ORDER BY block_number DESC
		LIMIT 1
	`, statistics.ColumnsToSelectList(columns), database, table, keyColumn)
}

// windowBounds turns the inclusive date window into a half-open UTC time range.
func windowBounds(rangeStart, rangeEnd string) (time.Time, time.Time, error) {
	from, err := time.Parse(power.DateLayout, rangeStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: window start %q", power.ErrInvalidDateFormat, rangeStart)
	}
	to, err := time.Parse(power.DateLayout, rangeEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: window end %q", power.ErrInvalidDateFormat, rangeEnd)
	}
	return from, to.AddDate(0, 0, 1), nil
}

// VotingSnapshot converts a voting_statistics row.
func VotingSnapshot(row *statistics.VotingStatistic) (*power.Snapshot, error) {
	if err := row.Validate(); err != nil {
		return nil, err
	}
	return &power.Snapshot{
		BlockNumber: row.BlockNumber,
		BlockTime:   row.BlockTime.UTC().Format(statistics.BlockTimeLayout),
		SubEntries:  subEntries(row.ProxyForIDs, row.ProxyForAmounts),
		SelfStake:   row.Stake,
		Proxy:       row.Proxy,
	}, nil
}

// VoteableSnapshot converts a voteable_statistics row.
func VoteableSnapshot(row *statistics.VoteableStatistic) (*power.Snapshot, error) {
	if err := row.Validate(); err != nil {
		return nil, err
	}
	return &power.Snapshot{
		BlockNumber: row.BlockNumber,
		BlockTime:   row.BlockTime.UTC().Format(statistics.BlockTimeLayout),
		SubEntries:  subEntries(row.VotedByIDs, row.VotedByAmounts),
	}, nil
}

func subEntries(ids []string, amounts []int64) []power.SubEntry {
	out := make([]power.SubEntry, len(ids))
	for i, id := range ids {
		out[i] = power.SubEntry{ID: id, RawPower: amounts[i]}
	}
	return out
}
