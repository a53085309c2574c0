package statistics

import (
	"fmt"
	"time"
)

const VotingStatisticsTableName = "voting_statistics"

// BlockTimeLayout is how block times are rendered in API responses.
const BlockTimeLayout = "2006-01-02T15:04:05"

// VotingStatisticColumns defines the schema for the voting_statistics table.
// One row per account per statistics run; proxy_for_* are parallel arrays.
var VotingStatisticColumns = []ColumnDef{
	{Name: "account", Type: "String", Codec: "ZSTD(1)"},
	{Name: "stake", Type: "Int64", Codec: "Delta, ZSTD(3)"},
	{Name: "proxy", Type: "String", Codec: "ZSTD(1)"},
	{Name: "proxy_for_ids", Type: "Array(String)", Codec: "ZSTD(1)"},
	{Name: "proxy_for_amounts", Type: "Array(Int64)", Codec: "ZSTD(3)"},
	{Name: "block_number", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "block_time", Type: "DateTime64(6)", Codec: "DoubleDelta, LZ4"},
}

// VotingStatistic is an account's stake, proxy and the stake of the accounts that use it as
// their proxy, as of one block.
//
// Query pattern:
//   - Newest in window: SELECT ... WHERE account = ? AND block_time >= ? AND block_time < ? ORDER BY block_number DESC LIMIT 1
type VotingStatistic struct {
	Account         string    `ch:"account" json:"account"`
	Stake           int64     `ch:"stake" json:"stake"`
	Proxy           string    `ch:"proxy" json:"proxy"`
	ProxyForIDs     []string  `ch:"proxy_for_ids" json:"proxy_for_ids"`
	ProxyForAmounts []int64   `ch:"proxy_for_amounts" json:"proxy_for_amounts"`
	BlockNumber     uint64    `ch:"block_number" json:"block_number"`
	BlockTime       time.Time `ch:"block_time" json:"block_time"`
}

// Validate checks the parallel arrays line up.
func (v *VotingStatistic) Validate() error {
	if len(v.ProxyForIDs) != len(v.ProxyForAmounts) {
		return fmt.Errorf("voting statistic %s@%d: %d proxy ids but %d amounts",
			v.Account, v.BlockNumber, len(v.ProxyForIDs), len(v.ProxyForAmounts))
	}
	return nil
}
