package statistics

import (
	"fmt"
	"time"
)

const VoteableStatisticsTableName = "voteable_statistics"

// VoteableStatisticColumns defines the schema for the voteable_statistics table.
var VoteableStatisticColumns = []ColumnDef{
	{Name: "vote_id", Type: "String", Codec: "ZSTD(1)"},
	{Name: "voted_by_ids", Type: "Array(String)", Codec: "ZSTD(1)"},
	{Name: "voted_by_amounts", Type: "Array(Int64)", Codec: "ZSTD(3)"},
	{Name: "block_number", Type: "UInt64", Codec: "Delta, ZSTD(3)"},
	{Name: "block_time", Type: "DateTime64(6)", Codec: "DoubleDelta, LZ4"},
}

// VoteableStatistic is the stake every account put behind one vote target as of one block.
type VoteableStatistic struct {
	VoteID         string    `ch:"vote_id" json:"vote_id"`
	VotedByIDs     []string  `ch:"voted_by_ids" json:"voted_by_ids"`
	VotedByAmounts []int64   `ch:"voted_by_amounts" json:"voted_by_amounts"`
	BlockNumber    uint64    `ch:"block_number" json:"block_number"`
	BlockTime      time.Time `ch:"block_time" json:"block_time"`
}

// Validate checks the parallel arrays line up.
func (v *VoteableStatistic) Validate() error {
	if len(v.VotedByIDs) != len(v.VotedByAmounts) {
		return fmt.Errorf("voteable statistic %s@%d: %d voter ids but %d amounts",
			v.VoteID, v.BlockNumber, len(v.VotedByIDs), len(v.VotedByAmounts))
	}
	return nil
}
