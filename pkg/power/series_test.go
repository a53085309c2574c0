package power

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotSelfPower(t *testing.T) {
	assert.Equal(t, int64(12), Snapshot{SelfStake: 1_234_567, Proxy: NoProxyAccount}.SelfPower())
	assert.Equal(t, int64(0), Snapshot{SelfStake: 1_234_567, Proxy: "1.2.100"}.SelfPower())
}

func TestSnapshotTotalPowerTruncatesPerEntry(t *testing.T) {
	s := Snapshot{SubEntries: []SubEntry{
		{ID: "1.2.10", RawPower: 150_000},
		{ID: "1.2.11", RawPower: 150_000},
		{ID: "1.2.12", RawPower: 99_999},
	}}
	// 1.5 + 1.5 + 0.99 summed first would give 3
	assert.Equal(t, int64(2), s.TotalPower())
}

func TestBuildTotals(t *testing.T) {
	snapshots := []Snapshot{
		{BlockNumber: 10, BlockTime: "2019-01-01T00:00:00", SelfStake: 500_000, Proxy: NoProxyAccount,
			SubEntries: []SubEntry{{ID: "a", RawPower: 300_000}}},
		{BlockNumber: 20, BlockTime: "2019-01-02T00:00:00", SelfStake: 500_000, Proxy: "1.2.99"},
	}

	got := BuildTotals(snapshots)
	assert.Equal(t, []uint64{10, 20}, got.Blocks)
	assert.Equal(t, []string{"2019-01-01T00:00:00", "2019-01-02T00:00:00"}, got.BlockTimes)
	assert.Equal(t, []int64{5, 0}, got.SelfPowers)
	assert.Equal(t, []int64{3, 0}, got.TotalPowers)
}

func TestBuildTotalsEmpty(t *testing.T) {
	got := BuildTotals(nil)
	assert.NotNil(t, got.Blocks)
	assert.Empty(t, got.TotalPowers)
}

func TestBuildBreakdownLeavesUnfilledSlotsZero(t *testing.T) {
	snapshots := []Snapshot{
		{BlockNumber: 1, SubEntries: []SubEntry{{ID: "a", RawPower: 100_000}}},
		{BlockNumber: 2, SubEntries: []SubEntry{{ID: "b", RawPower: 700_000}, {ID: "a", RawPower: 200_000}}},
	}

	got := BuildBreakdown(snapshots, 4)
	require.Equal(t, 2, got.Powers.Len())
	assert.Equal(t, []string{"a", "b"}, got.Powers.IDs())

	a, ok := got.Powers.Series("a")
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2, 0, 0}, a)

	b, ok := got.Powers.Series("b")
	require.True(t, ok)
	assert.Equal(t, []int64{0, 7, 0, 0}, b)

	assert.Equal(t, []uint64{1, 2}, got.Blocks)
	assert.Equal(t, []int64{0, 0}, got.SelfPowers)
}

func TestBuildBreakdownDoesNotTouchSnapshots(t *testing.T) {
	snapshots := []Snapshot{{BlockNumber: 1, SubEntries: []SubEntry{{ID: "a", RawPower: 100_000}}}}
	b := BuildBreakdown(snapshots, 2)
	Merge(5, 1, 2, b.Powers, nil)
	assert.Equal(t, int64(100_000), snapshots[0].SubEntries[0].RawPower)
}
