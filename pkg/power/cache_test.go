package power

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryTier struct {
	mu   sync.Mutex
	data map[string][]Snapshot
	gets int
}

func newMemoryTier() *memoryTier {
	return &memoryTier{data: map[string][]Snapshot{}}
}

func (m *memoryTier) Get(_ context.Context, name string, key CacheKey) ([]Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	v, ok := m.data[name+"|"+key.String()]
	return v, ok
}

func (m *memoryTier) Set(_ context.Context, name string, key CacheKey, value []Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name+"|"+key.String()] = value
}

func TestCacheExactKeyMatch(t *testing.T) {
	ctx := context.Background()
	c, err := NewCache("accounts", 10, nil)
	require.NoError(t, err)

	key := CacheKey{Subject: "1.2.285", Datapoints: 50, FromDate: "2019-01-01", ToDate: "2020-01-01"}
	value := []Snapshot{{BlockNumber: 1}}
	c.Store(ctx, key, value)

	got, ok := c.Lookup(ctx, key)
	require.True(t, ok)
	assert.Equal(t, value, got)

	for _, miss := range []CacheKey{
		{Subject: "1.2.286", Datapoints: 50, FromDate: "2019-01-01", ToDate: "2020-01-01"},
		{Subject: "1.2.285", Datapoints: 51, FromDate: "2019-01-01", ToDate: "2020-01-01"},
		{Subject: "1.2.285", Datapoints: 50, FromDate: "2019-01-02", ToDate: "2020-01-01"},
		{Subject: "1.2.285", Datapoints: 50, FromDate: "2019-01-01", ToDate: "2020-01-02"},
	} {
		_, ok := c.Lookup(ctx, miss)
		assert.False(t, ok, miss.String())
	}
}

func TestCacheStoreOverwrites(t *testing.T) {
	ctx := context.Background()
	c, err := NewCache("accounts", 10, nil)
	require.NoError(t, err)

	key := CacheKey{Subject: "1.2.1", Datapoints: 2}
	c.Store(ctx, key, []Snapshot{{BlockNumber: 1}})
	c.Store(ctx, key, []Snapshot{{BlockNumber: 2}, {BlockNumber: 3}})

	got, ok := c.Lookup(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []Snapshot{{BlockNumber: 2}, {BlockNumber: 3}}, got)
	assert.Equal(t, 1, c.Len())
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c, err := NewCache("accounts", 2, nil)
	require.NoError(t, err)

	k1, k2, k3 := CacheKey{Subject: "1"}, CacheKey{Subject: "2"}, CacheKey{Subject: "3"}
	c.Store(ctx, k1, []Snapshot{})
	c.Store(ctx, k2, []Snapshot{})
	_, _ = c.Lookup(ctx, k1)
	c.Store(ctx, k3, []Snapshot{})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Lookup(ctx, k2)
	assert.False(t, ok)
	_, ok = c.Lookup(ctx, k1)
	assert.True(t, ok)
}

func TestCacheStoresEmptyResults(t *testing.T) {
	ctx := context.Background()
	c, err := NewCache("voteables", 0, nil)
	require.NoError(t, err)

	key := CacheKey{Subject: "1.14.206"}
	c.Store(ctx, key, nil)
	got, ok := c.Lookup(ctx, key)
	require.True(t, ok)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCacheSharedTier(t *testing.T) {
	ctx := context.Background()
	tier := newMemoryTier()

	writer, err := NewCache("accounts", 10, nil, WithSharedTier(tier))
	require.NoError(t, err)
	reader, err := NewCache("accounts", 10, nil, WithSharedTier(tier))
	require.NoError(t, err)

	key := CacheKey{Subject: "1.2.285", Datapoints: 5}
	writer.Store(ctx, key, []Snapshot{{BlockNumber: 42}})

	got, ok := reader.Lookup(ctx, key)
	require.True(t, ok)
	assert.Equal(t, uint64(42), got[0].BlockNumber)

	// promoted into the reader's LRU
	gets := tier.gets
	_, ok = reader.Lookup(ctx, key)
	require.True(t, ok)
	assert.Equal(t, gets, tier.gets)
}
