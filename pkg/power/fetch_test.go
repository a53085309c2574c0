package power

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves one snapshot per window, keyed by the window start. Windows listed in
// empty yield nothing, windows listed in failing yield an error.
type fakeSource struct {
	mu      sync.Mutex
	calls   atomic.Int64
	empty   map[string]bool
	failing map[string]error
	seen    []EntityFilter
	build   func(filter EntityFilter, rangeStart string) Snapshot
}

func (f *fakeSource) FetchStep(_ context.Context, filter EntityFilter, rangeStart, _ string) (*Snapshot, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.seen = append(f.seen, filter)
	f.mu.Unlock()

	if err, ok := f.failing[rangeStart]; ok {
		return nil, err
	}
	if f.empty[rangeStart] {
		return nil, nil
	}
	if f.build != nil {
		s := f.build(filter, rangeStart)
		return &s, nil
	}
	return &Snapshot{BlockNumber: blockAt(rangeStart), BlockTime: rangeStart + "T00:00:00"}, nil
}

// blockAt derives a deterministic block number from a window start.
func blockAt(date string) uint64 {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0
	}
	return uint64(t.Unix() / 3)
}

var fetchIntervals = []string{"2019-01-01", "2019-01-02", "2019-01-03", "2019-01-04", "2019-01-05"}

func TestFetchSequentialAndPooledAgree(t *testing.T) {
	filter := EntityFilter{Field: FieldAccount, Value: "1.2.285"}
	newSource := func() *fakeSource {
		return &fakeSource{empty: map[string]bool{"2019-01-02": true}}
	}

	sequential, err := NewFetcher(newSource(), nil, nil, nil).Fetch(context.Background(), filter, fetchIntervals)
	require.NoError(t, err)

	pool := pond.NewPool(4)
	defer pool.StopAndWait()
	pooled, err := NewFetcher(newSource(), pool, nil, nil).Fetch(context.Background(), filter, fetchIntervals)
	require.NoError(t, err)

	require.Len(t, sequential, 3)
	assert.Equal(t, sequential, pooled)
	assert.Equal(t, "2019-01-01T00:00:00", pooled[0].BlockTime)
	assert.Equal(t, "2019-01-03T00:00:00", pooled[1].BlockTime)
	assert.Equal(t, "2019-01-04T00:00:00", pooled[2].BlockTime)
}

func TestFetchOneStepPerWindow(t *testing.T) {
	src := &fakeSource{}
	pool := pond.NewPool(2)
	defer pool.StopAndWait()

	filter := EntityFilter{Field: FieldVoteID, Value: "1:5"}
	got, err := NewFetcher(src, pool, nil, nil).Fetch(context.Background(), filter, fetchIntervals)
	require.NoError(t, err)

	assert.Len(t, got, len(fetchIntervals)-1)
	assert.EqualValues(t, len(fetchIntervals)-1, src.calls.Load())
	for _, f := range src.seen {
		assert.Equal(t, filter, f)
	}
}

func TestFetchNoWindows(t *testing.T) {
	src := &fakeSource{}
	f := NewFetcher(src, nil, nil, nil)

	for _, intervals := range [][]string{nil, {"2019-01-01"}} {
		got, err := f.Fetch(context.Background(), EntityFilter{Field: FieldAccount, Value: "x"}, intervals)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	assert.Zero(t, src.calls.Load())
}

func TestFetchPropagatesSourceError(t *testing.T) {
	boom := errors.New("clickhouse unavailable")
	filter := EntityFilter{Field: FieldAccount, Value: "1.2.285"}

	sequentialSrc := &fakeSource{failing: map[string]error{"2019-01-02": boom}}
	_, err := NewFetcher(sequentialSrc, nil, nil, nil).Fetch(context.Background(), filter, fetchIntervals)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "[2019-01-02, 2019-01-03]")
	assert.EqualValues(t, 2, sequentialSrc.calls.Load())

	pool := pond.NewPool(4)
	defer pool.StopAndWait()
	_, err = NewFetcher(&fakeSource{failing: map[string]error{"2019-01-02": boom}}, pool, nil, nil).
		Fetch(context.Background(), filter, fetchIntervals)
	require.ErrorIs(t, err, boom)
}
