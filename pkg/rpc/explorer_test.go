package rpc_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/canopy-network/powerx/pkg/power"
	"github.com/canopy-network/powerx/pkg/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAccount(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"list", `[{"id":"1.2.285","name":"committee-member","options":{}}]`},
		{"object", `{"id":"1.2.285","name":"committee-member"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/get_account", r.URL.Path)
				assert.Equal(t, "committee-member", r.URL.Query().Get("account_id"))
				_, _ = w.Write([]byte(tt.body))
			})

			acc, err := newTestExplorer(handler).ResolveAccount(context.Background(), "committee-member")
			require.NoError(t, err)
			assert.Equal(t, power.Account{ID: "1.2.285", Name: "committee-member"}, acc)
		})
	}
}

func TestResolveAccountNotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"404", http.StatusNotFound, `{"error":"unknown"}`},
		{"null", http.StatusOK, `null`},
		{"empty list", http.StatusOK, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := newTestExplorer(handler).ResolveAccount(context.Background(), "1.2.999999")
			require.ErrorIs(t, err, rpc.ErrAccountNotFound)
		})
	}
}

func TestResolveAccountFailsOverToNextEndpoint(t *testing.T) {
	var first, second atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Host == "mock1" {
			first.Add(1)
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		second.Add(1)
		_, _ = w.Write([]byte(`{"id":"1.2.1","name":"a"}`))
	})

	client := newTestExplorerWithOpts(handler, rpc.Opts{
		Endpoints:       []string{"http://mock1", "http://mock2"},
		BreakerFailures: 1,
	})

	for i := 0; i < 3; i++ {
		acc, err := client.ResolveAccount(context.Background(), "1.2.1")
		require.NoError(t, err)
		assert.Equal(t, "1.2.1", acc.ID)
	}

	// the breaker opened after the first failure
	assert.EqualValues(t, 1, first.Load())
	assert.EqualValues(t, 3, second.Load())
}

func TestResolveAccountAllEndpointsDown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := newTestExplorer(handler).ResolveAccount(context.Background(), "1.2.1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, rpc.ErrAccountNotFound)

	var se *rpc.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
}

func TestResolveAccountNameIsMemoized(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/get_account_name":
			assert.Equal(t, "1.2.100", r.URL.Query().Get("account_id"))
			_, _ = w.Write([]byte(`"alice"`))
		case "/get_account":
			_, _ = w.Write([]byte(`[{"id":"1.2.200","name":"bob"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	client := newTestExplorer(handler)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		name, err := client.ResolveAccountName(ctx, "1.2.100")
		require.NoError(t, err)
		assert.Equal(t, "alice", name)
	}
	assert.EqualValues(t, 1, calls.Load())

	// names learned while resolving accounts are reused
	_, err := client.ResolveAccount(ctx, "bob")
	require.NoError(t, err)
	name, err := client.ResolveAccountName(ctx, "1.2.200")
	require.NoError(t, err)
	assert.Equal(t, "bob", name)
	assert.EqualValues(t, 2, calls.Load())
}

func TestResolveAccountNameUnknown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`""`))
	})

	_, err := newTestExplorer(handler).ResolveAccountName(context.Background(), "1.2.404")
	assert.ErrorIs(t, err, rpc.ErrAccountNotFound)
}

func TestListWorkers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_workers", r.URL.Path)
		_, _ = w.Write([]byte(`[
			[{"id":"1.14.6","name":"other","vote_for":"1:4"}, 0],
			[],
			["not an object"],
			[{"id":"1.14.7","name":"worker-seven","vote_for":"1:5"}, 12]
		]`))
	})

	workers, err := newTestExplorer(handler).ListWorkers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []power.Worker{
		{ID: "1.14.6", Name: "other", VoteTargetID: "1:4"},
		{ID: "1.14.7", Name: "worker-seven", VoteTargetID: "1:5"},
	}, workers)
}

func TestHealth(t *testing.T) {
	healthy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/header", r.URL.Path)
		_, _ = w.Write([]byte(`{"head_block_number":1}`))
	})
	require.NoError(t, newTestExplorer(healthy).Health(context.Background()))

	down := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	assert.Error(t, newTestExplorer(down).Health(context.Background()))
}
