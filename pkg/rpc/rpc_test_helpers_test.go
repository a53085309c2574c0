package rpc_test

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/canopy-network/powerx/pkg/rpc"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestExplorer(handler http.Handler) *rpc.ExplorerClient {
	return newTestExplorerWithOpts(handler, rpc.Opts{})
}

func newTestExplorerWithOpts(handler http.Handler, opts rpc.Opts) *rpc.ExplorerClient {
	httpClient := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			resp := rec.Result()
			if resp.Body == nil {
				resp.Body = http.NoBody
			}
			return resp, nil
		}),
		Timeout: 5 * time.Second,
	}

	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.RPS == 0 {
		opts.RPS = 1000
	}
	if len(opts.Endpoints) == 0 {
		opts.Endpoints = []string{"http://mock"}
	}
	opts.HTTPClient = httpClient

	return rpc.NewExplorerClient(rpc.NewHTTPWithOpts(opts), nil)
}
