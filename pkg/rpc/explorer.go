package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/canopy-network/powerx/pkg/power"
	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

// ErrAccountNotFound is returned when the explorer knows no account by the given id or name.
var ErrAccountNotFound = errors.New("account not found")

type accountObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type workerObject struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	VoteFor string `json:"vote_for"`
}

// ExplorerClient reads accounts and workers from the explorer API.
// It implements power.AccountResolver and power.WorkerLister.
type ExplorerClient struct {
	http   *HTTPClient
	names  *xsync.Map[string, string]
	logger *zap.Logger
}

// NewExplorerClient wraps an HTTPClient pointed at explorer API endpoints.
func NewExplorerClient(c *HTTPClient, logger *zap.Logger) *ExplorerClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExplorerClient{
		http:   c,
		names:  xsync.NewMap[string, string](),
		logger: logger.Named("explorer"),
	}
}

// ResolveAccount looks an account up by id or name.
func (c *ExplorerClient) ResolveAccount(ctx context.Context, idOrName string) (power.Account, error) {
	var raw json.RawMessage
	if err := c.http.getJSON(ctx, accountPath, url.Values{"account_id": {idOrName}}, &raw); err != nil {
		if IsNotFound(err) {
			return power.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, idOrName)
		}
		return power.Account{}, fmt.Errorf("get account %s: %w", idOrName, err)
	}

	acc, err := decodeAccount(raw)
	if err != nil {
		return power.Account{}, fmt.Errorf("get account %s: %w", idOrName, err)
	}
	if acc.ID == "" {
		return power.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, idOrName)
	}

	if acc.Name != "" {
		c.names.Store(acc.ID, acc.Name)
	}
	return power.Account{ID: acc.ID, Name: acc.Name}, nil
}

// ResolveAccountName returns the name of an account id. Names never change on chain, so
// every resolved name is kept for the life of the client.
func (c *ExplorerClient) ResolveAccountName(ctx context.Context, id string) (string, error) {
	if name, ok := c.names.Load(id); ok {
		return name, nil
	}

	var name string
	if err := c.http.getJSON(ctx, accountNamePath, url.Values{"account_id": {id}}, &name); err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrAccountNotFound, id)
		}
		return "", fmt.Errorf("get account name %s: %w", id, err)
	}
	if name == "" {
		return "", fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}

	c.names.Store(id, name)
	return name, nil
}

// ListWorkers returns every registered worker. The explorer answers with one array per
// worker whose first element is the worker object.
func (c *ExplorerClient) ListWorkers(ctx context.Context) ([]power.Worker, error) {
	var rows [][]json.RawMessage
	if err := c.http.getJSON(ctx, workersPath, nil, &rows); err != nil {
		return nil, fmt.Errorf("get workers: %w", err)
	}

	workers := make([]power.Worker, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		var w workerObject
		if err := json.Unmarshal(row[0], &w); err != nil {
			c.logger.Warn("Skipping malformed worker entry", zap.Int("index", i), zap.Error(err))
			continue
		}
		if w.ID == "" {
			continue
		}
		workers = append(workers, power.Worker{ID: w.ID, Name: w.Name, VoteTargetID: w.VoteFor})
	}
	return workers, nil
}

// Health checks that at least one endpoint answers.
func (c *ExplorerClient) Health(ctx context.Context) error {
	if err := c.http.getJSON(ctx, headerPath, nil, nil); err != nil {
		return fmt.Errorf("explorer health: %w", err)
	}
	return nil
}

// decodeAccount accepts a bare account object, a list whose first element is one, or null.
func decodeAccount(raw json.RawMessage) (accountObject, error) {
	var acc accountObject
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return acc, nil
	}

	if trimmed[0] == '[' {
		var list []accountObject
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return acc, err
		}
		if len(list) > 0 {
			acc = list[0]
		}
		return acc, nil
	}

	err := json.Unmarshal(trimmed, &acc)
	return acc, err
}
