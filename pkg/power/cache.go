package power

import (
	"context"
	"fmt"

	"github.com/canopy-network/powerx/pkg/metrics"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// DefaultCacheSize is the number of snapshot lists a cache keeps before evicting.
const DefaultCacheSize = 100

// CacheKey identifies a fetched snapshot list. Only exact matches hit.
type CacheKey struct {
	Subject    string
	Datapoints int
	FromDate   string
	ToDate     string
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%d:%s:%s", k.Subject, k.Datapoints, k.FromDate, k.ToDate)
}

// SharedTier is a second cache level shared between service replicas.
// Implementations are best-effort: failures are reported as misses.
type SharedTier interface {
	Get(ctx context.Context, name string, key CacheKey) ([]Snapshot, bool)
	Set(ctx context.Context, name string, key CacheKey, value []Snapshot)
}

// Cache memoizes snapshot lists per request parameters in a bounded LRU,
// optionally backed by a SharedTier. Stored lists are never mutated.
type Cache struct {
	name    string
	lru     *lru.Cache
	shared  SharedTier
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithSharedTier puts a shared tier behind the in-process LRU.
func WithSharedTier(t SharedTier) CacheOption {
	return func(c *Cache) { c.shared = t }
}

// WithCacheMetrics records hits and misses.
func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *Cache) { c.metrics = m }
}

// NewCache creates a cache holding at most size entries. Non-positive sizes use DefaultCacheSize.
func NewCache(name string, size int, logger *zap.Logger, opts ...CacheOption) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	l, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create %s cache: %w", name, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{name: name, lru: l, logger: logger.Named("cache").With(zap.String("cache", name))}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Lookup returns the snapshot list stored for key.
func (c *Cache) Lookup(ctx context.Context, key CacheKey) ([]Snapshot, bool) {
	if v, ok := c.lru.Get(key); ok {
		c.metrics.CacheLookup(c.name, true)
		c.logger.Debug("Cache hit", zap.Stringer("key", key))
		return v.([]Snapshot), true
	}

	if c.shared != nil {
		if v, ok := c.shared.Get(ctx, c.name, key); ok {
			c.lru.Add(key, v)
			c.metrics.CacheLookup(c.name, true)
			c.logger.Debug("Shared cache hit", zap.Stringer("key", key))
			return v, true
		}
	}

	c.metrics.CacheLookup(c.name, false)
	c.logger.Debug("Cache miss", zap.Stringer("key", key))
	return nil, false
}

// Store replaces whatever is stored for key.
func (c *Cache) Store(ctx context.Context, key CacheKey, value []Snapshot) {
	if value == nil {
		value = []Snapshot{}
	}
	c.lru.Add(key, value)
	if c.shared != nil {
		c.shared.Set(ctx, c.name, key, value)
	}
}

// Len is the number of entries held in process.
func (c *Cache) Len() int {
	return c.lru.Len()
}
