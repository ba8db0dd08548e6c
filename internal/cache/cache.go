package cache

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/task-tracker/internal/observability"
)

// ResponseCache stores JSON-encoded responses in a Store and records hit rates.
type ResponseCache struct {
	store   Store
	logger  *zap.Logger
	metrics *observability.Metrics
}

// New wraps store.
func New(store Store, logger *zap.Logger, metrics *observability.Metrics) *ResponseCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseCache{store: store, logger: logger.Named("cache"), metrics: metrics}
}

// Get decodes the cached value into dst. Backend errors and undecodable entries count as misses.
func (c *ResponseCache) Get(ctx context.Context, region Region, key Key, dst any) bool {
	payload, ok, err := c.store.Get(ctx, region, key)
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("region", string(region)), zap.Stringer("key", key), zap.Error(err))
		ok = false
	}
	if ok {
		if err := json.Unmarshal(payload, dst); err != nil {
			c.logger.Warn("dropping undecodable cache entry", zap.String("region", string(region)), zap.Stringer("key", key), zap.Error(err))
			_ = c.store.Evict(ctx, region, key)
			ok = false
		}
	}
	c.metrics.RecordCacheLookup(string(region), ok)
	return ok
}

// Put overwrites the entry unconditionally.
func (c *ResponseCache) Put(ctx context.Context, region Region, key Key, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.store.Put(ctx, region, key, payload)
}

// PutIfGeneration writes only when the principal's generation still equals generation.
// It reports whether the value was stored.
func (c *ResponseCache) PutIfGeneration(ctx context.Context, region Region, key Key, value any, generation uint64) (bool, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	stored, err := c.store.PutIfGeneration(ctx, region, key, payload, generation)
	if err != nil {
		return false, err
	}
	if !stored {
		c.logger.Debug("skipped stale cache fill", zap.String("region", string(region)), zap.Stringer("key", key))
	}
	return stored, nil
}

// Evict removes one entry; missing entries are not an error.
func (c *ResponseCache) Evict(ctx context.Context, region Region, key Key) error {
	if err := c.store.Evict(ctx, region, key); err != nil {
		return err
	}
	c.metrics.RecordEviction(string(region), 1)
	return nil
}

// EvictAll clears a region for every principal.
func (c *ResponseCache) EvictAll(ctx context.Context, region Region) error {
	c.logger.Info("clearing cache region", zap.String("region", string(region)))
	return c.store.EvictAll(ctx, region)
}

// Generation returns the principal's current generation, to be passed to PutIfGeneration.
func (c *ResponseCache) Generation(ctx context.Context, principal string) (uint64, error) {
	return c.store.Generation(ctx, principal)
}

// Invalidate advances the principal's generation and then evicts entries.
// Every entry must belong to principal; other principals are never touched.
func (c *ResponseCache) Invalidate(ctx context.Context, principal string, entries []Entry) error {
	for _, e := range entries {
		if e.Key.Principal != principal {
			return errors.New("cache: invalidation entry belongs to another principal")
		}
	}
	if _, err := c.store.Bump(ctx, principal); err != nil {
		return err
	}
	var errs []error
	for _, e := range entries {
		if err := c.Evict(ctx, e.Region, e.Key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
