package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "suggest:cache:"

// Cache memoises suggest results in the scalar store. Concurrent misses for
// the same prefix collapse into a single computation via singleflight.
type Cache struct {
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a Cache with the given entry TTL.
func NewCache(store Store, ttl time.Duration) *Cache {
	return &Cache{
		store:  store,
		ttl:    ttl,
		logger: slog.Default().With("component", "suggest-cache"),
	}
}

func (c *Cache) buildKey(prefix string, withDefs bool) string {
	return cacheKeyPrefix + prefix + ":" + strconv.FormatBool(withDefs)
}

// Get returns the cached result for the prefix, if present.
func (c *Cache) Get(ctx context.Context, prefix string, withDefs bool) ([]Word, bool) {
	key := c.buildKey(prefix, withDefs)
	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Error("cache get failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	if !found {
		c.misses.Add(1)
		return nil, false
	}
	var words []Word
	if err := json.Unmarshal([]byte(data), &words); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "prefix", prefix, "key", key)
	return words, true
}

// Set stores a result for the prefix.
func (c *Cache) Set(ctx context.Context, prefix string, withDefs bool, words []Word) {
	key := c.buildKey(prefix, withDefs)
	data, err := json.Marshal(words)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or computes and stores it, with
// concurrent computations for the same key collapsed. The flight runs on a
// context detached from the caller's: the winner computes on behalf of
// every collapsed caller, so its own request being cancelled must not fail
// the whole flight.
func (c *Cache) GetOrCompute(
	ctx context.Context,
	prefix string,
	withDefs bool,
	computeFn func(ctx context.Context) ([]Word, error),
) ([]Word, bool, error) {
	if words, ok := c.Get(ctx, prefix, withDefs); ok {
		return words, true, nil
	}
	key := c.buildKey(prefix, withDefs)
	flightCtx := context.WithoutCancel(ctx)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if words, ok := c.Get(flightCtx, prefix, withDefs); ok {
			return words, nil
		}
		words, err := computeFn(flightCtx)
		if err != nil {
			return nil, err
		}
		c.Set(flightCtx, prefix, withDefs, words)
		return words, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]Word), false, nil
}

// Invalidate drops every cached suggest result. Called after dictionary
// mutations.
func (c *Cache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, cacheKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating suggest cache: %w", err)
	}
	c.logger.Info("suggest cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
