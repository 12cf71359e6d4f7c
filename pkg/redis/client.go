// Package redis provides a thin wrapper around go-redis/v9 exposing the
// sorted-set, set, hash, and scalar operations the board and suggest engines
// need. Connectivity failures surface as errors.ErrStoreUnavailable; a Redis
// nil reply is reported as absence, never as unavailability.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/config"
	errs "github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// MemberScore is one entry of a sorted-set range reply.
type MemberScore struct {
	Member string
	Score  float64
}

// Client wraps a go-redis client.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a Redis client and verifies the connection with a PING.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// NewClientFromRDB wraps an already-constructed go-redis client. Used by
// integration tests that hand in a container-backed connection.
func NewClientFromRDB(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// wrap converts an infrastructure failure into an ErrStoreUnavailable chain
// while keeping the operation, key, and underlying cause in the message.
func wrap(op, key string, err error) error {
	return fmt.Errorf("%s %s: %v: %w", op, key, err, errs.ErrStoreUnavailable)
}

// ---------- sorted sets ----------

// ZAddOrUpdate inserts the member or updates its score.
func (c *Client) ZAddOrUpdate(ctx context.Context, key, member string, score float64) error {
	if err := c.rdb.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return wrap("zadd", key, err)
	}
	return nil
}

// ZIncrBy increments the member's score and returns the new score.
func (c *Client) ZIncrBy(ctx context.Context, key, member string, delta float64) (float64, error) {
	score, err := c.rdb.ZIncrBy(ctx, key, delta, member).Result()
	if err != nil {
		return 0, wrap("zincrby", key, err)
	}
	return score, nil
}

// ZRem removes members from the sorted set.
func (c *Client) ZRem(ctx context.Context, key string, members ...string) error {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := c.rdb.ZRem(ctx, key, args...).Err(); err != nil {
		return wrap("zrem", key, err)
	}
	return nil
}

// ZRank returns the member's 0-based ascending rank. The second return is
// false when the member is not in the set.
func (c *Client) ZRank(ctx context.Context, key, member string) (int64, bool, error) {
	rank, err := c.rdb.ZRank(ctx, key, member).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrap("zrank", key, err)
	}
	return rank, true, nil
}

// ZRangeAsc returns members between the given ranks in ascending order.
func (c *Client) ZRangeAsc(ctx context.Context, key string, start, stop int64) ([]string, error) {
	members, err := c.rdb.ZRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, wrap("zrange", key, err)
	}
	return members, nil
}

// ZRevRangeWithScores returns members between the given ranks in descending
// score order, with their scores.
func (c *Client) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]MemberScore, error) {
	zs, err := c.rdb.ZRevRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, wrap("zrevrange", key, err)
	}
	out := make([]MemberScore, len(zs))
	for i, z := range zs {
		out[i] = MemberScore{Member: fmt.Sprint(z.Member), Score: z.Score}
	}
	return out, nil
}

// ZScore returns the member's score. The second return is false when the
// member is not in the set.
func (c *Client) ZScore(ctx context.Context, key, member string) (float64, bool, error) {
	score, err := c.rdb.ZScore(ctx, key, member).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrap("zscore", key, err)
	}
	return score, true, nil
}

// ZCard returns the cardinality of the sorted set.
func (c *Client) ZCard(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.ZCard(ctx, key).Result()
	if err != nil {
		return 0, wrap("zcard", key, err)
	}
	return n, nil
}

// ZInterStoreMax stores into dest the intersection of the given keys, taking
// the maximum score per member, and returns the result cardinality.
func (c *Client) ZInterStoreMax(ctx context.Context, dest string, keys ...string) (int64, error) {
	n, err := c.rdb.ZInterStore(ctx, dest, &redis.ZStore{
		Keys:      keys,
		Aggregate: "MAX",
	}).Result()
	if err != nil {
		return 0, wrap("zinterstore", dest, err)
	}
	return n, nil
}

// ---------- sets ----------

// SAdd adds the member to the set and reports whether it was newly added.
func (c *Client) SAdd(ctx context.Context, key, member string) (bool, error) {
	added, err := c.rdb.SAdd(ctx, key, member).Result()
	if err != nil {
		return false, wrap("sadd", key, err)
	}
	return added == 1, nil
}

// SRem removes the member from the set.
func (c *Client) SRem(ctx context.Context, key, member string) error {
	if err := c.rdb.SRem(ctx, key, member).Err(); err != nil {
		return wrap("srem", key, err)
	}
	return nil
}

// SCard returns the cardinality of the set.
func (c *Client) SCard(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.SCard(ctx, key).Result()
	if err != nil {
		return 0, wrap("scard", key, err)
	}
	return n, nil
}

// ---------- hashes ----------

// HSet writes the given fields of the hash.
func (c *Client) HSet(ctx context.Context, key string, fields map[string]any) error {
	if err := c.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return wrap("hset", key, err)
	}
	return nil
}

// HGetAll returns all fields of the hash. An absent key yields an empty map.
func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	fields, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, wrap("hgetall", key, err)
	}
	return fields, nil
}

// HIncrBy increments an integer hash field and returns the new value.
func (c *Client) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	n, err := c.rdb.HIncrBy(ctx, key, field, delta).Result()
	if err != nil {
		return 0, wrap("hincrby", key, err)
	}
	return n, nil
}

// ---------- scalars ----------

// Get returns the string value for the given key. The second return is false
// when the key does not exist.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrap("get", key, err)
	}
	return v, true, nil
}

// Set stores a value with the given TTL (0 means no expiry).
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return wrap("set", key, err)
	}
	return nil
}

// Del deletes one or more keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return wrap("del", keys[0], err)
	}
	return nil
}

// Incr increments an integer key and returns the new value.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, wrap("incr", key, err)
	}
	return n, nil
}

// Expire sets a TTL on the key.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		return wrap("expire", key, err)
	}
	return nil
}

// FlushByPattern scans for keys matching the glob pattern and deletes them,
// returning the number of keys removed.
func (c *Client) FlushByPattern(ctx context.Context, pattern string) (int64, error) {
	var deleted int64
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, wrap("del", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, wrap("scan", pattern, err)
	}
	return deleted, nil
}

// Close closes the underlying Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping sends a PING to Redis and returns any error.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
