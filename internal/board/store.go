package board

import (
	"context"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/redis"
)

// MemberScore is one entry of an ordered range reply.
type MemberScore = redis.MemberScore

// OrderedIndex is the key-ordered, score-weighted container the ranking
// engines read and write. Implemented by pkg/redis over sorted sets.
type OrderedIndex interface {
	ZAddOrUpdate(ctx context.Context, key, member string, score float64) error
	ZIncrBy(ctx context.Context, key, member string, delta float64) (float64, error)
	ZRem(ctx context.Context, key string, members ...string) error
	ZRank(ctx context.Context, key, member string) (rank int64, found bool, err error)
	ZRangeAsc(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]MemberScore, error)
	ZScore(ctx context.Context, key, member string) (score float64, found bool, err error)
	ZCard(ctx context.Context, key string) (int64, error)
	ZInterStoreMax(ctx context.Context, dest string, keys ...string) (int64, error)
}

// SetStore holds the per-item voter sets and group membership sets.
type SetStore interface {
	SAdd(ctx context.Context, key, member string) (wasNew bool, err error)
	SRem(ctx context.Context, key, member string) error
	SCard(ctx context.Context, key string) (int64, error)
}

// RecordStore holds the item hashes.
type RecordStore interface {
	HSet(ctx context.Context, key string, fields map[string]any) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
}

// KVStore covers the scalar operations: id sequence, TTLs, key deletion.
type KVStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Store bundles the collaborator contracts a board Service needs. pkg/redis
// satisfies all of them with a single client.
type Store interface {
	OrderedIndex
	SetStore
	RecordStore
	KVStore
}
