package board

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

// fakeStore is an in-memory Store with redis-compatible ordering semantics:
// ascending range reads order by (score, member), descending reads by the
// exact reverse. Good enough to exercise every board engine without a
// running server.
type fakeStore struct {
	mu      sync.Mutex
	zsets   map[string]map[string]float64
	sets    map[string]map[string]struct{}
	hashes  map[string]map[string]string
	counter map[string]int64
	ttls    map[string]time.Duration

	// failOn forces the named operation to return the given error once.
	failOn map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		zsets:   make(map[string]map[string]float64),
		sets:    make(map[string]map[string]struct{}),
		hashes:  make(map[string]map[string]string),
		counter: make(map[string]int64),
		ttls:    make(map[string]time.Duration),
		failOn:  make(map[string]error),
	}
}

func (f *fakeStore) fail(op string) error {
	if err, ok := f.failOn[op]; ok {
		delete(f.failOn, op)
		return err
	}
	return nil
}

type rankedMember struct {
	member string
	score  float64
}

// rankedAsc returns the zset's members ordered the way ZRANGE walks them.
func (f *fakeStore) rankedAsc(key string) []rankedMember {
	zs := f.zsets[key]
	out := make([]rankedMember, 0, len(zs))
	for m, s := range zs {
		out = append(out, rankedMember{member: m, score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score < out[j].score
		}
		return out[i].member < out[j].member
	})
	return out
}

func clampRange(start, stop, n int64) (int64, int64, bool) {
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop, true
}

func (f *fakeStore) ZAddOrUpdate(_ context.Context, key, member string, score float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ZAddOrUpdate"); err != nil {
		return err
	}
	if f.zsets[key] == nil {
		f.zsets[key] = make(map[string]float64)
	}
	f.zsets[key][member] = score
	return nil
}

func (f *fakeStore) ZIncrBy(_ context.Context, key, member string, delta float64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ZIncrBy"); err != nil {
		return 0, err
	}
	if f.zsets[key] == nil {
		f.zsets[key] = make(map[string]float64)
	}
	f.zsets[key][member] += delta
	return f.zsets[key][member], nil
}

func (f *fakeStore) ZRem(_ context.Context, key string, members ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ZRem"); err != nil {
		return err
	}
	for _, m := range members {
		delete(f.zsets[key], m)
	}
	return nil
}

func (f *fakeStore) ZRank(_ context.Context, key, member string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ZRank"); err != nil {
		return 0, false, err
	}
	for i, rm := range f.rankedAsc(key) {
		if rm.member == member {
			return int64(i), true, nil
		}
	}
	return 0, false, nil
}

func (f *fakeStore) ZRangeAsc(_ context.Context, key string, start, stop int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ZRangeAsc"); err != nil {
		return nil, err
	}
	ranked := f.rankedAsc(key)
	start, stop, ok := clampRange(start, stop, int64(len(ranked)))
	if !ok {
		return nil, nil
	}
	out := make([]string, 0, stop-start+1)
	for _, rm := range ranked[start : stop+1] {
		out = append(out, rm.member)
	}
	return out, nil
}

func (f *fakeStore) ZRevRangeWithScores(_ context.Context, key string, start, stop int64) ([]MemberScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ZRevRangeWithScores"); err != nil {
		return nil, err
	}
	ranked := f.rankedAsc(key)
	for i, j := 0, len(ranked)-1; i < j; i, j = i+1, j-1 {
		ranked[i], ranked[j] = ranked[j], ranked[i]
	}
	start, stop, ok := clampRange(start, stop, int64(len(ranked)))
	if !ok {
		return nil, nil
	}
	out := make([]MemberScore, 0, stop-start+1)
	for _, rm := range ranked[start : stop+1] {
		out = append(out, MemberScore{Member: rm.member, Score: rm.score})
	}
	return out, nil
}

func (f *fakeStore) ZScore(_ context.Context, key, member string) (float64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ZScore"); err != nil {
		return 0, false, err
	}
	score, ok := f.zsets[key][member]
	return score, ok, nil
}

func (f *fakeStore) ZCard(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ZCard"); err != nil {
		return 0, err
	}
	return int64(len(f.zsets[key])), nil
}

// ZInterStoreMax intersects zsets and plain sets the way the server does:
// set members weigh 1, the MAX aggregate keeps the larger score.
func (f *fakeStore) ZInterStoreMax(_ context.Context, dest string, keys ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ZInterStoreMax"); err != nil {
		return 0, err
	}
	scores := func(key string) (map[string]float64, bool) {
		if zs, ok := f.zsets[key]; ok {
			return zs, true
		}
		if s, ok := f.sets[key]; ok {
			m := make(map[string]float64, len(s))
			for member := range s {
				m[member] = 1
			}
			return m, true
		}
		return nil, false
	}
	result := make(map[string]float64)
	for i, key := range keys {
		src, ok := scores(key)
		if !ok {
			result = nil
			break
		}
		if i == 0 {
			for m, s := range src {
				result[m] = s
			}
			continue
		}
		for m, s := range result {
			other, ok := src[m]
			if !ok {
				delete(result, m)
				continue
			}
			if other > s {
				result[m] = other
			}
		}
	}
	if len(result) == 0 {
		delete(f.zsets, dest)
		return 0, nil
	}
	f.zsets[dest] = result
	return int64(len(result)), nil
}

func (f *fakeStore) SAdd(_ context.Context, key, member string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("SAdd"); err != nil {
		return false, err
	}
	if f.sets[key] == nil {
		f.sets[key] = make(map[string]struct{})
	}
	if _, exists := f.sets[key][member]; exists {
		return false, nil
	}
	f.sets[key][member] = struct{}{}
	return true, nil
}

func (f *fakeStore) SRem(_ context.Context, key, member string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("SRem"); err != nil {
		return err
	}
	delete(f.sets[key], member)
	return nil
}

func (f *fakeStore) SCard(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.sets[key])), nil
}

func (f *fakeStore) HSet(_ context.Context, key string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("HSet"); err != nil {
		return err
	}
	if f.hashes[key] == nil {
		f.hashes[key] = make(map[string]string)
	}
	for k, v := range fields {
		f.hashes[key][k] = stringify(v)
	}
	return nil
}

func (f *fakeStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("HGetAll"); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(f.hashes[key]))
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) HIncrBy(_ context.Context, key, field string, delta int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("HIncrBy"); err != nil {
		return 0, err
	}
	if f.hashes[key] == nil {
		f.hashes[key] = make(map[string]string)
	}
	cur := parseInt(f.hashes[key][field])
	cur += delta
	f.hashes[key][field] = stringify(cur)
	return cur, nil
}

func (f *fakeStore) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Incr"); err != nil {
		return 0, err
	}
	f.counter[key]++
	return f.counter[key], nil
}

func (f *fakeStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Expire"); err != nil {
		return err
	}
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Del"); err != nil {
		return err
	}
	for _, key := range keys {
		delete(f.zsets, key)
		delete(f.sets, key)
		delete(f.hashes, key)
		delete(f.counter, key)
		delete(f.ttls, key)
	}
	return nil
}

func stringify(v any) string {
	return fmt.Sprint(v)
}

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func (f *fakeStore) voterCount(itemID int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.sets[votedKey(itemID)]))
}

func (f *fakeStore) voterTTL(itemID int64) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ttls[votedKey(itemID)]
}
