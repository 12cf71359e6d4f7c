package api

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/internal/board"
)

// fakeStore is an in-memory stand-in for the shared store, covering both the
// board and suggest contracts so handler tests can wire real services.
type fakeStore struct {
	mu      sync.Mutex
	zsets   map[string]map[string]float64
	sets    map[string]map[string]struct{}
	hashes  map[string]map[string]string
	kv      map[string]string
	counter map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		zsets:   make(map[string]map[string]float64),
		sets:    make(map[string]map[string]struct{}),
		hashes:  make(map[string]map[string]string),
		kv:      make(map[string]string),
		counter: make(map[string]int64),
	}
}

type rankedMember struct {
	member string
	score  float64
}

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

func (f *fakeStore) ZAddOrUpdate(_ context.Context, key, member string, score float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.zsets[key] == nil {
		f.zsets[key] = make(map[string]float64)
	}
	f.zsets[key][member] = score
	return nil
}

func (f *fakeStore) ZIncrBy(_ context.Context, key, member string, delta float64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.zsets[key] == nil {
		f.zsets[key] = make(map[string]float64)
	}
	f.zsets[key][member] += delta
	return f.zsets[key][member], nil
}

func (f *fakeStore) ZRem(_ context.Context, key string, members ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range members {
		delete(f.zsets[key], m)
	}
	return nil
}

func (f *fakeStore) ZRank(_ context.Context, key, member string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
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

func (f *fakeStore) ZRevRangeWithScores(_ context.Context, key string, start, stop int64) ([]board.MemberScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ranked := f.rankedAsc(key)
	for i, j := 0, len(ranked)-1; i < j; i, j = i+1, j-1 {
		ranked[i], ranked[j] = ranked[j], ranked[i]
	}
	start, stop, ok := clampRange(start, stop, int64(len(ranked)))
	if !ok {
		return nil, nil
	}
	out := make([]board.MemberScore, 0, stop-start+1)
	for _, rm := range ranked[start : stop+1] {
		out = append(out, board.MemberScore{Member: rm.member, Score: rm.score})
	}
	return out, nil
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

func (f *fakeStore) ZScore(_ context.Context, key, member string) (float64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	score, ok := f.zsets[key][member]
	return score, ok, nil
}

func (f *fakeStore) ZCard(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.zsets[key])), nil
}

func (f *fakeStore) ZInterStoreMax(_ context.Context, dest string, keys ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
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
	if f.hashes[key] == nil {
		f.hashes[key] = make(map[string]string)
	}
	for k, v := range fields {
		f.hashes[key][k] = fmt.Sprint(v)
	}
	return nil
}

func (f *fakeStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.hashes[key]))
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) HIncrBy(_ context.Context, key, field string, delta int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hashes[key] == nil {
		f.hashes[key] = make(map[string]string)
	}
	cur, _ := strconv.ParseInt(f.hashes[key][field], 10, 64)
	cur += delta
	f.hashes[key][field] = strconv.FormatInt(cur, 10)
	return cur, nil
}

func (f *fakeStore) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter[key]++
	return f.counter[key], nil
}

func (f *fakeStore) Expire(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.zsets, key)
		delete(f.sets, key)
		delete(f.hashes, key)
		delete(f.kv, key)
		delete(f.counter, key)
	}
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.kv[key]
	return v, ok, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case string:
		f.kv[key] = v
	case []byte:
		f.kv[key] = string(v)
	default:
		f.kv[key] = fmt.Sprint(v)
	}
	return nil
}

func (f *fakeStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var deleted int64
	for key := range f.kv {
		if strings.HasPrefix(key, prefix) {
			delete(f.kv, key)
			deleted++
		}
	}
	return deleted, nil
}
