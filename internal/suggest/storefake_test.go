package suggest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// fakeStore is an in-memory Store with redis-compatible ordering: ranks and
// ascending ranges walk members by (score, member). With every dictionary
// member at score zero that is plain lexicographic order, which is the
// property the bound-scan relies on.
type fakeStore struct {
	mu    sync.Mutex
	zsets map[string]map[string]float64
	kv    map[string]string

	// failOn forces the named operation to return the given error once.
	failOn map[string]error
	// zaddFailCall fails the Nth ZAddOrUpdate call (1-based) when set.
	zaddFailCall int
	zaddCalls    int
	zaddErr      error
	// rankMiss makes ZRank report the member absent without erroring.
	rankMiss func(member string) bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		zsets:  make(map[string]map[string]float64),
		kv:     make(map[string]string),
		failOn: make(map[string]error),
	}
}

func (f *fakeStore) fail(op string) error {
	if err, ok := f.failOn[op]; ok {
		delete(f.failOn, op)
		return err
	}
	return nil
}

func (f *fakeStore) rankedAsc(key string) []string {
	zs := f.zsets[key]
	type entry struct {
		member string
		score  float64
	}
	entries := make([]entry, 0, len(zs))
	for m, s := range zs {
		entries = append(entries, entry{member: m, score: s})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score < entries[j].score
		}
		return entries[i].member < entries[j].member
	})
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.member
	}
	return out
}

func (f *fakeStore) ZAddOrUpdate(_ context.Context, key, member string, score float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zaddCalls++
	if f.zaddFailCall > 0 && f.zaddCalls == f.zaddFailCall {
		return f.zaddErr
	}
	if err := f.fail("ZAddOrUpdate"); err != nil {
		return err
	}
	if f.zsets[key] == nil {
		f.zsets[key] = make(map[string]float64)
	}
	f.zsets[key][member] = score
	return nil
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
	if f.rankMiss != nil && f.rankMiss(member) {
		return 0, false, nil
	}
	for i, m := range f.rankedAsc(key) {
		if m == member {
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
	n := int64(len(ranked))
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return nil, nil
	}
	return append([]string(nil), ranked[start:stop+1]...), nil
}

func (f *fakeStore) ZCard(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.zsets[key])), nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Get"); err != nil {
		return "", false, err
	}
	v, ok := f.kv[key]
	return v, ok, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Set"); err != nil {
		return err
	}
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

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Del"); err != nil {
		return err
	}
	for _, key := range keys {
		delete(f.zsets, key)
		delete(f.kv, key)
	}
	return nil
}

func (f *fakeStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("FlushByPattern"); err != nil {
		return 0, err
	}
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

// indexMembers returns the word index contents for cleanup assertions.
func (f *fakeStore) indexMembers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rankedAsc(wordIndexKey)
}
