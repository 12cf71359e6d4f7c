// Package suggest implements prefix autocomplete over a lexicographically
// ordered dictionary held in the shared ordered store. A query is answered by
// inserting two uniquely-tokened sentinel bounds around the prefix
// neighborhood, resolving their ranks, and fetching the enclosed range.
package suggest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	errs "github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/metrics"
	"github.com/google/uuid"
)

const (
	wordIndexKey = "dict:words"
	defKeyPrefix = "dict:def:"

	// endMarker sorts strictly after every character a word can contain
	// ('{' is one past 'z'), so no dictionary word ever collides with a
	// sentinel.
	endMarker = '{'
)

// Word is a dictionary entry returned from a suggest query.
type Word struct {
	Word       string `json:"word"`
	Definition string `json:"definition,omitempty"`
}

// Store is the slice of the shared store the suggest engine needs: the
// ordered word index plus scalar keys for definitions.
type Store interface {
	ZAddOrUpdate(ctx context.Context, key, member string, score float64) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRank(ctx context.Context, key, member string) (rank int64, found bool, err error)
	ZRangeAsc(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZCard(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Engine answers prefix queries against the dictionary index.
type Engine struct {
	store      Store
	maxResults int
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewEngine creates an Engine capped at maxResults words per query. metrics
// may be nil.
func NewEngine(store Store, maxResults int, m *metrics.Metrics) *Engine {
	return &Engine{
		store:      store,
		maxResults: maxResults,
		metrics:    m,
		logger:     slog.Default().With("component", "suggest-engine"),
	}
}

// prefixBounds derives the pair of values that sort strictly before the
// first and strictly after the last word carrying the prefix. The predecessor
// byte of the prefix's final character exists for the whole permitted
// alphabet: even 'a' has '`' below it, and no word contains either bound
// character.
func prefixBounds(prefix string) (lower, upper string) {
	last := prefix[len(prefix)-1]
	stem := prefix[:len(prefix)-1]
	lower = stem + string(last-1) + string(endMarker)
	upper = prefix + string(endMarker)
	return lower, upper
}

// Suggest returns the dictionary words starting with prefix, in
// lexicographic order, capped at the engine's result limit. With withDefs
// set, each word's definition is resolved as well.
//
// The two sentinel bounds carry a fresh token so concurrent queries cannot
// collide, and they are removed on every exit path; a failed rank lookup
// surfaces as ErrRangeLookup, retryable with a fresh query.
func (e *Engine) Suggest(ctx context.Context, prefix string, withDefs bool) ([]Word, error) {
	if err := validatePrefix(prefix); err != nil {
		return nil, err
	}

	lower, upper := prefixBounds(prefix)
	token := uuid.NewString()
	lower += token
	upper += token

	if err := e.store.ZAddOrUpdate(ctx, wordIndexKey, lower, 0); err != nil {
		return nil, err
	}
	if err := e.store.ZAddOrUpdate(ctx, wordIndexKey, upper, 0); err != nil {
		e.cleanup(lower, upper)
		return nil, err
	}
	defer e.cleanup(lower, upper)

	lowRank, found, err := e.store.ZRank(ctx, wordIndexKey, lower)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.Newf(errs.ErrRangeLookup, http.StatusConflict, "lower bound for %q vanished", prefix)
	}
	highRank, found, err := e.store.ZRank(ctx, wordIndexKey, upper)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.Newf(errs.ErrRangeLookup, http.StatusConflict, "upper bound for %q vanished", prefix)
	}

	// Open interval between the bounds, smallest entries first.
	count := highRank - lowRank - 1
	if count <= 0 {
		return nil, nil
	}
	if count > int64(e.maxResults) {
		count = int64(e.maxResults)
	}
	members, err := e.store.ZRangeAsc(ctx, wordIndexKey, lowRank+1, lowRank+count)
	if err != nil {
		return nil, err
	}

	words := make([]Word, 0, len(members))
	for _, m := range members {
		// Entries carrying the marker are other queries' in-flight
		// sentinels, not words.
		if strings.ContainsRune(m, endMarker) {
			continue
		}
		words = append(words, Word{Word: m})
	}

	if withDefs {
		for i := range words {
			def, found, err := e.store.Get(ctx, defKeyPrefix+words[i].Word)
			if err != nil {
				return nil, err
			}
			if found {
				words[i].Definition = def
			}
		}
	}
	return words, nil
}

// DictionarySize returns the cardinality of the word index. Transiently
// includes in-flight sentinels of concurrent queries.
func (e *Engine) DictionarySize(ctx context.Context) (int64, error) {
	return e.store.ZCard(ctx, wordIndexKey)
}

// cleanup removes both sentinels. It runs on every exit path and must not
// inherit a cancelled request context, so it uses a short-lived one.
func (e *Engine) cleanup(lower, upper string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.store.ZRem(ctx, wordIndexKey, lower, upper); err != nil {
		if e.metrics != nil {
			e.metrics.SentinelCleanupFails.Inc()
		}
		e.logger.Error("sentinel cleanup failed", "error", err)
	}
}

func validatePrefix(prefix string) error {
	if prefix == "" {
		return errs.New(errs.ErrInvalidInput, http.StatusBadRequest, "prefix is required")
	}
	for i := 0; i < len(prefix); i++ {
		if prefix[i] < 'a' || prefix[i] > 'z' {
			return errs.Newf(errs.ErrInvalidInput, http.StatusBadRequest, "prefix must be lowercase a-z, got %q", prefix)
		}
	}
	return nil
}
