// Package api implements the platform's HTTP surface: board operations,
// suggest queries, and dictionary administration.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/internal/board"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/internal/suggest"
	errs "github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/resilience"
)

// Handler implements the HTTP endpoints.
type Handler struct {
	boardSvc     *board.Service
	engine       *suggest.Engine
	cache        *suggest.Cache
	dict         *suggest.Dictionary
	breaker      *resilience.CircuitBreaker
	metrics      *metrics.Metrics
	tracker      board.Tracker
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

// New creates a Handler. cache, breaker, metrics, and tracker may be nil.
func New(
	boardSvc *board.Service,
	engine *suggest.Engine,
	cache *suggest.Cache,
	dict *suggest.Dictionary,
	breaker *resilience.CircuitBreaker,
	m *metrics.Metrics,
	tracker board.Tracker,
	defaultLimit, maxLimit int,
) *Handler {
	return &Handler{
		boardSvc:     boardSvc,
		engine:       engine,
		cache:        cache,
		dict:         dict,
		breaker:      breaker,
		metrics:      m,
		tracker:      tracker,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       slog.Default().With("component", "api-handler"),
	}
}

// ---------- board handlers ----------

// PostItem accepts a new item submission.
func (h *Handler) PostItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title  string   `json:"title"`
		Link   string   `json:"link"`
		Author string   `json:"author"`
		Groups []string `json:"groups"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	item, err := h.boardSvc.PostItem(r.Context(), req.Title, req.Link, req.Author, req.Groups)
	if err != nil {
		h.writeDomainError(w, r, err, "failed to post item")
		return
	}
	if h.metrics != nil {
		h.metrics.ItemsPostedTotal.Inc()
	}
	h.writeJSON(w, http.StatusCreated, item)
}

// GetItem returns a single item with its live score.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	item, err := h.boardSvc.GetItem(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err, "failed to fetch item")
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

// Vote registers a vote attempt and reports its outcome.
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	outcome, err := h.boardSvc.Vote(r.Context(), id, req.UserID)
	if err != nil {
		if h.metrics != nil {
			h.metrics.VotesTotal.WithLabelValues("error").Inc()
		}
		h.writeDomainError(w, r, err, "failed to vote")
		return
	}
	if h.metrics != nil {
		h.metrics.VotesTotal.WithLabelValues(string(outcome)).Inc()
	}
	status := http.StatusOK
	if outcome != board.VoteAccepted {
		status = http.StatusConflict
	}
	h.writeJSON(w, status, map[string]string{"outcome": string(outcome)})
}

// TopItems returns the highest-scored items across the whole board.
func (h *Handler) TopItems(w http.ResponseWriter, r *http.Request) {
	limit := h.queryLimit(r)
	items, err := h.boardSvc.TopItems(r.Context(), limit)
	if err != nil {
		h.writeDomainError(w, r, err, "failed to list top items")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
		"limit": limit,
	})
}

// GroupItems returns the highest-scored items in one group.
func (h *Handler) GroupItems(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("group")
	limit := h.queryLimit(r)
	items, err := h.boardSvc.ItemsInGroup(r.Context(), group, limit)
	if err != nil {
		h.writeDomainError(w, r, err, "failed to list group items")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"group": group,
		"items": items,
		"count": len(items),
		"limit": limit,
	})
}

// ChangeGroups adds and removes group memberships for an item.
func (h *Handler) ChangeGroups(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Add    []string `json:"add"`
		Remove []string `json:"remove"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.boardSvc.ChangeGroups(r.Context(), id, req.Add, req.Remove); err != nil {
		h.writeDomainError(w, r, err, "failed to change groups")
		return
	}
	if h.metrics != nil {
		h.metrics.GroupChangesTotal.WithLabelValues("add").Add(float64(len(req.Add)))
		h.metrics.GroupChangesTotal.WithLabelValues("remove").Add(float64(len(req.Remove)))
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------- suggest handlers ----------

// Suggest answers a prefix autocomplete query.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	withDefs := r.URL.Query().Get("defs") == "true"
	start := time.Now()

	compute := func(ctx context.Context) ([]suggest.Word, error) {
		var words []suggest.Word
		var queryErr error
		run := func() error {
			words, queryErr = h.engine.Suggest(ctx, prefix, withDefs)
			// Only store failures count against the breaker; bad input
			// and range-lookup conflicts must not trip it.
			if queryErr != nil && errors.Is(queryErr, errs.ErrStoreUnavailable) {
				return queryErr
			}
			return nil
		}
		if h.breaker != nil {
			if err := h.breaker.Execute(run); err != nil {
				return nil, err
			}
		} else if err := run(); err != nil {
			return nil, err
		}
		if queryErr != nil {
			return nil, queryErr
		}
		return words, nil
	}

	var words []suggest.Word
	var cached bool
	var err error
	if h.cache != nil {
		words, cached, err = h.cache.GetOrCompute(r.Context(), prefix, withDefs, compute)
	} else {
		words, err = compute(r.Context())
	}
	latency := time.Since(start)

	if err != nil {
		if h.metrics != nil {
			h.metrics.SuggestQueriesTotal.WithLabelValues("error").Inc()
		}
		if errors.Is(err, resilience.ErrCircuitOpen) {
			h.writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.writeDomainError(w, r, err, "suggest query failed")
		return
	}

	h.recordSuggest(r, prefix, len(words), cached, latency)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"prefix": prefix,
		"words":  words,
		"count":  len(words),
	})
}

func (h *Handler) recordSuggest(r *http.Request, prefix string, returned int, cached bool, latency time.Duration) {
	if h.metrics != nil {
		result := "hit"
		if returned == 0 {
			result = "zero_result"
		}
		h.metrics.SuggestQueriesTotal.WithLabelValues(result).Inc()
		cacheStatus := "miss"
		if cached {
			cacheStatus = "hit"
			h.metrics.CacheHitsTotal.Inc()
		} else {
			h.metrics.CacheMissesTotal.Inc()
		}
		h.metrics.SuggestLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
		h.metrics.SuggestResultsCount.Observe(float64(returned))
	}
	if h.tracker != nil {
		h.tracker.Track(analytics.SuggestQueryEvent{
			Type:      analytics.EventSuggestQuery,
			Prefix:    prefix,
			Returned:  returned,
			LatencyMs: latency.Milliseconds(),
			CacheHit:  cached,
			Timestamp: time.Now().UTC(),
			RequestID: logger.RequestID(r.Context()),
		})
	}
}

// LoadDictionary bulk-loads words and definitions.
func (h *Handler) LoadDictionary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Entries []struct {
			Word       string `json:"word"`
			Definition string `json:"definition"`
		} `json:"entries"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	entries := make([]suggest.Entry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, suggest.Entry{Word: e.Word, Definition: e.Definition})
	}
	loaded, err := h.dict.Load(r.Context(), entries)
	if err != nil {
		h.writeDomainError(w, r, err, "failed to load dictionary")
		return
	}
	if h.metrics != nil {
		h.metrics.DictWordsLoadedTotal.Add(float64(loaded))
	}
	h.invalidateCache(r)
	h.writeJSON(w, http.StatusOK, map[string]any{"loaded": loaded})
}

// FlushDictionary drops the dictionary and its definitions.
func (h *Handler) FlushDictionary(w http.ResponseWriter, r *http.Request) {
	if err := h.dict.Flush(r.Context()); err != nil {
		h.writeDomainError(w, r, err, "failed to flush dictionary")
		return
	}
	h.invalidateCache(r)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "flushed"})
}

// CacheStats reports suggest cache hit/miss counters.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "cache disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	h.writeJSON(w, http.StatusOK, map[string]int64{"hits": hits, "misses": misses})
}

// CacheInvalidate empties the suggest cache.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "cache disabled"})
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.writeDomainError(w, r, err, "failed to invalidate cache")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) invalidateCache(r *http.Request) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation after dictionary change failed", "error", err)
	}
}

// ---------- helpers ----------

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "invalid item id")
		return 0, false
	}
	return id, true
}

func (h *Handler) queryLimit(r *http.Request) int {
	limit := h.defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= h.maxLimit {
			limit = parsed
		}
	}
	return limit
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := errs.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error(msg, "path", r.URL.Path, "error", err)
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
