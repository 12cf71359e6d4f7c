package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/kafka"
)

// AggregatedStats is the rolled-up view of board and suggest activity.
type AggregatedStats struct {
	ItemsPosted      int64            `json:"items_posted"`
	VotesByOutcome   map[string]int64 `json:"votes_by_outcome"`
	SuggestQueries   int64            `json:"suggest_queries"`
	SuggestCacheHits int64            `json:"suggest_cache_hits"`
	ZeroResultCount  int64            `json:"zero_result_count"`
	AvgLatencyMs     float64          `json:"avg_latency_ms"`
	P50LatencyMs     int64            `json:"p50_latency_ms"`
	P95LatencyMs     int64            `json:"p95_latency_ms"`
	P99LatencyMs     int64            `json:"p99_latency_ms"`
	TopGroups        []GroupCount     `json:"top_groups"`
	TopPrefixes      []PrefixCount    `json:"top_prefixes"`
	EventsPerMinute  float64          `json:"events_per_minute"`
}

type GroupCount struct {
	Group string `json:"group"`
	Count int64  `json:"count"`
}

type PrefixCount struct {
	Prefix string `json:"prefix"`
	Count  int64  `json:"count"`
}

// Aggregator consumes board events from Kafka into in-memory rollups.
type Aggregator struct {
	mu             sync.RWMutex
	itemsPosted    atomic.Int64
	suggestQueries atomic.Int64
	cacheHits      atomic.Int64
	zeroResults    atomic.Int64
	totalEvents    atomic.Int64
	voteOutcomes   map[string]int64
	groupCounts    map[string]int64
	prefixCounts   map[string]int64
	latencies      []int64
	startTime      time.Time
	logger         *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		voteOutcomes: make(map[string]int64),
		groupCounts:  make(map[string]int64),
		prefixCounts: make(map[string]int64),
		latencies:    make([]int64, 0, 10000),
		startTime:    time.Now(),
		logger:       slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent returns the Kafka handler that routes raw messages into the
// aggregator by their type envelope. Undecodable messages are logged and
// skipped, never retried.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		var probe struct {
			Type EventType `json:"type"`
		}
		if err := json.Unmarshal(value, &probe); err != nil {
			agg.logger.Error("failed to decode analytics event", "error", err)
			return nil
		}
		switch probe.Type {
		case EventItemPosted:
			event, err := kafka.DecodeJSON[ItemPostedEvent](value)
			if err == nil {
				agg.recordItemPosted(event)
			}
		case EventVoteDecided:
			event, err := kafka.DecodeJSON[VoteDecidedEvent](value)
			if err == nil {
				agg.recordVoteDecided(event)
			}
		case EventSuggestQuery:
			event, err := kafka.DecodeJSON[SuggestQueryEvent](value)
			if err == nil {
				agg.recordSuggestQuery(event)
			}
		default:
			agg.logger.Warn("unknown analytics event type", "type", probe.Type)
		}
		return nil
	}
}

func (a *Aggregator) recordItemPosted(event ItemPostedEvent) {
	a.itemsPosted.Add(1)
	a.totalEvents.Add(1)
	a.mu.Lock()
	for _, g := range event.Groups {
		a.groupCounts[g]++
	}
	a.mu.Unlock()
}

func (a *Aggregator) recordVoteDecided(event VoteDecidedEvent) {
	a.totalEvents.Add(1)
	a.mu.Lock()
	a.voteOutcomes[event.Outcome]++
	a.mu.Unlock()
}

func (a *Aggregator) recordSuggestQuery(event SuggestQueryEvent) {
	a.suggestQueries.Add(1)
	a.totalEvents.Add(1)
	if event.CacheHit {
		a.cacheHits.Add(1)
	}
	if event.Returned == 0 {
		a.zeroResults.Add(1)
	}
	a.mu.Lock()
	a.latencies = append(a.latencies, event.LatencyMs)
	a.prefixCounts[event.Prefix]++
	a.mu.Unlock()
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		ItemsPosted:      a.itemsPosted.Load(),
		SuggestQueries:   a.suggestQueries.Load(),
		SuggestCacheHits: a.cacheHits.Load(),
		ZeroResultCount:  a.zeroResults.Load(),
		VotesByOutcome:   make(map[string]int64, len(a.voteOutcomes)),
	}
	for outcome, n := range a.voteOutcomes {
		stats.VotesByOutcome[outcome] = n
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		var sum int64
		for _, v := range sorted {
			sum += v
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = sorted[len(sorted)*50/100]
		stats.P95LatencyMs = sorted[min(len(sorted)*95/100, len(sorted)-1)]
		stats.P99LatencyMs = sorted[min(len(sorted)*99/100, len(sorted)-1)]
	}
	stats.TopGroups = topGroupCounts(a.groupCounts, 10)
	stats.TopPrefixes = topPrefixCounts(a.prefixCounts, 10)
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.EventsPerMinute = float64(a.totalEvents.Load()) / elapsed
	}
	return stats
}

func topGroupCounts(counts map[string]int64, n int) []GroupCount {
	out := make([]GroupCount, 0, len(counts))
	for g, c := range counts {
		out = append(out, GroupCount{Group: g, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Group < out[j].Group
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func topPrefixCounts(counts map[string]int64, n int) []PrefixCount {
	out := make([]PrefixCount, 0, len(counts))
	for p, c := range counts {
		out = append(out, PrefixCount{Prefix: p, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Prefix < out[j].Prefix
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
