package analytics

import "time"

type EventType string

const (
	EventItemPosted   EventType = "item_posted"
	EventVoteDecided  EventType = "vote_decided"
	EventSuggestQuery EventType = "suggest_query"
)

// ItemPostedEvent is emitted when a new item lands on the board.
type ItemPostedEvent struct {
	Type      EventType `json:"type"`
	ItemID    int64     `json:"item_id"`
	Author    string    `json:"author"`
	Groups    []string  `json:"groups,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// VoteDecidedEvent is emitted for every vote attempt, accepted or not.
type VoteDecidedEvent struct {
	Type      EventType `json:"type"`
	ItemID    int64     `json:"item_id"`
	VoterID   string    `json:"voter_id"`
	Outcome   string    `json:"outcome"`
	Timestamp time.Time `json:"timestamp"`
}

// SuggestQueryEvent is emitted for each served autocomplete query.
type SuggestQueryEvent struct {
	Type      EventType `json:"type"`
	Prefix    string    `json:"prefix"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}
