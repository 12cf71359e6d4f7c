package board

import (
	"context"
	"fmt"
)

// ScoreEngine computes initial scores and applies vote deltas. The invariant
// it maintains: score == ts + votes*scorePerVote.
type ScoreEngine struct {
	store        Store
	scorePerVote int64
}

// NewScoreEngine creates a ScoreEngine with the given vote weight.
func NewScoreEngine(store Store, scorePerVote int64) *ScoreEngine {
	return &ScoreEngine{store: store, scorePerVote: scorePerVote}
}

// InitialScore is the score of a freshly posted item: its creation instant.
func (e *ScoreEngine) InitialScore(ts int64) int64 {
	return ts
}

// Register places a new item into the ordered index at its initial score.
func (e *ScoreEngine) Register(ctx context.Context, id, ts int64) error {
	if err := e.store.ZAddOrUpdate(ctx, scoreIndexKey, memberID(id), float64(e.InitialScore(ts))); err != nil {
		return fmt.Errorf("registering item %d: %w", id, err)
	}
	return nil
}

// ApplyVote increments the item's score by the vote weight and its vote
// counter by one. The caller must have passed the VoteGuard check first;
// the two mutations are separate store calls, each observed by later calls
// in the same operation.
func (e *ScoreEngine) ApplyVote(ctx context.Context, id int64) (newScore int64, err error) {
	score, err := e.store.ZIncrBy(ctx, scoreIndexKey, memberID(id), float64(e.scorePerVote))
	if err != nil {
		return 0, fmt.Errorf("incrementing score for item %d: %w", id, err)
	}
	if _, err := e.store.HIncrBy(ctx, itemKey(id), "votes", 1); err != nil {
		return 0, fmt.Errorf("incrementing vote count for item %d: %w", id, err)
	}
	return int64(score), nil
}
