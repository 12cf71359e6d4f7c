package board

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
)

// VoteOutcome is the result of a vote eligibility check.
type VoteOutcome string

const (
	VoteAccepted     VoteOutcome = "accepted"
	VoteAlreadyCast  VoteOutcome = "already_voted"
	VoteWindowClosed VoteOutcome = "window_closed"
)

// VoteGuard enforces one vote per user per item inside the voting window.
//
// An item is in one of two states: Open while now-ts < window, Closed
// (terminal) afterwards. The membership test and the registration are a
// single SADD round trip, so two concurrent votes by the same user cannot
// both pass the check; exactly one observes wasNew=true.
type VoteGuard struct {
	store  Store
	window int64 // seconds
	clock  clockwork.Clock
}

// NewVoteGuard creates a VoteGuard with the given window in seconds.
func NewVoteGuard(store Store, windowSeconds int64, clock clockwork.Clock) *VoteGuard {
	return &VoteGuard{store: store, window: windowSeconds, clock: clock}
}

// TryRegisterVote records the voter for the item if the window is open and
// the voter has not voted before. On VoteAccepted the voter is durably in
// the dedup set and the caller proceeds to ScoreEngine.ApplyVote; on any
// rejection no state changes.
func (g *VoteGuard) TryRegisterVote(ctx context.Context, item Item, voterID string) (VoteOutcome, error) {
	now := g.clock.Now().Unix()
	remaining := item.TS + g.window - now
	if remaining <= 0 {
		return VoteWindowClosed, nil
	}

	wasNew, err := g.store.SAdd(ctx, votedKey(item.ID), voterID)
	if err != nil {
		return "", fmt.Errorf("registering vote on item %d: %w", item.ID, err)
	}
	if !wasNew {
		return VoteAlreadyCast, nil
	}

	// The dedup set only matters while the window is open; let the store
	// reclaim it afterwards. Absence after expiry means "window closed",
	// which the timestamp check above already answers.
	if err := g.store.Expire(ctx, votedKey(item.ID), secondsToDuration(remaining)); err != nil {
		return "", fmt.Errorf("setting voter set expiry for item %d: %w", item.ID, err)
	}
	return VoteAccepted, nil
}
